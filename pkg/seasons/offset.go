// Package seasons converts per-season episode numbers into the absolute
// numbering the catalog uses.
//
// The conversion is a heuristic: sites that number per season show episode
// numbers larger than the catalog's episode count for the entry. Lengths of prior
// seasons that nobody recorded are assumed to be FallbackEpisodes long, so the
// result can drift for series with irregular seasons.
package seasons

import "sort"

// FallbackEpisodes is the assumed length of a season after the first whose
// length is unknown.
const FallbackEpisodes = 12

// Entry is the cached state for one season.
type Entry struct {
	FirstEpisode int `json:"firstEpisode"`
	Offset       int `json:"offset"`
	Episodes     int `json:"episodes,omitempty"` // 0 when unknown
}

// Cache maps a season index to its entry. One cache exists per series.
type Cache map[int]Entry

func (c Cache) clone() Cache {
	out := make(Cache, len(c)+1)
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Seasons returns the cached season indexes in ascending order.
func (c Cache) Seasons() []int {
	out := make([]int, 0, len(c))
	for s := range c {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// EpisodesIn returns the assumed length of season i. total is the catalog's
// episode count, which is taken as the length of season 1.
func (c Cache) EpisodesIn(i, total int) int {
	if i <= 1 {
		return total
	}
	if e, ok := c[i]; ok && e.Episodes > 0 {
		return e.Episodes
	}
	return FallbackEpisodes
}

// Offset returns the number of episodes in seasons 1..season-1.
func (c Cache) Offset(season, total int) int {
	offset := 0
	for i := 1; i < season; i++ {
		offset += c.EpisodesIn(i, total)
	}
	return offset
}

// ApplyOffset shifts episode of season by the length of all prior seasons and
// returns a copy of cache recording {FirstEpisode: 1, Offset} for season. The
// input cache is never modified.
func ApplyOffset(season, episode, total int, cache Cache) (int, Cache) {
	offset := cache.Offset(season, total)

	out := cache.clone()
	e := out[season]
	e.FirstEpisode = 1
	e.Offset = offset
	out[season] = e

	return episode + offset, out
}

// ResolveAbsoluteEpisode converts episode of season into an absolute episode
// number. The episode is returned unchanged for season 1, when total is
// unknown, or when it already fits within total; only an episode number larger
// than the catalog total signals per-season numbering and gets ApplyOffset.
func ResolveAbsoluteEpisode(season, episode, total int, cache Cache) (int, Cache) {
	if season <= 1 || total <= 0 || episode <= total {
		return episode, cache
	}
	return ApplyOffset(season, episode, total, cache)
}

// SetEpisodes records the known length of a season and returns the updated
// copy. Recorded lengths replace FallbackEpisodes in later offset computations.
func SetEpisodes(cache Cache, season, episodes int) Cache {
	out := cache.clone()
	e := out[season]
	if e.FirstEpisode == 0 {
		e.FirstEpisode = 1
	}
	e.Episodes = episodes
	out[season] = e
	return out
}
