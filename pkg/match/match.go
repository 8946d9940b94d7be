// Package match picks the catalog entry a detection refers to.
package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/animesync/animesync/pkg/anime"
)

// Select picks the catalog entry for obs. A direct identifier asserted by the
// page wins without looking at results. Otherwise the catalog's own ranking is
// trusted and the first result is taken.
func Select(obs *anime.Observation, results []anime.Media) (anime.Match, error) {
	if obs != nil && obs.ExternalID != "" {
		id, err := strconv.Atoi(strings.TrimSpace(obs.ExternalID))
		if err != nil || id <= 0 {
			return anime.Match{}, fmt.Errorf("%w: invalid direct id %q", anime.ErrNotFound, obs.ExternalID)
		}
		return anime.Match{ID: id, DisplayTitle: fallbackTitle(obs, id), Direct: true}, nil
	}

	if len(results) == 0 {
		title := ""
		if obs != nil {
			title = obs.Title
		}
		return anime.Match{}, fmt.Errorf("%w: no anime found with title %q", anime.ErrNotFound, title)
	}

	first := results[0]
	display := first.DisplayTitle()
	if display == "" {
		display = fallbackTitle(obs, first.ID)
	}
	return anime.Match{ID: first.ID, DisplayTitle: display, Episodes: first.Episodes}, nil
}

func fallbackTitle(obs *anime.Observation, id int) string {
	if obs != nil && obs.Title != "" {
		return obs.Title
	}
	return "ID: " + strconv.Itoa(id)
}
