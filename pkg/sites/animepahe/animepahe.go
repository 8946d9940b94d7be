// Package animepahe detects episodes on animepahe and its mirrors.
package animepahe

import (
	"context"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/episodes"
	"github.com/animesync/animesync/pkg/sites"
)

var (
	docTitle   = regexp.MustCompile(`(?i)(.*?)(?:Episode|Ep\.) ?(\d+)`)
	linkNumber = regexp.MustCompile(`(?i)Episode\s+(\d+)`)
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (*Adapter) Name() string { return "animepahe" }

func (*Adapter) Domains() []string {
	return []string{"animepahe.com", "animepahe.org", "animepahe.ru", "animepahe.si", "anime-pahe.com", "pahe.win"}
}

func (*Adapter) Detect(_ context.Context, p *sites.Page) *anime.Observation {
	obs := &anime.Observation{}

	if id, ok := p.Doc.Find(`meta[name="anilist"]`).First().Attr("content"); ok {
		obs.ExternalID = strings.TrimSpace(id)
	}

	titleEpisode := 0
	if m := docTitle.FindStringSubmatch(p.Title); m != nil {
		obs.RawTitle = strings.TrimSpace(m[1])
		titleEpisode, _ = strconv.Atoi(m[2])
	}

	links := p.Doc.Find("#scrollArea a.dropdown-item")
	if links.Length() == 0 {
		obs.Episode = titleEpisode
		return obs
	}

	var entries []episodes.Entry
	links.Each(func(_ int, s *goquery.Selection) {
		entries = append(entries, episodes.Entry{NativeID: s.AttrOr("href", ""), Displayed: displayed(s)})
	})
	seq := episodes.BuildMap(entries)

	current := links.Filter(".active").First()
	if current.Length() == 0 {
		segment := path.Base(strings.TrimSuffix(p.URL.Path, "/"))
		current = links.FilterFunction(func(_ int, s *goquery.Selection) bool {
			return segment != "" && segment != "/" && strings.Contains(s.AttrOr("href", ""), segment)
		}).First()
	}
	if current.Length() == 0 {
		obs.Episode = titleEpisode
		return obs
	}

	if n, ok := seq.Resolve(current.AttrOr("href", "")); ok && displayed(current) > 0 {
		obs.Episode = n
	} else {
		obs.Episode = displayed(current)
	}
	return obs
}

// displayed is the number printed on an episode link, 0 if none.
func displayed(s *goquery.Selection) int {
	m := linkNumber.FindStringSubmatch(s.Text())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
