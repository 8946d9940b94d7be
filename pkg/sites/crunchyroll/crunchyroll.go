// Package crunchyroll detects episodes on crunchyroll.com.
package crunchyroll

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/sites"
)

const titleSelector = ".show-title-link h4, [data-t='show_title'], h4.title span, meta[property='og:title']"

var (
	trailingNumber = regexp.MustCompile(`/(\d+)$`)
	episodeText    = regexp.MustCompile(`Episode (\d+)`)
	seasonText     = regexp.MustCompile(`Season (\d+)`)
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (*Adapter) Name() string { return "crunchyroll" }

func (*Adapter) Domains() []string { return []string{"crunchyroll.com"} }

func (*Adapter) Detect(_ context.Context, p *sites.Page) *anime.Observation {
	obs := &anime.Observation{
		RawTitle: showTitle(p.Doc.Find(titleSelector).First()),
		Episode:  firstNumber(trailingNumber, p.URL.Path),
		Season:   firstNumber(seasonText, p.Title, p.Doc.Find(".season-name").First().Text()),
	}
	if obs.Episode == 0 {
		obs.Episode = firstNumber(episodeText, p.Doc.Find(".episode-title").First().Text())
	}
	return obs
}

func showTitle(s *goquery.Selection) string {
	if s.Length() == 0 {
		return ""
	}
	if goquery.NodeName(s) == "meta" {
		content := s.AttrOr("content", "")
		if i := strings.Index(content, " - "); i >= 0 {
			content = content[:i]
		}
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(s.Text())
}

// firstNumber returns the first capture of re found in inputs, in order.
func firstNumber(re *regexp.Regexp, inputs ...string) int {
	for _, in := range inputs {
		if m := re.FindStringSubmatch(in); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return n
			}
		}
	}
	return 0
}
