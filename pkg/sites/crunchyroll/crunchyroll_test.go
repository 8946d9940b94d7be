package crunchyroll

import (
	"context"
	"strings"
	"testing"

	"github.com/animesync/animesync/pkg/sites"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		body    string
		title   string
		season  int
		episode int
	}{
		{
			name:    "show title link and numeric url",
			url:     "https://www.crunchyroll.com/series/GY8VEQ95Y/spy-x-family/12",
			body:    `<html><head><title>SPY x FAMILY Season 2</title></head><body><a class="show-title-link"><h4>SPY x FAMILY</h4></a></body></html>`,
			title:   "SPY x FAMILY",
			season:  2,
			episode: 12,
		},
		{
			name:    "og title and episode heading",
			url:     "https://www.crunchyroll.com/watch/GEVUZ5X0K/operation-strix",
			body:    `<html><head><title>Watch SPY x FAMILY</title><meta property="og:title" content="SPY x FAMILY - Operation Strix"></head><body><h1 class="episode-title">Episode 1 - Operation Strix</h1><span class="season-name">Season 3</span></body></html>`,
			title:   "SPY x FAMILY",
			season:  3,
			episode: 1,
		},
		{
			name:  "data-t show title without episode",
			url:   "https://www.crunchyroll.com/series/GY8VEQ95Y",
			body:  `<html><head><title>x</title></head><body><div data-t="show_title">Dandadan</div></body></html>`,
			title: "Dandadan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := sites.NewPage(tt.url, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			obs := New().Detect(context.Background(), p)
			if obs.RawTitle != tt.title || obs.Season != tt.season || obs.Episode != tt.episode {
				t.Errorf("got %+v", obs)
			}
		})
	}
}
