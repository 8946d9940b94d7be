// Package aniwatch detects episodes on aniwatchtv.
//
// Watch pages look like /watch/<slug>-<animeId>?ep=<episodeId>. The episode
// id is site-internal, so the episode number comes from the site's episode
// list endpoint.
package aniwatch

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/animesync/animesync/internal/utils"
	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/episodes"
	"github.com/animesync/animesync/pkg/sites"
	"github.com/animesync/animesync/pkg/whttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

const DefaultTimeout = 10 * time.Second

var (
	watchPath = regexp.MustCompile(`/watch/[^/]+-(\d+)/?$`)
	digits    = regexp.MustCompile(`(\d+)`)
)

type Adapter struct {
	client  *retryablehttp.Client
	timeout time.Duration

	// Origin replaces the page origin for episode list requests when set.
	Origin string
}

// New returns an adapter fetching episode lists with client, or with the
// shared client when nil. Each fetch is bounded by timeout.
func New(client *retryablehttp.Client, timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{client: client, timeout: timeout}
}

func (*Adapter) Name() string { return "aniwatch" }

func (*Adapter) Domains() []string { return []string{"aniwatchtv.to", "aniwatchtv.com"} }

func (a *Adapter) Detect(ctx context.Context, p *sites.Page) *anime.Observation {
	m := watchPath.FindStringSubmatch(p.URL.Path)
	episodeID := p.URL.Query().Get("ep")
	if m == nil || episodeID == "" {
		utils.Log.Debugf("aniwatch: URL format not recognized: %s", p.URL)
		return nil
	}
	animeID := m[1]

	obs := &anime.Observation{}
	if sync := strings.TrimSpace(p.Doc.Find("#syncData").First().Text()); gjson.Valid(sync) {
		obs.RawTitle = strings.TrimSpace(html.UnescapeString(gjson.Get(sync, "name").String()))
		if id := gjson.Get(sync, "anilist_id").String(); id != "" && id != "0" {
			obs.ExternalID = id
		}
	}

	origin := a.Origin
	if origin == "" {
		origin = p.Origin()
	}
	if list, ok := a.fetchEpisodeMap(ctx, origin, animeID); ok {
		if n, ok := list.Resolve(episodeID); ok {
			obs.Episode = n
		}
	}

	if obs.RawTitle == "" {
		obs.RawTitle = strings.TrimSpace(p.Doc.Find(".film-name h2, .film-name").First().Text())
	}
	if obs.Episode == 0 {
		if dm := digits.FindStringSubmatch(p.Doc.Find(".ep-item.active").First().Text()); dm != nil {
			obs.Episode, _ = strconv.Atoi(dm[1])
		}
	}
	return obs
}

// fetchEpisodeMap loads the episode list of animeID. ok is false on any
// failure; the caller then falls back to the page markup.
func (a *Adapter) fetchEpisodeMap(ctx context.Context, origin, animeID string) (episodes.IndexMap, bool) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := whttp.SendHTTPRequest(ctx, &whttp.WHTTPReq{
		Method: "GET",
		URL:    origin + "/ajax/v2/episode/list/" + animeID,
		Headers: []whttp.WHTTPHeader{
			{Name: "Accept", Value: "application/json"},
			{Name: "X-Requested-With", Value: "XMLHttpRequest"},
		},
	}, a.client)
	if err != nil {
		utils.Log.Debugf("aniwatch: episode list for %s: %v", animeID, err)
		return episodes.IndexMap{}, false
	}
	if res.StatusCode != 200 || !gjson.Valid(res.BodyString) {
		utils.Log.Debugf("aniwatch: episode list for %s: status %d", animeID, res.StatusCode)
		return episodes.IndexMap{}, false
	}

	fragment := gjson.Get(res.BodyString, "html").String()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return episodes.IndexMap{}, false
	}

	var entries []episodes.Entry
	doc.Find(".ssl-item.ep-item").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-id")
		n, err := strconv.Atoi(s.AttrOr("data-number", ""))
		if id == "" || err != nil {
			return
		}
		entries = append(entries, episodes.Entry{NativeID: id, Displayed: n})
	})
	if len(entries) == 0 {
		return episodes.IndexMap{}, false
	}
	return episodes.BuildMap(entries), true
}
