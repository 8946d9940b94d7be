// Package miruro detects episodes on miruro.tv, whose watch URLs carry the
// AniList id and episode number as query parameters.
package miruro

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/sites"
)

var episodeSuffix = regexp.MustCompile(` Episode \d+$`)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (*Adapter) Name() string { return "miruro" }

func (*Adapter) Domains() []string { return []string{"miruro.tv"} }

func (*Adapter) Detect(_ context.Context, p *sites.Page) *anime.Observation {
	q := p.URL.Query()
	id := strings.TrimSpace(q.Get("id"))
	ep, err := strconv.Atoi(strings.TrimSpace(q.Get("ep")))
	if id == "" || err != nil || ep <= 0 {
		return &anime.Observation{}
	}

	title := strings.TrimSpace(episodeSuffix.ReplaceAllString(p.Title, ""))
	return &anime.Observation{
		RawTitle:   title,
		Episode:    ep,
		ExternalID: id,
	}
}
