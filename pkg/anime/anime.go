package anime

import "strings"

// Observation is what a site adapter scraped from a single page.
type Observation struct {
	Site       string
	RawTitle   string
	Title      string
	Season     int
	Episode    int
	ExternalID string // AniList media id asserted by the page, if any
}

// Insufficient reports whether the observation lacks the data needed to reconcile.
func (o *Observation) Insufficient() bool {
	if o == nil || o.Episode <= 0 {
		return true
	}
	return o.Title == "" && o.ExternalID == ""
}

type Title struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

// Media is a catalog search candidate.
type Media struct {
	ID       int
	Title    Title
	Status   string
	Episodes int // 0 when the catalog doesn't know yet
}

// DisplayTitle prefers the English title over the romanized one.
func (m Media) DisplayTitle() string {
	for _, t := range []string{m.Title.English, m.Title.Romaji, m.Title.Native} {
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	}
	return ""
}

// Match is the catalog entry chosen for an observation.
type Match struct {
	ID           int
	DisplayTitle string
	Episodes     int
	Direct       bool
}

// Viewer is the account that owns an access token.
type Viewer struct {
	ID   int
	Name string
}

// SaveResult is the catalog's answer to a progress mutation.
type SaveResult struct {
	ID       int
	Progress int
	Status   string
}
