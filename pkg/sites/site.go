// Package sites turns streaming site pages into observations.
//
// Each supported site has an Adapter in a subpackage. A Registry picks the
// adapter for a page by its registrable domain and post-processes whatever
// the adapter scraped.
package sites

import (
	"context"

	"github.com/animesync/animesync/pkg/anime"
)

// Adapter extracts an observation from one site's pages.
type Adapter interface {
	Name() string
	// Domains lists the registrable domains the adapter serves.
	Domains() []string
	// Detect returns nil, or an observation with Episode 0, when the page
	// can't be understood. It must not fail in any other way.
	Detect(ctx context.Context, p *Page) *anime.Observation
}
