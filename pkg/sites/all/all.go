// Package all wires every supported site into a registry.
package all

import (
	"time"

	"github.com/animesync/animesync/pkg/sites"
	"github.com/animesync/animesync/pkg/sites/animepahe"
	"github.com/animesync/animesync/pkg/sites/aniwatch"
	"github.com/animesync/animesync/pkg/sites/crunchyroll"
	"github.com/animesync/animesync/pkg/sites/miruro"
	"github.com/hashicorp/go-retryablehttp"
)

// Registry returns a registry with all adapters. client and fetchTimeout are
// used by adapters that call back into the site.
func Registry(client *retryablehttp.Client, fetchTimeout time.Duration) *sites.Registry {
	return sites.NewRegistry(
		aniwatch.New(client, fetchTimeout),
		animepahe.New(),
		miruro.New(),
		crunchyroll.New(),
	)
}
