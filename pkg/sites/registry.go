package sites

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/animesync/animesync/internal/utils"
	"github.com/animesync/animesync/pkg/anime"
	"github.com/animesync/animesync/pkg/titles"
	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// Registry maps registrable domains to adapters.
type Registry struct {
	adapters []Adapter
	byDomain map[string]Adapter
}

// NewRegistry panics if two adapters claim the same domain.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{byDomain: make(map[string]Adapter)}
	for _, a := range adapters {
		for _, d := range a.Domains() {
			d = strings.ToLower(d)
			if prev, ok := r.byDomain[d]; ok {
				panic(fmt.Sprintf("sites: domain %s claimed by %s and %s", d, prev.Name(), a.Name()))
			}
			r.byDomain[d] = a
		}
		r.adapters = append(r.adapters, a)
	}
	return r
}

// Adapters returns the registered adapters in registration order.
func (r *Registry) Adapters() []Adapter {
	return append([]Adapter(nil), r.adapters...)
}

// Lookup finds the adapter serving host, which may carry subdomains or a port.
func (r *Registry) Lookup(host string) (Adapter, bool) {
	domain, ok := RegistrableDomain(host)
	if !ok {
		return nil, false
	}
	a, ok := r.byDomain[domain]
	return a, ok
}

// Supports reports whether rawURL belongs to a known site.
func (r *Registry) Supports(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	_, ok := r.Lookup(u.Host)
	return ok
}

// Detect runs the page's adapter. It returns anime.ErrUnsupportedSite when no
// adapter serves the page, and a nil observation when the adapter found
// nothing or blew up.
func (r *Registry) Detect(ctx context.Context, p *Page) (obs *anime.Observation, err error) {
	a, ok := r.Lookup(p.URL.Host)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p.URL.Host, anime.ErrUnsupportedSite)
	}

	defer func() {
		if rec := recover(); rec != nil {
			utils.Log.Warnf("%s adapter panicked on %s: %v", a.Name(), p.URL, rec)
			obs, err = nil, nil
		}
	}()

	obs = a.Detect(ctx, p)
	if obs == nil {
		utils.Log.Debugf("%s: nothing detected on %s", a.Name(), p.URL)
		return nil, nil
	}

	obs.Site = a.Name()
	if obs.Season < 1 {
		obs.Season = 1
	}
	if obs.Episode < 0 {
		obs.Episode = 0
	}
	if obs.Title == "" {
		obs.Title = titles.Normalize(obs.RawTitle)
	}
	utils.Log.Debugf("%s: title=%q season=%d episode=%d raw=%q id=%q",
		obs.Site, obs.Title, obs.Season, obs.Episode, obs.RawTitle, obs.ExternalID)
	return obs, nil
}

// RegistrableDomain returns the eTLD+1 of host, lowercased.
// e.g. "www.sub.example.co.uk:443" -> "example.co.uk", true
func RegistrableDomain(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if !strings.Contains(host, ".") {
		return "", false
	}

	domain, err := publicsuffix.Domain(host)
	if err != nil {
		return "", false
	}
	return domain, true
}
