package provider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kebairia/repobak/internal/backup"
)

var initializers = map[string]func(opts ...Option) (backup.Provider, error){
	SiteGitHub: func(opts ...Option) (backup.Provider, error) {
		return NewGitHub(opts...)
	},
}

// Sites lists the supported site names.
func Sites() []string {
	sites := make([]string, 0, len(initializers))
	for site := range initializers {
		sites = append(sites, site)
	}
	sort.Strings(sites)
	return sites
}

// Supported reports whether site has a registered provider.
func Supported(site string) bool {
	_, ok := initializers[strings.ToLower(site)]
	return ok
}

// New returns the provider registered for site (case-insensitive).
func New(site string, opts ...Option) (backup.Provider, error) {
	initializer, ok := initializers[strings.ToLower(site)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedSite, site, strings.Join(Sites(), ", "))
	}
	p, err := initializer(opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize %s provider: %w", site, err)
	}
	return p, nil
}
