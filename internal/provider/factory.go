package provider

import (
	"fmt"
	"strings"

	"github.com/pders01/pixwall/internal/config"
)

// New builds the configured provider. A nil cache or zero TTL disables
// response caching.
func New(cfg config.ProviderConfig, cache ResponseCache) (Provider, error) {
	var p Provider
	switch strings.ToLower(cfg.Name) {
	case "", "pixabay":
		px, err := NewPixabay(cfg)
		if err != nil {
			return nil, err
		}
		p = px
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}

	if cache != nil && cfg.CacheTTL > 0 {
		return NewCachedProvider(p, cache, cfg.CacheTTL), nil
	}
	return p, nil
}
