package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/pders01/pixwall/internal/debuglog"
)

// ResponseCache stores raw search bodies. storage.Store satisfies it.
type ResponseCache interface {
	GetResponse(key string) ([]byte, bool, error)
	PutResponse(key string, body []byte, ttl time.Duration) error
}

// Keyer is implemented by providers whose requests carry settings beyond
// the feed parameters. Its key covers everything that shapes the response.
type Keyer interface {
	CacheKey(params url.Values) string
}

// CachedProvider serves repeated searches from a ResponseCache. Only
// successful responses are stored.
type CachedProvider struct {
	next  Provider
	cache ResponseCache
	ttl   time.Duration
	log   *debuglog.FieldLogger
}

func NewCachedProvider(next Provider, cache ResponseCache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   debuglog.WithFields(map[string]interface{}{"component": "provider-cache"}),
	}
}

func (c *CachedProvider) Name() string {
	return c.next.Name()
}

func (c *CachedProvider) Search(ctx context.Context, params url.Values) (*Response, error) {
	key := c.key(params)

	body, ok, err := c.cache.GetResponse(key)
	if err != nil {
		c.log.Warnf("cache read failed: %v", err)
	} else if ok {
		if resp, decErr := DecodeResponse(body); decErr == nil && resp.Success {
			c.log.Debugf("cache hit %s", key[:12])
			return resp, nil
		}
	}

	resp, err := c.next.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	if resp.Success && resp.Data != nil {
		if raw, mErr := json.Marshal(resp.Data); mErr == nil {
			if pErr := c.cache.PutResponse(key, raw, c.ttl); pErr != nil {
				c.log.Warnf("cache write failed: %v", pErr)
			}
		}
	}
	return resp, nil
}

func (c *CachedProvider) Get(ctx context.Context, id int) (*ImageRecord, error) {
	resp, err := c.Search(ctx, url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return nil, err
	}
	hits, ok := resp.Records()
	if !ok || len(hits) == 0 {
		return nil, ErrNotFound
	}
	return &hits[0], nil
}

func (c *CachedProvider) key(params url.Values) string {
	if k, ok := c.next.(Keyer); ok {
		return k.CacheKey(params)
	}
	return CacheKey(c.next.Name(), params)
}

// CacheKey is stable for equal parameter sets regardless of insertion order.
func CacheKey(provider string, params url.Values) string {
	sum := sha256.Sum256([]byte(provider + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}
