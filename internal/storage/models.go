package storage

import (
	"time"
)

// CachedResponse is a provider search body kept for offline reuse. Body is
// brotli compressed.
type CachedResponse struct {
	Key       string    `json:"key"`
	Body      []byte    `json:"body"`
	RawSize   int       `json:"raw_size"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *CachedResponse) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Download records an image saved to disk.
type Download struct {
	ID           uint64    `json:"id"`
	ImageID      int       `json:"image_id"`
	URL          string    `json:"url"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	Tags         string    `json:"tags"`
	DownloadedAt time.Time `json:"downloaded_at"`
}
