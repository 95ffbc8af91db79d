// Package provider talks to the stock-photo search API that backs the feed.
package provider

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

var (
	ErrNotFound      = errors.New("image not found")
	ErrRateLimited   = errors.New("rate limited by provider")
	ErrMissingAPIKey = errors.New("provider API key is not configured")
)

// ImageRecord is one hit as returned by the provider. Records are never
// mutated after decoding; ID is the identity.
type ImageRecord struct {
	ID              int    `json:"id"`
	PageURL         string `json:"pageURL"`
	Type            string `json:"type"`
	Tags            string `json:"tags"`
	PreviewURL      string `json:"previewURL"`
	PreviewWidth    int    `json:"previewWidth"`
	PreviewHeight   int    `json:"previewHeight"`
	WebformatURL    string `json:"webformatURL"`
	WebformatWidth  int    `json:"webformatWidth"`
	WebformatHeight int    `json:"webformatHeight"`
	LargeImageURL   string `json:"largeImageURL"`
	ImageWidth      int    `json:"imageWidth"`
	ImageHeight     int    `json:"imageHeight"`
	Views           int    `json:"views"`
	Downloads       int    `json:"downloads"`
	Likes           int    `json:"likes"`
	User            string `json:"user"`
	UserID          int    `json:"user_id"`
	UserImageURL    string `json:"userImageURL"`
}

// AspectRatio is width/height of the full image, or 1 when unknown.
func (r ImageRecord) AspectRatio() float64 {
	if r.ImageWidth <= 0 || r.ImageHeight <= 0 {
		return 1
	}
	return float64(r.ImageWidth) / float64(r.ImageHeight)
}

// TagList splits the comma separated tag string.
func (r ImageRecord) TagList() []string {
	var tags []string
	for _, t := range strings.Split(r.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Response mirrors the {success, data: {hits}} envelope the feed consumes.
type Response struct {
	Success bool
	Data    *ResponseData
}

type ResponseData struct {
	Total     int           `json:"total"`
	TotalHits int           `json:"totalHits"`
	Hits      []ImageRecord `json:"hits"`
}

// Records returns the hits when the response has the expected shape.
func (r *Response) Records() ([]ImageRecord, bool) {
	if r == nil || !r.Success || r.Data == nil || r.Data.Hits == nil {
		return nil, false
	}
	return r.Data.Hits, true
}

// Provider searches images. params carries page, q, category and any
// filter keys; the implementation adds credentials and paging size.
type Provider interface {
	Name() string
	Search(ctx context.Context, params url.Values) (*Response, error)
	Get(ctx context.Context, id int) (*ImageRecord, error)
}
