package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pders01/pixwall/internal/config"
	"github.com/pders01/pixwall/internal/debuglog"
	"github.com/pders01/pixwall/internal/validation"
)

// maxBodySize caps a single search response.
const maxBodySize = 8 << 20

// paramAliases maps filter keys used by the UI onto Pixabay parameter names.
var paramAliases = map[string]string{
	"type": "image_type",
}

// retryLogger routes retryablehttp's leveled logging into debuglog.
type retryLogger struct {
	log *debuglog.FieldLogger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Errorf("%s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("%s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warnf("%s %v", msg, keysAndValues)
}

// Pixabay is the Provider for the pixabay.com image API.
type Pixabay struct {
	client     *retryablehttp.Client
	baseURL    string
	apiKey     string
	perPage    int
	safeSearch bool
	userAgent  string
	log        *debuglog.FieldLogger
}

func NewPixabay(cfg config.ProviderConfig) (*Pixabay, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base, err := validation.NewPermissiveURLValidator().Validate(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid provider base URL: %w", err)
	}

	logger := debuglog.WithFields(map[string]interface{}{"component": "provider", "provider": "pixabay"})

	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = cfg.HTTPTimeout
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.Logger = &retryLogger{log: logger}
	// Hand the final response back so status codes can be mapped below.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 20
	}

	return &Pixabay{
		client:     client,
		baseURL:    base.String(),
		apiKey:     cfg.APIKey,
		perPage:    perPage,
		safeSearch: cfg.SafeSearch,
		userAgent:  cfg.UserAgent,
		log:        logger,
	}, nil
}

func (p *Pixabay) Name() string {
	return "pixabay"
}

// Search issues one page request. A body that decodes but lacks a hits
// array yields a Response whose Records reports false.
func (p *Pixabay) Search(ctx context.Context, params url.Values) (*Response, error) {
	q := p.encode(params)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}

	p.log.Debugf("GET page=%s q=%q category=%q", q.Get("page"), q.Get("q"), q.Get("category"))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching images: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return DecodeResponse(body)
}

// Get looks up a single image by id.
func (p *Pixabay) Get(ctx context.Context, id int) (*ImageRecord, error) {
	resp, err := p.Search(ctx, url.Values{"id": {strconv.Itoa(id)}})
	if err != nil {
		return nil, err
	}
	hits, ok := resp.Records()
	if !ok || len(hits) == 0 {
		return nil, ErrNotFound
	}
	return &hits[0], nil
}

// CacheKey hashes the query as sent, minus the API key, so page size and
// safe search settings are part of the identity.
func (p *Pixabay) CacheKey(params url.Values) string {
	q := p.encode(params)
	q.Del("key")
	return CacheKey(p.Name(), q)
}

func (p *Pixabay) encode(params url.Values) url.Values {
	q := url.Values{}
	for k, vs := range params {
		if alias, ok := paramAliases[k]; ok {
			k = alias
		}
		for _, v := range vs {
			if v != "" {
				q.Add(k, v)
			}
		}
	}
	q.Set("key", p.apiKey)
	q.Set("per_page", strconv.Itoa(p.perPage))
	q.Set("safesearch", strconv.FormatBool(p.safeSearch))
	return q
}

// DecodeResponse turns a raw body into a Response. Bodies that are not JSON
// objects are errors; objects without hits are unsuccessful responses.
func DecodeResponse(body []byte) (*Response, error) {
	var data ResponseData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if data.Hits == nil {
		return &Response{Success: false}, nil
	}
	return &Response{Success: true, Data: &data}, nil
}
