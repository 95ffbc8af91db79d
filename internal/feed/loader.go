package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pders01/pixwall/internal/debuglog"
	"github.com/pders01/pixwall/internal/provider"
)

const defaultFetchTimeout = 20 * time.Second

// Result carries a completed fetch back to Controller.Resolve.
type Result struct {
	Request  Request
	Response *provider.Response
	Err      error
	Elapsed  time.Duration
}

// Loader performs controller requests against a provider.
type Loader struct {
	provider provider.Provider
	timeout  time.Duration
	log      *debuglog.FieldLogger
}

func NewLoader(p provider.Provider, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Loader{
		provider: p,
		timeout:  timeout,
		log:      debuglog.WithFields(map[string]interface{}{"component": "loader", "provider": p.Name()}),
	}
}

// Load runs req with the per-fetch timeout. It never panics on provider
// errors; they travel in the Result.
func (l *Loader) Load(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	resp, err := l.provider.Search(ctx, req.Query.Values())
	elapsed := time.Since(start)

	if err != nil {
		l.log.Warnf("gen=%d %s failed after %s: %v", req.Generation, req.Query, elapsed, err)
	} else {
		n := 0
		if hits, ok := resp.Records(); ok {
			n = len(hits)
		}
		l.log.Debugf("gen=%d %s mode=%s hits=%d in %s", req.Generation, req.Query, req.Mode, n, elapsed)
	}

	return Result{Request: req, Response: resp, Err: err, Elapsed: elapsed}
}

// maxConcurrentWarm bounds parallel requests when warming the cache.
const maxConcurrentWarm = 4

// Warm fetches each query once with a small worker pool, so a caching
// provider has them ready. It returns the number of successful fetches.
func (l *Loader) Warm(ctx context.Context, queries []Query) (int, error) {
	if len(queries) == 0 {
		return 0, nil
	}

	queryChan := make(chan Query, len(queries))
	errChan := make(chan error, len(queries))

	var wg sync.WaitGroup
	for i := 0; i < maxConcurrentWarm && i < len(queries); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range queryChan {
				if ctx.Err() != nil {
					errChan <- ctx.Err()
					continue
				}
				res := l.Load(ctx, Request{Query: q})
				if res.Err != nil {
					errChan <- fmt.Errorf("%s: %w", q, res.Err)
				}
			}
		}()
	}

	for _, q := range queries {
		queryChan <- q
	}
	close(queryChan)

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	ok := len(queries) - len(errs)
	if len(errs) > 0 {
		return ok, fmt.Errorf("warm errors: %v", errs)
	}
	return ok, nil
}
