package feed

import (
	"github.com/pders01/pixwall/internal/debuglog"
	"github.com/pders01/pixwall/internal/provider"
)

// Request is a fetch the caller should perform and hand back to Resolve.
type Request struct {
	Query      Query
	Mode       Mode
	Generation uint64
}

// Outcome reports what Resolve did with a result.
type Outcome struct {
	// Stale is set when a newer action superseded the request.
	Stale bool
	// Applied is set when the feed changed.
	Applied bool
	// Empty is set for a well-formed response without hits.
	Empty bool
	// Added counts records merged into the feed.
	Added int
	Err   error
}

// Controller is the feed state machine. It is not safe for concurrent use:
// one goroutine owns it and performs the fetches it asks for.
type Controller struct {
	search   string
	category string
	filters  FilterSet

	tracker *Tracker
	acc     *Accumulator

	// generation increments on every discrete action.
	generation uint64
	loading    bool
	landed     bool
	exhausted  bool
	clearInput bool

	log *debuglog.FieldLogger
}

func NewController() *Controller {
	return &Controller{
		tracker: NewTracker(),
		acc:     NewAccumulator(),
		log:     debuglog.WithFields(map[string]interface{}{"component": "feed"}),
	}
}

// Init requests the first page with no search, category or filters.
func (c *Controller) Init() Request {
	return c.restart(Build(1, "", "", nil, RuleExplicit))
}

// SearchChanged handles debounced search text. Text shorter than
// MinLiveQueryLength is stored but not searched; clearing the text resets
// the feed.
func (c *Controller) SearchChanged(text string) (Request, bool) {
	c.search = text
	switch {
	case text == "":
		c.category = ""
		c.clearInput = true
		return c.restart(Build(1, "", "", c.filters, RuleLive)), true
	case len([]rune(text)) >= MinLiveQueryLength:
		c.category = ""
		return c.restart(Build(1, text, "", c.filters, RuleLive)), true
	default:
		return Request{}, false
	}
}

// SelectCategory selects name, or deselects it when already active. The
// search text is cleared first.
func (c *Controller) SelectCategory(name string) Request {
	if name == c.category {
		name = ""
	}
	c.clearSearch()
	c.category = name
	return c.restart(Build(1, "", name, c.filters, RuleExplicit))
}

// ApplyFilters replaces the filter set. Applying an empty set when nothing
// was filtered does not fetch.
func (c *Controller) ApplyFilters(filters FilterSet) (Request, bool) {
	if len(filters) == 0 && len(c.filters) == 0 {
		return Request{}, false
	}
	c.filters = filters.Clone()
	return c.restart(c.build(1)), true
}

// ResetFilters drops every filter. Without active filters it does nothing.
func (c *Controller) ResetFilters() (Request, bool) {
	if len(c.filters) == 0 {
		return Request{}, false
	}
	c.filters = nil
	return c.restart(c.build(1)), true
}

// ClearFilter removes one filter key and keeps the rest.
func (c *Controller) ClearFilter(key string) (Request, bool) {
	if _, ok := c.filters[key]; !ok {
		return Request{}, false
	}
	c.filters = c.filters.Without(key)
	if len(c.filters) == 0 {
		c.filters = nil
	}
	return c.restart(c.build(1)), true
}

// Refresh re-runs the current query from page 1.
func (c *Controller) Refresh() Request {
	return c.restart(c.build(1))
}

// Scrolled reports the viewport position. It returns a load-more request the
// first time the view reaches the bottom. Reports that arrive while a fetch
// is outstanding are not consumed.
func (c *Controller) Scrolled(offset, contentHeight, viewportHeight int) (Request, bool) {
	if !NearBottom(offset, contentHeight, viewportHeight) {
		c.tracker.Scroll(offset, contentHeight, viewportHeight)
		return Request{}, false
	}
	if c.loading || c.exhausted {
		return Request{}, false
	}
	if !c.tracker.Scroll(offset, contentHeight, viewportHeight) {
		return Request{}, false
	}

	if !c.landed {
		// The first page never arrived; ask for it again.
		c.tracker.Rewind()
		c.loading = true
		return Request{Query: c.build(1), Mode: ModeReplace, Generation: c.generation}, true
	}

	c.loading = true
	req := Request{Query: c.build(c.tracker.Page()), Mode: ModeAppend, Generation: c.generation}
	c.log.Debugf("load more %s", req.Query)
	return req, true
}

// Resolve applies the result of req. Results from superseded generations
// are dropped.
func (c *Controller) Resolve(req Request, resp *provider.Response, err error) Outcome {
	if req.Generation != c.generation {
		c.log.Debugf("discarding stale result gen=%d current=%d", req.Generation, c.generation)
		return Outcome{Stale: true, Err: err}
	}
	c.loading = false

	if err != nil {
		c.log.Warnf("fetch failed (%s, %s): %v", req.Query, req.Mode, err)
		if req.Mode == ModeAppend {
			c.tracker.Rewind()
		}
		return Outcome{Err: err}
	}

	// A transport error may succeed on retry, so the page is rewound above.
	// A bad shape came back from the server as an answer for this page and
	// would repeat, so the page stays advanced and the next crossing moves on.
	hits, ok := resp.Records()
	if !ok {
		c.log.Warnf("unexpected response shape for %s", req.Query)
		return Outcome{}
	}

	if len(hits) == 0 {
		c.exhausted = true
		return Outcome{Empty: true}
	}

	c.acc.Apply(hits, req.Mode)
	c.landed = true
	if total := resp.Data.TotalHits; total > 0 && c.acc.Len() >= total {
		c.exhausted = true
	}
	return Outcome{Applied: true, Added: len(hits)}
}

// restart begins a new generation for q, abandoning anything in flight.
func (c *Controller) restart(q Query) Request {
	c.tracker.Reset()
	c.generation++
	c.loading = true
	c.landed = false
	c.exhausted = false
	c.log.Debugf("gen=%d %s", c.generation, q)
	return Request{Query: q, Mode: ModeReplace, Generation: c.generation}
}

func (c *Controller) build(page int) Query {
	return Build(page, c.search, c.category, c.filters, RuleExplicit)
}

func (c *Controller) clearSearch() {
	if c.search != "" {
		c.clearInput = true
	}
	c.search = ""
}

// TakeClearInput reports, once, that the search widget should be emptied.
func (c *Controller) TakeClearInput() bool {
	v := c.clearInput
	c.clearInput = false
	return v
}

func (c *Controller) Records() []provider.ImageRecord { return c.acc.Records() }
func (c *Controller) Version() uint64                 { return c.acc.Version() }
func (c *Controller) Len() int                        { return c.acc.Len() }
func (c *Controller) Search() string                  { return c.search }
func (c *Controller) Category() string                { return c.category }
func (c *Controller) Filters() FilterSet              { return c.filters.Clone() }
func (c *Controller) Page() int                       { return c.tracker.Page() }
func (c *Controller) EndReached() bool                { return c.tracker.EndReached() }
func (c *Controller) Generation() uint64              { return c.generation }
func (c *Controller) Loading() bool                   { return c.loading }
func (c *Controller) Exhausted() bool                 { return c.exhausted }
