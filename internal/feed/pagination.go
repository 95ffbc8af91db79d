package feed

// Tracker owns the page number and the near-bottom guard.
type Tracker struct {
	page       int
	endReached bool
}

func NewTracker() *Tracker {
	return &Tracker{page: 1}
}

func (t *Tracker) Page() int {
	return t.page
}

func (t *Tracker) EndReached() bool {
	return t.endReached
}

// Reset starts pagination over for a new query.
func (t *Tracker) Reset() {
	t.page = 1
	t.endReached = false
}

// NearBottom allows one unit of slack for rounding.
func NearBottom(offset, contentHeight, viewportHeight int) bool {
	return offset >= (contentHeight-viewportHeight)-1
}

// Scroll records a scroll position. It advances the page and returns true
// only on the first near-bottom report since the view last left the bottom.
func (t *Tracker) Scroll(offset, contentHeight, viewportHeight int) bool {
	if !NearBottom(offset, contentHeight, viewportHeight) {
		t.endReached = false
		return false
	}
	if t.endReached {
		return false
	}
	t.page++
	t.endReached = true
	return true
}

// Rewind undoes the last advance. The guard stays set, so the page is
// requested again only after the view leaves the bottom and returns.
func (t *Tracker) Rewind() {
	if t.page > 1 {
		t.page--
	}
}
