package feed

import "github.com/pders01/pixwall/internal/provider"

// Mode says how a page of results combines with the feed.
type Mode int

const (
	ModeReplace Mode = iota
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "replace"
}

// Accumulator holds the ordered feed.
type Accumulator struct {
	records []provider.ImageRecord
	version uint64
}

func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply merges records into the feed and reports whether it changed. An
// empty page leaves the feed untouched. Records are not deduplicated.
func (a *Accumulator) Apply(records []provider.ImageRecord, mode Mode) bool {
	if len(records) == 0 {
		return false
	}
	switch mode {
	case ModeAppend:
		next := make([]provider.ImageRecord, 0, len(a.records)+len(records))
		next = append(next, a.records...)
		a.records = append(next, records...)
	default:
		a.records = append([]provider.ImageRecord(nil), records...)
	}
	a.version++
	return true
}

// Records returns the feed. Callers must not modify it; each Apply builds a
// new slice so a returned slice stays valid.
func (a *Accumulator) Records() []provider.ImageRecord {
	return a.records
}

func (a *Accumulator) Len() int {
	return len(a.records)
}

// Version increments on every change.
func (a *Accumulator) Version() uint64 {
	return a.version
}
