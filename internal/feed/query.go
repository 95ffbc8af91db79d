// Package feed holds the incremental image feed: query building, pagination,
// result accumulation and the controller that ties them to user intents.
package feed

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// MinLiveQueryLength is the shortest search text sent while typing.
const MinLiveQueryLength = 3

// Rule selects how search text is admitted into a query.
type Rule int

const (
	// RuleLive admits text of at least MinLiveQueryLength characters.
	RuleLive Rule = iota
	// RuleExplicit admits any non-empty text.
	RuleExplicit
)

// FilterKeys lists the filter dimensions in display order.
var FilterKeys = []string{"order", "orientation", "type", "colors"}

// reservedKeys are owned by the query itself or the provider and are never
// taken from a FilterSet.
var reservedKeys = map[string]bool{
	"page":     true,
	"q":        true,
	"category": true,
	"key":      true,
	"per_page": true,
}

// FilterSet maps a filter dimension to its single selected value.
type FilterSet map[string]string

// Clone returns an independent copy; nil stays nil.
func (f FilterSet) Clone() FilterSet {
	if f == nil {
		return nil
	}
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Without returns a copy of f lacking key.
func (f FilterSet) Without(key string) FilterSet {
	out := f.Clone()
	delete(out, key)
	return out
}

// Keys returns the set keys, known dimensions first in display order.
func (f FilterSet) Keys() []string {
	keys := make([]string, 0, len(f))
	known := make(map[string]bool, len(FilterKeys))
	for _, k := range FilterKeys {
		known[k] = true
		if _, ok := f[k]; ok {
			keys = append(keys, k)
		}
	}
	var rest []string
	for k := range f {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// Query describes one page request.
type Query struct {
	Page     int
	Q        string
	Category string
	Filters  FilterSet
}

// Build assembles the query for a fetch. It is pure; the result owns a copy
// of filters.
func Build(page int, search, category string, filters FilterSet, rule Rule) Query {
	if page < 1 {
		page = 1
	}
	q := Query{
		Page:     page,
		Category: category,
		Filters:  filters.Clone(),
	}
	if admitSearch(search, rule) {
		q.Q = search
	}
	return q
}

func admitSearch(search string, rule Rule) bool {
	if search == "" {
		return false
	}
	if rule == RuleLive {
		return len([]rune(search)) >= MinLiveQueryLength
	}
	return true
}

// Values encodes the query as provider parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	for k, val := range q.Filters {
		if reservedKeys[k] || val == "" {
			continue
		}
		v.Set(k, val)
	}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v
}

func (q Query) String() string {
	parts := []string{fmt.Sprintf("page=%d", q.Page)}
	if q.Q != "" {
		parts = append(parts, fmt.Sprintf("q=%q", q.Q))
	}
	if q.Category != "" {
		parts = append(parts, "category="+q.Category)
	}
	for _, k := range q.Filters.Keys() {
		parts = append(parts, k+"="+q.Filters[k])
	}
	return strings.Join(parts, " ")
}
