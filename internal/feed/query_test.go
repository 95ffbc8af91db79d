package feed

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	filters := FilterSet{"orientation": "horizontal"}

	tests := []struct {
		name   string
		page   int
		search string
		cat    string
		f      FilterSet
		rule   Rule
		want   url.Values
	}{
		{
			name: "page only",
			page: 1,
			want: url.Values{"page": {"1"}},
		},
		{
			name: "page clamped",
			page: 0,
			want: url.Values{"page": {"1"}},
		},
		{
			name:   "live search admitted",
			page:   1,
			search: "cat",
			rule:   RuleLive,
			want:   url.Values{"page": {"1"}, "q": {"cat"}},
		},
		{
			name:   "live search too short",
			page:   1,
			search: "ca",
			rule:   RuleLive,
			want:   url.Values{"page": {"1"}},
		},
		{
			name:   "explicit search any length",
			page:   2,
			search: "c",
			rule:   RuleExplicit,
			want:   url.Values{"page": {"2"}, "q": {"c"}},
		},
		{
			name: "category and filters coexist",
			page: 1,
			cat:  "nature",
			f:    filters,
			rule: RuleExplicit,
			want: url.Values{"page": {"1"}, "category": {"nature"}, "orientation": {"horizontal"}},
		},
		{
			name: "reserved filter keys ignored",
			page: 3,
			f:    FilterSet{"page": "9", "q": "x", "key": "secret", "colors": "red"},
			rule: RuleExplicit,
			want: url.Values{"page": {"3"}, "colors": {"red"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Build(tt.page, tt.search, tt.cat, tt.f, tt.rule)
			assert.Equal(t, tt.want, q.Values())
		})
	}
}

func TestBuild_CopiesFilters(t *testing.T) {
	filters := FilterSet{"type": "photo"}
	q := Build(1, "", "", filters, RuleExplicit)

	filters["type"] = "vector"
	filters["colors"] = "red"

	assert.Equal(t, FilterSet{"type": "photo"}, q.Filters)
}

func TestFilterSet(t *testing.T) {
	f := FilterSet{"colors": "red", "zzz": "1", "order": "latest", "aaa": "2"}

	assert.Equal(t, []string{"order", "colors", "aaa", "zzz"}, f.Keys())
	assert.Equal(t, FilterSet{"colors": "red", "zzz": "1", "aaa": "2"}, f.Without("order"))
	assert.Len(t, f, 4, "Without must not mutate")

	assert.Equal(t, f, f.Clone())
	assert.Nil(t, FilterSet(nil).Clone())
}

func TestQuery_String(t *testing.T) {
	q := Build(2, "red car", "transportation", FilterSet{"type": "photo", "order": "popular"}, RuleExplicit)
	assert.Equal(t, `page=2 q="red car" category=transportation order=popular type=photo`, q.String())
}
