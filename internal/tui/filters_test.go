package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pders01/pixwall/internal/catalog"
	"github.com/pders01/pixwall/internal/feed"
)

func TestFilterModalToggle(t *testing.T) {
	m := newFilterModal(catalog.Default(), nil)

	assert.Equal(t, filterNone, m.handleKey(" "))
	assert.Equal(t, feed.FilterSet{"order": "popular"}, m.Draft())

	m.handleKey("right")
	m.handleKey(" ")
	assert.Equal(t, feed.FilterSet{"order": "latest"}, m.Draft(), "one value per section")

	m.handleKey(" ")
	assert.Empty(t, m.Draft(), "toggling the selected value clears it")
}

func TestFilterModalStartsFromCurrent(t *testing.T) {
	current := feed.FilterSet{"type": "vector"}
	m := newFilterModal(catalog.Default(), current)

	m.handleKey("down")
	m.handleKey("down")
	assert.Equal(t, 2, m.section)
	assert.Equal(t, 2, m.option, "cursor starts on the selected value")

	m.handleKey(" ")
	assert.Empty(t, m.Draft())
	assert.Equal(t, feed.FilterSet{"type": "vector"}, current, "draft is a copy")
}

func TestFilterModalCursorWraps(t *testing.T) {
	m := newFilterModal(catalog.Default(), nil)

	m.handleKey("up")
	assert.Equal(t, len(catalog.Default().Filters)-1, m.section)
	m.handleKey("left")
	assert.Equal(t, len(m.sections[m.section].Options)-1, m.option)
}

func TestFilterModalActions(t *testing.T) {
	m := newFilterModal(catalog.Default(), feed.FilterSet{"order": "latest"})

	assert.Equal(t, filterApply, m.handleKey("a"))
	assert.Equal(t, filterClose, m.handleKey("esc"))
	assert.Equal(t, filterReset, m.handleKey("r"))
	assert.Empty(t, m.Draft())
}

func TestFilterModalView(t *testing.T) {
	m := newFilterModal(catalog.Default(), feed.FilterSet{"colors": "red"})
	out := m.View(90)

	assert.Contains(t, out, "Filters")
	assert.Contains(t, out, "Orientation")
	assert.Contains(t, out, "Red")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "1 selected")
}
