package tui

import "github.com/pders01/pixwall/internal/feed"

type View int

const (
	ViewGrid View = iota
	ViewFilters
	ViewViewer
)

// focus selects which part of the grid view receives keys.
type focus int

const (
	focusGrid focus = iota
	focusSearch
	focusCategories
)

type feedResultMsg struct {
	result feed.Result
}

type searchDebounceFireMsg struct {
	ticket feed.Ticket
}

type modalCloseMsg struct {
	seq int
}

type detailsRenderedMsg struct {
	id      int
	content string
}

type downloadDoneMsg struct {
	id   int
	path string
	open bool
	err  error
}

type shareDoneMsg struct {
	link string
	err  error
}

type openDoneMsg struct {
	err error
}
