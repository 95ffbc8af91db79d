package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pixwall/internal/config"
	"github.com/pders01/pixwall/internal/feed"
)

// KeyHandler routes key presses by view and focus.
type KeyHandler struct {
	app *App
	cfg *config.Config
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	return &KeyHandler{app: app, cfg: cfg}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.alert != "" {
		switch key {
		case "enter", "esc", " ", "q":
			a.alert = ""
		}
		return a, nil
	}

	switch a.view {
	case ViewFilters:
		return kh.handleFilterKeys(key)
	case ViewViewer:
		return kh.handleViewerKeys(msg)
	}

	if a.focus == focusSearch {
		return kh.handleSearchInput(msg)
	}
	if a.pendingClear {
		return kh.handleClearChip(key)
	}
	if a.focus == focusCategories {
		if model, cmd, handled := kh.handleCategoryKeys(key); handled {
			return model, cmd
		}
	}
	return kh.handleGridKeys(msg)
}

func (kh *KeyHandler) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "esc", "tab", "down":
		a.searchInput.Blur()
		a.focus = focusGrid
		return a, nil
	case "enter":
		a.searchInput.Blur()
		a.focus = focusGrid
		text := a.searchInput.Value()
		if text == a.ctrl.Search() && !a.debouncer.Pending() {
			return a, nil
		}
		a.debouncer.Cancel()
		return a, a.searchChanged(text)
	}

	before := a.searchInput.Value()
	input, cmd := a.searchInput.Update(msg)
	a.searchInput = input
	if a.searchInput.Value() == before {
		return a, cmd
	}

	ticket := a.debouncer.Schedule(a.searchInput.Value())
	fire := tea.Tick(a.debouncer.Delay(), func(time.Time) tea.Msg {
		return searchDebounceFireMsg{ticket: ticket}
	})
	return a, tea.Batch(cmd, fire)
}

func (kh *KeyHandler) handleCategoryKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app
	n := len(a.catalog.Categories)
	if n == 0 {
		a.focus = focusGrid
		return a, nil, false
	}

	switch key {
	case "left", "h", "[":
		a.catCursor = (a.catCursor - 1 + n) % n
		return a, nil, true
	case "right", "l", "]":
		a.catCursor = (a.catCursor + 1) % n
		return a, nil, true
	case "enter", " ":
		return a, a.selectCategory(a.catalog.Categories[a.catCursor]), true
	case "esc", "tab", "down", "j":
		a.focus = focusGrid
		return a, nil, true
	}
	return a, nil, false
}

func (kh *KeyHandler) handleClearChip(key string) (tea.Model, tea.Cmd) {
	a := kh.app
	a.pendingClear = false

	keys := a.ctrl.Filters().Keys()
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(keys) {
		return a, nil
	}
	req, ok := a.ctrl.ClearFilter(keys[n-1])
	if !ok {
		return a, nil
	}
	return a, a.startFetch(req)
}

func (kh *KeyHandler) handleGridKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "/":
		a.focus = focusSearch
		return a, tea.Batch(a.searchInput.Focus(), textinput.Blink)
	case "f":
		a.openFilters()
		return a, nil
	case "tab":
		a.focus = focusCategories
		return a, nil
	case "[", "]":
		a.focus = focusCategories
		model, cmd, _ := kh.handleCategoryKeys(msg.String())
		return model, cmd
	case "x":
		if len(a.ctrl.Filters()) > 0 {
			a.pendingClear = true
		}
		return a, nil
	case "ctrl+r", "R":
		a.debouncer.Cancel()
		return a, a.startFetch(a.ctrl.Refresh())
	case "enter":
		if rec, ok := a.selectedRecord(); ok {
			return a, a.openViewer(rec)
		}
		return a, nil
	case "up", "k":
		return a, a.selectCard(a.layout.move(a.selected, dirUp))
	case "down", "j":
		return a, a.selectCard(a.layout.move(a.selected, dirDown))
	case "left", "h":
		return a, a.selectCard(a.layout.move(a.selected, dirLeft))
	case "right", "l":
		return a, a.selectCard(a.layout.move(a.selected, dirRight))
	case "g", "home":
		a.viewport.GotoTop()
		return a, a.selectCard(0)
	case "G", "end":
		a.viewport.GotoBottom()
		return a, a.reportScroll()
	}

	// Paging keys go to the viewport.
	vp, cmd := a.viewport.Update(msg)
	a.viewport = vp
	return a, tea.Batch(cmd, a.reportScroll())
}

func (kh *KeyHandler) handleFilterKeys(key string) (tea.Model, tea.Cmd) {
	a := kh.app
	if a.filters == nil || a.modalClosing {
		return a, nil
	}

	switch a.filters.handleKey(key) {
	case filterApply:
		req, ok := a.ctrl.ApplyFilters(a.filters.Draft())
		return a, kh.closeFiltersAfter(req, ok)
	case filterReset:
		req, ok := a.ctrl.ResetFilters()
		return a, kh.closeFiltersAfter(req, ok)
	case filterClose:
		a.view = ViewGrid
		a.filters = nil
	}
	return a, nil
}

// closeFiltersAfter keeps the modal up for the configured delay so the
// change is visible, fetching in the meantime.
func (kh *KeyHandler) closeFiltersAfter(req feed.Request, fetch bool) tea.Cmd {
	a := kh.app
	a.modalSeq++
	a.modalClosing = true
	seq := a.modalSeq

	cmds := []tea.Cmd{tea.Tick(kh.cfg.UI.ModalCloseDelay, func(time.Time) tea.Msg {
		return modalCloseMsg{seq: seq}
	})}
	if fetch {
		a.debouncer.Cancel()
		cmds = append(cmds, a.startFetch(req))
	}
	return tea.Batch(cmds...)
}

func (kh *KeyHandler) handleViewerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	if a.viewing == nil {
		a.closeViewer()
		return a, nil
	}
	rec := *a.viewing

	switch msg.String() {
	case "esc", "q", "backspace":
		a.closeViewer()
		return a, nil
	case "d":
		if a.actions.Downloader == nil || a.busy != "" {
			return a, nil
		}
		return a, tea.Batch(a.startBusy(MsgDownloading), a.downloadImage(rec, false))
	case "s":
		if a.actions.Sharer == nil || a.busy != "" {
			return a, nil
		}
		return a, tea.Batch(a.startBusy(MsgSharing), a.shareImage(rec))
	case "o":
		if a.actions.Opener == nil || a.busy != "" {
			return a, nil
		}
		if path, ok := a.saved[rec.ID]; ok {
			return a, tea.Batch(a.startBusy(MsgOpening), a.openImage(path))
		}
		if a.actions.Downloader == nil {
			return a, a.toast(MsgNothingSaved, StatusWarn)
		}
		return a, tea.Batch(a.startBusy(MsgDownloading), a.downloadImage(rec, true))
	}

	vp, cmd := a.detail.Update(msg)
	a.detail = vp
	return a, cmd
}

// GetHelpForCurrentView lists the key hints for the status line.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	a := kh.app
	switch a.view {
	case ViewFilters:
		return []string{"space: toggle", "a: apply", "r: reset", "esc: close"}
	case ViewViewer:
		return []string{"d: download", "o: open", "s: copy link", "esc: back"}
	}
	switch a.focus {
	case focusSearch:
		return []string{"type to search", "enter: search now", "esc: back to grid"}
	case focusCategories:
		return []string{"←/→: category", "enter: select", "esc: back to grid"}
	}
	help := []string{"/: search", "tab: categories", "f: filters"}
	if len(a.ctrl.Filters()) > 0 {
		help = append(help, "x: clear filter")
	}
	return append(help, "enter: view", "ctrl+r: refresh", "q: quit")
}
