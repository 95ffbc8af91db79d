package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pixwall/internal/catalog"
	"github.com/pders01/pixwall/internal/config"
	"github.com/pders01/pixwall/internal/debuglog"
	"github.com/pders01/pixwall/internal/feed"
	"github.com/pders01/pixwall/internal/media"
	"github.com/pders01/pixwall/internal/provider"
)

// gridChrome is the number of lines around the grid viewport: header,
// search box, category bar, filter chips, separator and status line.
const gridChrome = 8

type Downloader interface {
	Download(ctx context.Context, rec provider.ImageRecord, progress media.ProgressFunc) (string, error)
}

type Sharer interface {
	Share(rec provider.ImageRecord) (string, error)
}

type Opener interface {
	Open(file string) error
}

// Actions are the per-image operations offered by the viewer. A nil member
// disables its key.
type Actions struct {
	Downloader Downloader
	Sharer     Sharer
	Opener     Opener
}

type App struct {
	config     *config.Config
	loader     *feed.Loader
	ctrl       *feed.Controller
	debouncer  *feed.Debouncer
	catalog    *catalog.Catalog
	actions    Actions
	keyHandler *KeyHandler
	log        *debuglog.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	searchInput textinput.Model
	viewport    viewport.Model
	detail      viewport.Model
	spinner     spinner.Model

	view      View
	focus     focus
	catCursor int

	layout    gridLayout
	selected  int
	totalHits int

	filters      *filterModal
	modalSeq     int
	modalClosing bool
	pendingClear bool

	viewing *provider.ImageRecord
	saved   map[int]string

	status    *toast
	statusSeq int
	busy      string
	alert     string

	width           int
	height          int
	glamourRenderer *glamour.TermRenderer
	rendererWidth   int
	// renderMu serializes Render calls; a TermRenderer is not safe for
	// concurrent use.
	renderMu sync.Mutex
}

func NewApp(cfg *config.Config, loader *feed.Loader, actions Actions) *App {
	ApplyTheme(cfg.UI.Colors)

	si := textinput.New()
	si.Placeholder = "Search wallpapers…"
	si.Prompt = "⌕ "
	si.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(AccentColor)

	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		config:      cfg,
		loader:      loader,
		ctrl:        feed.NewController(),
		debouncer:   feed.NewDebouncer(cfg.Feed.SearchDebounce),
		catalog:     catalog.Default(),
		actions:     actions,
		log:         debuglog.WithFields(map[string]interface{}{"component": "tui"}),
		ctx:         ctx,
		cancel:      cancel,
		searchInput: si,
		viewport:    viewport.New(0, 0),
		detail:      viewport.New(0, 0),
		spinner:     sp,
		view:        ViewGrid,
		saved:       make(map[int]string),
	}
	app.keyHandler = NewKeyHandler(app, cfg)
	return app
}

// Close cancels fetches and downloads still running.
func (a *App) Close() {
	a.cancel()
}

// getRenderer must only be called from Update.
func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wordWrapWidth := (a.width * 9) / 10
	if wordWrapWidth > 100 {
		wordWrapWidth = 100
	}
	if wordWrapWidth < 20 {
		wordWrapWidth = 20
	}

	if a.glamourRenderer == nil || abs(a.rendererWidth-wordWrapWidth) > 10 {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wordWrapWidth),
		)
		if err != nil {
			return nil, err
		}
		a.glamourRenderer = r
		a.rendererWidth = wordWrapWidth
	}
	return a.glamourRenderer, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.startFetch(a.ctrl.Init()),
		tea.EnterAltScreen,
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		if a.view == ViewViewer && a.viewing != nil {
			cmds = append(cmds, a.renderDetails(*a.viewing))
		}

	case tea.KeyMsg:
		return a.keyHandler.HandleKey(msg)

	case tea.MouseMsg:
		switch {
		case a.alert != "":
		case a.view == ViewGrid:
			vp, cmd := a.viewport.Update(msg)
			a.viewport = vp
			cmds = append(cmds, cmd, a.reportScroll())
		case a.view == ViewViewer:
			vp, cmd := a.detail.Update(msg)
			a.detail = vp
			cmds = append(cmds, cmd)
		}

	case feedResultMsg:
		cmds = append(cmds, a.applyResult(msg.result))

	case searchDebounceFireMsg:
		if text, ok := a.debouncer.Fire(msg.ticket); ok {
			cmds = append(cmds, a.searchChanged(text))
		}

	case modalCloseMsg:
		if msg.seq == a.modalSeq && a.view == ViewFilters {
			a.view = ViewGrid
			a.filters = nil
			a.modalClosing = false
		}

	case statusClearMsg:
		if msg.seq == a.statusSeq {
			a.status = nil
		}

	case spinner.TickMsg:
		if a.busy != "" || a.ctrl.Loading() {
			sp, cmd := a.spinner.Update(msg)
			a.spinner = sp
			cmds = append(cmds, cmd)
		}

	case detailsRenderedMsg:
		if a.view == ViewViewer && a.viewing != nil && a.viewing.ID == msg.id {
			a.detail.SetContent(msg.content)
			a.detail.GotoTop()
		}

	case downloadDoneMsg:
		a.endBusy()
		if msg.err != nil {
			a.showAlert("Image", msg.err)
			break
		}
		a.saved[msg.id] = msg.path
		if msg.open {
			cmds = append(cmds, a.startBusy(MsgOpening), a.openImage(msg.path))
			break
		}
		cmds = append(cmds, a.toast(media.MsgDownloaded, StatusSuccess))

	case shareDoneMsg:
		a.endBusy()
		if msg.err != nil {
			a.showAlert("Image", msg.err)
			break
		}
		cmds = append(cmds, a.toast(media.MsgLinkCopied, StatusSuccess))

	case openDoneMsg:
		a.endBusy()
		if msg.err != nil {
			a.showAlert("Image", msg.err)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	a.viewport.Width = width
	a.viewport.Height = max(height-gridChrome, 3)
	a.detail.Width = width
	a.detail.Height = max(height-3, 3)
	a.searchInput.Width = max(width-8, 10)

	a.refreshGrid(false)
}

// applyResult hands a finished fetch to the controller and redraws.
func (a *App) applyResult(res feed.Result) tea.Cmd {
	out := a.ctrl.Resolve(res.Request, res.Response, res.Err)
	switch {
	case out.Stale:
		return nil
	case out.Err != nil:
		// Feed failures are logged only; the grid keeps what it has.
		a.log.Warnf("%s: %v", res.Request.Query, out.Err)
		return nil
	case out.Empty:
		if res.Request.Mode == feed.ModeReplace {
			return a.toast(MsgNoResults, StatusWarn)
		}
		return nil
	case out.Applied:
		if res.Response != nil && res.Response.Data != nil {
			a.totalHits = res.Response.Data.TotalHits
		}
		a.refreshGrid(res.Request.Mode == feed.ModeReplace)
	}
	return nil
}

// refreshGrid re-lays out the records. reset moves back to the first card.
func (a *App) refreshGrid(reset bool) {
	records := a.ctrl.Records()
	if reset {
		a.selected = 0
	}
	if a.selected >= len(records) {
		a.selected = max(len(records)-1, 0)
	}
	if a.width == 0 {
		return
	}
	a.layout = layoutGrid(records, a.width)
	a.viewport.SetContent(a.layout.render(records, a.selected))
	if reset {
		a.viewport.GotoTop()
	}
}

// reportScroll tells the controller where the grid viewport is and starts
// the load-more fetch it asks for.
func (a *App) reportScroll() tea.Cmd {
	req, ok := a.ctrl.Scrolled(a.viewport.YOffset, a.viewport.TotalLineCount(), a.viewport.Height)
	if !ok {
		return nil
	}
	return a.startFetch(req)
}

// selectCard moves the highlight to idx and scrolls it into view.
func (a *App) selectCard(idx int) tea.Cmd {
	if idx < 0 || idx >= len(a.layout.cards) {
		return a.reportScroll()
	}
	a.selected = idx
	a.viewport.SetContent(a.layout.render(a.ctrl.Records(), a.selected))

	card := a.layout.cards[idx]
	switch {
	case card.top < a.viewport.YOffset:
		a.viewport.SetYOffset(card.top)
	case card.top+card.height > a.viewport.YOffset+a.viewport.Height:
		a.viewport.SetYOffset(card.top + card.height - a.viewport.Height)
	}
	return a.reportScroll()
}

func (a *App) searchChanged(text string) tea.Cmd {
	req, ok := a.ctrl.SearchChanged(text)
	a.syncSearchInput()
	if !ok {
		return nil
	}
	return a.startFetch(req)
}

func (a *App) selectCategory(name string) tea.Cmd {
	a.debouncer.Cancel()
	req := a.ctrl.SelectCategory(name)
	a.syncSearchInput()
	return a.startFetch(req)
}

func (a *App) syncSearchInput() {
	if a.ctrl.TakeClearInput() {
		a.searchInput.SetValue("")
	}
}

func (a *App) selectedRecord() (provider.ImageRecord, bool) {
	records := a.ctrl.Records()
	if a.selected < 0 || a.selected >= len(records) {
		return provider.ImageRecord{}, false
	}
	return records[a.selected], true
}

func (a *App) openViewer(rec provider.ImageRecord) tea.Cmd {
	a.viewing = &rec
	a.view = ViewViewer
	a.detail.SetContent(renderMuted("Loading details…"))
	return a.renderDetails(rec)
}

func (a *App) closeViewer() {
	a.view = ViewGrid
	a.viewing = nil
}

func (a *App) openFilters() {
	a.filters = newFilterModal(a.catalog, a.ctrl.Filters())
	a.view = ViewFilters
	a.modalClosing = false
}

func (a *App) View() string {
	if a.width == 0 {
		return ""
	}

	var content string
	bodyHeight := max(a.height-2, 1)

	switch a.view {
	case ViewGrid:
		content = a.gridView()
	case ViewFilters:
		width := min(a.width-4, 90)
		content = renderCentered(a.width, bodyHeight, a.filters.View(width))
	case ViewViewer:
		content = a.viewerView()
	}

	if a.alert != "" {
		box := AlertStyle.Width(min(a.width-6, 70)).Render(lipgloss.JoinVertical(
			lipgloss.Center,
			StatusErrorStyle.Render("✗ "+a.alert),
			"",
			renderHelp("enter: dismiss"),
		))
		content = renderCentered(a.width, bodyHeight, box)
	}

	content = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(content)

	separator := SeparatorStyle.Render(strings.Repeat("─", max(a.width, 0)))
	return lipgloss.JoinVertical(lipgloss.Left, content, separator, a.statusBar())
}

func (a *App) gridView() string {
	subtitle := ""
	if n := a.ctrl.Len(); n > 0 {
		subtitle = MsgResultsCount(n, a.totalHits)
	}
	header := renderHeader(CompactLogo, subtitle, a.width)
	search := renderInputFrame(a.searchInput.View(), a.focus == focusSearch, a.width-4)

	var body string
	switch {
	case a.ctrl.Len() > 0:
		body = a.viewport.View()
	case a.ctrl.Loading():
		body = renderCentered(a.width, a.viewport.Height, a.spinner.View()+" "+MsgLoading)
	default:
		body = renderCentered(a.width, a.viewport.Height, GetCompactBanner(MsgNoResults))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		search,
		a.categoryBar(),
		a.chipsLine(),
		body,
	)
}

// categoryBar renders the category chips, scrolled so the cursor is visible.
func (a *App) categoryBar() string {
	cats := a.catalog.Categories
	if len(cats) == 0 {
		return ""
	}
	active := a.ctrl.Category()
	chips := make([]string, len(cats))
	for i, c := range cats {
		chip := renderChip(capitalize(c), c == active)
		if a.focus == focusCategories && i == a.catCursor {
			chip = ModalCursorStyle.Render("›") + chip
		} else {
			chip = " " + chip
		}
		chips[i] = chip
	}

	start := 0
	for start < a.catCursor && lipgloss.Width(strings.Join(chips[start:a.catCursor+1], "")) > a.width-2 {
		start++
	}
	var b strings.Builder
	used := 0
	for _, chip := range chips[start:] {
		w := lipgloss.Width(chip)
		if used+w > a.width-2 {
			break
		}
		b.WriteString(chip)
		used += w
	}
	return b.String()
}

// chipsLine lists the active filters, numbered for x+digit removal.
func (a *App) chipsLine() string {
	filters := a.ctrl.Filters()
	if len(filters) == 0 {
		return renderMuted(" no filters • f: filters")
	}
	parts := make([]string, 0, len(filters))
	for i, k := range filters.Keys() {
		label := fmt.Sprintf("%d %s: %s ✕", i+1, capitalize(k), filters[k])
		parts = append(parts, renderChip(label, true))
	}
	line := " " + strings.Join(parts, " ")
	if a.pendingClear {
		line += renderMuted("  press 1-" + fmt.Sprint(len(parts)) + " to remove")
	}
	return truncateLine(line, a.width)
}

func truncateLine(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func (a *App) viewerView() string {
	title := "Image"
	if a.viewing != nil {
		title = fmt.Sprintf("Image #%d", a.viewing.ID)
		if path, ok := a.saved[a.viewing.ID]; ok {
			title += "  " + renderMuted(truncateMiddle(path, a.width/2))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(title, "", a.width),
		a.detail.View(),
	)
}

func (a *App) statusBar() string {
	var text string
	switch {
	case a.status != nil:
		text = statusStyle(a.status.kind).Render(a.status.text)
	case a.busy != "":
		text = a.spinner.View() + " " + a.busy
	case a.ctrl.Loading() && a.ctrl.Len() > 0:
		text = a.spinner.View() + " " + MsgLoadingMore
	default:
		text = strings.Join(a.keyHandler.GetHelpForCurrentView(), " • ")
	}
	return StatusBarStyle.MaxWidth(a.width).MaxHeight(1).Render(text)
}
