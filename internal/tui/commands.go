package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/pixwall/internal/feed"
	"github.com/pders01/pixwall/internal/provider"
)

// startFetch runs req in the background. The result comes back as a
// feedResultMsg and goes through Controller.Resolve.
func (a *App) startFetch(req feed.Request) tea.Cmd {
	loader, ctx := a.loader, a.ctx
	fetch := func() tea.Msg {
		return feedResultMsg{result: loader.Load(ctx, req)}
	}
	return tea.Batch(fetch, a.spinner.Tick)
}

func (a *App) downloadImage(rec provider.ImageRecord, thenOpen bool) tea.Cmd {
	dl, ctx := a.actions.Downloader, a.ctx
	return func() tea.Msg {
		path, err := dl.Download(ctx, rec, nil)
		return downloadDoneMsg{id: rec.ID, path: path, open: thenOpen, err: err}
	}
}

func (a *App) shareImage(rec provider.ImageRecord) tea.Cmd {
	sharer := a.actions.Sharer
	return func() tea.Msg {
		link, err := sharer.Share(rec)
		return shareDoneMsg{link: link, err: err}
	}
}

func (a *App) openImage(path string) tea.Cmd {
	opener := a.actions.Opener
	return func() tea.Msg {
		return openDoneMsg{err: opener.Open(path)}
	}
}

// renderDetails resolves the renderer on the Update goroutine; the command
// only renders.
func (a *App) renderDetails(rec provider.ImageRecord) tea.Cmd {
	r, err := a.getRenderer()
	if err != nil {
		content := wrapErr("initializing renderer", err).Error()
		return func() tea.Msg { return detailsRenderedMsg{id: rec.ID, content: content} }
	}
	mu := &a.renderMu
	return func() tea.Msg {
		mu.Lock()
		rendered, err := r.Render(imageDetailsMarkdown(rec))
		mu.Unlock()
		if err != nil {
			return detailsRenderedMsg{id: rec.ID, content: wrapErr("rendering details", err).Error()}
		}
		return detailsRenderedMsg{id: rec.ID, content: rendered}
	}
}

func imageDetailsMarkdown(rec provider.ImageRecord) string {
	var b strings.Builder

	title := strings.Join(rec.TagList(), ", ")
	if title == "" {
		title = fmt.Sprintf("Image %d", rec.ID)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if rec.User != "" {
		fmt.Fprintf(&b, "*by %s*\n\n", rec.User)
	}

	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Size | %d × %d |\n", rec.ImageWidth, rec.ImageHeight)
	if rec.Type != "" {
		fmt.Fprintf(&b, "| Type | %s |\n", rec.Type)
	}
	fmt.Fprintf(&b, "| Likes | %s |\n", humanCount(rec.Likes))
	fmt.Fprintf(&b, "| Downloads | %s |\n", humanCount(rec.Downloads))
	fmt.Fprintf(&b, "| Views | %s |\n\n", humanCount(rec.Views))

	if rec.PageURL != "" {
		fmt.Fprintf(&b, "[View online](%s)\n\n", rec.PageURL)
	}
	if tags := rec.TagList(); len(tags) > 0 {
		b.WriteString("**Tags:**\n")
		for _, t := range tags {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\n")
	}
	b.WriteString("---\n\n")
	b.WriteString("`d` download • `o` open • `s` copy link • `esc` back\n")
	return b.String()
}
