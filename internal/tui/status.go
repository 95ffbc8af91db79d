package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Canonical short status messages used across the app.
const (
	MsgLoading      = "Loading images…"
	MsgLoadingMore  = "Loading more…"
	MsgDownloading  = "Downloading…"
	MsgSharing      = "Sharing…"
	MsgOpening      = "Opening…"
	MsgNoResults    = "No images found"
	MsgNothingSaved = "Download the image first (d)"
)

func MsgResultsCount(shown, total int) string {
	if total > 0 {
		return fmt.Sprintf("%d of %d images", shown, total)
	}
	if shown == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", shown)
}

// toast is a transient status line message.
type toast struct {
	text string
	kind StatusKind
}

type statusClearMsg struct {
	seq int
}

// setStatus shows text until d elapses. A zero d keeps it until replaced.
func (a *App) setStatus(text string, kind StatusKind, d time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = &toast{text: text, kind: kind}
	if d <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(d, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (a *App) toast(text string, kind StatusKind) tea.Cmd {
	return a.setStatus(text, kind, a.config.UI.ToastDuration)
}

// startBusy raises the transient status flag and spins until endBusy.
func (a *App) startBusy(text string) tea.Cmd {
	a.busy = text
	return a.spinner.Tick
}

func (a *App) endBusy() {
	a.busy = ""
}

// showAlert opens the blocking dialog.
func (a *App) showAlert(title string, err error) {
	a.alert = fmt.Sprintf("%s: %v", title, err)
}
