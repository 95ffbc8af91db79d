package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pixwall/internal/catalog"
	"github.com/pders01/pixwall/internal/feed"
)

type filterAction int

const (
	filterNone filterAction = iota
	filterApply
	filterReset
	filterClose
)

// filterModal edits a draft filter set. The draft only reaches the feed on
// apply.
type filterModal struct {
	sections []catalog.Section
	catalog  *catalog.Catalog
	draft    feed.FilterSet
	section  int
	option   int
}

func newFilterModal(c *catalog.Catalog, current feed.FilterSet) *filterModal {
	draft := current.Clone()
	if draft == nil {
		draft = feed.FilterSet{}
	}
	return &filterModal{sections: c.Filters, catalog: c, draft: draft}
}

// Draft is the edited filter set with unset keys removed.
func (m *filterModal) Draft() feed.FilterSet {
	out := feed.FilterSet{}
	for k, v := range m.draft {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func (m *filterModal) current() (catalog.Section, string, bool) {
	if m.section >= len(m.sections) {
		return catalog.Section{}, "", false
	}
	s := m.sections[m.section]
	if m.option >= len(s.Options) {
		return s, "", false
	}
	return s, s.Options[m.option], true
}

// toggle selects the option under the cursor, or unselects it when it is
// already the section's value.
func (m *filterModal) toggle() {
	s, opt, ok := m.current()
	if !ok {
		return
	}
	if m.draft[s.Key] == opt {
		delete(m.draft, s.Key)
		return
	}
	m.draft[s.Key] = opt
}

func (m *filterModal) moveOption(delta int) {
	if m.section >= len(m.sections) {
		return
	}
	n := len(m.sections[m.section].Options)
	if n == 0 {
		return
	}
	m.option = (m.option + delta + n) % n
}

func (m *filterModal) moveSection(delta int) {
	n := len(m.sections)
	if n == 0 {
		return
	}
	m.section = (m.section + delta + n) % n
	m.option = 0
	if v := m.draft[m.sections[m.section].Key]; v != "" {
		for i, o := range m.sections[m.section].Options {
			if o == v {
				m.option = i
			}
		}
	}
}

// handleKey updates the cursor or draft and reports what the app should do.
func (m *filterModal) handleKey(key string) filterAction {
	switch key {
	case "esc", "q", "f":
		return filterClose
	case "a", "enter":
		return filterApply
	case "r":
		m.draft = feed.FilterSet{}
		return filterReset
	case " ", "space", "x":
		m.toggle()
	case "left", "h":
		m.moveOption(-1)
	case "right", "l":
		m.moveOption(1)
	case "up", "k", "shift+tab":
		m.moveSection(-1)
	case "down", "j", "tab":
		m.moveSection(1)
	}
	return filterNone
}

func (m *filterModal) View(width int) string {
	var b strings.Builder
	b.WriteString(ModalTitleStyle.Render("Filters"))
	b.WriteString("  ")
	b.WriteString(renderMuted(fmt.Sprintf("%d selected", len(m.Draft()))))
	b.WriteString("\n\n")

	inner := width - 8
	for si, s := range m.sections {
		title := s.Title
		if si == m.section {
			title = "› " + title
		} else {
			title = "  " + title
		}
		b.WriteString(HeaderStyle.Render(title))
		b.WriteString("\n  ")

		line := 2
		for oi, opt := range s.Options {
			label := capitalize(opt)
			var chip string
			if s.Swatch {
				swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(m.catalog.Swatch(opt))).Render("●")
				chip = swatch + " " + label
			} else {
				chip = label
			}
			chip = renderChip(chip, m.draft[s.Key] == opt)
			if si == m.section && oi == m.option {
				chip = ModalCursorStyle.Render("[") + chip + ModalCursorStyle.Render("]")
			} else {
				chip = " " + chip + " "
			}
			w := lipgloss.Width(chip)
			if line+w > inner && line > 2 {
				b.WriteString("\n  ")
				line = 2
			}
			b.WriteString(chip)
			line += w
		}
		b.WriteString("\n\n")
	}

	b.WriteString(renderHelp("↑/↓ section • ←/→ option • space toggle • a apply • r reset • esc close"))
	return ModalStyle.Width(width - 4).Render(b.String())
}
