package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/pixwall/internal/provider"
)

const (
	gridGap       = 1
	cardTextRows  = 2
	cardBorder    = 2
	minImageRows  = 3
	maxImageRows  = 14
	minCardColumn = 16
)

// columnsFor picks the masonry column count for a terminal width.
func columnsFor(width int) int {
	switch {
	case width >= 160:
		return 4
	case width >= 100:
		return 3
	default:
		return 2
	}
}

// cardImageRows sizes the placeholder so the card keeps the image's aspect
// ratio. Terminal cells are about twice as tall as they are wide.
func cardImageRows(innerWidth int, aspect float64) int {
	if aspect <= 0 {
		aspect = 1
	}
	rows := int(math.Round(float64(innerWidth) / aspect / 2))
	if rows < minImageRows {
		return minImageRows
	}
	if rows > maxImageRows {
		return maxImageRows
	}
	return rows
}

type gridCard struct {
	col    int
	top    int
	height int
	rows   int
}

// gridLayout places records into columns, each card going to the currently
// shortest column.
type gridLayout struct {
	columns  int
	colWidth int
	cards    []gridCard
	byCol    [][]int
	heights  []int
}

func layoutGrid(records []provider.ImageRecord, width int) gridLayout {
	cols := columnsFor(width)
	colWidth := (width - gridGap*(cols-1)) / cols
	if colWidth < minCardColumn {
		colWidth = minCardColumn
	}

	g := gridLayout{
		columns:  cols,
		colWidth: colWidth,
		cards:    make([]gridCard, len(records)),
		byCol:    make([][]int, cols),
		heights:  make([]int, cols),
	}

	inner := colWidth - cardBorder
	for i, rec := range records {
		col := 0
		for c := 1; c < cols; c++ {
			if g.heights[c] < g.heights[col] {
				col = c
			}
		}
		rows := cardImageRows(inner, rec.AspectRatio())
		h := rows + cardTextRows + cardBorder
		g.cards[i] = gridCard{col: col, top: g.heights[col], height: h, rows: rows}
		g.byCol[col] = append(g.byCol[col], i)
		g.heights[col] += h
	}
	return g
}

// Height is the tallest column in lines.
func (g gridLayout) Height() int {
	h := 0
	for _, c := range g.heights {
		if c > h {
			h = c
		}
	}
	return h
}

type direction int

const (
	dirUp direction = iota
	dirDown
	dirLeft
	dirRight
)

// move returns the card index reached from idx in dir, or idx when there is
// nowhere to go.
func (g gridLayout) move(idx int, dir direction) int {
	if idx < 0 || idx >= len(g.cards) {
		return idx
	}
	card := g.cards[idx]
	column := g.byCol[card.col]
	pos := 0
	for i, v := range column {
		if v == idx {
			pos = i
			break
		}
	}

	switch dir {
	case dirUp:
		if pos > 0 {
			return column[pos-1]
		}
	case dirDown:
		if pos < len(column)-1 {
			return column[pos+1]
		}
	case dirLeft, dirRight:
		step := -1
		if dir == dirRight {
			step = 1
		}
		for c := card.col + step; c >= 0 && c < g.columns; c += step {
			if best, ok := g.nearest(c, card.top+card.height/2); ok {
				return best
			}
		}
	}
	return idx
}

// nearest finds the card in col whose span is closest to line.
func (g gridLayout) nearest(col, line int) (int, bool) {
	best, bestDist := -1, math.MaxInt
	for _, i := range g.byCol[col] {
		c := g.cards[i]
		d := 0
		switch {
		case line < c.top:
			d = c.top - line
		case line >= c.top+c.height:
			d = line - (c.top + c.height - 1)
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// render draws the grid with selected highlighted.
func (g gridLayout) render(records []provider.ImageRecord, selected int) string {
	if len(records) == 0 {
		return ""
	}
	cols := make([]string, g.columns)
	for c, indices := range g.byCol {
		parts := make([]string, 0, len(indices))
		for _, i := range indices {
			parts = append(parts, renderCard(records[i], g.cards[i].rows, g.colWidth, i == selected))
		}
		col := lipgloss.JoinVertical(lipgloss.Left, parts...)
		cols[c] = lipgloss.NewStyle().Width(g.colWidth).Render(col)
	}

	gap := strings.Repeat(" ", gridGap)
	joined := make([]string, 0, len(cols)*2-1)
	for i, c := range cols {
		if i > 0 {
			joined = append(joined, gap)
		}
		joined = append(joined, c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, joined...)
}

func renderCard(rec provider.ImageRecord, rows, width int, selected bool) string {
	inner := width - cardBorder
	shade := "░"
	if selected {
		shade = "▒"
	}
	art := make([]string, rows)
	fill := strings.Repeat(shade, inner)
	for i := range art {
		art[i] = fill
	}
	if rows > 0 {
		dims := fmt.Sprintf(" %d×%d ", rec.ImageWidth, rec.ImageHeight)
		if len([]rune(dims)) <= inner {
			art[rows/2] = lipgloss.PlaceHorizontal(inner, lipgloss.Center, dims, lipgloss.WithWhitespaceChars(shade))
		}
	}

	tags := truncateEnd(strings.Join(rec.TagList(), " · "), inner)
	if tags == "" {
		tags = fmt.Sprintf("#%d", rec.ID)
	}
	meta := truncateEnd(fmt.Sprintf("%s ♥%s ↓%s", rec.User, humanCount(rec.Likes), humanCount(rec.Downloads)), inner)

	body := lipgloss.JoinVertical(lipgloss.Left,
		CardMetaStyle.Render(strings.Join(art, "\n")),
		CardTagsStyle.Render(tags),
		CardMetaStyle.Render(meta),
	)

	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	return style.Width(inner).Render(body)
}
