// Package outline provides the outline navigation view.
package outline

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papyr/internal/core/domain"
)

// row is one flattened outline entry.
type row struct {
	title     string
	page      int
	depth     int
	defaulted bool
}

// View is the outline navigation list.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	width  int
	height int

	rows     []row
	hasAny   bool
	cursor   int
	scrollOffset int
}

// NewView creates a new outline view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles: s,
		keymap: km,
		width:  80,
		height: 24,
	}
}

// Init initialises the outline view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetOutline installs the resolved outline. ok distinguishes a
// document without an outline from one with only defaulted entries.
func (v *View) SetOutline(entries []domain.ResolvedOutlineEntry, ok bool) {
	v.rows = nil
	v.hasAny = ok
	v.cursor = 0
	v.scrollOffset = 0
	v.flatten(entries, 0)
}

// flatten walks the resolved tree depth-first into display rows.
func (v *View) flatten(entries []domain.ResolvedOutlineEntry, depth int) {
	for _, e := range entries {
		v.rows = append(v.rows, row{
			title:     e.Title,
			page:      e.Page,
			depth:     depth,
			defaulted: e.Defaulted,
		})
		v.flatten(e.Children, depth+1)
	}
}

// Update handles outline view messages.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return v.handleKeyMsg(keyMsg)
	}
	return v, nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case keymap.Matches(keyStr, v.keymap.Down):
		if v.cursor < len(v.rows)-1 {
			v.cursor++
			v.ensureVisible()
		}

	case keymap.Matches(keyStr, v.keymap.Select):
		if v.cursor < len(v.rows) {
			page := v.rows[v.cursor].page
			return v, func() tea.Msg {
				return messages.OutlineEntrySelected{Page: page}
			}
		}
	}

	return v, nil
}

// ensureVisible keeps the cursor inside the visible window.
func (v *View) ensureVisible() {
	visible := v.visibleLines()
	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}
}

// visibleLines is the number of list lines the view can show.
func (v *View) visibleLines() int {
	// Title and separator eat two lines.
	lines := v.height - 2
	if lines < 1 {
		lines = 1
	}
	return lines
}

// View renders the outline list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Outline"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", min(v.width, 40))))
	b.WriteString("\n")

	if !v.hasAny {
		b.WriteString(v.styles.Muted.Render("This document has no outline."))
		return b.String()
	}
	if len(v.rows) == 0 {
		b.WriteString(v.styles.Muted.Render("Outline is empty."))
		return b.String()
	}

	visible := v.visibleLines()
	end := v.scrollOffset + visible
	if end > len(v.rows) {
		end = len(v.rows)
	}

	for i := v.scrollOffset; i < end; i++ {
		r := v.rows[i]
		line := fmt.Sprintf("%s%s", strings.Repeat("  ", r.depth), r.title)
		label := fmt.Sprintf("p.%d", r.page)
		if r.defaulted {
			label = "p.?"
		}

		if pad := v.width - len([]rune(line)) - len(label) - 4; pad > 0 {
			line += strings.Repeat(" ", pad)
		} else {
			line += " "
		}

		if i == v.cursor {
			b.WriteString(v.styles.Selected.Render("> " + line + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  "+line) + v.styles.Muted.Render(label))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// SelectedPage returns the page of the entry under the cursor.
func (v *View) SelectedPage() (int, bool) {
	if v.cursor < len(v.rows) {
		return v.rows[v.cursor].page, true
	}
	return 0, false
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
