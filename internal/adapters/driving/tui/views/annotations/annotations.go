// Package annotations provides the annotation list view.
package annotations

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
)

// View is the annotation list.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	service driving.AnnotationService

	width  int
	height int

	paperID      string
	annotations  []domain.Annotation
	cursor       int
	scrollOffset int
	err          error
}

// NewView creates a new annotation list view.
func NewView(service driving.AnnotationService, s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:  s,
		keymap:  km,
		service: service,
		width:   80,
		height:  24,
	}
}

// Init initialises the annotation list view.
func (v *View) Init() tea.Cmd {
	return nil
}

// SetPaper points the list at a paper and reloads it.
func (v *View) SetPaper(paperID string) tea.Cmd {
	v.paperID = paperID
	v.annotations = nil
	v.cursor = 0
	v.scrollOffset = 0
	v.err = nil
	return v.Reload()
}

// Reload fetches the paper's annotations.
func (v *View) Reload() tea.Cmd {
	service := v.service
	paperID := v.paperID
	return func() tea.Msg {
		list, err := service.List(context.Background(), paperID)
		return messages.AnnotationsLoaded{Annotations: list, Err: err}
	}
}

// Update handles annotation list messages.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.AnnotationsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.annotations = msg.Annotations
			if v.cursor >= len(v.annotations) {
				v.cursor = len(v.annotations) - 1
			}
			if v.cursor < 0 {
				v.cursor = 0
			}
		}
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
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
		if v.cursor < len(v.annotations)-1 {
			v.cursor++
			v.ensureVisible()
		}

	case keymap.Matches(keyStr, v.keymap.Select):
		a, ok := v.selected()
		if !ok {
			return v, nil
		}
		service := v.service
		return v, func() tea.Msg {
			if err := service.Activate(context.Background(), a.ID); err != nil {
				return messages.ErrorOccurred{Err: err}
			}
			return messages.AnnotationActivated{Annotation: a}
		}

	case keymap.Matches(keyStr, v.keymap.Edit):
		a, ok := v.selected()
		if !ok {
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.EditAnnotation{Annotation: a}
		}

	case keymap.Matches(keyStr, v.keymap.Delete):
		a, ok := v.selected()
		if !ok {
			return v, nil
		}
		service := v.service
		return v, func() tea.Msg {
			err := service.Delete(context.Background(), a.ID)
			return messages.AnnotationDeleted{ID: a.ID, Err: err}
		}
	}

	return v, nil
}

// selected returns the annotation under the cursor.
func (v *View) selected() (domain.Annotation, bool) {
	if v.cursor >= 0 && v.cursor < len(v.annotations) {
		return v.annotations[v.cursor], true
	}
	return domain.Annotation{}, false
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
	lines := v.height - 2
	if lines < 1 {
		lines = 1
	}
	return lines
}

// View renders the annotation list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Annotations"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(strings.Repeat("─", minInt(v.width, 40))))
	b.WriteString("\n")

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Failed to load annotations: %v", v.err)))
		return b.String()
	}
	if len(v.annotations) == 0 {
		b.WriteString(v.styles.Muted.Render("No annotations yet. Press h in the reader to highlight."))
		return b.String()
	}

	visible := v.visibleLines()
	end := v.scrollOffset + visible
	if end > len(v.annotations) {
		end = len(v.annotations)
	}

	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderItem(v.annotations[i], i == v.cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderItem renders one annotation row.
func (v *View) renderItem(a domain.Annotation, selected bool) string {
	excerpt := strings.ReplaceAll(a.Text, "\n", " ")
	if a.Kind == domain.KindNote && excerpt == "" {
		excerpt = a.Comment
	}
	excerpt = truncate(excerpt, v.width-16)

	line := fmt.Sprintf("p.%-3d %s", a.Page, excerpt)
	marker := "  "
	if a.Comment != "" && a.Kind == domain.KindHighlight {
		marker = "💬"
	}

	if selected {
		return v.styles.Selected.Render("> " + line + " " + marker)
	}
	return v.styles.Normal.Render("  "+line) + " " + v.styles.Muted.Render(marker)
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Count returns the number of listed annotations.
func (v *View) Count() int {
	return len(v.annotations)
}

// truncate shortens a string to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen < 4 {
		maxLen = 4
	}
	runes := []rune(s)
	if lipgloss.Width(s) <= maxLen || len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
