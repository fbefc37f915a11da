// Package annotedit provides the floating comment editor. The panel is
// anchored to the annotation's on-screen position and placed through
// the viewer's collision-avoiding placement.
package annotedit

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driving"
)

// panelWidth and panelHeight are the editor panel's measured size,
// border included.
const (
	panelWidth  = 46.0
	panelHeight = 6.0
)

// View is the floating annotation comment editor.
type View struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	viewer      driving.ViewerService
	annotations driving.AnnotationService

	width  int
	height int

	input      textinput.Model
	annotation domain.Annotation
	placement  domain.PlacedPanel
	saving     bool
	err        error
}

// NewView creates a new comment editor view.
func NewView(viewer driving.ViewerService, annotations driving.AnnotationService, s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ti := textinput.New()
	ti.Placeholder = "Add a comment..."
	ti.CharLimit = 512
	ti.Width = int(panelWidth) - 6

	return &View{
		styles:      s,
		keymap:      km,
		viewer:      viewer,
		annotations: annotations,
		width:       80,
		height:      24,
		input:       ti,
	}
}

// Init initialises the editor view.
func (v *View) Init() tea.Cmd {
	return textinput.Blink
}

// Open starts editing the given annotation, anchored at a viewport
// point. The panel placement is computed up front from the panel's
// known size.
func (v *View) Open(a domain.Annotation, anchor domain.PixelPoint) tea.Cmd {
	v.annotation = a
	v.saving = false
	v.err = nil
	v.input.SetValue(a.Comment)
	v.input.CursorEnd()
	v.placement = v.viewer.RequestFloatingPanel(domain.PanelRequest{
		Anchor: anchor,
		Panel:  domain.Size{Width: panelWidth, Height: panelHeight},
	})
	return v.input.Focus()
}

// Update handles editor messages.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		keyStr := keyMsg.String()

		switch {
		case keymap.Matches(keyStr, v.keymap.Select):
			if v.saving {
				return v, nil
			}
			v.saving = true
			service := v.annotations
			id := v.annotation.ID
			comment := v.input.Value()
			return v, func() tea.Msg {
				err := service.UpdateComment(context.Background(), id, comment)
				return messages.AnnotationSaved{ID: id, Err: err}
			}

		case keymap.Matches(keyStr, v.keymap.Back):
			v.input.Blur()
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// SetSaveResult ingests the outcome of a save.
func (v *View) SetSaveResult(err error) {
	v.saving = false
	v.err = err
}

// View renders the floating panel at its computed placement.
func (v *View) View() string {
	excerpt := strings.ReplaceAll(v.annotation.Text, "\n", " ")
	if len(excerpt) > int(panelWidth)-8 {
		excerpt = excerpt[:int(panelWidth)-11] + "..."
	}

	var body strings.Builder
	body.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Comment · p.%d", v.annotation.Page)))
	body.WriteString("\n")
	body.WriteString(v.styles.Muted.Render(excerpt))
	body.WriteString("\n")
	body.WriteString(v.input.View())
	body.WriteString("\n")
	switch {
	case v.err != nil:
		body.WriteString(v.styles.Error.Render(fmt.Sprintf("Save failed: %v", v.err)))
	case v.saving:
		body.WriteString(v.styles.Muted.Render("Saving..."))
	default:
		body.WriteString(v.styles.Help.Render("enter: save | esc: cancel"))
	}

	panel := v.styles.Panel.Width(int(panelWidth) - 2).Render(body.String())
	return offset(panel, int(v.placement.X), int(v.placement.Y))
}

// SetDimensions updates the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Annotation returns the annotation being edited.
func (v *View) Annotation() domain.Annotation {
	return v.annotation
}

// offset shifts a rendered block right by x cells and down by y rows.
func offset(block string, x, y int) string {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	indent := strings.Repeat(" ", x)
	lines := strings.Split(block, "\n")
	for i, line := range lines {
		lines[i] = indent + line
	}
	return strings.Repeat("\n", y) + strings.Join(lines, "\n")
}
