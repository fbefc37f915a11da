package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/views/annotations"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/views/annotedit"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/views/outline"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/views/reader"
	"github.com/custodia-labs/papyr/internal/core/domain"
)

// eventBuffer bounds the queue of core callback events waiting to be
// drained into the Bubbletea loop.
const eventBuffer = 64

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// readerView is the scrollable page reader; it doubles as the
	// core's viewport.
	readerView *reader.View

	// outlineView is the outline navigation view.
	outlineView *outline.View

	// annotationsView is the annotation list view.
	annotationsView *annotations.View

	// annotEditView is the floating comment editor.
	annotEditView *annotedit.View

	// statusBar shows position, zoom and keybinding hints.
	statusBar *status.Bar

	// paperID and source identify the document to open.
	paperID string
	source  string

	// events carries core callback events into the update loop.
	events chan tea.Msg

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application for the given paper document.
func NewApp(ports *Ports, paperID, source string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		paperID:     paperID,
		source:      source,
		events:      make(chan tea.Msg, eventBuffer),
		currentView: messages.ViewReader,
	}

	a.readerView = reader.NewView(ports.Viewer, s, km)
	a.outlineView = outline.NewView(s, km)
	a.annotationsView = annotations.NewView(ports.Annotations, s, km)
	a.annotEditView = annotedit.NewView(ports.Viewer, ports.Annotations, s, km)
	a.statusBar = status.NewBar(s, km)

	// The reader is the scrollable container the core drives.
	ports.Viewer.AttachViewport(a.readerView)
	ports.Viewer.OnCurrentPageChange(func(page int) {
		a.Notify(messages.CurrentPageChanged{Page: page})
	})
	ports.Viewer.OnZoomChange(func(zoom float64) {
		a.Notify(messages.ZoomChanged{Zoom: zoom})
	})
	ports.Viewer.OnRaster(func(page int) {
		a.Notify(messages.PageRendered{Page: page})
	})
	ports.Viewer.OnAnnotationActivated(func(ann domain.Annotation) {
		a.Notify(messages.AnnotationActivated{Annotation: ann})
	})

	return a, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Notify delivers an external event (core callback, file watcher) into
// the update loop. Events are dropped when the queue is full rather
// than blocking the caller.
func (a *App) Notify(msg tea.Msg) {
	select {
	case a.events <- msg:
	default:
	}
}

// listen drains one event from the callback queue.
func (a *App) listen() tea.Cmd {
	return func() tea.Msg {
		return <-a.events
	}
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("papyr"),
		a.listen(),
		a.loadDocument(),
	)
}

// loadDocument loads the configured document through the viewer.
func (a *App) loadDocument() tea.Cmd {
	viewer := a.ports.Viewer
	ctx := a.ctx
	paperID, source := a.paperID, a.source
	return func() tea.Msg {
		if err := viewer.LoadDocument(ctx, paperID, source); err != nil {
			return messages.DocumentLoaded{Err: err}
		}
		doc, ok := viewer.Document()
		if !ok {
			// A concurrent reload won the race; its own completion
			// message will follow.
			return nil
		}
		return messages.DocumentLoaded{Document: doc}
	}
}

// Update implements tea.Model.
// It handles messages and updates the model state.
//
//nolint:gocognit,gocyclo,funlen // central message handler requires complexity
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		contentHeight := msg.Height - 1 // status bar
		a.readerView.SetDimensions(msg.Width, contentHeight)
		a.outlineView.SetDimensions(msg.Width, contentHeight)
		a.annotationsView.SetDimensions(msg.Width, contentHeight)
		a.annotEditView.SetDimensions(msg.Width, contentHeight)
		a.statusBar.SetWidth(msg.Width)
		a.ports.Viewer.ReportContainerWidth(float64(msg.Width))
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.DocumentLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			a.readerView.SetLoadError(msg.Err)
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.err = nil
		a.statusBar.Clear()
		a.syncStatus()
		if entries, ok := a.ports.Viewer.Outline(); ok {
			a.outlineView.SetOutline(entries, true)
		} else {
			a.outlineView.SetOutline(nil, false)
		}
		return a, tea.Batch(
			a.readerView.SetDocument(msg.Document),
			a.annotationsView.SetPaper(msg.Document.PaperID),
		)

	case messages.DocumentChangedOnDisk:
		a.readerView.SetLoading()
		a.statusBar.SetState(status.StateLoading)
		return a, tea.Batch(a.loadDocument(), a.listen())

	case messages.PageRendered:
		a.readerView.PageRendered(msg.Page)
		a.ports.Viewer.HandleScroll()
		a.syncStatus()
		return a, a.listen()

	case messages.CurrentPageChanged:
		a.syncStatus()
		return a, a.listen()

	case messages.ZoomChanged:
		a.syncStatus()
		return a, a.listen()

	case messages.OutlineEntrySelected:
		a.currentView = messages.ViewReader
		a.syncHighlightState()
		a.ports.Viewer.ScrollToPage(msg.Page)
		return a, nil

	case messages.AnnotationsLoaded:
		a.annotationsView, cmd = a.annotationsView.Update(msg)
		a.readerView.SetAnnotations(msg.Annotations)
		return a, cmd

	case messages.AnnotationCaptured:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.readerView.SetHighlightMode(false)
		a.syncStatus()
		return a, a.annotationsView.Reload()

	case messages.AnnotationActivated:
		a.currentView = messages.ViewReader
		a.syncHighlightState()
		return a, a.listen()

	case messages.EditAnnotation:
		a.currentView = messages.ViewAnnotEdit
		anchor := a.readerView.AnchorFor(msg.Annotation)
		return a, a.annotEditView.Open(msg.Annotation, anchor)

	case messages.AnnotationSaved:
		a.annotEditView.SetSaveResult(msg.Err)
		if msg.Err != nil {
			return a, nil
		}
		a.currentView = messages.ViewAnnotations
		return a, a.annotationsView.Reload()

	case messages.AnnotationDeleted:
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		return a, a.annotationsView.Reload()

	case messages.ViewChanged:
		a.currentView = msg.View
		a.syncHighlightState()
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(msg.Err.Error())
		return a, nil
	}

	// Forward other messages to the active view.
	switch a.currentView {
	case messages.ViewReader:
		a.readerView, cmd = a.readerView.Update(msg)
	case messages.ViewOutline:
		a.outlineView, cmd = a.outlineView.Update(msg)
	case messages.ViewAnnotations:
		a.annotationsView, cmd = a.annotationsView.Update(msg)
	case messages.ViewAnnotEdit:
		a.annotEditView, cmd = a.annotEditView.Update(msg)
	case messages.ViewHelp:
		// Help view is static.
	}

	return a, cmd
}

// handleKeyMsg routes keyboard input: global chords first, then the
// active view.
//
//nolint:gocognit,gocyclo // central key router requires complexity
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	keyStr := msg.String()

	if keyStr == "ctrl+c" {
		return a, tea.Quit
	}

	// The comment editor owns the keyboard while open, except esc.
	if a.currentView == messages.ViewAnnotEdit {
		if keymap.Matches(keyStr, a.keymap.Back) {
			a.currentView = messages.ViewAnnotations
			return a, nil
		}
		a.annotEditView, cmd = a.annotEditView.Update(msg)
		return a, cmd
	}

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Help):
		if a.currentView == messages.ViewHelp {
			a.currentView = messages.ViewReader
		} else {
			a.currentView = messages.ViewHelp
		}
		a.syncHighlightState()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Outline):
		if a.currentView == messages.ViewOutline {
			a.currentView = messages.ViewReader
		} else {
			a.currentView = messages.ViewOutline
		}
		a.syncHighlightState()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Annotations):
		if a.currentView == messages.ViewAnnotations {
			a.currentView = messages.ViewReader
			a.syncHighlightState()
			return a, nil
		}
		a.currentView = messages.ViewAnnotations
		a.syncHighlightState()
		return a, a.annotationsView.Reload()

	case keymap.Matches(keyStr, a.keymap.Highlight) && a.currentView == messages.ViewReader:
		on := !a.ports.Viewer.HighlightMode()
		a.ports.Viewer.SetHighlightMode(on)
		a.readerView.SetHighlightMode(on)
		a.syncHighlightState()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.ZoomIn) && a.currentView == messages.ViewReader:
		a.ports.Viewer.ZoomIn()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.ZoomOut) && a.currentView == messages.ViewReader:
		a.ports.Viewer.ZoomOut()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.ZoomReset) && a.currentView == messages.ViewReader:
		a.ports.Viewer.ResetZoom()
		return a, nil

	case keymap.Matches(keyStr, a.keymap.Back):
		if a.currentView == messages.ViewReader {
			// Reader handles esc itself (selection, highlight mode).
			a.readerView, cmd = a.readerView.Update(msg)
			a.syncHighlightState()
			return a, cmd
		}
		a.currentView = messages.ViewReader
		a.syncHighlightState()
		return a, nil
	}

	switch a.currentView {
	case messages.ViewReader:
		a.readerView, cmd = a.readerView.Update(msg)
	case messages.ViewOutline:
		a.outlineView, cmd = a.outlineView.Update(msg)
	case messages.ViewAnnotations:
		a.annotationsView, cmd = a.annotationsView.Update(msg)
	case messages.ViewAnnotEdit, messages.ViewHelp:
		// Handled above / static.
	}
	return a, cmd
}

// syncStatus refreshes the status bar from the viewer's state.
func (a *App) syncStatus() {
	state := a.ports.Viewer.State()
	a.statusBar.SetPosition(state.CurrentPage, state.PageCount)
	a.statusBar.SetZoom(state.Zoom)
	a.syncHighlightState()
}

// syncHighlightState keeps the status bar state in step with the
// active view and highlight mode.
func (a *App) syncHighlightState() {
	switch {
	case a.currentView == messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	case a.ports.Viewer.HighlightMode():
		a.statusBar.SetState(status.StateHighlight)
	default:
		a.statusBar.SetState(status.StateReady)
	}
}

// View implements tea.Model.
// It renders the current view as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewReader:
		body = a.readerView.View()
	case messages.ViewOutline:
		body = a.outlineView.View()
	case messages.ViewAnnotations:
		body = a.annotationsView.View()
	case messages.ViewAnnotEdit:
		body = a.annotEditView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.readerView.View()
	}

	contentHeight := a.height - 1
	if lines := strings.Count(body, "\n") + 1; lines < contentHeight {
		body += strings.Repeat("\n", contentHeight-lines)
	}

	return body + "\n" + a.statusBar.View()
}

// viewHelp renders the help view from the keymap.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")

	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-12s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(a.styles.Help.Render("[esc] back to reader"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.readerView.SetDimensions(width, height-1)
	a.statusBar.SetWidth(width)
}
