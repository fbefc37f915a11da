package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/papyr/internal/adapters/driven/clock"
	"github.com/custodia-labs/papyr/internal/adapters/driven/config/file"
	"github.com/custodia-labs/papyr/internal/adapters/driven/renderer/plaintext"
	"github.com/custodia-labs/papyr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papyr/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/papyr/internal/adapters/driven/watch"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui"
	"github.com/custodia-labs/papyr/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
	"github.com/custodia-labs/papyr/internal/core/services"
	"github.com/custodia-labs/papyr/internal/logger"
)

var openCmd = &cobra.Command{
	Use:   "open [file]",
	Short: "Open a document in the reader",
	Long: `Open a document in the interactive reader.

Controls:
  ↑/k, ↓/j - Scroll
  n/p      - Next / previous page
  +/-/0    - Zoom in / out / reset
  o        - Outline
  h        - Highlight mode
  a        - Annotations
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

// Open command flags.
var (
	openMemory  bool
	openDataDir string
)

func init() {
	openCmd.Flags().BoolVar(&openMemory, "memory", false, "Keep annotations in memory only")
	openCmd.Flags().StringVar(&openDataDir, "data-dir", "", "Directory for the annotation database")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in reader: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the reader needs an interactive terminal")
	}

	source, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}

	store, closeStore, err := buildAnnotationStore()
	if err != nil {
		return err
	}
	defer closeStore()

	viewer := services.NewViewer(plaintext.NewRenderer(), store, clock.NewSystem(), nil)
	defer func() {
		if err := viewer.Close(); err != nil {
			logger.Warn("closing viewer: %v", err)
		}
	}()
	annotations := services.NewAnnotationManager(store, viewer)

	// The document is identified by its absolute path.
	app, err := tui.NewApp(tui.NewPorts(viewer, annotations), source, source)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	app.WithContext(cmd.Context())

	// Reload when the source file changes on disk.
	cancelWatch, err := watch.NewWatcher().Watch(source, func() {
		app.Notify(messages.DocumentChangedOnDisk{})
	})
	if err != nil {
		logger.Warn("file watching disabled: %v", err)
	} else {
		defer cancelWatch()
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("reader error: %w", err)
	}

	return nil
}

// buildAnnotationStore picks the annotation store from flags and
// config. Flags win over config; the default is the SQLite store in
// ~/.papyr/data.
func buildAnnotationStore() (driven.AnnotationStore, func(), error) {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		logger.Warn("loading config: %v", err)
	}

	backend := "sqlite"
	dataDir := openDataDir
	if cfg != nil {
		if b := cfg.GetString("storage.backend"); b != "" {
			backend = b
		}
		if dataDir == "" {
			dataDir = cfg.GetString("storage.data_dir")
		}
	}
	if openMemory {
		backend = "memory"
	}

	switch backend {
	case "memory":
		return memory.NewAnnotationStore(), func() {}, nil
	case "sqlite":
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening annotation database: %w", err)
		}
		closeStore := func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing annotation database: %v", err)
			}
		}
		return store.AnnotationStore(), closeStore, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
