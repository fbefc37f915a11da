package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/papyr/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/papyr/internal/core/domain"
	"github.com/custodia-labs/papyr/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a SQLite-based storage that provides access to the
// annotation store interface through a wrapper type.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.papyr/data/annotations.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".papyr", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "annotations.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// AnnotationStore returns an AnnotationStore interface backed by this store.
func (s *Store) AnnotationStore() driven.AnnotationStore {
	return &annotationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_annotations.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Annotation Store ====================

// annotationStore implements driven.AnnotationStore.
type annotationStore struct {
	store *Store
}

var _ driven.AnnotationStore = (*annotationStore)(nil)

// Create stores a new annotation.
func (s *annotationStore) Create(ctx context.Context, a *domain.Annotation) error {
	if a == nil || a.ID == "" || a.PaperID == "" {
		return domain.ErrInvalidInput
	}

	pointJSON, err := json.Marshal(a.Point)
	if err != nil {
		return fmt.Errorf("marshalling point: %w", err)
	}
	boxJSON, err := json.Marshal(a.Box)
	if err != nil {
		return fmt.Errorf("marshalling box: %w", err)
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO annotations (id, paper_id, kind, page, point, box, text, comment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.PaperID, string(a.Kind), a.Page, string(pointJSON), string(boxJSON),
		a.Text, a.Comment, a.CreatedAt, a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("creating annotation: %w", err)
	}
	return nil
}

// Update replaces an existing annotation.
func (s *annotationStore) Update(ctx context.Context, a *domain.Annotation) error {
	if a == nil || a.ID == "" {
		return domain.ErrInvalidInput
	}

	pointJSON, err := json.Marshal(a.Point)
	if err != nil {
		return fmt.Errorf("marshalling point: %w", err)
	}
	boxJSON, err := json.Marshal(a.Box)
	if err != nil {
		return fmt.Errorf("marshalling box: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE annotations SET
			paper_id = ?,
			kind = ?,
			page = ?,
			point = ?,
			box = ?,
			text = ?,
			comment = ?,
			updated_at = ?
		WHERE id = ?
	`, a.PaperID, string(a.Kind), a.Page, string(pointJSON), string(boxJSON),
		a.Text, a.Comment, a.UpdatedAt, a.ID)

	if err != nil {
		return fmt.Errorf("updating annotation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves an annotation by ID.
func (s *annotationStore) Get(ctx context.Context, id string) (*domain.Annotation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, paper_id, kind, page, point, box, text, comment, created_at, updated_at
		FROM annotations WHERE id = ?
	`, id)

	return scanAnnotation(row)
}

// List returns all annotations for a paper.
func (s *annotationStore) List(ctx context.Context, paperID string) ([]domain.Annotation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, paper_id, kind, page, point, box, text, comment, created_at, updated_at
		FROM annotations WHERE paper_id = ?
		ORDER BY page
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying annotations: %w", err)
	}
	defer rows.Close()

	var annotations []domain.Annotation //nolint:prealloc // size unknown from query
	for rows.Next() {
		a, err := scanAnnotationRows(rows)
		if err != nil {
			return nil, err
		}
		annotations = append(annotations, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating annotations: %w", err)
	}

	return annotations, nil
}

// Delete removes an annotation.
func (s *annotationStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM annotations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting annotation: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// scanAnnotation scans a single annotation row.
func scanAnnotation(row *sql.Row) (*domain.Annotation, error) {
	var a domain.Annotation
	var kind string
	var pointJSON, boxJSON sql.NullString

	if err := row.Scan(&a.ID, &a.PaperID, &kind, &a.Page, &pointJSON, &boxJSON,
		&a.Text, &a.Comment, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning annotation: %w", err)
	}

	a.Kind = domain.AnnotationKind(kind)
	if err := unmarshalCoordinates(&a, pointJSON, boxJSON); err != nil {
		return nil, err
	}

	return &a, nil
}

// scanAnnotationRows scans an annotation from *sql.Rows.
func scanAnnotationRows(rows *sql.Rows) (*domain.Annotation, error) {
	var a domain.Annotation
	var kind string
	var pointJSON, boxJSON sql.NullString

	if err := rows.Scan(&a.ID, &a.PaperID, &kind, &a.Page, &pointJSON, &boxJSON,
		&a.Text, &a.Comment, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scanning annotation: %w", err)
	}

	a.Kind = domain.AnnotationKind(kind)
	if err := unmarshalCoordinates(&a, pointJSON, boxJSON); err != nil {
		return nil, err
	}

	return &a, nil
}

// unmarshalCoordinates decodes the optional normalized point and box.
func unmarshalCoordinates(a *domain.Annotation, pointJSON, boxJSON sql.NullString) error {
	if pointJSON.Valid && pointJSON.String != "" && pointJSON.String != jsonNull {
		var p domain.NormalizedPoint
		if err := json.Unmarshal([]byte(pointJSON.String), &p); err != nil {
			return fmt.Errorf("unmarshalling point: %w", err)
		}
		a.Point = &p
	}

	if boxJSON.Valid && boxJSON.String != "" && boxJSON.String != jsonNull {
		var b domain.NormalizedBox
		if err := json.Unmarshal([]byte(boxJSON.String), &b); err != nil {
			return fmt.Errorf("unmarshalling box: %w", err)
		}
		a.Box = &b
	}

	return nil
}
