// Package progress remembers the last step reached in each walkthrough so a
// later run can resume there.
package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/codewalk/pkg/config"
	"github.com/vanderheijden86/codewalk/pkg/debug"
)

const schema = `
CREATE TABLE IF NOT EXISTS progress (
	path       TEXT PRIMARY KEY,
	step       INTEGER NOT NULL,
	steps      INTEGER NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// Entry is the saved position in one walkthrough.
type Entry struct {
	Path      string
	Step      int // 0-based
	Steps     int // step count when saved
	UpdatedAt time.Time
}

// Store is a SQLite-backed progress store.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the database location in the XDG state directory.
func DefaultPath() string {
	dir := config.StateDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "progress.db")
}

// Open opens (creating if needed) the store at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("progress: no database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening progress database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating progress schema: %w", err)
	}
	debug.Log("progress: opened %s", path)
	return &Store{db: db}, nil
}

// Save records step as the position reached in the walkthrough at docPath.
func (s *Store) Save(ctx context.Context, docPath string, step, steps int) error {
	key, err := canonical(docPath)
	if err != nil {
		return err
	}
	if step < 0 || (steps > 0 && step >= steps) {
		return fmt.Errorf("progress: step %d out of range for %d steps", step, steps)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (path, step, steps, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET step = excluded.step, steps = excluded.steps, updated_at = excluded.updated_at`,
		key, step, steps, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// Last returns the saved position for docPath. ok is false when the
// walkthrough was never saved.
func (s *Store) Last(ctx context.Context, docPath string) (e Entry, ok bool, err error) {
	key, err := canonical(docPath)
	if err != nil {
		return e, false, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT path, step, steps, updated_at FROM progress WHERE path = ?`, key)
	if err := row.Scan(&e.Path, &e.Step, &e.Steps, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("reading progress: %w", err)
	}
	return e, true, nil
}

// Forget drops the saved position for docPath.
func (s *Store) Forget(ctx context.Context, docPath string) error {
	key, err := canonical(docPath)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress WHERE path = ?`, key); err != nil {
		return fmt.Errorf("forgetting progress: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ResumeIndex returns the step to resume at for a walkthrough that now has
// steps steps: the saved step, or 0 when nothing usable was saved.
func ResumeIndex(e Entry, ok bool, steps int) int {
	if !ok || e.Step < 0 || e.Step >= steps {
		return 0
	}
	return e.Step
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("progress: %w", err)
	}
	return abs, nil
}
