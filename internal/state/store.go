package state

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mediatorr/internal/unit"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store wraps the state database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]migration, 0, len(names))
	for _, name := range names {
		data, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		migrations = append(migrations, migration{version: strings.TrimSuffix(name, ".sql"), sql: string(data)})
	}
	return migrations, nil
}

func (s *Store) applyMigrations(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)"); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var count int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM schema_migrations WHERE version = ?", m.version).Scan(&count); err != nil {
			return fmt.Errorf("scan migration version: %w", err)
		}
		if count > 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("record migration %s: %w", m.version, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migrations: %w", err)
	}
	return nil
}

// Override pins the metadata id of one unit.
type Override struct {
	Library   unit.Library
	Key       string
	ID        int64
	CreatedAt time.Time
}

// SetOverride inserts or replaces the override for (lib, key).
func (s *Store) SetOverride(ctx context.Context, lib unit.Library, key string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("override id must be positive, got %d", id)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO overrides (library, unit_key, provider_id, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(library, unit_key) DO UPDATE SET provider_id = excluded.provider_id, created_at = excluded.created_at`,
		string(lib), key, id, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("set override: %w", err)
	}
	return nil
}

// RemoveOverride deletes the override for (lib, key) and reports whether one
// existed.
func (s *Store) RemoveOverride(ctx context.Context, lib unit.Library, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM overrides WHERE library = ? AND unit_key = ?", string(lib), key)
	if err != nil {
		return false, fmt.Errorf("remove override: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Override returns the pinned id for (lib, key).
func (s *Store) Override(ctx context.Context, lib unit.Library, key string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT provider_id FROM overrides WHERE library = ? AND unit_key = ?", string(lib), key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("load override: %w", err)
	}
	return id, true, nil
}

// ListOverrides returns overrides ordered by library then key. An empty lib
// lists every library.
func (s *Store) ListOverrides(ctx context.Context, lib unit.Library) ([]Override, error) {
	query := "SELECT library, unit_key, provider_id, created_at FROM overrides"
	var args []any
	if lib != "" {
		query += " WHERE library = ?"
		args = append(args, string(lib))
	}
	query += " ORDER BY library, unit_key"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()

	var out []Override
	for rows.Next() {
		var (
			o       Override
			library string
			created string
		)
		if err := rows.Scan(&library, &o.Key, &o.ID, &created); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		o.Library = unit.Library(library)
		o.CreatedAt, _ = time.Parse(timeLayout, created)
		out = append(out, o)
	}
	return out, rows.Err()
}

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one recorded scan.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Summary    json.RawMessage
}

// BeginRun records a running scan.
func (s *Store) BeginRun(ctx context.Context, id string, started time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)",
		id, started.UTC().Format(timeLayout), RunRunning,
	)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the final status and summary of a scan.
func (s *Store) FinishRun(ctx context.Context, id string, finished time.Time, status string, summary any) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE runs SET finished_at = ?, status = ?, summary_json = ? WHERE id = ?",
		finished.UTC().Format(timeLayout), status, string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run: unknown run %s", id)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, finished_at, status, summary_json FROM runs ORDER BY started_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
			summary  sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Status, &summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(timeLayout, finished.String)
		}
		if summary.Valid {
			r.Summary = json.RawMessage(summary.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
