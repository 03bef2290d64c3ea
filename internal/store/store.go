package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store is the SQLite persistence backend. It provides the prompt, history
// and event repositories over a single database.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
	sql *entsql.DialectBuilder
	seq *sequenceCounter
}

var _ Repos = (*Store)(nil)

// Open creates a new Store connected to the SQLite database at dsn.
// It applies recommended pragmas and runs the schema migration.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	seq, err := newSequenceCounter(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		drv: drv,
		sql: entsql.Dialect(dialect.SQLite),
		seq: seq,
	}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// PromptRepo returns the prompt repository backed by this store.
func (s *Store) PromptRepo() PromptRepo {
	return &promptRepo{db: s.db, sql: s.sql}
}

// HistoryRepo returns the history repository backed by this store.
func (s *Store) HistoryRepo() HistoryRepo {
	return &historyRepo{db: s.db, sql: s.sql, seq: s.seq}
}

// EventRepo returns the generation event repository backed by this store.
func (s *Store) EventRepo() EventRepo {
	return &eventRepo{db: s.db, sql: s.sql, seq: s.seq}
}

// Ping verifies database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var pragmas = []string{
	"journal_mode = WAL",
	"busy_timeout = 5000",
	"foreign_keys = ON",
	"synchronous = NORMAL",
}

// withPragmas adds the pragmas to the DSN so that every pooled connection
// gets them, not only the one applyPragmas runs on.
func withPragmas(dsn string) string {
	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		name, value, _ := strings.Cut(p, " = ")
		params = append(params, "_pragma="+name+"("+value+")")
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// applyPragmas configures SQLite for a small multi-reader workload.
func applyPragmas(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec("PRAGMA " + p); err != nil {
			return fmt.Errorf("PRAGMA %s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. SENSEI_DB environment variable
// 2. $XDG_DATA_HOME/sensei/sensei.db
// 3. ~/.local/share/sensei/sensei.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SENSEI_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "sensei", "sensei.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
