package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// sqliteStore is the SQLite implementation of Store.
type sqliteStore struct {
	DB *sql.DB

	stmtGet          *sql.Stmt
	stmtSet          *sql.Stmt
	stmtSaveSnapshot *sql.Stmt
	stmtLoadSnapshot *sql.Stmt
}

// DBPath returns the database location under home.
func DBPath(home string) string {
	return filepath.Join(home, "protected", "taskboard.sqlite")
}

// Per-connection pragmas; modernc applies each _pragma on every new connection.
const dsnPragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"

// Open opens the cache database under home, creating it and applying any pending
// schema migrations.
func Open(home string) (Store, error) {
	if home == "" {
		return nil, errors.New("store home required")
	}
	dbPath := DBPath(home)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create %s: %w", filepath.Dir(dbPath), err)
	}
	return openDSN("file:"+dbPath+"?"+dsnPragmas, 4)
}

// OpenMemory opens a private in-memory store. Every connection to :memory: is its
// own database, so the pool is pinned to one.
func OpenMemory() (Store, error) {
	return openDSN("file::memory:?"+dsnPragmas, 1)
}

func openDSN(dsn string, conns int) (*sqliteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx := context.Background()
	s := &sqliteStore{DB: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.prepare(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) prepare(ctx context.Context) (err error) {
	prep := func(q string) *sql.Stmt {
		if err != nil {
			return nil
		}
		var st *sql.Stmt
		st, err = s.DB.PrepareContext(ctx, q)
		return st
	}
	s.stmtGet = prep(`SELECT value FROM kv WHERE origin = ? AND key = ?`)
	s.stmtSet = prep(`INSERT INTO kv(origin, key, value, updated_at) VALUES(?, ?, ?, ?)
ON CONFLICT(origin, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`)
	s.stmtSaveSnapshot = prep(`INSERT INTO snapshots(origin, body, saved_at) VALUES(?, ?, ?)
ON CONFLICT(origin) DO UPDATE SET body = excluded.body, saved_at = excluded.saved_at`)
	s.stmtLoadSnapshot = prep(`SELECT body, saved_at FROM snapshots WHERE origin = ?`)
	return err
}

func (s *sqliteStore) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	for _, st := range []*sql.Stmt{s.stmtGet, s.stmtSet, s.stmtSaveSnapshot, s.stmtLoadSnapshot} {
		if st != nil {
			_ = st.Close()
		}
	}
	return s.DB.Close()
}

// schemaStep is one embedded migration file, named NNN_description.sql.
type schemaStep struct {
	version int
	file    string
}

func schemaSteps() ([]schemaStep, error) {
	entries, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, err
	}
	steps := make([]schemaStep, 0, len(entries))
	for _, e := range entries {
		v, err := parseMigrationVersion(path.Base(e))
		if err != nil {
			return nil, err
		}
		steps = append(steps, schemaStep{version: v, file: e})
	}
	slices.SortFunc(steps, func(a, b schemaStep) int { return a.version - b.version })
	return steps, nil
}

// schemaVersion reads the version recorded in the database header.
func (s *sqliteStore) schemaVersion(ctx context.Context) (int, error) {
	var v int
	err := s.DB.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v)
	return v, err
}

// migrate runs every migration newer than the database's user_version, each in its
// own transaction together with the version bump.
func (s *sqliteStore) migrate(ctx context.Context) error {
	current, err := s.schemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	steps, err := schemaSteps()
	if err != nil {
		return err
	}
	for _, st := range steps {
		if st.version <= current {
			continue
		}
		body, err := migrationsFS.ReadFile(st.file)
		if err != nil {
			return err
		}
		if err := s.step(ctx, st.version, string(body)); err != nil {
			return fmt.Errorf("migration %s: %w", path.Base(st.file), err)
		}
	}
	return nil
}

func (s *sqliteStore) step(ctx context.Context, version int, body string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, body); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
		return err
	}
	return tx.Commit()
}

func parseMigrationVersion(filename string) (int, error) {
	prefix, _, _ := strings.Cut(strings.TrimSuffix(filename, ".sql"), "_")
	v, err := strconv.Atoi(prefix)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid migration version in %s", filename)
	}
	return v, nil
}
