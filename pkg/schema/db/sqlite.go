package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/versemate-seed-db/pkg/schema/config"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

func init() {
	// sqlx only knows "sqlite3" out of the box
	sqlx.BindDriver(DriverName, sqlx.QUESTION)
}

var (
	journalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	syncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// Open opens (creating if needed) the SQLite seed database at cfg.OutputPath
// and applies the bulk-load pragmas. The caller owns the returned handle and
// must Close it.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	journal := strings.ToUpper(cfg.JournalMode)
	if !journalModes[journal] {
		return nil, fmt.Errorf("unsupported journal mode %q", cfg.JournalMode)
	}
	synchronous := strings.ToUpper(cfg.Synchronous)
	if !syncModes[synchronous] {
		return nil, fmt.Errorf("unsupported synchronous mode %q", cfg.Synchronous)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	sqliteDB, err := sqlx.ConnectContext(ctx, DriverName, cfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite %s: %w", cfg.OutputPath, err)
	}

	// Pragmas are per connection; keep exactly one.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = " + journal,
		"PRAGMA synchronous = " + synchronous,
	}
	for _, p := range pragmas {
		if _, err := sqliteDB.ExecContext(ctx, p); err != nil {
			_ = sqliteDB.Close()
			return nil, fmt.Errorf("apply %q: %w", p, err)
		}
	}

	return sqliteDB, nil
}

// Vacuum rebuilds the database file, reclaiming free pages
func Vacuum(ctx context.Context, sqliteDB *sqlx.DB) error {
	if _, err := sqliteDB.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum: %w", err)
	}
	return nil
}

// RemoveExisting deletes a previous seed database and its WAL side files.
// It reports whether the main file existed.
func RemoveExisting(path string) (bool, error) {
	existed := true
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("remove %s: %w", path, err)
		}
		existed = false
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(path + suffix); err != nil && !os.IsNotExist(err) {
			return existed, fmt.Errorf("remove %s: %w", path+suffix, err)
		}
	}
	return existed, nil
}
