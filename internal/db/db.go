package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const defaultDBName = "emulator.db"

type Config struct {
	// Dir holds the database file. Empty means the current directory.
	Dir string
}

func dbPath(dir string) string {
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, defaultDBName)
}

// EnsureDir creates dir if missing.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Open opens the emulator's SQLite database with foreign keys on. SQLite allows
// one writer, so the pool is capped at a single connection.
func Open(cfg Config) (*sql.DB, error) {
	if err := EnsureDir(cfg.Dir); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath(cfg.Dir))
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	return conn, nil
}

func Path(dir string) string {
	return dbPath(dir)
}
