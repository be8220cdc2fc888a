// Package store persists player settings, the recently-played history,
// playlists, the favorites cache and the queue snapshot in a local
// SQLite database.
package store

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "strum"
	dbFileName = "strum.db"
)

// Manager owns the SQLite database handle.
type Manager struct {
	db *sql.DB
}

// Open opens (creating if needed) the database in the XDG data
// directory and initializes the schema.
func Open() (*Manager, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	return openAt(dbPath)
}

func openAt(path string) (*Manager, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// Close closes the database.
func (m *Manager) Close() error {
	return m.db.Close()
}

// DB exposes the underlying handle for ad-hoc queries.
func (m *Manager) DB() *sql.DB {
	return m.db
}

func getDBPath() (string, error) {
	return xdg.DataFile(filepath.Join(appName, dbFileName))
}
