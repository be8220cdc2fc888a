package store

import (
	"database/sql"
)

const currentSchemaVersion = 2

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS player_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			autoplay INTEGER NOT NULL DEFAULT 1,
			shuffle INTEGER NOT NULL DEFAULT 0,
			repeat_mode TEXT NOT NULL DEFAULT 'off',
			volume REAL NOT NULL DEFAULT 1.0,
			muted INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS recently_played (
			track_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT,
			artwork TEXT,
			duration_ms INTEGER,
			played_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_recently_played_at ON recently_played(played_at DESC);

		CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_playlists_updated ON playlists(updated_at DESC);

		CREATE TABLE IF NOT EXISTS playlist_tracks (
			playlist_id TEXT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			PRIMARY KEY (playlist_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id, position);

		CREATE TABLE IF NOT EXISTS queue_state (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			current_index INTEGER NOT NULL DEFAULT -1
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			position INTEGER PRIMARY KEY,
			track_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT,
			artwork TEXT,
			stream_url TEXT,
			duration_ms INTEGER
		);

		CREATE TABLE IF NOT EXISTS favorite_tracks (
			track_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT,
			artwork TEXT,
			duration_ms INTEGER,
			added_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	if err != nil {
		return err
	}

	// Migration: add volume and muted columns if missing
	_, _ = db.Exec(`ALTER TABLE player_settings ADD COLUMN volume REAL NOT NULL DEFAULT 1.0`)
	_, _ = db.Exec(`ALTER TABLE player_settings ADD COLUMN muted INTEGER NOT NULL DEFAULT 0`)

	// Migration: add playlist description column if missing
	_, _ = db.Exec(`ALTER TABLE playlists ADD COLUMN description TEXT`)

	return nil
}
