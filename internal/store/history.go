package store

import (
	"database/sql"
	"time"

	dbutil "github.com/strumapp/strum/internal/db"
)

// recentlyPlayedLimit caps the history size; the oldest entries are
// evicted when a new play pushes the list past it.
const recentlyPlayedLimit = 50

// PlayedTrack is one entry of the recently-played history.
type PlayedTrack struct {
	TrackID  string
	Title    string
	Artist   string
	Artwork  string
	Duration time.Duration
	PlayedAt time.Time
}

// RecordPlay inserts or refreshes a history entry. A track already in
// the history moves to the front instead of duplicating, and the list
// is trimmed to its cap.
func (m *Manager) RecordPlay(t PlayedTrack) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO recently_played (track_id, title, artist, artwork, duration_ms, played_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(track_id) DO UPDATE SET
				title = excluded.title,
				artist = excluded.artist,
				artwork = excluded.artwork,
				duration_ms = excluded.duration_ms,
				played_at = excluded.played_at
		`, t.TrackID, t.Title, dbutil.NullString(t.Artist), dbutil.NullString(t.Artwork),
			t.Duration.Milliseconds(), t.PlayedAt.UnixMilli())
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			DELETE FROM recently_played
			WHERE track_id NOT IN (
				SELECT track_id FROM recently_played
				ORDER BY played_at DESC
				LIMIT ?
			)
		`, recentlyPlayedLimit)
		return err
	})
}

// GetRecentlyPlayed returns the history, most recent first.
func (m *Manager) GetRecentlyPlayed() ([]PlayedTrack, error) {
	rows, err := m.db.Query(`
		SELECT track_id, title, artist, artwork, duration_ms, played_at
		FROM recently_played
		ORDER BY played_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []PlayedTrack
	for rows.Next() {
		var t PlayedTrack
		var artist, artwork sql.NullString
		var durationMs, playedAt int64

		if err := rows.Scan(&t.TrackID, &t.Title, &artist, &artwork, &durationMs, &playedAt); err != nil {
			return nil, err
		}

		t.Artist = dbutil.NullStringValue(artist)
		t.Artwork = dbutil.NullStringValue(artwork)
		t.Duration = time.Duration(durationMs) * time.Millisecond
		t.PlayedAt = time.UnixMilli(playedAt)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// ClearRecentlyPlayed removes the whole history.
func (m *Manager) ClearRecentlyPlayed() error {
	_, err := m.db.Exec(`DELETE FROM recently_played`)
	return err
}
