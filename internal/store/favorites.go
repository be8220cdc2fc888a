package store

import (
	"database/sql"
	"time"

	dbutil "github.com/strumapp/strum/internal/db"
)

// FavoriteTrack is one cached favorite.
type FavoriteTrack struct {
	TrackID  string
	Title    string
	Artist   string
	Artwork  string
	Duration time.Duration
	AddedAt  time.Time
}

// GetFavorites returns the cached favorites, most recently added first.
func (m *Manager) GetFavorites() ([]FavoriteTrack, error) {
	rows, err := m.db.Query(`
		SELECT track_id, title, artist, artwork, duration_ms, added_at
		FROM favorite_tracks
		ORDER BY added_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []FavoriteTrack
	for rows.Next() {
		var t FavoriteTrack
		var artist, artwork sql.NullString
		var durationMs, addedAt int64

		if err := rows.Scan(&t.TrackID, &t.Title, &artist, &artwork, &durationMs, &addedAt); err != nil {
			return nil, err
		}

		t.Artist = dbutil.NullStringValue(artist)
		t.Artwork = dbutil.NullStringValue(artwork)
		t.Duration = time.Duration(durationMs) * time.Millisecond
		t.AddedAt = time.UnixMilli(addedAt)
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// AddFavorite inserts or refreshes one cached favorite.
func (m *Manager) AddFavorite(t FavoriteTrack) error {
	addedAt := t.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now()
	}
	_, err := m.db.Exec(`
		INSERT INTO favorite_tracks (track_id, title, artist, artwork, duration_ms, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			artwork = excluded.artwork,
			duration_ms = excluded.duration_ms
	`, t.TrackID, t.Title, dbutil.NullString(t.Artist), dbutil.NullString(t.Artwork),
		t.Duration.Milliseconds(), addedAt.UnixMilli())
	return err
}

// RemoveFavorite deletes one cached favorite. Removing an absent track
// is a no-op.
func (m *Manager) RemoveFavorite(trackID string) error {
	_, err := m.db.Exec(`DELETE FROM favorite_tracks WHERE track_id = ?`, trackID)
	return err
}

// ReplaceFavorites swaps the whole cache for the given list, used when
// reconciling against the remote favorites source.
func (m *Manager) ReplaceFavorites(tracks []FavoriteTrack) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM favorite_tracks`); err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO favorite_tracks (track_id, title, artist, artwork, duration_ms, added_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, t := range tracks {
			addedAt := t.AddedAt
			if addedAt.IsZero() {
				addedAt = time.Now()
			}
			_, err = stmt.Exec(t.TrackID, t.Title,
				dbutil.NullString(t.Artist), dbutil.NullString(t.Artwork),
				t.Duration.Milliseconds(), addedAt.UnixMilli())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
