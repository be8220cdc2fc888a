package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	dbutil "github.com/strumapp/strum/internal/db"
)

// ErrPlaylistNotFound is returned for operations on an unknown playlist.
var ErrPlaylistNotFound = errors.New("store: playlist not found")

// Playlist is a named, ordered list of track IDs.
type Playlist struct {
	ID          string
	Name        string
	Description string
	TrackIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreatePlaylist creates an empty playlist with a fresh ID.
func (m *Manager) CreatePlaylist(name, description string) (*Playlist, error) {
	now := time.Now()
	p := &Playlist{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := m.db.Exec(`
		INSERT INTO playlists (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, dbutil.NullString(p.Description), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlaylist returns a playlist with its track IDs in order.
func (m *Manager) GetPlaylist(id string) (*Playlist, error) {
	var p Playlist
	var description sql.NullString
	var createdAt, updatedAt int64
	row := m.db.QueryRow(`SELECT id, name, description, created_at, updated_at FROM playlists WHERE id = ?`, id)
	if err := row.Scan(&p.ID, &p.Name, &description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	p.Description = dbutil.NullStringValue(description)
	p.CreatedAt = time.UnixMilli(createdAt)
	p.UpdatedAt = time.UnixMilli(updatedAt)

	trackIDs, err := m.playlistTrackIDs(id)
	if err != nil {
		return nil, err
	}
	p.TrackIDs = trackIDs
	return &p, nil
}

// ListPlaylists returns all playlists, most recently updated first.
func (m *Manager) ListPlaylists() ([]Playlist, error) {
	rows, err := m.db.Query(`
		SELECT id, name, description, created_at, updated_at
		FROM playlists
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		var description sql.NullString
		var createdAt, updatedAt int64
		if err := rows.Scan(&p.ID, &p.Name, &description, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.Description = dbutil.NullStringValue(description)
		p.CreatedAt = time.UnixMilli(createdAt)
		p.UpdatedAt = time.UnixMilli(updatedAt)
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range playlists {
		trackIDs, err := m.playlistTrackIDs(playlists[i].ID)
		if err != nil {
			return nil, err
		}
		playlists[i].TrackIDs = trackIDs
	}
	return playlists, nil
}

// RenamePlaylist changes a playlist's name and refreshes updated_at.
func (m *Manager) RenamePlaylist(id, name string) error {
	res, err := m.db.Exec(`
		UPDATE playlists SET name = ?, updated_at = ? WHERE id = ?
	`, name, time.Now().UnixMilli(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeletePlaylist removes a playlist and its track entries.
func (m *Manager) DeletePlaylist(id string) error {
	res, err := m.db.Exec(`DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// AddPlaylistTrack appends a track to the playlist. Adding a track that
// is already present is a no-op; playlists hold each track at most once.
func (m *Manager) AddPlaylistTrack(playlistID, trackID string) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if err := playlistExists(tx, playlistID); err != nil {
			return err
		}

		var count int
		err := tx.QueryRow(`
			SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?
		`, playlistID, trackID).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		var next int
		err = tx.QueryRow(`
			SELECT COALESCE(MAX(position) + 1, 0) FROM playlist_tracks WHERE playlist_id = ?
		`, playlistID).Scan(&next)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO playlist_tracks (playlist_id, position, track_id)
			VALUES (?, ?, ?)
		`, playlistID, next, trackID)
		if err != nil {
			return err
		}

		return touchPlaylist(tx, playlistID)
	})
}

// RemovePlaylistTrack removes a track from the playlist, closing the
// position gap. Removing an absent track is a no-op.
func (m *Manager) RemovePlaylistTrack(playlistID, trackID string) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if err := playlistExists(tx, playlistID); err != nil {
			return err
		}

		res, err := tx.Exec(`
			DELETE FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?
		`, playlistID, trackID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		// Renumber remaining tracks to keep positions contiguous.
		rows, err := tx.Query(`
			SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position
		`, playlistID)
		if err != nil {
			return err
		}
		var remaining []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			remaining = append(remaining, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, playlistID); err != nil {
			return err
		}
		stmt, err := tx.Prepare(`
			INSERT INTO playlist_tracks (playlist_id, position, track_id) VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for i, id := range remaining {
			if _, err := stmt.Exec(playlistID, i, id); err != nil {
				return err
			}
		}

		return touchPlaylist(tx, playlistID)
	})
}

func (m *Manager) playlistTrackIDs(playlistID string) ([]string, error) {
	rows, err := m.db.Query(`
		SELECT track_id FROM playlist_tracks WHERE playlist_id = ? ORDER BY position
	`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func playlistExists(tx *sql.Tx, id string) error {
	var count int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM playlists WHERE id = ?`, id).Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

func touchPlaylist(tx *sql.Tx, id string) error {
	_, err := tx.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, time.Now().UnixMilli(), id)
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}
