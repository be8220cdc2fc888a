package store

import (
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/strumapp/strum/internal/db"
)

// QueueTrack is one saved queue entry.
type QueueTrack struct {
	TrackID   string
	Title     string
	Artist    string
	Artwork   string
	StreamURL string
	Duration  time.Duration
}

// QueueState is the saved queue snapshot. Stream URLs are persisted
// opportunistically; they may have expired by the next launch, in which
// case the engine resolves fresh ones.
type QueueState struct {
	CurrentIndex int
	Tracks       []QueueTrack
}

// GetQueue returns the saved queue snapshot. An empty database yields
// an empty snapshot with index -1.
func (m *Manager) GetQueue() (*QueueState, error) {
	var currentIndex int
	row := m.db.QueryRow(`SELECT current_index FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := m.db.Query(`
		SELECT track_id, title, artist, artwork, stream_url, duration_ms
		FROM queue_tracks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tracks []QueueTrack
	for rows.Next() {
		var t QueueTrack
		var artist, artwork, streamURL sql.NullString
		var durationMs sql.NullInt64

		if err := rows.Scan(&t.TrackID, &t.Title, &artist, &artwork, &streamURL, &durationMs); err != nil {
			return nil, err
		}

		t.Artist = dbutil.NullStringValue(artist)
		t.Artwork = dbutil.NullStringValue(artwork)
		t.StreamURL = dbutil.NullStringValue(streamURL)
		t.Duration = time.Duration(dbutil.NullInt64Value(durationMs)) * time.Millisecond
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueueState{
		CurrentIndex: currentIndex,
		Tracks:       tracks,
	}, nil
}

// SaveQueue replaces the saved queue snapshot.
func (m *Manager) SaveQueue(state QueueState) error {
	return dbutil.WithTx(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM queue_tracks`); err != nil {
			return err
		}

		_, err := tx.Exec(`
			INSERT INTO queue_state (id, current_index)
			VALUES (1, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index
		`, state.CurrentIndex)
		if err != nil {
			return err
		}

		stmt, err := tx.Prepare(`
			INSERT INTO queue_tracks (position, track_id, title, artist, artwork, stream_url, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, t := range state.Tracks {
			_, err = stmt.Exec(i, t.TrackID, t.Title,
				dbutil.NullString(t.Artist), dbutil.NullString(t.Artwork),
				dbutil.NullString(t.StreamURL), t.Duration.Milliseconds())
			if err != nil {
				return err
			}
		}
		return nil
	})
}
