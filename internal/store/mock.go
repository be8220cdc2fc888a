package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Mock is an in-memory test double for Manager.
type Mock struct {
	settings   *Settings
	played     []PlayedTrack
	playlists  []*Playlist
	queueState *QueueState
	favorites  []FavoriteTrack
	nextID     int
	closed     bool

	// Err, when set, is returned by every operation. Used to test
	// fallback behavior on storage failures.
	Err error
}

// NewMock creates a new mock store for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) DB() *sql.DB { return nil }

func (m *Mock) GetSettings() (Settings, error) {
	if m.Err != nil {
		return DefaultSettings(), m.Err
	}
	if m.settings == nil {
		return DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Mock) SaveSettings(s Settings) error {
	if m.Err != nil {
		return m.Err
	}
	m.settings = &s
	return nil
}

func (m *Mock) SaveVolume(volume float64, muted bool) error {
	if m.Err != nil {
		return m.Err
	}
	s, _ := m.GetSettings()
	s.Volume = volume
	s.Muted = muted
	m.settings = &s
	return nil
}

func (m *Mock) SaveModes(shuffle bool, repeatMode string) error {
	if m.Err != nil {
		return m.Err
	}
	s, _ := m.GetSettings()
	s.Shuffle = shuffle
	s.RepeatMode = repeatMode
	m.settings = &s
	return nil
}

func (m *Mock) SaveAutoplay(autoplay bool) error {
	if m.Err != nil {
		return m.Err
	}
	s, _ := m.GetSettings()
	s.Autoplay = autoplay
	m.settings = &s
	return nil
}

func (m *Mock) RecordPlay(t PlayedTrack) error {
	if m.Err != nil {
		return m.Err
	}
	for i, existing := range m.played {
		if existing.TrackID == t.TrackID {
			m.played = append(m.played[:i], m.played[i+1:]...)
			break
		}
	}
	m.played = append([]PlayedTrack{t}, m.played...)
	if len(m.played) > recentlyPlayedLimit {
		m.played = m.played[:recentlyPlayedLimit]
	}
	return nil
}

func (m *Mock) GetRecentlyPlayed() ([]PlayedTrack, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]PlayedTrack, len(m.played))
	copy(out, m.played)
	return out, nil
}

func (m *Mock) ClearRecentlyPlayed() error {
	if m.Err != nil {
		return m.Err
	}
	m.played = nil
	return nil
}

func (m *Mock) CreatePlaylist(name, description string) (*Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.nextID++
	now := time.Now()
	p := &Playlist{
		ID:          fmt.Sprintf("playlist-%d", m.nextID),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.playlists = append(m.playlists, p)
	return p, nil
}

func (m *Mock) GetPlaylist(id string) (*Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.playlists {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrPlaylistNotFound
}

func (m *Mock) ListPlaylists() ([]Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]Playlist, 0, len(m.playlists))
	for _, p := range m.playlists {
		out = append(out, *p)
	}
	return out, nil
}

func (m *Mock) RenamePlaylist(id, name string) error {
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.playlists {
		if p.ID == id {
			p.Name = name
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrPlaylistNotFound
}

func (m *Mock) DeletePlaylist(id string) error {
	if m.Err != nil {
		return m.Err
	}
	for i, p := range m.playlists {
		if p.ID == id {
			m.playlists = append(m.playlists[:i], m.playlists[i+1:]...)
			return nil
		}
	}
	return ErrPlaylistNotFound
}

func (m *Mock) AddPlaylistTrack(playlistID, trackID string) error {
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.playlists {
		if p.ID == playlistID {
			for _, id := range p.TrackIDs {
				if id == trackID {
					return nil
				}
			}
			p.TrackIDs = append(p.TrackIDs, trackID)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrPlaylistNotFound
}

func (m *Mock) RemovePlaylistTrack(playlistID, trackID string) error {
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.playlists {
		if p.ID == playlistID {
			for i, id := range p.TrackIDs {
				if id == trackID {
					p.TrackIDs = append(p.TrackIDs[:i], p.TrackIDs[i+1:]...)
					p.UpdatedAt = time.Now()
					return nil
				}
			}
			return nil
		}
	}
	return ErrPlaylistNotFound
}

func (m *Mock) GetQueue() (*QueueState, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.queueState == nil {
		return &QueueState{CurrentIndex: -1}, nil
	}
	return m.queueState, nil
}

func (m *Mock) SaveQueue(state QueueState) error {
	if m.Err != nil {
		return m.Err
	}
	m.queueState = &state
	return nil
}

func (m *Mock) GetFavorites() ([]FavoriteTrack, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]FavoriteTrack, len(m.favorites))
	copy(out, m.favorites)
	return out, nil
}

func (m *Mock) AddFavorite(t FavoriteTrack) error {
	if m.Err != nil {
		return m.Err
	}
	for i, existing := range m.favorites {
		if existing.TrackID == t.TrackID {
			m.favorites[i] = t
			return nil
		}
	}
	m.favorites = append([]FavoriteTrack{t}, m.favorites...)
	return nil
}

func (m *Mock) RemoveFavorite(trackID string) error {
	if m.Err != nil {
		return m.Err
	}
	for i, t := range m.favorites {
		if t.TrackID == trackID {
			m.favorites = append(m.favorites[:i], m.favorites[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Mock) ReplaceFavorites(tracks []FavoriteTrack) error {
	if m.Err != nil {
		return m.Err
	}
	m.favorites = make([]FavoriteTrack, len(tracks))
	copy(m.favorites, tracks)
	return nil
}

func (m *Mock) Close() error {
	m.closed = true
	return nil
}

// Test helpers

func (m *Mock) SetSettings(s Settings) { m.settings = &s }

func (m *Mock) SetQueue(state *QueueState) { m.queueState = state }

func (m *Mock) IsClosed() bool { return m.closed }

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
