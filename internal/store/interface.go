package store

import "database/sql"

// Interface defines the store contract for dependency injection and testing.
type Interface interface {
	DB() *sql.DB

	GetSettings() (Settings, error)
	SaveSettings(s Settings) error
	SaveVolume(volume float64, muted bool) error
	SaveModes(shuffle bool, repeatMode string) error
	SaveAutoplay(autoplay bool) error

	RecordPlay(t PlayedTrack) error
	GetRecentlyPlayed() ([]PlayedTrack, error)
	ClearRecentlyPlayed() error

	CreatePlaylist(name, description string) (*Playlist, error)
	GetPlaylist(id string) (*Playlist, error)
	ListPlaylists() ([]Playlist, error)
	RenamePlaylist(id, name string) error
	DeletePlaylist(id string) error
	AddPlaylistTrack(playlistID, trackID string) error
	RemovePlaylistTrack(playlistID, trackID string) error

	GetQueue() (*QueueState, error)
	SaveQueue(state QueueState) error

	GetFavorites() ([]FavoriteTrack, error)
	AddFavorite(t FavoriteTrack) error
	RemoveFavorite(trackID string) error
	ReplaceFavorites(tracks []FavoriteTrack) error

	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
