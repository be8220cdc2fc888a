package store

import (
	"database/sql"
	"errors"
)

// Settings holds the persisted player settings. Missing rows produce
// DefaultSettings rather than an error, so a fresh install starts with
// sane values.
type Settings struct {
	Autoplay   bool
	Shuffle    bool
	RepeatMode string // "off", "all", "one"
	Volume     float64
	Muted      bool
}

// DefaultSettings returns the settings used before anything is saved.
func DefaultSettings() Settings {
	return Settings{
		Autoplay:   true,
		Shuffle:    false,
		RepeatMode: "off",
		Volume:     1.0,
		Muted:      false,
	}
}

// GetSettings returns the saved player settings, or defaults if none
// were ever saved.
func (m *Manager) GetSettings() (Settings, error) {
	var s Settings
	row := m.db.QueryRow(`SELECT autoplay, shuffle, repeat_mode, volume, muted FROM player_settings WHERE id = 1`)
	err := row.Scan(&s.Autoplay, &s.Shuffle, &s.RepeatMode, &s.Volume, &s.Muted)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return DefaultSettings(), err
	}
	return s, nil
}

// SaveSettings persists the player settings.
func (m *Manager) SaveSettings(s Settings) error {
	_, err := m.db.Exec(`
		INSERT INTO player_settings (id, autoplay, shuffle, repeat_mode, volume, muted)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			autoplay = excluded.autoplay,
			shuffle = excluded.shuffle,
			repeat_mode = excluded.repeat_mode,
			volume = excluded.volume,
			muted = excluded.muted
	`, s.Autoplay, s.Shuffle, s.RepeatMode, s.Volume, s.Muted)
	return err
}

// SaveAutoplay persists only the autoplay preference.
func (m *Manager) SaveAutoplay(autoplay bool) error {
	_, err := m.db.Exec(`
		INSERT INTO player_settings (id, autoplay)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET
			autoplay = excluded.autoplay
	`, autoplay)
	return err
}

// SaveVolume persists only the volume level, leaving the playback modes
// untouched.
func (m *Manager) SaveVolume(volume float64, muted bool) error {
	_, err := m.db.Exec(`
		INSERT INTO player_settings (id, volume, muted)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted
	`, volume, muted)
	return err
}

// SaveModes persists only shuffle and repeat, leaving volume untouched.
func (m *Manager) SaveModes(shuffle bool, repeatMode string) error {
	_, err := m.db.Exec(`
		INSERT INTO player_settings (id, shuffle, repeat_mode)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			shuffle = excluded.shuffle,
			repeat_mode = excluded.repeat_mode
	`, shuffle, repeatMode)
	return err
}
