package playback

import "time"

// Track represents a track in the queue. Instances are immutable once
// constructed; a new load produces a new value. Each queue slot owns its
// track, so engine callers always receive copies.
type Track struct {
	ID        string
	Title     string
	Artist    string
	Artwork   string
	StreamURL string // resolved media URL, filled by the engine on load
	Duration  time.Duration
}
