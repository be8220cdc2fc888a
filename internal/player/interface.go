package player

import (
	"time"
)

// Interface defines the audio resource contract for dependency injection
// and testing. At most one stream is loaded at a time; Load releases the
// previous stream before acquiring the next and installs a fresh
// Finished channel for the new one, so an end-of-track signal from a
// superseded stream is never delivered on the current stream's channel.
type Interface interface {
	Load(url string) error
	Unload()
	Play()
	Pause()
	State() State
	Position() time.Duration
	Duration() time.Duration
	Buffered() time.Duration
	SeekTo(position time.Duration)
	Finished() <-chan struct{}
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
