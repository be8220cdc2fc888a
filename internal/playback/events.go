package playback

import "time"

// Event is a playback notification delivered on a Subscription's
// stream. The concrete types below are the full set; consumers
// type-switch on them.
type Event interface {
	event()
}

func (StateChange) event()    {}
func (TrackChange) event()    {}
func (QueueChange) event()    {}
func (ModeChange) event()     {}
func (PositionChange) event() {}
func (ErrorEvent) event()     {}

// StateChange is emitted when the engine state changes.
type StateChange struct {
	Previous State
	Current  State
}

// TrackChange is emitted when playback moves to a different track.
//
// Emitted by Load, Next/Previous, PlayFromList, and natural end-of-track
// advancement. Pause/Play do not emit it, and neither does repeat-one
// replaying the same track.
type TrackChange struct {
	Previous      *Track
	Current       *Track
	PreviousIndex int
	Index         int
}

// QueueChange is emitted when the queue contents are replaced.
type QueueChange struct {
	Tracks []Track
	Index  int
}

// ModeChange is emitted when repeat or shuffle mode changes.
type ModeChange struct {
	Repeat  RepeatMode
	Shuffle bool
}

// PositionChange is emitted when a seek occurs (including the seek to
// zero performed by repeat-one).
type PositionChange struct {
	Position time.Duration
}

// ErrorEvent is emitted when an operation against the audio resource or
// the catalog fails. Load failures are also returned to the caller; the
// event exists so passive observers (UI surfaces) can react too.
type ErrorEvent struct {
	Operation string // e.g. "load", "resolve"
	TrackID   string
	Err       error
}
