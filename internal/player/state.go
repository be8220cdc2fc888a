package player

// State represents the audio resource state machine.
//
// Valid transitions:
//   - Stopped → Playing or Paused (via Load; which one depends on
//     whether Play is called before the first status read)
//   - Playing → Paused  (via Pause)
//   - Paused  → Playing (via Play)
//   - any     → Stopped (via Unload)
//
// Invalid transitions are no-ops:
//   - Play/Pause with nothing loaded (ignored)
//   - Unload when already stopped (ignored)
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a stream is loaded (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}
