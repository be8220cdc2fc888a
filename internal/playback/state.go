package playback

// State represents the engine state.
//
// The engine has four externally observable states:
//
//   - Idle: no audio resource loaded
//   - Loading: a resource is being created
//   - Playing, Paused: a resource is loaded ("ready")
//
// A failed load surfaces its error to the caller and returns the engine
// to Idle; there is no lingering error state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsReady returns true if a resource is loaded (Playing or Paused).
func (s State) IsReady() bool {
	return s == StatePlaying || s == StatePaused
}

// RepeatMode defines the repeat behavior when the queue advances.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// String returns the persisted form of the repeat mode.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// ParseRepeatMode maps a persisted repeat mode string back to its value.
// Unknown values fall back to RepeatOff.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}
