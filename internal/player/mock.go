package player

import (
	"sync"
	"time"
)

// Mock is a test double for Player. Safe for concurrent use, since
// engine tests drive it from the test goroutine while the finish
// watcher observes it from another.
type Mock struct {
	mu         sync.Mutex
	state      State
	position   time.Duration
	duration   time.Duration
	buffered   time.Duration
	loadErr    error
	loadCalls  []string
	unloads    int
	seekCalls  []time.Duration
	finishedCh chan struct{}
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{
		state:      Stopped,
		finishedCh: make(chan struct{}, 1),
	}
}

func (m *Mock) Load(url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked()
	m.loadCalls = append(m.loadCalls, url)
	if m.loadErr != nil {
		return m.loadErr
	}
	// Fresh channel per load, mirroring Player: finish signals never
	// cross streams.
	m.finishedCh = make(chan struct{}, 1)
	m.state = Paused
	m.position = 0
	return nil
}

func (m *Mock) Unload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unloadLocked()
}

func (m *Mock) unloadLocked() {
	if m.state == Stopped {
		return
	}
	m.unloads++
	m.state = Stopped
	m.position = 0
	m.duration = 0
	m.buffered = 0
}

func (m *Mock) Play() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Paused {
		m.state = Playing
	}
}

func (m *Mock) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Playing {
		m.state = Paused
	}
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Buffered() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buffered
}

func (m *Mock) SeekTo(position time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Stopped {
		return
	}
	if position < 0 {
		position = 0
	}
	if m.duration > 0 && position > m.duration {
		position = m.duration
	}
	m.position = position
	m.seekCalls = append(m.seekCalls, position)
}

func (m *Mock) Finished() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finishedCh
}

// Test helpers

func (m *Mock) SetState(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = s
}

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetBuffered(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buffered = d
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]string, len(m.loadCalls))
	copy(calls, m.loadCalls)
	return calls
}

func (m *Mock) UnloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloads
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]time.Duration, len(m.seekCalls))
	copy(calls, m.seekCalls)
	return calls
}

// SimulateFinished simulates the current stream playing to its end.
// The signal lands on the channel installed by the most recent Load, so
// a load issued afterwards supersedes it.
func (m *Mock) SimulateFinished() {
	m.mu.Lock()
	ch := m.finishedCh
	m.mu.Unlock()
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
