// Package playback implements the playback engine: the single
// authoritative owner of the live audio resource, the queue with its
// shuffle/repeat policy, and the event stream UI surfaces observe.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/strumapp/strum/internal/catalog"
	"github.com/strumapp/strum/internal/player"
)

var (
	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("playback: engine closed")
	// ErrNoStream indicates a track carries no stream URL and no
	// resolver is configured to produce one.
	ErrNoStream = errors.New("playback: track has no resolvable stream")
)

// Recorder persists recently-played entries. Failures must not block
// playback; the engine logs and continues.
type Recorder interface {
	RecordPlay(track Track, playedAt time.Time) error
}

// Options configures a new Engine. The zero value is usable.
type Options struct {
	Recorder Recorder
	Logger   *zap.Logger
	Shuffle  bool
	Repeat   RepeatMode
	Rand     *rand.Rand // deterministic shuffle for tests
}

// Engine owns exactly one underlying audio resource at a time and
// serializes all control operations through its mutex, so a second load
// always fully releases the first before proceeding.
type Engine struct {
	mu sync.Mutex

	player   player.Interface
	resolver catalog.Resolver
	recorder Recorder
	log      *zap.Logger
	rng      *rand.Rand

	queue   *Queue
	repeat  RepeatMode
	shuffle bool
	state   State

	// Load generation. Incremented before every load and on every
	// unload, so a finish signal from a superseded resource is
	// discarded instead of advancing the queue.
	gen atomic.Int64

	// Finish-watch registrations. Each successful load hands the
	// watcher the finished channel of its own resource paired with the
	// generation of that load.
	watch chan finishWatch

	subsMu sync.RWMutex
	subs   []*Subscription

	done   chan struct{}
	closed bool
}

type finishWatch struct {
	finished <-chan struct{}
	gen      int64
}

// New creates an engine around the given audio resource and catalog
// resolver. Call Close to release the resource and stop event delivery.
func New(p player.Interface, resolver catalog.Resolver, opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // shuffle is not security-sensitive
	}
	e := &Engine{
		player:   p,
		resolver: resolver,
		recorder: opts.Recorder,
		log:      log,
		rng:      rng,
		queue:    NewQueue(),
		repeat:   opts.Repeat,
		shuffle:  opts.Shuffle,
		state:    StateIdle,
		watch:    make(chan finishWatch, 1),
		done:     make(chan struct{}),
	}
	go e.watchFinished()
	return e
}

// Load replaces the queue with the single given track and loads it.
// Resource-creation failures propagate to the caller; the engine
// remains usable for a subsequent load.
func (e *Engine) Load(ctx context.Context, track Track, autoplay bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	prev := copyTrack(e.queue.Current())
	prevIdx := e.queue.Index()

	e.queue.Replace([]Track{track}, 0)
	e.emitQueue()

	if err := e.loadCurrentLocked(ctx, autoplay); err != nil {
		return err
	}
	e.emitTrack(prev, prevIdx)
	return nil
}

// PlayFromList replaces the queue wholesale and loads the track at
// startIndex (clamped into valid range). An empty list clears the queue
// and releases the audio resource.
func (e *Engine) PlayFromList(ctx context.Context, tracks []Track, startIndex int, autoplay bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	prev := copyTrack(e.queue.Current())
	prevIdx := e.queue.Index()

	if len(tracks) == 0 {
		e.queue.Clear()
		e.emitQueue()
		e.unloadLocked()
		return nil
	}

	e.queue.Replace(tracks, startIndex)
	e.emitQueue()

	if err := e.loadCurrentLocked(ctx, autoplay); err != nil {
		return err
	}
	e.emitTrack(prev, prevIdx)
	return nil
}

// Play resumes a paused resource. Silent no-op with nothing loaded.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsReady() {
		return
	}
	e.player.Play()
	e.setStateLocked(StatePlaying)
}

// Pause pauses a playing resource. Silent no-op with nothing loaded.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsReady() {
		return
	}
	e.player.Pause()
	e.setStateLocked(StatePaused)
}

// Toggle inverts the playing state. Silent no-op with nothing loaded.
func (e *Engine) Toggle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.state {
	case StatePlaying:
		e.player.Pause()
		e.setStateLocked(StatePaused)
	case StatePaused:
		e.player.Play()
		e.setStateLocked(StatePlaying)
	case StateIdle, StateLoading:
		// Nothing to toggle
	}
}

// Seek moves playback to the given position, clamped to
// [0, duration]. Silent no-op with nothing loaded.
func (e *Engine) Seek(position time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.IsReady() {
		return
	}
	if position < 0 {
		position = 0
	}
	if d := e.player.Duration(); d > 0 && position > d {
		position = d
	}
	e.player.SeekTo(position)
	e.emitPosition(position)
}

// Next advances the queue per the shuffle/repeat policy and loads the
// resolved track with autoplay. Queue exhaustion is a silent no-op.
func (e *Engine) Next(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	_, err := e.advanceLocked(ctx, 1)
	return err
}

// Previous moves the queue backwards per the shuffle/repeat policy and
// loads the resolved track with autoplay. Silent no-op at the start of
// a non-repeating queue.
func (e *Engine) Previous(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	_, err := e.advanceLocked(ctx, -1)
	return err
}

// Close releases the audio resource and closes all subscriptions.
// Idempotent: safe to call when already idle or closed, including while
// a load is still in flight on another goroutine.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.unloadLocked()
	close(e.done)
	e.mu.Unlock()

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()

	return nil
}

// --- Mode control ---

// Repeat returns the current repeat mode.
func (e *Engine) Repeat() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.repeat
}

// SetRepeat sets the repeat mode.
func (e *Engine) SetRepeat(mode RepeatMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.repeat == mode {
		return
	}
	e.repeat = mode
	e.emitMode()
}

// CycleRepeat advances off → all → one → off and returns the new mode.
func (e *Engine) CycleRepeat() RepeatMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch e.repeat {
	case RepeatOff:
		e.repeat = RepeatAll
	case RepeatAll:
		e.repeat = RepeatOne
	case RepeatOne:
		e.repeat = RepeatOff
	}
	e.emitMode()
	return e.repeat
}

// Shuffle returns whether shuffle is enabled.
func (e *Engine) Shuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shuffle
}

// SetShuffle enables or disables shuffle.
func (e *Engine) SetShuffle(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shuffle == enabled {
		return
	}
	e.shuffle = enabled
	e.emitMode()
}

// ToggleShuffle inverts shuffle and returns the new value.
func (e *Engine) ToggleShuffle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shuffle = !e.shuffle
	e.emitMode()
	return e.shuffle
}

// --- State queries ---

// Status is a point-in-time snapshot of the engine's observable state.
// Position, duration and buffered amount come from the underlying
// resource and lag commands by up to one status update.
type Status struct {
	State    State
	Current  *Track
	Position time.Duration
	Duration time.Duration
	Buffered time.Duration
	Queue    []Track
	Index    int
	Repeat   RepeatMode
	Shuffle  bool
}

// Status returns a snapshot of the observable engine state. The queue
// and track are copies; mutating them does not affect the engine.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		State:    e.state,
		Current:  copyTrack(e.queue.Current()),
		Position: e.player.Position(),
		Duration: e.player.Duration(),
		Buffered: e.player.Buffered(),
		Queue:    e.queue.Tracks(),
		Index:    e.queue.Index(),
		Repeat:   e.repeat,
		Shuffle:  e.shuffle,
	}
}

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns a copy of the current track, or nil if none.
func (e *Engine) Current() *Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return copyTrack(e.queue.Current())
}

// QueueTracks returns a copy of the queue contents.
func (e *Engine) QueueTracks() []Track {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Tracks()
}

// QueueIndex returns the current queue index (-1 if empty).
func (e *Engine) QueueIndex() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Index()
}

// --- Event subscription ---

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Unsubscribe removes a subscription and closes its Done channel.
func (e *Engine) Unsubscribe(sub *Subscription) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for i, s := range e.subs {
		if s == sub {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			sub.close()
			return
		}
	}
}

// --- Internals ---

// loadCurrentLocked releases the previous audio resource and loads the
// queue's current track. The generation counter is bumped first so the
// finish watcher discards any in-flight signal from the old resource.
func (e *Engine) loadCurrentLocked(ctx context.Context, autoplay bool) error {
	t := e.queue.Current()
	if t == nil {
		return nil
	}
	prevState := e.state

	url := t.StreamURL
	if url == "" {
		if e.resolver == nil {
			return ErrNoStream
		}
		e.state = StateLoading
		resolved, err := e.resolver.ResolveStreamURL(ctx, t.ID)
		if err != nil {
			e.state = StateIdle
			e.emitError("resolve", t.ID, err)
			e.emitStateChange(prevState)
			return fmt.Errorf("resolve stream for %s: %w", t.ID, err)
		}
		url = resolved
		t.StreamURL = url
	}

	e.gen.Add(1)
	e.state = StateLoading
	if err := e.player.Load(url); err != nil {
		e.state = StateIdle
		e.emitError("load", t.ID, err)
		e.emitStateChange(prevState)
		return fmt.Errorf("load %s: %w", t.ID, err)
	}
	e.registerWatchLocked()

	if autoplay {
		e.player.Play()
		e.state = StatePlaying
	} else {
		e.state = StatePaused
	}

	e.recordPlayLocked(*t)
	e.emitStateChange(prevState)
	return nil
}

// advanceLocked resolves and loads the next index for the given
// direction. Returns false without error when resolution yields no
// valid index (end of a non-repeating queue, empty queue).
func (e *Engine) advanceLocked(ctx context.Context, dir int) (bool, error) {
	idx, ok := e.queue.Resolve(dir, e.repeat, e.shuffle, e.rng)
	if !ok {
		return false, nil
	}

	prev := copyTrack(e.queue.Current())
	prevIdx := e.queue.Index()

	e.queue.MoveTo(idx)
	if err := e.loadCurrentLocked(ctx, true); err != nil {
		return false, err
	}
	e.emitTrack(prev, prevIdx)
	return true, nil
}

func (e *Engine) unloadLocked() {
	e.gen.Add(1)
	prevState := e.state
	e.player.Unload()
	e.state = StateIdle
	if prevState != StateIdle {
		e.emitStateChange(prevState)
	}
}

// registerWatchLocked points the finish watcher at the channel the load
// that just succeeded installed, paired with that load's generation. A
// registration still pending from a superseded load is discarded first,
// so the send below can never block.
func (e *Engine) registerWatchLocked() {
	w := finishWatch{finished: e.player.Finished(), gen: e.gen.Load()}
	select {
	case <-e.watch:
	default:
	}
	e.watch <- w
}

// watchFinished consumes natural end-of-track signals for the lifetime
// of the engine. The watcher only ever listens to the channel of the
// most recently registered load: registering a replacement detaches the
// superseded resource's channel, and a signal consumed just before the
// swap still carries the old load's generation, which
// handleTrackFinished rejects.
func (e *Engine) watchFinished() {
	var finished <-chan struct{}
	var gen int64
	for {
		select {
		case w := <-e.watch:
			finished, gen = w.finished, w.gen
		case <-finished:
			e.handleTrackFinished(gen)
			finished = nil
		case <-e.done:
			return
		}
	}
}

func (e *Engine) handleTrackFinished(gen int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || gen != e.gen.Load() {
		return
	}

	wasPlaying := e.state == StatePlaying

	if e.repeat == RepeatOne {
		// Replay the current slot from zero; no TrackChange is emitted.
		if err := e.loadCurrentLocked(context.Background(), wasPlaying); err != nil {
			e.log.Warn("repeat-one replay failed", zap.Error(err))
			return
		}
		e.emitPosition(0)
		return
	}

	advanced, err := e.advanceLocked(context.Background(), 1)
	if err != nil {
		e.log.Warn("auto-advance failed", zap.Error(err))
		return
	}
	if !advanced {
		// End of a non-repeating queue: the stream has drained.
		e.setStateLocked(StatePaused)
	}
}

func (e *Engine) recordPlayLocked(t Track) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordPlay(t, time.Now()); err != nil {
		e.log.Warn("record recently played failed",
			zap.String("track_id", t.ID),
			zap.Error(err))
	}
}

func (e *Engine) setStateLocked(s State) {
	if e.state == s {
		return
	}
	prev := e.state
	e.state = s
	e.emitStateChange(prev)
}

// --- Event emission ---

func (e *Engine) publish(ev Event) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		sub.publish(ev)
	}
}

func (e *Engine) emitStateChange(prev State) {
	e.publish(StateChange{Previous: prev, Current: e.state})
}

func (e *Engine) emitTrack(prev *Track, prevIdx int) {
	e.publish(TrackChange{
		Previous:      prev,
		Current:       copyTrack(e.queue.Current()),
		PreviousIndex: prevIdx,
		Index:         e.queue.Index(),
	})
}

func (e *Engine) emitQueue() {
	e.publish(QueueChange{Tracks: e.queue.Tracks(), Index: e.queue.Index()})
}

func (e *Engine) emitMode() {
	e.publish(ModeChange{Repeat: e.repeat, Shuffle: e.shuffle})
}

func (e *Engine) emitPosition(pos time.Duration) {
	e.publish(PositionChange{Position: pos})
}

func (e *Engine) emitError(op, trackID string, err error) {
	e.publish(ErrorEvent{Operation: op, TrackID: trackID, Err: err})
}

func copyTrack(t *Track) *Track {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
