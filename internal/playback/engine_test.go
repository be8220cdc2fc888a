package playback

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/strumapp/strum/internal/player"
)

type fakeResolver struct {
	urls map[string]string
	err  error
}

func (r *fakeResolver) ResolveStreamURL(_ context.Context, trackID string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.urls[trackID], nil
}

type fakeRecorder struct {
	mu  sync.Mutex
	ids []string
}

func (r *fakeRecorder) RecordPlay(track Track, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, track.ID)
	return nil
}

func (r *fakeRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.ids))
	copy(ids, r.ids)
	return ids
}

func newTestEngine(t *testing.T, mock *player.Mock, opts Options) *Engine {
	t.Helper()
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	e := New(mock, nil, opts)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

// waitFor drains the subscription's event stream until an event of the
// requested type arrives, skipping others.
func waitFor[T Event](t *testing.T, sub *Subscription) T {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sub.Events():
			if typed, ok := ev.(T); ok {
				return typed
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestEngineLoadPlays(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	track := Track{ID: "t1", StreamURL: "https://cdn.example/t1"}
	if err := e.Load(context.Background(), track, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := e.State(); got != StatePlaying {
		t.Errorf("State() = %v, want %v", got, StatePlaying)
	}
	if calls := mock.LoadCalls(); len(calls) != 1 || calls[0] != track.StreamURL {
		t.Errorf("LoadCalls() = %v, want [%s]", calls, track.StreamURL)
	}
	cur := e.Current()
	if cur == nil || cur.ID != "t1" {
		t.Errorf("Current() = %v, want track t1", cur)
	}
	if got := e.QueueIndex(); got != 0 {
		t.Errorf("QueueIndex() = %d, want 0", got)
	}
}

func TestEngineLoadWithoutAutoplay(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	err := e.Load(context.Background(), Track{ID: "t1", StreamURL: "u"}, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := e.State(); got != StatePaused {
		t.Errorf("State() = %v, want %v", got, StatePaused)
	}
}

func TestEngineLoadResolvesStreamURL(t *testing.T) {
	mock := player.NewMock()
	resolver := &fakeResolver{urls: map[string]string{"t1": "https://cdn.example/resolved"}}
	e := New(mock, resolver, Options{Rand: rand.New(rand.NewSource(1))})
	t.Cleanup(func() { _ = e.Close() })

	if err := e.Load(context.Background(), Track{ID: "t1"}, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if calls := mock.LoadCalls(); len(calls) != 1 || calls[0] != "https://cdn.example/resolved" {
		t.Errorf("LoadCalls() = %v, want the resolved URL", calls)
	}
}

func TestEngineLoadResolveFailure(t *testing.T) {
	mock := player.NewMock()
	resolveErr := errors.New("catalog down")
	e := New(mock, &fakeResolver{err: resolveErr}, Options{Rand: rand.New(rand.NewSource(1))})
	t.Cleanup(func() { _ = e.Close() })

	err := e.Load(context.Background(), Track{ID: "t1"}, true)
	if !errors.Is(err, resolveErr) {
		t.Fatalf("Load() error = %v, want wrapped %v", err, resolveErr)
	}
	if got := e.State(); got != StateIdle {
		t.Errorf("State() after resolve failure = %v, want %v", got, StateIdle)
	}
}

func TestEngineLoadWithoutResolver(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	err := e.Load(context.Background(), Track{ID: "t1"}, true)
	if !errors.Is(err, ErrNoStream) {
		t.Errorf("Load() error = %v, want %v", err, ErrNoStream)
	}
}

func TestEngineLoadFailureLeavesEngineUsable(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	loadErr := errors.New("decode failed")
	mock.SetLoadError(loadErr)
	err := e.Load(context.Background(), Track{ID: "bad", StreamURL: "u1"}, true)
	if !errors.Is(err, loadErr) {
		t.Fatalf("Load() error = %v, want wrapped %v", err, loadErr)
	}
	if got := e.State(); got != StateIdle {
		t.Errorf("State() after load failure = %v, want %v", got, StateIdle)
	}

	mock.SetLoadError(nil)
	if err := e.Load(context.Background(), Track{ID: "ok", StreamURL: "u2"}, true); err != nil {
		t.Fatalf("Load() after earlier failure error = %v", err)
	}
	if got := e.State(); got != StatePlaying {
		t.Errorf("State() = %v, want %v", got, StatePlaying)
	}
}

func TestEngineSecondLoadReleasesFirst(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	ctx := context.Background()
	if err := e.Load(ctx, Track{ID: "a", StreamURL: "ua"}, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := e.Load(ctx, Track{ID: "b", StreamURL: "ub"}, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := mock.UnloadCount(); got != 1 {
		t.Errorf("UnloadCount() = %d, want 1 (first resource released)", got)
	}
	if calls := mock.LoadCalls(); len(calls) != 2 {
		t.Errorf("LoadCalls() = %v, want two loads", calls)
	}
}

func TestEnginePlayPauseIdleNoOp(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	e.Play()
	e.Pause()
	e.Toggle()
	e.Seek(30 * time.Second)

	if got := e.State(); got != StateIdle {
		t.Errorf("State() = %v, want %v", got, StateIdle)
	}
	if calls := mock.SeekCalls(); len(calls) != 0 {
		t.Errorf("SeekCalls() = %v, want none while idle", calls)
	}
}

func TestEngineToggle(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	if err := e.Load(context.Background(), Track{ID: "a", StreamURL: "u"}, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	e.Toggle()
	if got := e.State(); got != StatePaused {
		t.Errorf("State() after toggle = %v, want %v", got, StatePaused)
	}
	e.Toggle()
	if got := e.State(); got != StatePlaying {
		t.Errorf("State() after second toggle = %v, want %v", got, StatePlaying)
	}
}

func TestEngineSeekClamps(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	if err := e.Load(context.Background(), Track{ID: "a", StreamURL: "u"}, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	mock.SetDuration(3 * time.Minute)

	e.Seek(-5 * time.Second)
	e.Seek(10 * time.Minute)

	calls := mock.SeekCalls()
	if len(calls) != 2 {
		t.Fatalf("SeekCalls() = %v, want 2 calls", calls)
	}
	if calls[0] != 0 {
		t.Errorf("negative seek clamped to %v, want 0", calls[0])
	}
	if calls[1] != 3*time.Minute {
		t.Errorf("overlong seek clamped to %v, want %v", calls[1], 3*time.Minute)
	}
}

func TestEngineNextPrevious(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})
	ctx := context.Background()

	tracks := makeTracks("a", "b", "c")
	if err := e.PlayFromList(ctx, tracks, 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}

	if err := e.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if cur := e.Current(); cur == nil || cur.ID != "b" {
		t.Errorf("Current() after Next = %v, want b", cur)
	}

	if err := e.Previous(ctx); err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if cur := e.Current(); cur == nil || cur.ID != "a" {
		t.Errorf("Current() after Previous = %v, want a", cur)
	}
}

func TestEnginePreviousWrapsWithRepeatAll(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{Repeat: RepeatAll})
	ctx := context.Background()

	if err := e.PlayFromList(ctx, makeTracks("a", "b", "c"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	if err := e.Previous(ctx); err != nil {
		t.Fatalf("Previous() error = %v", err)
	}
	if got := e.QueueIndex(); got != 2 {
		t.Errorf("QueueIndex() after wrapped Previous = %d, want 2", got)
	}
}

func TestEngineNextAtEndNoRepeatIsNoOp(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})
	ctx := context.Background()

	if err := e.PlayFromList(ctx, makeTracks("a", "b"), 1, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	before := len(mock.LoadCalls())

	if err := e.Next(ctx); err != nil {
		t.Fatalf("Next() at end error = %v, want nil", err)
	}
	if got := e.QueueIndex(); got != 1 {
		t.Errorf("QueueIndex() = %d, want unchanged 1", got)
	}
	if got := len(mock.LoadCalls()); got != before {
		t.Errorf("Next() at end triggered a load")
	}
}

func TestEngineNextOnEmptyQueue(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	if err := e.Next(context.Background()); err != nil {
		t.Errorf("Next() on empty queue error = %v, want nil", err)
	}
	if err := e.Previous(context.Background()); err != nil {
		t.Errorf("Previous() on empty queue error = %v, want nil", err)
	}
}

func TestEnginePlayFromListClampsIndex(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	err := e.PlayFromList(context.Background(), makeTracks("a", "b"), 7, true)
	if err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	if got := e.QueueIndex(); got != 1 {
		t.Errorf("QueueIndex() = %d, want clamped 1", got)
	}
}

func TestEnginePlayFromListEmptyClears(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})
	ctx := context.Background()

	if err := e.PlayFromList(ctx, makeTracks("a"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	if err := e.PlayFromList(ctx, nil, 0, true); err != nil {
		t.Fatalf("PlayFromList(empty) error = %v", err)
	}

	if got := e.State(); got != StateIdle {
		t.Errorf("State() = %v, want %v", got, StateIdle)
	}
	if got := e.QueueIndex(); got != -1 {
		t.Errorf("QueueIndex() = %d, want -1", got)
	}
	if got := mock.UnloadCount(); got != 1 {
		t.Errorf("UnloadCount() = %d, want 1", got)
	}
}

func TestEngineFinishAdvances(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})
	sub := e.Subscribe()

	if err := e.PlayFromList(context.Background(), makeTracks("a", "b"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	// Drain the TrackChange from the initial load.
	waitFor[TrackChange](t, sub)

	mock.SimulateFinished()
	ev := waitFor[TrackChange](t, sub)

	if ev.Current == nil || ev.Current.ID != "b" {
		t.Errorf("TrackChange.Current = %v, want b", ev.Current)
	}
	if ev.Previous == nil || ev.Previous.ID != "a" {
		t.Errorf("TrackChange.Previous = %v, want a", ev.Previous)
	}
	if got := e.State(); got != StatePlaying {
		t.Errorf("State() after auto-advance = %v, want %v", got, StatePlaying)
	}
}

func TestEngineFinishAtEndPauses(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})
	sub := e.Subscribe()

	if err := e.PlayFromList(context.Background(), makeTracks("a"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	waitFor[TrackChange](t, sub)

	mock.SimulateFinished()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sub.Events():
			if sc, ok := ev.(StateChange); ok && sc.Current == StatePaused {
				return
			}
		case <-deadline:
			t.Fatal("engine never paused after the queue drained")
		}
	}
}

func TestEngineRepeatOneReplays(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{Repeat: RepeatOne})
	sub := e.Subscribe()

	if err := e.PlayFromList(context.Background(), makeTracks("a", "b"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	waitFor[TrackChange](t, sub)

	mock.SimulateFinished()

	deadline := time.After(2 * time.Second)
scan:
	for {
		select {
		case ev := <-sub.Events():
			switch ev := ev.(type) {
			case TrackChange:
				t.Fatalf("repeat-one emitted TrackChange %+v", ev)
			case PositionChange:
				if ev.Position != 0 {
					t.Errorf("PositionChange = %v, want 0", ev.Position)
				}
				break scan
			}
		case <-deadline:
			t.Fatal("timed out waiting for repeat-one position reset")
		}
	}

	if cur := e.Current(); cur == nil || cur.ID != "a" {
		t.Errorf("Current() = %v, want still a", cur)
	}
}

func TestEngineRecordsPlays(t *testing.T) {
	mock := player.NewMock()
	rec := &fakeRecorder{}
	e := newTestEngine(t, mock, Options{Recorder: rec})
	ctx := context.Background()

	if err := e.PlayFromList(ctx, makeTracks("a", "b"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	if err := e.Next(ctx); err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	got := rec.recorded()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("recorded plays = %v, want [a b]", got)
	}
}

func TestEngineModeChanges(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})
	sub := e.Subscribe()

	if got := e.CycleRepeat(); got != RepeatAll {
		t.Errorf("CycleRepeat() = %v, want %v", got, RepeatAll)
	}
	if got := e.CycleRepeat(); got != RepeatOne {
		t.Errorf("CycleRepeat() = %v, want %v", got, RepeatOne)
	}
	if got := e.CycleRepeat(); got != RepeatOff {
		t.Errorf("CycleRepeat() = %v, want %v", got, RepeatOff)
	}

	if got := e.ToggleShuffle(); !got {
		t.Error("ToggleShuffle() = false, want true")
	}
	if !e.Shuffle() {
		t.Error("Shuffle() = false, want true")
	}

	ev := waitFor[ModeChange](t, sub)
	if ev.Repeat != RepeatAll {
		t.Errorf("first ModeChange.Repeat = %v, want %v", ev.Repeat, RepeatAll)
	}
}

func TestEngineShuffleNext(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{Shuffle: true, Rand: rand.New(rand.NewSource(3))})
	ctx := context.Background()

	if err := e.PlayFromList(ctx, makeTracks("a", "b", "c", "d"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}

	prev := e.QueueIndex()
	for i := 0; i < 20; i++ {
		if err := e.Next(ctx); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		cur := e.QueueIndex()
		if cur == prev {
			t.Fatalf("shuffle Next() stayed on index %d", cur)
		}
		prev = cur
	}
}

func TestEngineStatusSnapshot(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{Repeat: RepeatAll})

	if err := e.PlayFromList(context.Background(), makeTracks("a", "b"), 1, false); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}
	mock.SetDuration(4 * time.Minute)
	mock.SetPosition(90 * time.Second)
	mock.SetBuffered(2 * time.Minute)

	st := e.Status()
	if st.State != StatePaused {
		t.Errorf("Status.State = %v, want %v", st.State, StatePaused)
	}
	if st.Current == nil || st.Current.ID != "b" {
		t.Errorf("Status.Current = %v, want b", st.Current)
	}
	if st.Index != 1 || len(st.Queue) != 2 {
		t.Errorf("Status queue = %d tracks at index %d, want 2 at 1", len(st.Queue), st.Index)
	}
	if st.Position != 90*time.Second || st.Duration != 4*time.Minute || st.Buffered != 2*time.Minute {
		t.Errorf("Status timings = %v/%v/%v", st.Position, st.Duration, st.Buffered)
	}
	if st.Repeat != RepeatAll {
		t.Errorf("Status.Repeat = %v, want %v", st.Repeat, RepeatAll)
	}

	st.Queue[0].ID = "mutated"
	if e.QueueTracks()[0].ID != "a" {
		t.Error("mutating the snapshot queue should not affect the engine")
	}
}

func TestEngineStaleFinishIgnored(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	if err := e.PlayFromList(context.Background(), makeTracks("a", "b"), 0, true); err != nil {
		t.Fatalf("PlayFromList() error = %v", err)
	}

	// A finish signal captured before the current load carries a stale
	// generation and must not advance the queue.
	e.handleTrackFinished(e.gen.Load() - 1)

	if got := e.QueueIndex(); got != 0 {
		t.Errorf("QueueIndex() = %d, want 0 (stale signal must not advance)", got)
	}
	if got := e.State(); got != StatePlaying {
		t.Errorf("State() = %v, want %v", got, StatePlaying)
	}
}

func TestEngineFinishFromSupersededLoadIgnored(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})
	ctx := context.Background()

	// An end-of-track signal emitted for the old queue must never
	// advance a queue loaded afterwards, no matter when the watcher
	// gets around to consuming it.
	for i := 0; i < 50; i++ {
		if err := e.PlayFromList(ctx, makeTracks("a", "b"), 0, true); err != nil {
			t.Fatalf("PlayFromList() error = %v", err)
		}
		mock.SimulateFinished()
		if err := e.PlayFromList(ctx, makeTracks("c", "d"), 0, true); err != nil {
			t.Fatalf("PlayFromList() error = %v", err)
		}

		time.Sleep(time.Millisecond)
		if cur := e.Current(); cur == nil || cur.ID != "c" {
			t.Fatalf("iteration %d: Current() = %+v, want freshly loaded c", i, cur)
		}
		if got := e.QueueIndex(); got != 0 {
			t.Fatalf("iteration %d: QueueIndex() = %d, want 0", i, got)
		}
	}
}

func TestEngineCloseIdempotent(t *testing.T) {
	mock := player.NewMock()
	e := New(mock, nil, Options{Rand: rand.New(rand.NewSource(1))})

	if err := e.Load(context.Background(), Track{ID: "a", StreamURL: "u"}, true); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if got := mock.UnloadCount(); got != 1 {
		t.Errorf("UnloadCount() = %d, want 1", got)
	}
	if err := e.Load(context.Background(), Track{ID: "b", StreamURL: "u"}, true); !errors.Is(err, ErrClosed) {
		t.Errorf("Load() after Close error = %v, want %v", err, ErrClosed)
	}
}

func TestEngineUnsubscribe(t *testing.T) {
	mock := player.NewMock()
	e := newTestEngine(t, mock, Options{})

	sub := e.Subscribe()
	e.Unsubscribe(sub)

	select {
	case <-sub.Done():
	default:
		t.Error("Done should be closed after Unsubscribe")
	}
}
