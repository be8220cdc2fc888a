package playback

import "math/rand"

// Queue holds the ordered track sequence and the current index.
// It is owned exclusively by the Engine; callers observe copies.
//
// Invariant: index is within [0, len-1] when the queue is non-empty;
// an empty queue has index -1 and no current track.
type Queue struct {
	tracks []Track
	index  int
}

// NewQueue creates a new empty queue.
func NewQueue() *Queue {
	return &Queue{index: -1}
}

// Current returns the track at the current index, or nil if none.
func (q *Queue) Current() *Track {
	if q.index < 0 || q.index >= len(q.tracks) {
		return nil
	}
	return &q.tracks[q.index]
}

// Index returns the current index (-1 if the queue is empty).
func (q *Queue) Index() int {
	return q.index
}

// Len returns the number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// Tracks returns a copy of all tracks in the queue.
func (q *Queue) Tracks() []Track {
	result := make([]Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Replace swaps the queue contents wholesale and moves the index to
// startIndex, clamped into valid range. Returns the track at the new
// index, or nil for an empty list.
func (q *Queue) Replace(tracks []Track, startIndex int) *Track {
	q.tracks = make([]Track, len(tracks))
	copy(q.tracks, tracks)

	if len(q.tracks) == 0 {
		q.index = -1
		return nil
	}

	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= len(q.tracks) {
		startIndex = len(q.tracks) - 1
	}
	q.index = startIndex
	return q.Current()
}

// MoveTo sets the current index. Returns the track at that position,
// or nil if the index is invalid.
func (q *Queue) MoveTo(index int) *Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.index = index
	return q.Current()
}

// Clear removes all tracks and resets the index.
func (q *Queue) Clear() {
	q.tracks = nil
	q.index = -1
}

// Resolve computes the next index for the given direction (+1 next,
// -1 previous) under the current shuffle/repeat policy. Returns false
// when there is no valid advance (end of a non-repeating queue, empty
// queue, or shuffle with a single track).
//
// Shuffle picks a uniformly random index different from the current
// one; repeat-all wraps linear moves past either end.
func (q *Queue) Resolve(dir int, repeat RepeatMode, shuffle bool, rng *rand.Rand) (int, bool) {
	n := len(q.tracks)
	if n == 0 || q.index < 0 {
		return 0, false
	}

	if shuffle {
		if n <= 1 {
			return q.index, false
		}
		idx := rng.Intn(n - 1)
		if idx >= q.index {
			idx++
		}
		return idx, true
	}

	candidate := q.index + dir
	if candidate < 0 || candidate >= n {
		if repeat == RepeatAll {
			if candidate < 0 {
				return n - 1, true
			}
			return 0, true
		}
		return 0, false
	}
	return candidate, true
}
