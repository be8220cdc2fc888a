// Package player owns the process's single audio output stream.
// It streams a remote URL into a progressive buffer, decodes it, and
// plays it through the shared speaker.
package player

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

type Player struct {
	state    State
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	streamer beep.StreamSeekCloser
	format   beep.Format
	buf      *progressiveBuffer
	duration time.Duration

	httpClient *http.Client
	finishedCh chan struct{}

	volumeLevel float64
	muted       bool
}

var speakerInitialized bool

func New() *Player {
	return &Player{
		state: Stopped,
		// Streams outlive any sensible request timeout; the progressive
		// buffer handles slow bodies.
		httpClient:  &http.Client{},
		finishedCh:  make(chan struct{}, 1),
		volumeLevel: 1.0,
	}
}

// Load releases any previously loaded stream, then fetches and decodes
// the given URL. The new stream starts paused; call Play to start output.
func (p *Player) Load(url string) error {
	p.Unload()

	resp, err := p.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("open stream: status %d", resp.StatusCode)
	}

	buf := newProgressiveBuffer(resp.Body, resp.ContentLength)

	streamer, format, err := mp3.Decode(buf)
	if err != nil {
		buf.Close()
		return fmt.Errorf("decode stream: %w", err)
	}

	if !speakerInitialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			buf.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		speakerInitialized = true
	}

	p.buf = buf
	p.streamer = streamer
	p.format = format
	p.duration = format.SampleRate.D(streamer.Len())
	p.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   levelToVolume(p.volumeLevel),
		Silent:   p.muted,
	}
	p.state = Paused

	// Each stream gets its own finish channel, captured by the beep
	// callback below. A callback firing late for a cleared stream
	// signals the superseded channel, which nobody watches anymore.
	finished := make(chan struct{}, 1)
	p.finishedCh = finished

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		select {
		case finished <- struct{}{}:
		default:
		}
	})))

	return nil
}

// Unload releases the current stream. Cleanup failures are swallowed:
// they must not block releasing the slot for the next Load.
func (p *Player) Unload() {
	if p.state == Stopped {
		return
	}

	speaker.Clear()

	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
	if p.buf != nil {
		_ = p.buf.Close()
		p.buf = nil
	}

	p.ctrl = nil
	p.volume = nil
	p.duration = 0
	p.state = Stopped
}

func (p *Player) Play() {
	if p.state != Paused || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
}

func (p *Player) Pause() {
	if p.state != Playing || p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
}

func (p *Player) State() State { return p.state }

func (p *Player) Position() time.Duration {
	if p.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := p.format.SampleRate.D(p.streamer.Position())
	speaker.Unlock()
	return pos
}

func (p *Player) Duration() time.Duration {
	return p.duration
}

// Buffered estimates how much of the track is playable from the bytes
// received so far. Assumes constant bitrate, which holds for catalog
// streams.
func (p *Player) Buffered() time.Duration {
	if p.buf == nil || p.duration == 0 {
		return 0
	}
	size := p.buf.Size()
	if size <= 0 {
		return 0
	}
	downloaded := p.buf.Downloaded()
	if downloaded >= size {
		return p.duration
	}
	return time.Duration(int64(p.duration) * downloaded / size)
}

// SeekTo moves playback to the given position, clamped to [0, duration].
// No-op when nothing is loaded.
func (p *Player) SeekTo(position time.Duration) {
	if p.streamer == nil {
		return
	}
	if position < 0 {
		position = 0
	}
	if p.duration > 0 && position > p.duration {
		position = p.duration
	}
	speaker.Lock()
	_ = p.streamer.Seek(p.format.SampleRate.N(position))
	speaker.Unlock()
}

// Finished returns the end-of-track channel of the stream installed by
// the most recent Load. Unload does not signal it; re-fetch the channel
// after every Load.
func (p *Player) Finished() <-chan struct{} {
	return p.finishedCh
}
