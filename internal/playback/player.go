package playback

import (
	"errors"
	"io"
	"os"
	"sync"
	"time"
)

// FrameDuration is the pacing interval for one streamed chunk, matching the
// 20ms voice frame cadence of the platform.
const FrameDuration = 20 * time.Millisecond

var ErrPlayerClosed = errors.New("player is closed")
var ErrTrackInFlight = errors.New("a track is already in flight")

// Player is the session's audio resource consumer. Events delivers exactly
// one value per started track: nil on completion or stop, the read error on
// failure. The channel is closed by Close.
type Player interface {
	Play(res Resource) error
	Pause()
	Resume()
	Stop()
	Events() <-chan error
	Close()
}

// FilePlayer streams a local file in frame-paced chunks. No decoding is
// performed; the bytes are read through to emulate sequential playback.
type FilePlayer struct {
	mu     sync.Mutex
	frame  time.Duration
	events chan error
	cancel chan struct{}
	paused bool
	closed bool
}

// NewFilePlayer builds a player pacing reads by frame. A zero frame disables
// pacing, which tests use to drain instantly.
func NewFilePlayer(frame time.Duration) *FilePlayer {
	return &FilePlayer{
		frame:  frame,
		events: make(chan error, 1),
	}
}

func (p *FilePlayer) Events() <-chan error {
	return p.events
}

func (p *FilePlayer) Play(res Resource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPlayerClosed
	}
	if p.cancel != nil {
		return ErrTrackInFlight
	}

	file, err := os.Open(res.Path)
	if err != nil {
		return err
	}

	cancel := make(chan struct{})
	p.cancel = cancel
	p.paused = false
	go p.stream(file, cancel)
	return nil
}

func (p *FilePlayer) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

func (p *FilePlayer) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
}

// Stop aborts the current track. The abort surfaces as a nil event, so the
// session treats it like a completed track and advances.
func (p *FilePlayer) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		close(p.cancel)
		p.cancel = nil
	}
	p.mu.Unlock()
}

func (p *FilePlayer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.cancel != nil {
		close(p.cancel)
		p.cancel = nil
	}
	close(p.events)
	p.mu.Unlock()
}

func (p *FilePlayer) stream(file *os.File, cancel <-chan struct{}) {
	defer file.Close()

	// 20ms of 48kHz 16-bit stereo PCM.
	buf := make([]byte, 3840)
	for {
		select {
		case <-cancel:
			p.finish(cancel, nil)
			return
		default:
		}

		if p.isPaused() {
			p.pace()
			continue
		}

		_, err := file.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
			}
			p.finish(cancel, err)
			return
		}
		p.pace()
	}
}

func (p *FilePlayer) finish(cancel <-chan struct{}, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == cancel {
		p.cancel = nil
	}
	if p.closed {
		return
	}
	select {
	case p.events <- err:
	default:
	}
}

func (p *FilePlayer) isPaused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *FilePlayer) pace() {
	if p.frame > 0 {
		time.Sleep(p.frame)
	}
}
