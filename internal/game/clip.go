package game

import (
	"sync"
	"time"

	"blindtest-service/internal/domain"
)

// ClipHooks receives playback notifications from an AudioClip. Nil fields
// are skipped. Hook implementations must not call back into the session's
// locked operations; the session wires them to timer control and event
// publishing only.
type ClipHooks struct {
	OnPlay       func()
	OnPause      func()
	OnEnded      func()
	OnTimeUpdate func(position, duration time.Duration)
}

// AudioClip is the playback capability for one track's prompt audio. The
// device itself lives outside this module; implementations bridge to a real
// player (e.g. a connected renderer) and fire hooks as the device reports
// state changes.
type AudioClip interface {
	Play()
	Stop()
	Position() time.Duration
	Duration() time.Duration
	// Subscribe attaches hooks and returns a detach function. Detaching
	// twice is a no-op.
	Subscribe(hooks ClipHooks) (detach func())
}

// ClipProvider builds the AudioClip for a track when a session is created.
type ClipProvider func(track domain.Track) AudioClip

// LoopbackClip is an AudioClip with no real device behind it: Play reports
// "playing" immediately and Stop reports "paused". It keeps the countdown
// running in headless setups where no renderer manages audio.
type LoopbackClip struct {
	mu      sync.Mutex
	playing bool
	hooks   map[int]ClipHooks
	nextID  int
}

func NewLoopbackClip() *LoopbackClip {
	return &LoopbackClip{hooks: make(map[int]ClipHooks)}
}

// LoopbackProvider is a ClipProvider handing out loopback clips.
func LoopbackProvider(domain.Track) AudioClip {
	return NewLoopbackClip()
}

func (c *LoopbackClip) Play() {
	c.mu.Lock()
	c.playing = true
	hooks := c.snapshotLocked()
	c.mu.Unlock()
	for _, h := range hooks {
		if h.OnPlay != nil {
			h.OnPlay()
		}
	}
}

func (c *LoopbackClip) Stop() {
	c.mu.Lock()
	c.playing = false
	hooks := c.snapshotLocked()
	c.mu.Unlock()
	for _, h := range hooks {
		if h.OnPause != nil {
			h.OnPause()
		}
	}
}

func (c *LoopbackClip) Position() time.Duration { return 0 }
func (c *LoopbackClip) Duration() time.Duration { return 0 }

func (c *LoopbackClip) Subscribe(hooks ClipHooks) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.hooks[id] = hooks
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.hooks, id)
			c.mu.Unlock()
		})
	}
}

func (c *LoopbackClip) snapshotLocked() []ClipHooks {
	out := make([]ClipHooks, 0, len(c.hooks))
	for _, h := range c.hooks {
		out = append(out, h)
	}
	return out
}
