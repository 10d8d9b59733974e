package http

import (
	"errors"
	"sync"
	"time"

	"blindtest-service/internal/game"
)

var (
	errInvalidPayload  = errors.New("invalid message payload")
	errUnsupportedType = errors.New("unsupported message type")
)

// remoteClip is a game.AudioClip whose device lives in the renderer: Play
// and Stop are pushed out over the socket, and the renderer reports the
// audio element's state back as clip* messages, which fire the subscribed
// hooks.
type remoteClip struct {
	trackID string
	url     string
	out     func(msgType string, payload any)

	mu       sync.Mutex
	hooks    map[int]game.ClipHooks
	nextID   int
	position time.Duration
	duration time.Duration
}

func newRemoteClip(trackID, url string, out func(string, any)) *remoteClip {
	return &remoteClip{
		trackID: trackID,
		url:     url,
		out:     out,
		hooks:   make(map[int]game.ClipHooks),
	}
}

func (c *remoteClip) Play() {
	c.out("playClip", playClipPayload{TrackID: c.trackID, URL: c.url})
}

func (c *remoteClip) Stop() {
	c.out("stopClip", clipSignalPayload{TrackID: c.trackID})
	// The renderer will confirm with a clipPause message; fire the pause
	// hook eagerly as well so the timer halts even if the renderer lags.
	c.firePause()
}

func (c *remoteClip) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *remoteClip) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *remoteClip) Subscribe(hooks game.ClipHooks) func() {
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

func (c *remoteClip) firePlay() {
	for _, h := range c.snapshot() {
		if h.OnPlay != nil {
			h.OnPlay()
		}
	}
}

func (c *remoteClip) firePause() {
	for _, h := range c.snapshot() {
		if h.OnPause != nil {
			h.OnPause()
		}
	}
}

func (c *remoteClip) fireEnded() {
	for _, h := range c.snapshot() {
		if h.OnEnded != nil {
			h.OnEnded()
		}
	}
}

func (c *remoteClip) fireTime(position, duration time.Duration) {
	c.mu.Lock()
	c.position = position
	c.duration = duration
	c.mu.Unlock()
	for _, h := range c.snapshot() {
		if h.OnTimeUpdate != nil {
			h.OnTimeUpdate(position, duration)
		}
	}
}

func (c *remoteClip) snapshot() []game.ClipHooks {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]game.ClipHooks, 0, len(c.hooks))
	for _, h := range c.hooks {
		out = append(out, h)
	}
	return out
}
