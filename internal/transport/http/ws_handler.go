package http

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"blindtest-service/internal/domain"
	"blindtest-service/internal/game"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *game.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(service *game.Service) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type answerPayload struct {
	TrackID  string `json:"trackId"`
	AnswerID string `json:"answerId"`
}

type clipSignalPayload struct {
	TrackID string `json:"trackId"`
}

type clipTimePayload struct {
	TrackID    string `json:"trackId"`
	PositionMs int64  `json:"positionMs"`
	DurationMs int64  `json:"durationMs"`
}

type trackSummary struct {
	ID      string          `json:"id"`
	Answers []domain.Answer `json:"answers"`
}

type gameStartedPayload struct {
	SessionID    string         `json:"sessionId"`
	GameID       string         `json:"gameId"`
	TimeBudgetMs int64          `json:"timeBudgetMs"`
	Tracks       []trackSummary `json:"tracks"`
}

type playClipPayload struct {
	TrackID string `json:"trackId"`
	URL     string `json:"url"`
}

type timeRemainingPayload struct {
	Ms int64 `json:"ms"`
}

type trackActivatedPayload struct {
	Index int `json:"index"`
}

type answersClearedPayload struct {
	Index int `json:"index"`
}

type answersLoadedPayload struct {
	TrackID string          `json:"trackId"`
	Answers []domain.Answer `json:"answers"`
}

type clipPositionPayload struct {
	PositionMs int64 `json:"positionMs"`
	DurationMs int64 `json:"durationMs"`
}

type progressPayload struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
}

// ServeWS upgrades the renderer's connection and wires it into a fresh play
// session: session events flow out, answer selections and clip/UI lifecycle
// signals flow in. The renderer's audio element is the actual playback
// device; clip control is proxied over the socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	out := func(msgType string, payload any) {
		select {
		case send <- outboundMessage[any]{Type: msgType, Payload: payload}:
		case <-closeSignals:
		}
	}

	clips := make(map[string]*remoteClip)
	provider := func(t domain.Track) game.AudioClip {
		clip := newRemoteClip(t.ID, t.ClipRef, out)
		clips[t.ID] = clip
		return clip
	}

	sess, err := h.service.StartSessionWithClips(r.Context(), gameID, provider)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		close(closeSignals)
		return
	}
	defer h.service.Release(sess.ID())

	events, cancel := sess.Subscribe()
	defer cancel()

	go func() {
		defer close(writerDone)
		for {
			select {
			case msg := <-send:
				if err := conn.WriteJSON(msg); err != nil {
					log.Printf("ws write error: %v", err)
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	go func() {
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				forwardEvent(out, ev)
			case <-closeSignals:
				return
			}
		}
	}()

	out("gameStarted", gameStartedPayload{
		SessionID:    sess.ID(),
		GameID:       sess.GameID(),
		TimeBudgetMs: sess.RemainingMs(),
		Tracks:       summarizeTracks(sess.Tracks()),
	})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if err := h.dispatch(r, sess, clips, inbound); err != nil {
			out("error", errorPayload{Message: err.Error()})
		}
	}

	close(closeSignals)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, sess *game.Session, clips map[string]*remoteClip, inbound inboundMessage) error {
	switch inbound.Type {
	case "start":
		return sess.Start()
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		return sess.SelectAnswer(r.Context(), payload.TrackID, payload.AnswerID)
	case "answersRendered":
		return sess.AnswerListRendered()
	case "answersRemoved":
		return sess.AnswerListRemoved(r.Context())
	case "clipPlay", "clipPause", "clipEnded":
		var payload clipSignalPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		clip, ok := clips[payload.TrackID]
		if !ok {
			return domain.ErrTrackNotFound
		}
		switch inbound.Type {
		case "clipPlay":
			clip.firePlay()
		case "clipPause":
			clip.firePause()
		case "clipEnded":
			clip.fireEnded()
		}
		return nil
	case "clipTime":
		var payload clipTimePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errInvalidPayload
		}
		clip, ok := clips[payload.TrackID]
		if !ok {
			return domain.ErrTrackNotFound
		}
		clip.fireTime(
			time.Duration(payload.PositionMs)*time.Millisecond,
			time.Duration(payload.DurationMs)*time.Millisecond,
		)
		return nil
	default:
		return errUnsupportedType
	}
}

func forwardEvent(out func(string, any), ev game.Event) {
	switch e := ev.(type) {
	case game.TimeRemaining:
		out("timeRemaining", timeRemainingPayload{Ms: e.Ms})
	case game.TrackActivated:
		out("trackActivated", trackActivatedPayload{Index: e.Index})
	case game.AnswersCleared:
		out("answersCleared", answersClearedPayload{Index: e.Index})
	case game.AnswersLoaded:
		out("answersLoaded", answersLoadedPayload{TrackID: e.TrackID, Answers: e.Answers})
	case game.ClipPosition:
		out("clipPosition", clipPositionPayload{
			PositionMs: e.Position.Milliseconds(),
			DurationMs: e.Duration.Milliseconds(),
		})
	case game.Progress:
		out("progress", progressPayload{Answered: e.Answered, Total: e.Total})
	case game.GameFinished:
		out("gameFinished", e.Result)
	}
}

func summarizeTracks(tracks []domain.Track) []trackSummary {
	out := make([]trackSummary, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, trackSummary{ID: t.ID, Answers: t.Answers})
	}
	return out
}
