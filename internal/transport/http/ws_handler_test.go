package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blindtest-service/internal/domain"
	"blindtest-service/internal/game"
	"blindtest-service/internal/infra/memory"
	"blindtest-service/internal/scoring"
	"github.com/gorilla/websocket"
)

func TestWebSocketPlayThrough(t *testing.T) {
	repo := memory.NewGameRepository(memory.NewStaticGameLoader(sampleGames()), time.Minute)
	store := memory.NewSessionStore()
	service := game.NewService(repo, store, scoring.NewLocal(repo), game.LoopbackProvider)
	service.SetTickInterval(1000) // keep tick chatter out of the test
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?gameId=game-1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	started := readUntil(conn, t, "gameStarted")
	if started["gameId"] != "game-1" {
		t.Fatalf("expected gameId in snapshot, got %+v", started)
	}
	tracks, ok := started["tracks"].([]any)
	if !ok || len(tracks) != 1 {
		t.Fatalf("expected 1 track in snapshot, got %+v", started["tracks"])
	}

	writeMsg(conn, t, "start", nil)
	readUntil(conn, t, "answersCleared")

	writeMsg(conn, t, "answersRemoved", nil)
	loaded := readUntil(conn, t, "answersLoaded")
	if loaded["trackId"] != "t1" {
		t.Fatalf("expected answers for t1, got %+v", loaded)
	}

	writeMsg(conn, t, "answersRendered", nil)
	play := readUntil(conn, t, "playClip")
	if play["trackId"] != "t1" {
		t.Fatalf("expected play command for t1, got %+v", play)
	}

	// Renderer's audio element reports it is playing.
	writeMsg(conn, t, "clipPlay", map[string]any{"trackId": "t1"})

	writeMsg(conn, t, "answer", map[string]any{"trackId": "t1", "answerId": "a1"})
	readUntil(conn, t, "answersCleared")

	writeMsg(conn, t, "answersRemoved", nil)
	finished := readUntil(conn, t, "gameFinished")
	if finished["ratio"] != "1/1" {
		t.Fatalf("expected ratio 1/1, got %+v", finished)
	}
	if finished["title"] != "You made it!" {
		t.Fatalf("expected winning title, got %+v", finished)
	}
}

func TestWebSocketRejectsMissingGameID(t *testing.T) {
	repo := memory.NewGameRepository(memory.NewStaticGameLoader(sampleGames()), time.Minute)
	service := game.NewService(repo, memory.NewSessionStore(), scoring.NewLocal(repo), game.LoopbackProvider)
	wsHandler := NewWSHandler(service)

	server := httptest.NewServer(http.HandlerFunc(wsHandler.ServeWS))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func writeMsg(conn *websocket.Conn, t *testing.T, msgType string, payload map[string]any) {
	t.Helper()
	msg := map[string]any{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// readUntil skips unrelated messages (ticks, progress) until one of the
// wanted type arrives.
func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read waiting for %s: %v", want, err)
		}
		if msg.Type == "error" {
			t.Fatalf("unexpected error while waiting for %s: %+v", want, msg.Payload)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
	t.Fatalf("timed out waiting for %s", want)
	return nil
}

func sampleGames() map[string]domain.Game {
	return map[string]domain.Game{
		"game-1": {
			ID:           "game-1",
			TimeBudgetMs: 60000,
			Tracks: []domain.GameTrack{
				{ID: "t1", ClipURL: "https://clips.example.com/t1.mp3", Choices: []domain.Choice{
					{ID: "a1", Artist: "The Who", Title: "Baba O'Riley", Correct: true},
					{ID: "a2", Artist: "The Kinks", Title: "Lola"},
				}},
			},
		},
	}
}
