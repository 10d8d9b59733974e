package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"blindtest-service/internal/domain"
)

func TestClientSubmitAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/game/game-1/answer" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var sub domain.SubmittedAnswer
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(domain.AnswerVerdict{
			TrackID:       sub.TrackID,
			Result:        "correct",
			CorrectArtist: "The Who",
			CorrectTitle:  "Baba O'Riley",
			AnswerID:      sub.AnswerID,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	v, err := client.SubmitAnswer(context.Background(), "game-1", domain.SubmittedAnswer{TrackID: "t1", AnswerID: "a1"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v.Result != "correct" || v.TrackID != "t1" || v.AnswerID != "a1" {
		t.Fatalf("unexpected verdict %+v", v)
	}
}

func TestClientCheckGame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/game/game-1/check" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Answers []domain.SubmittedAnswer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.Answers) != 2 {
			t.Errorf("expected 2 answers, got %d", len(body.Answers))
		}
		_ = json.NewEncoder(w).Encode(domain.GameVerdict{Status: "good"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	v, err := client.CheckGame(context.Background(), "game-1", []domain.SubmittedAnswer{
		{TrackID: "t1", AnswerID: "a1"},
		{TrackID: "t2", AnswerID: "a4"},
	})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if v.Status != "good" {
		t.Fatalf("expected good, got %s", v.Status)
	}
}

func TestClientWrapsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SubmitAnswer(context.Background(), "game-1", domain.SubmittedAnswer{TrackID: "t1", AnswerID: "a1"})
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure, got %v", err)
	}

	client = NewClient("http://127.0.0.1:0")
	_, err = client.CheckGame(context.Background(), "game-1", nil)
	if !errors.Is(err, domain.ErrNetworkFailure) {
		t.Fatalf("expected ErrNetworkFailure on dial error, got %v", err)
	}
}
