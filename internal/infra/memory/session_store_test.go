package memory

import (
	"context"
	"testing"

	"blindtest-service/internal/domain"
	"blindtest-service/internal/game"
)

type alwaysCorrect struct{}

func (alwaysCorrect) SubmitAnswer(_ context.Context, _ string, sub domain.SubmittedAnswer) (domain.AnswerVerdict, error) {
	return domain.AnswerVerdict{TrackID: sub.TrackID, Result: "correct", AnswerID: sub.AnswerID}, nil
}

func (alwaysCorrect) CheckGame(context.Context, string, []domain.SubmittedAnswer) (domain.GameVerdict, error) {
	return domain.GameVerdict{Status: "good"}, nil
}

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	session := game.NewSession(sampleGame(), alwaysCorrect{}, game.LoopbackProvider)
	store.Put(session)
	if _, ok := store.Get(session.ID()); !ok {
		t.Fatalf("expected session present")
	}

	// Unfinished sessions survive the reap.
	store.DeleteIfFinished(session.ID())
	if _, ok := store.Get(session.ID()); !ok {
		t.Fatalf("expected in-progress session retained")
	}

	// Play the single track through so the session finishes.
	if err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := session.AnswerListRemoved(ctx); err != nil {
		t.Fatalf("answers removed: %v", err)
	}
	if err := session.AnswerListRendered(); err != nil {
		t.Fatalf("answers rendered: %v", err)
	}
	if err := session.SelectAnswer(ctx, "t1", "a1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := session.AnswerListRemoved(ctx); err != nil {
		t.Fatalf("final answers removed: %v", err)
	}
	if session.Status() != game.StatusFinished {
		t.Fatalf("expected finished session, got %v", session.Status())
	}

	store.DeleteIfFinished(session.ID())
	if _, ok := store.Get(session.ID()); ok {
		t.Fatalf("expected finished session removed")
	}
}
