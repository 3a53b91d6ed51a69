package memory

import (
	"context"
	"testing"

	"chatquiz-service/internal/domain"
)

func TestNextUngradedFollowsPositionOrder(t *testing.T) {
	ctx := context.Background()
	// Deliberately out of order; the store must sort by position.
	store := NewQuestionStore([]domain.Question{
		{ID: 20, Position: 2, Text: "second", CorrectIndex: 1},
		{ID: 10, Position: 1, Text: "first", CorrectIndex: 1},
	})

	next, err := store.NextUngraded(ctx, "u1")
	if err != nil || next == nil {
		t.Fatalf("next: %v %v", next, err)
	}
	if next.ID != 10 {
		t.Fatalf("expected first question by position, got %d", next.ID)
	}

	if err := store.CreateAnswerRecord(ctx, "u1", 10); err != nil {
		t.Fatalf("create record: %v", err)
	}
	next, _ = store.NextUngraded(ctx, "u1")
	if next == nil || next.ID != 20 {
		t.Fatalf("expected second question once first is recorded, got %+v", next)
	}

	if err := store.CreateAnswerRecord(ctx, "u1", 20); err != nil {
		t.Fatalf("create record: %v", err)
	}
	next, _ = store.NextUngraded(ctx, "u1")
	if next != nil {
		t.Fatalf("expected no question left, got %+v", next)
	}
}

func TestAnswerRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore([]domain.Question{
		{ID: 1, Position: 1, Text: "q", CorrectIndex: 1},
	})

	rec, err := store.FindAnswerRecord(ctx, "u1", 1)
	if err != nil || rec != nil {
		t.Fatalf("expected no record yet, got %+v %v", rec, err)
	}

	if err := store.CreateAnswerRecord(ctx, "u1", 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, _ = store.FindAnswerRecord(ctx, "u1", 1)
	if rec == nil || rec.Answered {
		t.Fatalf("expected open record, got %+v", rec)
	}

	chosen := 1
	rec.Answered = true
	rec.Correct = true
	rec.Chosen = &chosen
	rec.Score = 120
	if err := store.SaveAnswerRecord(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	all, err := store.AllAnswerRecords(ctx, "u1")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 1 || all[0].Score != 120 || !all[0].Correct {
		t.Fatalf("unexpected records: %+v", all)
	}
}

func TestRecordsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore([]domain.Question{
		{ID: 1, Position: 1, Text: "q", CorrectIndex: 1},
	})

	if err := store.CreateAnswerRecord(ctx, "u1", 1); err != nil {
		t.Fatalf("create: %v", err)
	}
	next, _ := store.NextUngraded(ctx, "u2")
	if next == nil || next.ID != 1 {
		t.Fatalf("u2 should still see question 1, got %+v", next)
	}
}
