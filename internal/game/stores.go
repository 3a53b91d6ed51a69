package game

import (
	"context"
	"time"

	"chatquiz-service/internal/domain"
)

// UserStore persists player session state between interactions. The engine
// reloads the user at the start of every call and saves it before returning.
type UserStore interface {
	// FindUser returns nil (and no error) for an unknown id.
	FindUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, id, email, name string) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}

// QuestionStore serves question content and per-user answer records.
type QuestionStore interface {
	FindQuestion(ctx context.Context, id int) (*domain.Question, error)
	// NextUngraded returns the first question, by position, that the user
	// has no answer record for, or nil when none remains.
	NextUngraded(ctx context.Context, userID string) (*domain.Question, error)
	// FindAnswerRecord returns nil (and no error) when no record exists.
	FindAnswerRecord(ctx context.Context, userID string, questionID int) (*domain.AnswerRecord, error)
	// AllAnswerRecords returns the user's records ordered by question position.
	AllAnswerRecords(ctx context.Context, userID string) ([]domain.AnswerRecord, error)
	// CreateAnswerRecord opens an unanswered record for a presented question.
	CreateAnswerRecord(ctx context.Context, userID string, questionID int) error
	SaveAnswerRecord(ctx context.Context, rec *domain.AnswerRecord) error
}

// Settings exposes engine tunables by key (QUESTION_TIMEOUT, REPORT_DELAY).
type Settings interface {
	Get(key string) (string, bool)
}

// Outbound pushes engine-initiated messages (timeout notices, reports) back
// into the chat. Failures are recoverable: the engine logs them and never
// rolls back game state.
type Outbound interface {
	Send(ctx context.Context, userID, address, text string) error
}

// Timers is the one-shot timer facility the engine requires. At most one
// timer exists per user; Schedule replaces any outstanding one, and Cancel
// reports the remaining time as of the moment of cancellation.
type Timers interface {
	Schedule(userID string, questionID int, d time.Duration)
	Cancel(userID string) (remaining time.Duration, ok bool)
}
