package game

import (
	"context"
	"fmt"
	"strings"

	"chatquiz-service/internal/domain"
)

// GetReport renders the end-of-game summary: every question with its options,
// the correct choice, what the player picked, and the points earned, followed
// by the total. It returns an empty string until every question has a
// terminal answer record.
func (e *Engine) GetReport(ctx context.Context, userID string) (string, error) {
	user, err := e.users.FindUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil || user.Stage != domain.StageGameOver {
		return "", nil
	}
	next, err := e.questions.NextUngraded(ctx, userID)
	if err != nil {
		return "", err
	}
	if next != nil {
		return "", nil
	}

	records, err := e.questions.AllAnswerRecords(ctx, userID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(msgReportHeader)
	for _, rec := range records {
		q, err := e.questions.FindQuestion(ctx, rec.QuestionID)
		if err != nil {
			return "", err
		}
		b.WriteString(reportEntry(*q, rec))
	}
	fmt.Fprintf(&b, "**YOUR TOTAL SCORE IS: %d POINTS**\n", user.TotalScore)
	return b.String(), nil
}
