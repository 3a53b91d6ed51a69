package memory

import (
	"context"
	"sort"
	"sync"

	"chatquiz-service/internal/domain"
)

// QuestionStore holds an ordered question set plus per-user answer records.
// It backs tests and redis-less deployments.
type QuestionStore struct {
	questions []domain.Question

	mu      sync.RWMutex
	records map[string]map[int]domain.AnswerRecord
}

// NewQuestionStore copies and orders the question set by position.
func NewQuestionStore(questions []domain.Question) *QuestionStore {
	ordered := make([]domain.Question, len(questions))
	copy(ordered, questions)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	return &QuestionStore{
		questions: ordered,
		records:   make(map[string]map[int]domain.AnswerRecord),
	}
}

func (s *QuestionStore) FindQuestion(_ context.Context, id int) (*domain.Question, error) {
	for i := range s.questions {
		if s.questions[i].ID == id {
			q := s.questions[i]
			return &q, nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (s *QuestionStore) NextUngraded(_ context.Context, userID string) (*domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.records[userID]
	for i := range s.questions {
		if _, ok := recs[s.questions[i].ID]; !ok {
			q := s.questions[i]
			return &q, nil
		}
	}
	return nil, nil
}

func (s *QuestionStore) FindAnswerRecord(_ context.Context, userID string, questionID int) (*domain.AnswerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[userID][questionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *QuestionStore) AllAnswerRecords(_ context.Context, userID string) ([]domain.AnswerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.records[userID]
	ordered := make([]domain.AnswerRecord, 0, len(recs))
	for i := range s.questions {
		if rec, ok := recs[s.questions[i].ID]; ok {
			ordered = append(ordered, rec)
		}
	}
	return ordered, nil
}

func (s *QuestionStore) CreateAnswerRecord(_ context.Context, userID string, questionID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[userID] == nil {
		s.records[userID] = make(map[int]domain.AnswerRecord)
	}
	s.records[userID][questionID] = domain.AnswerRecord{
		UserID:     userID,
		QuestionID: questionID,
	}
	return nil
}

func (s *QuestionStore) SaveAnswerRecord(_ context.Context, rec *domain.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records[rec.UserID] == nil {
		s.records[rec.UserID] = make(map[int]domain.AnswerRecord)
	}
	s.records[rec.UserID][rec.QuestionID] = *rec
	return nil
}

// StaticQuestionLoader serves a fixed question set (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	out := make([]domain.Question, len(l.questions))
	copy(out, l.questions)
	return out, nil
}
