package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"chatquiz-service/internal/domain"
)

// QuestionLoader fetches question content from a backing store (e.g. Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionStore caches the ordered question set in Redis and keeps per-user
// answer records in a hash per user:
//
//	SET  quiz:questions            {JSON array, TTL + jitter}
//	HSET answers:{userID} {qID}    {JSON record}
//
// Cache misses fall back to the loader behind a singleflight so concurrent
// players don't stampede the database.
type QuestionStore struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionStore(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionStore {
	return &QuestionStore{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const questionsKey = "quiz:questions"

func answersKey(userID string) string {
	return "answers:" + userID
}

func (s *QuestionStore) questions(ctx context.Context) ([]domain.Question, error) {
	raw, err := s.client.Get(ctx, questionsKey).Bytes()
	if err == nil {
		return decodeQuestions(raw)
	}

	result, err, _ := s.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check the cache in case another goroutine filled it.
		raw, err := s.client.Get(ctx, questionsKey).Bytes()
		if err == nil {
			return decodeQuestions(raw)
		}

		questions, err := s.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}
		sort.Slice(questions, func(i, j int) bool {
			return questions[i].Position < questions[j].Position
		})

		if encoded, err := json.Marshal(questions); err == nil {
			_ = s.client.Set(ctx, questionsKey, encoded, s.ttlWithJitter()).Err()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func decodeQuestions(raw []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode cached questions: %w", err)
	}
	return questions, nil
}

func (s *QuestionStore) FindQuestion(ctx context.Context, id int) (*domain.Question, error) {
	questions, err := s.questions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].ID == id {
			q := questions[i]
			return &q, nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (s *QuestionStore) NextUngraded(ctx context.Context, userID string) (*domain.Question, error) {
	questions, err := s.questions(ctx)
	if err != nil {
		return nil, err
	}
	recorded, err := s.client.HKeys(ctx, answersKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load answer keys for %s: %w", userID, err)
	}
	seen := make(map[int]struct{}, len(recorded))
	for _, field := range recorded {
		if id, err := strconv.Atoi(field); err == nil {
			seen[id] = struct{}{}
		}
	}
	for i := range questions {
		if _, ok := seen[questions[i].ID]; !ok {
			q := questions[i]
			return &q, nil
		}
	}
	return nil, nil
}

func (s *QuestionStore) FindAnswerRecord(ctx context.Context, userID string, questionID int) (*domain.AnswerRecord, error) {
	raw, err := s.client.HGet(ctx, answersKey(userID), strconv.Itoa(questionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load answer record %s/%d: %w", userID, questionID, err)
	}
	var rec domain.AnswerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode answer record %s/%d: %w", userID, questionID, err)
	}
	return &rec, nil
}

func (s *QuestionStore) AllAnswerRecords(ctx context.Context, userID string) ([]domain.AnswerRecord, error) {
	questions, err := s.questions(ctx)
	if err != nil {
		return nil, err
	}
	fields, err := s.client.HGetAll(ctx, answersKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load answer records for %s: %w", userID, err)
	}
	ordered := make([]domain.AnswerRecord, 0, len(fields))
	for i := range questions {
		raw, ok := fields[strconv.Itoa(questions[i].ID)]
		if !ok {
			continue
		}
		var rec domain.AnswerRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode answer record %s/%d: %w", userID, questions[i].ID, err)
		}
		ordered = append(ordered, rec)
	}
	return ordered, nil
}

func (s *QuestionStore) CreateAnswerRecord(ctx context.Context, userID string, questionID int) error {
	rec := domain.AnswerRecord{UserID: userID, QuestionID: questionID}
	return s.SaveAnswerRecord(ctx, &rec)
}

func (s *QuestionStore) SaveAnswerRecord(ctx context.Context, rec *domain.AnswerRecord) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode answer record %s/%d: %w", rec.UserID, rec.QuestionID, err)
	}
	if err := s.client.HSet(ctx, answersKey(rec.UserID), strconv.Itoa(rec.QuestionID), encoded).Err(); err != nil {
		return fmt.Errorf("save answer record %s/%d: %w", rec.UserID, rec.QuestionID, err)
	}
	return nil
}

func (s *QuestionStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
