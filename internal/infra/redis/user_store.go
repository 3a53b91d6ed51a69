package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"chatquiz-service/internal/domain"
)

// UserStore keeps player session state in a Redis hash per user, so the
// engine stays stateless between interactions even across instances.
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

func (s *UserStore) key(id string) string {
	return "user:" + id
}

func (s *UserStore) FindUser(ctx context.Context, id string) (*domain.User, error) {
	fields, err := s.client.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	user := &domain.User{
		ID:          id,
		DisplayName: fields["name"],
		Email:       fields["email"],
		Stage:       domain.Stage(fields["stage"]),
	}
	user.CurrentQuestionID, _ = strconv.Atoi(fields["current_question"])
	user.TotalScore, _ = strconv.Atoi(fields["total_score"])
	return user, nil
}

func (s *UserStore) CreateUser(ctx context.Context, id, email, name string) (*domain.User, error) {
	user := &domain.User{
		ID:          id,
		DisplayName: name,
		Email:       email,
		Stage:       domain.StageIdle,
	}
	if err := s.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	err := s.client.HSet(ctx, s.key(user.ID),
		"name", user.DisplayName,
		"email", user.Email,
		"stage", string(user.Stage),
		"current_question", strconv.Itoa(user.CurrentQuestionID),
		"total_score", strconv.Itoa(user.TotalScore),
	).Err()
	if err != nil {
		return fmt.Errorf("save user %s: %w", user.ID, err)
	}
	return nil
}
