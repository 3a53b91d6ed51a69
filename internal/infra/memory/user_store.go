package memory

import (
	"context"
	"sync"

	"chatquiz-service/internal/domain"
)

// UserStore is an in-memory implementation of game.UserStore.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) FindUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *UserStore) CreateUser(_ context.Context, id, email, name string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := domain.User{
		ID:          id,
		DisplayName: name,
		Email:       email,
		Stage:       domain.StageIdle,
	}
	s.users[id] = user
	return &user, nil
}

func (s *UserStore) Save(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}
