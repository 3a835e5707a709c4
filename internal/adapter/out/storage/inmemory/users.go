package inmemory

import (
	"context"
	"sync"
	"time"

	"barefoot/internal/model"
	"barefoot/internal/service"
)

type UserStorage struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		byEmail: make(map[string]model.User),
	}
}

func (s *UserStorage) CreateUser(_ context.Context, in model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[in.Email]; ok {
		return model.User{}, service.ErrDuplicateIdentity
	}
	in.CreatedAt = time.Now().UTC()
	s.byEmail[in.Email] = in
	return in, nil
}

func (s *UserStorage) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return model.User{}, service.ErrNotFound
}
