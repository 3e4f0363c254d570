package memory

import (
	"context"
	"strings"
	"sync"

	"pollsbot/contexts/identity-access/permission-service/domain/entities"
)

type Store struct {
	mu    sync.RWMutex
	users map[string]entities.User
}

func NewStore() *Store {
	return &Store{users: make(map[string]entities.User)}
}

func (s *Store) GetUser(_ context.Context, userID string) (entities.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	return user, ok, nil
}

func (s *Store) SaveUser(_ context.Context, user entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.UserID)] = user
	return nil
}
