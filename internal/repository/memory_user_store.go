package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/eaglebank/auth-api/shared/models"
)

// MemoryUserStore keeps users in process memory. State is lost on restart.
// Callers always receive copies, so mutations go through Update.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[int64]*models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]*models.User)}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user %d already exists", user.ID)
	}
	if s.emailTakenLocked(user.Email, user.ID) {
		return ErrEmailTaken
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *u
	return &found, nil
}

func (s *MemoryUserStore) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if s.emailTakenLocked(user.Email, user.ID) {
		return ErrEmailTaken
	}
	current.Name = user.Name
	current.Email = user.Email
	current.Role = user.Role
	return nil
}

func (s *MemoryUserStore) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// Len reports the number of live users.
func (s *MemoryUserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

func (s *MemoryUserStore) emailTakenLocked(email string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}
