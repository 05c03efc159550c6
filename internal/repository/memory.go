package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iMallco/iMall/internal/model"
)

// MemoryUserStore keeps users in process memory. It is safe for concurrent use.
type MemoryUserStore struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string // normalized email -> id
	now     func() time.Time
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

// FindByEmail looks a user up by email, ignoring case.
func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return clone(s.byID[id]), nil
}

// FindByID looks a user up by ID.
func (s *MemoryUserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return clone(u), nil
}

// Create inserts user unless its email is already taken. On success the
// generated ID and timestamps are set on user.
func (s *MemoryUserStore) Create(_ context.Context, user *model.User) error {
	key := normalizeEmail(user.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[key]; taken {
		return ErrDuplicateEmail
	}

	now := s.now().UTC()
	user.ID = newUserID()
	user.CreatedAt = now
	user.UpdatedAt = now

	s.byID[user.ID] = clone(user)
	s.byEmail[key] = user.ID
	return nil
}

// Update applies upd to the user with the given ID and returns the new record.
func (s *MemoryUserStore) Update(_ context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.UserType != nil {
		u.UserType = *upd.UserType
	}
	u.UpdatedAt = s.now().UTC()

	return clone(u), nil
}

func clone(u *model.User) *model.User {
	c := *u
	return &c
}
