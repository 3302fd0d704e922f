package memory

import (
	"context"
	"sync"
	"time"

	"github.com/avvvet/badge-services/internal/badgesvc/models"
)

// UserStore keeps registrations in insertion order. It is used by tests
// and by STORE_DRIVER=memory.
type UserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  []models.User
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) CreateUser(_ context.Context, user models.User) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now().UTC()
	s.users = append(s.users, user)
	return user.ID, nil
}

func (s *UserStore) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.User, 0, len(s.users))
	for i := len(s.users) - 1; i >= 0; i-- {
		u := s.users[i]
		out = append(out, &u)
	}
	return out, nil
}

func (s *UserStore) GetDisplayName(_ context.Context, badgeID string) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.BadgeID == badgeID {
			name := u.DisplayName
			return &name, nil
		}
	}
	return nil, nil
}

func (s *UserStore) DeleteByBadgeID(_ context.Context, badgeID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.users[:0]
	var deleted int64
	for _, u := range s.users {
		if u.BadgeID == badgeID {
			deleted++
			continue
		}
		kept = append(kept, u)
	}
	s.users = kept
	return deleted, nil
}

func (s *UserStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.users))
	s.users = nil
	return n, nil
}
