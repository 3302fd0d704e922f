package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avvvet/badge-services/internal/badgesvc/models"
)

// NameLookup resolves a badge to its registry display name.
type NameLookup interface {
	GetDisplayName(ctx context.Context, badgeID string) (*string, error)
}

// MovementStore is an in-memory append-only movement log.
type MovementStore struct {
	mu        sync.Mutex
	nextID    int64
	movements []models.Movement
	names     NameLookup
}

func NewMovementStore(names NameLookup) *MovementStore {
	return &MovementStore{names: names}
}

// RecordNext holds the store lock across read and append, so the
// alternation cannot be broken by concurrent reports.
func (s *MovementStore) RecordNext(_ context.Context, badgeID string, next func(last *models.Movement) models.Direction) (*models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := next(s.lastLocked(badgeID))
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction %q for badge %s", dir, badgeID)
	}

	s.nextID++
	m := models.Movement{
		ID:        s.nextID,
		BadgeID:   badgeID,
		Direction: dir,
		CreatedAt: time.Now().UTC(),
	}
	s.movements = append(s.movements, m)
	return &m, nil
}

func (s *MovementStore) Last(_ context.Context, badgeID string) (*models.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLocked(badgeID), nil
}

func (s *MovementStore) History(ctx context.Context) ([]*models.MovementView, error) {
	s.mu.Lock()
	snapshot := make([]models.Movement, len(s.movements))
	copy(snapshot, s.movements)
	s.mu.Unlock()

	names := make(map[string]*string)
	out := make([]*models.MovementView, 0, len(snapshot))
	for i := len(snapshot) - 1; i >= 0; i-- {
		m := snapshot[i]
		name, ok := names[m.BadgeID]
		if !ok && s.names != nil {
			var err error
			name, err = s.names.GetDisplayName(ctx, m.BadgeID)
			if err != nil {
				return nil, err
			}
			names[m.BadgeID] = name
		}
		out = append(out, &models.MovementView{Movement: m, DisplayName: name})
	}
	return out, nil
}

func (s *MovementStore) Clear(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.movements))
	s.movements = nil
	return n, nil
}

func (s *MovementStore) lastLocked(badgeID string) *models.Movement {
	for i := len(s.movements) - 1; i >= 0; i-- {
		if s.movements[i].BadgeID == badgeID {
			m := s.movements[i]
			return &m
		}
	}
	return nil
}
