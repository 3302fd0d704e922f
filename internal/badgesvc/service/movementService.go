package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avvvet/badge-services/internal/badgesvc/metrics"
	"github.com/avvvet/badge-services/internal/badgesvc/models"
	log "github.com/sirupsen/logrus"
)

// MovementStore persists the append-only movement log. RecordNext must run
// the read of the last movement and the append as one unit per badge.
type MovementStore interface {
	RecordNext(ctx context.Context, badgeID string, next func(last *models.Movement) models.Direction) (*models.Movement, error)
	Last(ctx context.Context, badgeID string) (*models.Movement, error)
	History(ctx context.Context) ([]*models.MovementView, error)
	Clear(ctx context.Context) (int64, error)
}

type MovementService struct {
	store   MovementStore
	users   *UserService
	metrics *metrics.Metrics
}

func NewMovementService(store MovementStore, users *UserService, m *metrics.Metrics) *MovementService {
	return &MovementService{store: store, users: users, metrics: m}
}

// ReportMovement records the badge's next movement. Registration is not
// required; unregistered badges get a nil display name.
func (s *MovementService) ReportMovement(ctx context.Context, badgeID string) (*models.MovementReport, error) {
	if strings.TrimSpace(badgeID) == "" {
		return nil, fmt.Errorf("%w: badge_id is required", ErrValidation)
	}

	start := time.Now()
	m, err := s.store.RecordNext(ctx, badgeID, NextDirection)
	if err != nil {
		return nil, storeErr("record movement", err)
	}
	s.metrics.IncrementMovement(string(m.Direction))
	s.metrics.ObserveReportLatency(time.Since(start))

	name, err := s.users.DisplayName(ctx, badgeID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"badge_id":  badgeID,
		"direction": m.Direction,
		"id":        m.ID,
	}).Debug("movement recorded")

	return &models.MovementReport{
		BadgeID:     badgeID,
		Direction:   m.Direction,
		DisplayName: name,
	}, nil
}

// History returns every movement newest first with display names.
func (s *MovementService) History(ctx context.Context) ([]*models.MovementView, error) {
	h, err := s.store.History(ctx)
	if err != nil {
		return nil, storeErr("movement history", err)
	}
	return h, nil
}

func (s *MovementService) Clear(ctx context.Context) error {
	if _, err := s.store.Clear(ctx); err != nil {
		return storeErr("clear movements", err)
	}
	s.metrics.IncrementBulkClear("movements")
	return nil
}

// Presence derives whether the badge is currently inside.
func (s *MovementService) Presence(ctx context.Context, badgeID string) (*models.Presence, error) {
	if strings.TrimSpace(badgeID) == "" {
		return nil, fmt.Errorf("%w: badge_id is required", ErrValidation)
	}

	last, err := s.store.Last(ctx, badgeID)
	if err != nil {
		return nil, storeErr("last movement", err)
	}
	p := PresenceOf(badgeID, last)
	return &p, nil
}
