package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/avvvet/badge-services/internal/badgesvc/metrics"
	"github.com/avvvet/badge-services/internal/badgesvc/models"
)

// UserStore persists badge registrations.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetDisplayName(ctx context.Context, badgeID string) (*string, error)
	DeleteByBadgeID(ctx context.Context, badgeID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// UserService struct represents the badge registry
type UserService struct {
	userStore UserStore
	metrics   *metrics.Metrics
}

// NewUserService creates a new UserService instance
func NewUserService(userStore UserStore, m *metrics.Metrics) *UserService {
	return &UserService{
		userStore: userStore,
		metrics:   m,
	}
}

// Register creates one registration. Registering the same badge twice adds
// a second row. The badge id is opaque and stored exactly as given.
func (s *UserService) Register(ctx context.Context, user models.User) (*models.User, error) {
	user.DisplayName = strings.TrimSpace(user.DisplayName)
	if strings.TrimSpace(user.BadgeID) == "" {
		return nil, fmt.Errorf("%w: badge_id is required", ErrValidation)
	}
	if user.DisplayName == "" {
		return nil, fmt.Errorf("%w: display_name is required", ErrValidation)
	}

	user.FirstName = optional(user.FirstName)
	user.LastName = optional(user.LastName)
	user.Email = optional(user.Email)
	user.Role = optional(user.Role)
	user.Department = optional(user.Department)
	user.Phone = optional(user.Phone)
	user.City = optional(user.City)
	user.Organization = optional(user.Organization)

	id, err := s.userStore.CreateUser(ctx, user)
	if err != nil {
		return nil, storeErr("create user", err)
	}
	s.metrics.IncrementUsersRegistered()

	user.ID = id
	return &user, nil
}

// List returns every registration, newest first.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.userStore.ListUsers(ctx)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}

func (s *UserService) Deregister(ctx context.Context, badgeID string) error {
	if strings.TrimSpace(badgeID) == "" {
		return fmt.Errorf("%w: badge_id is required", ErrValidation)
	}

	n, err := s.userStore.DeleteByBadgeID(ctx, badgeID)
	if err != nil {
		return storeErr("delete user", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: badge %s", ErrNotFound, badgeID)
	}
	s.metrics.AddUsersDeregistered(n)
	return nil
}

func (s *UserService) DeregisterAll(ctx context.Context) error {
	if _, err := s.userStore.DeleteAll(ctx); err != nil {
		return storeErr("delete all users", err)
	}
	s.metrics.IncrementBulkClear("users")
	return nil
}

// DisplayName returns nil when the badge is not registered.
func (s *UserService) DisplayName(ctx context.Context, badgeID string) (*string, error) {
	name, err := s.userStore.GetDisplayName(ctx, badgeID)
	if err != nil {
		return nil, storeErr("get display name", err)
	}
	return name, nil
}

// optional turns blank profile fields into NULLs.
func optional(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
