package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avvvet/badge-services/internal/badgesvc/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewUserStore(db *pgxpool.Pool, timeout time.Duration) *UserStore {
	return &UserStore{db: db, timeout: timeout}
}

func (r *UserStore) CreateUser(ctx context.Context, user models.User) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var id int64

	query := `
        INSERT INTO users (badge_id, name, first_name, last_name, email, role,
                           department, phone, city, organization)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id;
    `

	err := r.db.QueryRow(ctx, query,
		user.BadgeID,
		user.DisplayName,
		user.FirstName,
		user.LastName,
		user.Email,
		user.Role,
		user.Department,
		user.Phone,
		user.City,
		user.Organization,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("could not create user: %w", err)
	}

	return id, nil
}

// ListUsers returns every registration, newest first.
func (r *UserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
        SELECT id, badge_id, name, first_name, last_name, email, role,
               department, phone, city, organization, created_at
        FROM users
        ORDER BY id DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		err := rows.Scan(
			&u.ID,
			&u.BadgeID,
			&u.DisplayName,
			&u.FirstName,
			&u.LastName,
			&u.Email,
			&u.Role,
			&u.Department,
			&u.Phone,
			&u.City,
			&u.Organization,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// GetDisplayName returns nil, nil when the badge has no registration. With
// duplicate registrations the oldest row wins.
func (r *UserStore) GetDisplayName(ctx context.Context, badgeID string) (*string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var name string
	err := r.db.QueryRow(ctx, `
        SELECT name
        FROM users
        WHERE badge_id = $1
        ORDER BY id ASC
        LIMIT 1
    `, badgeID).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get display name: %w", err)
	}

	return &name, nil
}

func (r *UserStore) DeleteByBadgeID(ctx context.Context, badgeID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE badge_id = $1`, badgeID)
	if err != nil {
		return 0, fmt.Errorf("delete user %s: %w", badgeID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *UserStore) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("delete all users: %w", err)
	}
	return tag.RowsAffected(), nil
}
