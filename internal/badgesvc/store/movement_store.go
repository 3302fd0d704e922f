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

type MovementStore struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewMovementStore(db *pgxpool.Pool, timeout time.Duration) *MovementStore {
	return &MovementStore{db: db, timeout: timeout}
}

// RecordNext reads the badge's last movement, asks next for the direction
// and appends it. The transaction holds an advisory lock keyed on the
// badge_id, so concurrent reports for one badge run one after another
// (across every service instance) while other badges are not blocked.
func (s *MovementStore) RecordNext(ctx context.Context, badgeID string, next func(last *models.Movement) models.Direction) (*models.Movement, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, badgeID); err != nil {
		return nil, fmt.Errorf("lock badge %s: %w", badgeID, err)
	}

	last, err := lastMovement(ctx, tx, badgeID)
	if err != nil {
		return nil, err
	}

	dir := next(last)
	if !dir.Valid() {
		return nil, fmt.Errorf("invalid direction %q for badge %s", dir, badgeID)
	}

	// clock_timestamp is read after the lock; now() would be the time the
	// tx began and could predate the previous holder's row
	m := &models.Movement{BadgeID: badgeID, Direction: dir}
	err = tx.QueryRow(ctx, `
        INSERT INTO movements (badge_id, direction, created_at)
        VALUES ($1, $2, clock_timestamp())
        RETURNING id, created_at
    `, badgeID, string(dir)).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert movement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return m, nil
}

// Last returns nil, nil when the badge has no movements.
func (s *MovementStore) Last(ctx context.Context, badgeID string) (*models.Movement, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	return lastMovement(ctx, s.db, badgeID)
}

// History returns every movement newest first, each with the display name
// of the oldest matching registration (nil when unregistered).
func (s *MovementStore) History(ctx context.Context) ([]*models.MovementView, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	// the lateral lookup keeps one history row per movement even when a
	// badge was registered twice
	rows, err := s.db.Query(ctx, `
        SELECT m.id, m.badge_id, m.direction, m.created_at, u.name
        FROM movements m
        LEFT JOIN LATERAL (
            SELECT name
            FROM users
            WHERE users.badge_id = m.badge_id
            ORDER BY users.id ASC
            LIMIT 1
        ) u ON true
        ORDER BY m.id DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("movement history: %w", err)
	}
	defer rows.Close()

	history := make([]*models.MovementView, 0)
	for rows.Next() {
		var (
			v   models.MovementView
			dir string
		)
		if err := rows.Scan(&v.ID, &v.BadgeID, &dir, &v.CreatedAt, &v.DisplayName); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		v.Direction = models.Direction(dir)
		history = append(history, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("movement history: %w", err)
	}

	return history, nil
}

func (s *MovementStore) Clear(ctx context.Context) (int64, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM movements`)
	if err != nil {
		return 0, fmt.Errorf("clear movements: %w", err)
	}
	return tag.RowsAffected(), nil
}

func lastMovement(ctx context.Context, q querier, badgeID string) (*models.Movement, error) {
	var (
		m   models.Movement
		dir string
	)
	err := q.QueryRow(ctx, `
        SELECT id, badge_id, direction, created_at
        FROM movements
        WHERE badge_id = $1
        ORDER BY id DESC
        LIMIT 1
    `, badgeID).Scan(&m.ID, &m.BadgeID, &dir, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("last movement for %s: %w", badgeID, err)
	}
	m.Direction = models.Direction(dir)
	return &m, nil
}
