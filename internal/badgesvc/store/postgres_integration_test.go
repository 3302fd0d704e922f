//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/avvvet/badge-services/internal/badgesvc/config"
	"github.com/avvvet/badge-services/internal/badgesvc/db"
	"github.com/avvvet/badge-services/internal/badgesvc/models"
	"github.com/avvvet/badge-services/internal/badgesvc/service"
	"github.com/avvvet/badge-services/internal/badgesvc/store"
)

type PostgresStoreSuite struct {
	suite.Suite
	container testcontainers.Container
	pool      *pgxpool.Pool
	users     *store.UserStore
	movements *store.MovementStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("badges"),
		tcpostgres.WithUsername("badges"),
		tcpostgres.WithPassword("badges"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	s.pool, err = db.Connect(ctx, config.DBConfig{URL: dsn, MaxConns: 20})
	s.Require().NoError(err)

	// a second run must find every migration applied
	s.Require().NoError(db.Migrate(ctx, s.pool))

	s.users = store.NewUserStore(s.pool, 0)
	s.movements = store.NewMovementStore(s.pool, 0)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE users, movements RESTART IDENTITY`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestConcurrentMigrate() {
	ctx := context.Background()
	_, err := s.pool.Exec(ctx, `DROP TABLE schema_migrations`)
	s.Require().NoError(err)

	const replicas = 8
	var wg sync.WaitGroup
	errs := make(chan error, replicas)
	for i := 0; i < replicas; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- db.Migrate(ctx, s.pool)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		s.NoError(err)
	}

	var n int
	s.Require().NoError(s.pool.QueryRow(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&n))
	s.Equal(1, n)
}

func (s *PostgresStoreSuite) TestUsers_CreateListDelete() {
	ctx := context.Background()
	dept := "Ops"

	id1, err := s.users.CreateUser(ctx, models.User{BadgeID: "B1", DisplayName: "Alice", Department: &dept})
	s.Require().NoError(err)
	id2, err := s.users.CreateUser(ctx, models.User{BadgeID: "B1", DisplayName: "Alice twice"})
	s.Require().NoError(err)
	s.Greater(id2, id1)

	list, err := s.users.ListUsers(ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(id2, list[0].ID)
	s.Require().NotNil(list[1].Department)
	s.Equal("Ops", *list[1].Department)
	s.Nil(list[1].Email)

	name, err := s.users.GetDisplayName(ctx, "B1")
	s.Require().NoError(err)
	s.Require().NotNil(name)
	s.Equal("Alice", *name)

	n, err := s.users.DeleteByBadgeID(ctx, "B1")
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	n, err = s.users.DeleteByBadgeID(ctx, "B1")
	s.Require().NoError(err)
	s.Zero(n)

	name, err = s.users.GetDisplayName(ctx, "B1")
	s.Require().NoError(err)
	s.Nil(name)
}

func (s *PostgresStoreSuite) TestHistory_LeftJoinOneRowPerMovement() {
	ctx := context.Background()

	_, err := s.users.CreateUser(ctx, models.User{BadgeID: "B1", DisplayName: "Alice"})
	s.Require().NoError(err)
	_, err = s.users.CreateUser(ctx, models.User{BadgeID: "B1", DisplayName: "Alice twice"})
	s.Require().NoError(err)

	for _, b := range []string{"B1", "UNKNOWN", "B1"} {
		_, err := s.movements.RecordNext(ctx, b, service.NextDirection)
		s.Require().NoError(err)
	}

	h, err := s.movements.History(ctx)
	s.Require().NoError(err)
	s.Require().Len(h, 3)

	s.Equal("B1", h[0].BadgeID)
	s.Equal(models.DirectionOut, h[0].Direction)
	s.Require().NotNil(h[0].DisplayName)
	s.Equal("Alice", *h[0].DisplayName)

	s.Equal("UNKNOWN", h[1].BadgeID)
	s.Equal(models.DirectionIn, h[1].Direction)
	s.Nil(h[1].DisplayName)

	s.Equal(models.DirectionIn, h[2].Direction)
}

func (s *PostgresStoreSuite) TestClear() {
	ctx := context.Background()

	_, err := s.movements.RecordNext(ctx, "B1", service.NextDirection)
	s.Require().NoError(err)

	n, err := s.movements.Clear(ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	last, err := s.movements.Last(ctx, "B1")
	s.Require().NoError(err)
	s.Nil(last)
}

func (s *PostgresStoreSuite) TestInvalidDirectionIsRejected() {
	ctx := context.Background()

	_, err := s.movements.RecordNext(ctx, "B1", func(*models.Movement) models.Direction { return "SIDEWAYS" })
	s.Require().Error(err)

	last, err := s.movements.Last(ctx, "B1")
	s.Require().NoError(err)
	s.Nil(last)
}

// TestConcurrentSameBadgeAlternates verifies the per-badge lock: concurrent
// reports must still produce a strict IN, OUT, IN, ... sequence.
func (s *PostgresStoreSuite) TestConcurrentSameBadgeAlternates() {
	ctx := context.Background()
	badge := "badge-" + uuid.NewString()
	other := "badge-" + uuid.NewString()
	const goroutines = 40

	var (
		wg   sync.WaitGroup
		ins  atomic.Int32
		outs atomic.Int32
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			b := badge
			if i%4 == 0 {
				b = other
			}
			m, err := s.movements.RecordNext(ctx, b, service.NextDirection)
			if err != nil {
				s.T().Errorf("record: %v", err)
				return
			}
			if b != badge {
				return
			}
			if m.Direction == models.DirectionIn {
				ins.Add(1)
			} else {
				outs.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(15), ins.Load())
	s.Equal(int32(15), outs.Load())

	rows, err := s.pool.Query(ctx, `SELECT direction, created_at FROM movements WHERE badge_id = $1 ORDER BY id ASC`, badge)
	s.Require().NoError(err)
	defer rows.Close()

	var prev time.Time
	i := 0
	for rows.Next() {
		var (
			dir string
			at  time.Time
		)
		s.Require().NoError(rows.Scan(&dir, &at))
		want := models.DirectionIn
		if i%2 == 1 {
			want = models.DirectionOut
		}
		s.Equal(string(want), dir, "row %d", i)
		// id order and time order agree even when lock waiters began first
		s.False(at.Before(prev), "row %d created_at %s before %s", i, at, prev)
		prev = at
		i++
	}
	s.Require().NoError(rows.Err())
	s.Equal(30, i)
}
