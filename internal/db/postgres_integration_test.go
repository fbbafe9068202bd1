//go:build integration

package db_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eventhub/eventhub/internal/config"
	"github.com/eventhub/eventhub/internal/db"
	"github.com/eventhub/eventhub/internal/repository/dao"
)

// startPostgres runs a throwaway postgres container and returns a migrated
// connection to it.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	require.NoError(t, pool.Client.Ping(), "docker is not reachable")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=eventhub",
			"POSTGRES_PASSWORD=eventhub",
			"POSTGRES_DB=eventhub",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Purge(resource) })
	_ = resource.Expire(120)

	conf := &config.PostgresConfig{
		Host:            "localhost",
		Port:            resource.GetPort("5432/tcp"),
		User:            "eventhub",
		Password:        "eventhub",
		DB:              "eventhub",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Minute,
	}

	var gdb *gorm.DB
	pool.MaxWait = time.Minute
	err = pool.Retry(func() error {
		var openErr error
		gdb, openErr = db.OpenPostgres(conf)
		return openErr
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	return gdb
}

func TestPostgres_ConcurrentBookingsNeverOversell(t *testing.T) {
	gdb := startPostgres(t)
	ctx := context.Background()

	const (
		buyers  = 25
		tickets = 10
	)

	creator, err := dao.NewUserDAO(gdb).Insert(ctx, dao.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	event, err := dao.NewEventDAO(gdb).Insert(ctx, dao.Event{
		Name:         "Jazz night",
		Description:  "Live music",
		Date:         time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		StartTime:    "19:00",
		EndTime:      "22:00",
		Venue:        "Town hall",
		PriceCents:   1000,
		TotalTickets: tickets,
		Status:       dao.EventStatusOpen,
		CreatorID:    creator.ID,
	})
	require.NoError(t, err)

	bookings := dao.NewBookingDAO(gdb)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			buyer, err := dao.NewUserDAO(gdb).Insert(ctx, dao.User{
				FirstName:    "Buyer",
				LastName:     fmt.Sprint(i),
				Email:        fmt.Sprintf("buyer%d@example.com", i),
				PasswordHash: "hash",
			})
			if err != nil {
				t.Errorf("insert buyer: %v", err)
				return
			}

			_, err = bookings.InsertReservingTickets(ctx, dao.Booking{
				Quantity: 1,
				UserID:   buyer.ID,
				EventID:  event.ID,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, dao.ErrInsufficientTickets), errors.Is(err, dao.ErrEventClosed):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, tickets, succeeded)

	stored, err := dao.NewEventDAO(gdb).FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, tickets, stored.TicketsSold)
	assert.Equal(t, dao.EventStatusSoldOut, stored.Status)

	sold, err := bookings.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, sold, tickets)
}

func TestPostgres_DuplicateEmail(t *testing.T) {
	gdb := startPostgres(t)
	users := dao.NewUserDAO(gdb)

	user := dao.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PasswordHash: "hash"}
	_, err := users.Insert(context.Background(), user)
	require.NoError(t, err)

	_, err = users.Insert(context.Background(), user)
	assert.ErrorIs(t, err, dao.ErrUserEmailExists)
}

func TestPostgres_DuplicateLike(t *testing.T) {
	gdb := startPostgres(t)
	ctx := context.Background()

	user, err := dao.NewUserDAO(gdb).Insert(ctx, dao.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	events := dao.NewEventDAO(gdb)
	event, err := events.Insert(ctx, dao.Event{
		Name:         "Jazz night",
		Description:  "Live music",
		Date:         time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		StartTime:    "19:00",
		EndTime:      "22:00",
		Venue:        "Town hall",
		TotalTickets: 10,
		Status:       dao.EventStatusOpen,
		CreatorID:    user.ID,
	})
	require.NoError(t, err)

	_, err = events.InsertLike(ctx, dao.Like{UserID: user.ID, EventID: event.ID})
	require.NoError(t, err)

	_, err = events.InsertLike(ctx, dao.Like{UserID: user.ID, EventID: event.ID})
	assert.ErrorIs(t, err, dao.ErrAlreadyLiked)

	count, err := events.CountLikes(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
