package dao_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/eventhub/eventhub/internal/db"
	"github.com/eventhub/eventhub/internal/repository/dao"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, email string) dao.User {
	t.Helper()

	user, err := dao.NewUserDAO(gdb).Insert(context.Background(), dao.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	return user
}

func createEvent(t *testing.T, gdb *gorm.DB, creatorID uint, priceCents int64, total int) dao.Event {
	t.Helper()

	event, err := dao.NewEventDAO(gdb).Insert(context.Background(), dao.Event{
		Name:         "Jazz night",
		Description:  "Live music",
		Date:         time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC),
		StartTime:    "19:00",
		EndTime:      "22:00",
		Venue:        "Town hall",
		PriceCents:   priceCents,
		TotalTickets: total,
		Status:       dao.EventStatusOpen,
		CreatorID:    creatorID,
	})
	require.NoError(t, err)

	return event
}

func TestUserDAO_InsertDuplicateEmail(t *testing.T) {
	gdb := newTestDB(t)
	users := dao.NewUserDAO(gdb)
	first := createUser(t, gdb, "ada@example.com")

	_, err := users.Insert(context.Background(), dao.User{
		FirstName:    "Other",
		LastName:     "Person",
		Email:        "ada@example.com",
		PasswordHash: "other",
	})
	assert.ErrorIs(t, err, dao.ErrUserEmailExists)

	found, err := users.FindByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "Ada", found.FirstName)
}

func TestUserDAO_FindMissing(t *testing.T) {
	users := dao.NewUserDAO(newTestDB(t))

	_, err := users.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, dao.ErrUserNotFound)

	_, err = users.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, dao.ErrUserNotFound)
}

func TestBookingDAO_InsertReservingTickets(t *testing.T) {
	gdb := newTestDB(t)
	user := createUser(t, gdb, "ada@example.com")
	event := createEvent(t, gdb, user.ID, 1000, 5)
	bookings := dao.NewBookingDAO(gdb)

	booking, err := bookings.InsertReservingTickets(context.Background(), dao.Booking{
		Quantity: 3,
		UserID:   user.ID,
		EventID:  event.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, booking.ID)
	assert.Equal(t, int64(3000), booking.TotalPriceCents)
	assert.Equal(t, dao.BookingStatusUpcoming, booking.Status)
	assert.Equal(t, "Jazz night", booking.Event.Name)

	stored, err := dao.NewEventDAO(gdb).FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.TicketsSold)
	assert.Equal(t, dao.EventStatusOpen, stored.Status)
}

func TestBookingDAO_SellsOutExactly(t *testing.T) {
	gdb := newTestDB(t)
	user := createUser(t, gdb, "ada@example.com")
	event := createEvent(t, gdb, user.ID, 500, 2)
	bookings := dao.NewBookingDAO(gdb)

	_, err := bookings.InsertReservingTickets(context.Background(), dao.Booking{Quantity: 2, UserID: user.ID, EventID: event.ID})
	require.NoError(t, err)

	stored, err := dao.NewEventDAO(gdb).FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TicketsSold)
	assert.Equal(t, dao.EventStatusSoldOut, stored.Status)

	_, err = bookings.InsertReservingTickets(context.Background(), dao.Booking{Quantity: 1, UserID: user.ID, EventID: event.ID})
	assert.ErrorIs(t, err, dao.ErrEventClosed)
}

func TestBookingDAO_RejectsWithoutSideEffects(t *testing.T) {
	gdb := newTestDB(t)
	user := createUser(t, gdb, "ada@example.com")
	event := createEvent(t, gdb, user.ID, 1000, 5)
	bookings := dao.NewBookingDAO(gdb)

	tests := []struct {
		name    string
		booking dao.Booking
		wantErr error
	}{
		{name: "more than left", booking: dao.Booking{Quantity: 6, UserID: user.ID, EventID: event.ID}, wantErr: dao.ErrInsufficientTickets},
		{name: "zero quantity", booking: dao.Booking{Quantity: 0, UserID: user.ID, EventID: event.ID}, wantErr: dao.ErrInvalidQuantity},
		{name: "negative quantity", booking: dao.Booking{Quantity: -3, UserID: user.ID, EventID: event.ID}, wantErr: dao.ErrInvalidQuantity},
		{name: "missing event", booking: dao.Booking{Quantity: 1, UserID: user.ID, EventID: 999}, wantErr: dao.ErrEventNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := bookings.InsertReservingTickets(context.Background(), tt.booking)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	var count int64
	require.NoError(t, gdb.Model(&dao.Booking{}).Count(&count).Error)
	assert.Zero(t, count)

	stored, err := dao.NewEventDAO(gdb).FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TicketsSold)
}

func TestBookingDAO_RejectsTotalOverflow(t *testing.T) {
	gdb := newTestDB(t)
	user := createUser(t, gdb, "ada@example.com")
	event := createEvent(t, gdb, user.ID, 5_000_000_000_000_000_000, 10)

	_, err := dao.NewBookingDAO(gdb).InsertReservingTickets(context.Background(), dao.Booking{
		Quantity: 2,
		UserID:   user.ID,
		EventID:  event.ID,
	})
	assert.ErrorIs(t, err, dao.ErrTotalOutOfRange)

	var count int64
	require.NoError(t, gdb.Model(&dao.Booking{}).Count(&count).Error)
	assert.Zero(t, count)

	stored, err := dao.NewEventDAO(gdb).FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.TicketsSold)
}

func TestBookingDAO_ConcurrentBookingsNeverOversell(t *testing.T) {
	gdb := newTestDB(t)
	user := createUser(t, gdb, "ada@example.com")
	event := createEvent(t, gdb, user.ID, 1000, 5)
	bookings := dao.NewBookingDAO(gdb)

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failed    int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := bookings.InsertReservingTickets(context.Background(), dao.Booking{
				Quantity: 1,
				UserID:   user.ID,
				EventID:  event.ID,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, dao.ErrInsufficientTickets), errors.Is(err, dao.ErrEventClosed):
				failed++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, attempts-5, failed)

	stored, err := dao.NewEventDAO(gdb).FindByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.TicketsSold)
	assert.Equal(t, dao.EventStatusSoldOut, stored.Status)
}

func TestBookingDAO_ListByUser(t *testing.T) {
	gdb := newTestDB(t)
	ada := createUser(t, gdb, "ada@example.com")
	bob := createUser(t, gdb, "bob@example.com")
	event := createEvent(t, gdb, ada.ID, 250, 10)
	bookings := dao.NewBookingDAO(gdb)

	for _, userID := range []uint{ada.ID, ada.ID, bob.ID} {
		_, err := bookings.InsertReservingTickets(context.Background(), dao.Booking{Quantity: 1, UserID: userID, EventID: event.ID})
		require.NoError(t, err)
	}

	found, err := bookings.ListByUser(context.Background(), ada.ID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Jazz night", found[0].Event.Name)
	assert.Greater(t, found[0].ID, found[1].ID)

	byEvent, err := bookings.ListByEvent(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Len(t, byEvent, 3)
}

func TestEventDAO_Likes(t *testing.T) {
	gdb := newTestDB(t)
	user := createUser(t, gdb, "ada@example.com")
	event := createEvent(t, gdb, user.ID, 0, 1)
	events := dao.NewEventDAO(gdb)
	ctx := context.Background()

	_, err := events.InsertLike(ctx, dao.Like{UserID: user.ID, EventID: event.ID})
	require.NoError(t, err)

	_, err = events.InsertLike(ctx, dao.Like{UserID: user.ID, EventID: event.ID})
	assert.ErrorIs(t, err, dao.ErrAlreadyLiked)

	count, err := events.CountLikes(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	liked, err := events.HasLiked(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestEventDAO_CommentsNewestFirst(t *testing.T) {
	gdb := newTestDB(t)
	user := createUser(t, gdb, "ada@example.com")
	event := createEvent(t, gdb, user.ID, 0, 1)
	events := dao.NewEventDAO(gdb)
	ctx := context.Background()

	for _, content := range []string{"first", "second"} {
		_, err := events.InsertComment(ctx, dao.Comment{Content: content, UserID: user.ID, EventID: event.ID})
		require.NoError(t, err)
	}

	comments, err := events.ListComments(ctx, event.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "Ada", comments[0].User.FirstName)
}

func TestEventDAO_RejectsBrokenForeignKey(t *testing.T) {
	gdb := newTestDB(t)
	events := dao.NewEventDAO(gdb)

	_, err := events.InsertComment(context.Background(), dao.Comment{Content: "orphan", UserID: 7, EventID: 7})
	assert.Error(t, err)
}
