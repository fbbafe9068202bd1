package repository

import (
	"context"
	"fmt"

	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/repository/dao"
)

var (
	ErrInsufficientTickets = dao.ErrInsufficientTickets
	ErrEventClosed         = dao.ErrEventClosed
	ErrInvalidQuantity     = dao.ErrInvalidQuantity
	ErrTotalOutOfRange     = dao.ErrTotalOutOfRange
)

type BookingDAO interface {
	InsertReservingTickets(ctx context.Context, booking dao.Booking) (dao.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]dao.Booking, error)
	ListByEvent(ctx context.Context, eventID uint) ([]dao.Booking, error)
}

type BookingRepository struct {
	dao BookingDAO
}

func NewBookingRepository(dao BookingDAO) *BookingRepository {
	return &BookingRepository{
		dao: dao,
	}
}

// Create reserves the tickets and stores the booking in one transaction.
// It fails with ErrEventNotFound, ErrEventClosed or ErrInsufficientTickets
// and leaves nothing behind when it does. The returned booking carries the
// total price computed from the event row.
func (r *BookingRepository) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	created, err := r.dao.InsertReservingTickets(ctx, dao.Booking{
		Quantity: booking.Quantity,
		Status:   string(booking.Status),
		UserID:   booking.UserID,
		EventID:  booking.EventID,
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.InsertReservingTickets -> %w", err)
	}

	return r.daoToDomain(created), nil
}

// ListByUser costs two queries: the bookings and their events.
func (r *BookingRepository) ListByUser(ctx context.Context, userID uint) ([]domain.Booking, error) {
	found, err := r.dao.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByUser -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *BookingRepository) ListByEvent(ctx context.Context, eventID uint) ([]domain.Booking, error) {
	found, err := r.dao.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.ListByEvent -> %w", err)
	}

	return r.daosToDomain(found), nil
}

func (r *BookingRepository) daoToDomain(b dao.Booking) domain.Booking {
	return domain.Booking{
		ID:           b.ID,
		Quantity:     b.Quantity,
		TotalPrice:   domain.Money(b.TotalPriceCents),
		BookingDate:  b.BookingDate,
		Status:       domain.BookingStatus(b.Status),
		AttendedDate: b.AttendedDate,
		UserID:       b.UserID,
		EventID:      b.EventID,
		EventName:    b.Event.Name,
	}
}

func (r *BookingRepository) daosToDomain(bookings []dao.Booking) []domain.Booking {
	domainBookings := make([]domain.Booking, len(bookings))
	for i, b := range bookings {
		domainBookings[i] = r.daoToDomain(b)
	}

	return domainBookings
}
