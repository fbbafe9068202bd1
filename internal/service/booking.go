package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventhub/eventhub/internal/domain"
	"github.com/eventhub/eventhub/internal/repository"
)

var (
	ErrInsufficientTickets = repository.ErrInsufficientTickets
	ErrEventClosed         = repository.ErrEventClosed
	ErrInvalidQuantity     = repository.ErrInvalidQuantity
	ErrTotalOutOfRange     = repository.ErrTotalOutOfRange

	ErrNotEventHost = errors.New("only the event creator can list its bookings")
)

// PublishTimeout bounds how long a booking response may wait for the broker.
const PublishTimeout = 2 * time.Second

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]domain.Booking, error)
	ListByEvent(ctx context.Context, eventID uint) ([]domain.Booking, error)
}

// BookingPublisher announces confirmed bookings to downstream consumers.
type BookingPublisher interface {
	PublishBookingConfirmed(ctx context.Context, booking domain.Booking) error
}

type BookingService struct {
	repo      BookingRepository
	publisher BookingPublisher
}

func NewBookingService(repo BookingRepository, publisher BookingPublisher) *BookingService {
	return &BookingService{
		repo:      repo,
		publisher: publisher,
	}
}

// BookTickets reserves quantity tickets for userID. Nothing is written when
// the event is missing, closed or short of tickets.
func (s *BookingService) BookTickets(ctx context.Context, userID, eventID uint, quantity int) (domain.Booking, error) {
	if quantity < 1 {
		return domain.Booking{}, ErrInvalidQuantity
	}

	booking, err := s.repo.Create(ctx, domain.Booking{
		Quantity: quantity,
		Status:   domain.BookingUpcoming,
		UserID:   userID,
		EventID:  eventID,
	})
	if err != nil {
		return domain.Booking{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	zap.L().Info("tickets booked",
		zap.Uint("booking_id", booking.ID),
		zap.Uint("event_id", eventID),
		zap.Uint("user_id", userID),
		zap.Int("quantity", quantity),
		zap.Stringer("total_price", booking.TotalPrice),
	)

	if s.publisher != nil {
		s.publish(ctx, booking)
	}

	return booking, nil
}

// publish is best effort: the booking is already committed, so a slow or
// failing broker only costs a log line.
func (s *BookingService) publish(ctx context.Context, booking domain.Booking) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if err := s.publisher.PublishBookingConfirmed(pubCtx, booking); err != nil {
		zap.L().Warn("failed to publish booking confirmation", zap.Uint("booking_id", booking.ID), zap.Error(err))
	}
}

func (s *BookingService) ListBookingsForUser(ctx context.Context, userID uint) ([]domain.Booking, error) {
	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByUser -> %w", err)
	}

	return bookings, nil
}

// ListBookingsForEvent returns the bookings of event to its creator.
func (s *BookingService) ListBookingsForEvent(ctx context.Context, requesterID uint, event domain.Event) ([]domain.Booking, error) {
	if event.CreatorID != requesterID {
		return nil, ErrNotEventHost
	}

	bookings, err := s.repo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.ListByEvent -> %w", err)
	}

	return bookings, nil
}
