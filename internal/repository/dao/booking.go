package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/eventhub/eventhub/internal/domain"
)

var (
	ErrInsufficientTickets = errors.New("not enough tickets left")
	ErrEventClosed         = errors.New("event is not open for booking")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrTotalOutOfRange     = errors.New("booking total out of range")
)

const BookingStatusUpcoming = "Upcoming"

type Booking struct {
	ID              uint      `gorm:"primaryKey"`
	Quantity        int       `gorm:"not null;check:quantity >= 1"`
	TotalPriceCents int64     `gorm:"not null"`
	BookingDate     time.Time `gorm:"not null;autoCreateTime"`
	Status          string    `gorm:"size:20;not null;default:Upcoming"`
	AttendedDate    *time.Time
	UserID          uint  `gorm:"not null;index"`
	User            User  `gorm:"foreignKey:UserID"`
	EventID         uint  `gorm:"not null;index"`
	Event           Event `gorm:"foreignKey:EventID"`
}

type BookingDAO struct {
	db *gorm.DB
}

func NewBookingDAO(db *gorm.DB) *BookingDAO {
	return &BookingDAO{
		db: db,
	}
}

// InsertReservingTickets books booking.Quantity tickets of booking.EventID in
// one transaction. The sold counter is advanced with a conditional UPDATE so
// concurrent bookings can never push tickets_sold past total_tickets. The
// total price is taken from the event row read inside the transaction.
func (d *BookingDAO) InsertReservingTickets(ctx context.Context, booking Booking) (Booking, error) {
	if booking.Quantity < 1 {
		return Booking{}, ErrInvalidQuantity
	}

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event Event
		if err := tx.First(&event, booking.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}

			return err
		}

		if event.Status != EventStatusOpen {
			return ErrEventClosed
		}
		total, err := domain.Money(event.PriceCents).Times(booking.Quantity)
		if err != nil {
			return ErrTotalOutOfRange
		}

		result := tx.Model(&Event{}).
			Where("id = ? AND status = ? AND tickets_sold + ? <= total_tickets", event.ID, EventStatusOpen, booking.Quantity).
			Update("tickets_sold", gorm.Expr("tickets_sold + ?", booking.Quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrInsufficientTickets
		}

		result = tx.Model(&Event{}).
			Where("id = ? AND tickets_sold >= total_tickets", event.ID).
			Update("status", EventStatusSoldOut)
		if result.Error != nil {
			return result.Error
		}

		booking.TotalPriceCents = int64(total)
		if booking.Status == "" {
			booking.Status = BookingStatusUpcoming
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return err
		}

		booking.Event = event

		return nil
	})
	if err != nil {
		return Booking{}, err
	}

	return booking, nil
}

func (d *BookingDAO) ListByUser(ctx context.Context, userID uint) ([]Booking, error) {
	var bookings []Booking

	result := d.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("booking_date DESC").
		Order("id DESC").
		Find(&bookings)
	if result.Error != nil {
		return nil, result.Error
	}

	return bookings, nil
}

func (d *BookingDAO) ListByEvent(ctx context.Context, eventID uint) ([]Booking, error) {
	var bookings []Booking

	result := d.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("id ASC").
		Find(&bookings)
	if result.Error != nil {
		return nil, result.Error
	}

	return bookings, nil
}
