// Package notify announces confirmed bookings on a message broker so that
// mailers or analytics can react without reading the primary database.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/eventhub/eventhub/internal/config"
	"github.com/eventhub/eventhub/internal/domain"
)

type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, booking domain.Booking) error
	Close() error
}

type BookingConfirmed struct {
	BookingID  uint   `json:"booking_id"`
	EventID    uint   `json:"event_id"`
	EventName  string `json:"event_name"`
	UserID     uint   `json:"user_id"`
	Quantity   int    `json:"quantity"`
	TotalPrice string `json:"total_price"`
	BookedAt   string `json:"booked_at"`
}

func NewBookingConfirmed(b domain.Booking) BookingConfirmed {
	return BookingConfirmed{
		BookingID:  b.ID,
		EventID:    b.EventID,
		EventName:  b.EventName,
		UserID:     b.UserID,
		Quantity:   b.Quantity,
		TotalPrice: b.TotalPrice.String(),
		BookedAt:   b.BookingDate.UTC().Format(time.RFC3339),
	}
}

// New returns the publisher selected by conf.Kind.
func New(conf *config.BrokerConfig) (Publisher, error) {
	switch conf.Kind {
	case "rabbitmq":
		return NewRabbitMQPublisher(conf.URL, conf.Topic)
	case "kafka":
		return NewKafkaPublisher(conf.Brokers, conf.Topic), nil
	case "none", "":
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("unknown broker kind %q", conf.Kind)
	}
}

type Noop struct{}

func (Noop) PublishBookingConfirmed(context.Context, domain.Booking) error { return nil }

func (Noop) Close() error { return nil }
