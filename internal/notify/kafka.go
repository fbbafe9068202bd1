package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/eventhub/eventhub/internal/domain"
)

// KafkaPublisher writes one message per booking, keyed by event id so that
// all bookings of an event land on the same partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			// One message per booking; do not wait for a batch to fill.
			BatchSize:    1,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 2 * time.Second,
			MaxAttempts:  3,
		},
	}
}

func (p *KafkaPublisher) PublishBookingConfirmed(ctx context.Context, booking domain.Booking) error {
	body, err := json.Marshal(NewBookingConfirmed(booking))
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(booking.EventID), 10)),
		Value: body,
	})
	if err != nil {
		return fmt.Errorf("p.writer.WriteMessages -> %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
