package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Kafka publishes events to a single topic, keyed by booking id so per-booking
// ordering is preserved across partitions. Publish spawns a goroutine and
// returns immediately; failures are logged, never surfaced to the caller.
type Kafka struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewKafka(brokers []string, topic string, logger zerolog.Logger) *Kafka {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...interface{}) {}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf("kafka: "+msg, args...)
		}),
	}

	return &Kafka{writer: writer, logger: logger}
}

func (k *Kafka) Publish(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		k.logger.Error().Err(err).Str("type", event.Type).Msg("notifier: marshal event")
		return
	}

	go func() {
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		err := k.writer.WriteMessages(writeCtx, kafka.Message{
			Key:   []byte(event.BookingID),
			Value: payload,
		})
		if err != nil {
			k.logger.Error().
				Err(err).
				Str("type", event.Type).
				Str("booking_id", event.BookingID).
				Msg("notifier: publish failed")
		}
	}()
}

func (k *Kafka) Close() error {
	return k.writer.Close()
}
