package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/stock-dashboard/internal/store"
)

// EventTypeRefreshRequested asks the service to refresh its stock collection
const EventTypeRefreshRequested = "REFRESH_REQUESTED"

// RefreshRequest is the payload of a refresh request message
type RefreshRequest struct {
	EventType   string    `json:"event_type"`
	RequestedBy string    `json:"requested_by,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Refresher is implemented by the stock store
type Refresher interface {
	RefreshWithTimeout(ctx context.Context, timeout time.Duration) store.RefreshResult
}

// messageReader is the part of kafka.Reader the consumer relies on
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer turns refresh request messages into store refreshes
type Consumer struct {
	reader    messageReader
	topic     string
	refresher Refresher
	timeout   time.Duration
}

// NewConsumer creates a new Kafka consumer for refresh requests
func NewConsumer(brokers []string, topic, groupID string, refresher Refresher, timeout time.Duration) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       1e6, // 1MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:    reader,
		topic:     topic,
		refresher: refresher,
		timeout:   timeout,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Info().Str("topic", c.topic).Msg("Starting Kafka refresh consumer")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Kafka refresh consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return c.reader.Close()
				}
				log.Error().Err(err).Msg("Error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Error().Err(err).Msg("Error processing message")
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var req RefreshRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("failed to unmarshal refresh request: %w", err)
	}

	if req.EventType != EventTypeRefreshRequested {
		log.Debug().Str("event_type", req.EventType).Msg("Ignoring event type")
		return nil
	}

	res := c.refresher.RefreshWithTimeout(ctx, c.timeout)
	log.Info().
		Str("requested_by", req.RequestedBy).
		Str("source", res.Source).
		Int("count", res.Count).
		Msg("Refresh request handled")
	return nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
