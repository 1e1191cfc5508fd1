package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/stock-dashboard/internal/models"
)

// messageWriter is the part of kafka.Writer the producer relies on
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing events to Kafka
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishStocksRefreshed publishes a summary of a completed refresh
func (p *Producer) PublishStocksRefreshed(ctx context.Context, run models.RefreshRun, stocks []models.Stock) error {
	event := models.StockEvent{
		EventType: models.EventTypeStocksRefreshed,
		Source:    run.Source,
		Fallback:  run.Fallback,
		Symbols:   make([]string, 0, len(stocks)),
		Timestamp: run.FinishedAt,
	}
	for _, s := range stocks {
		event.Symbols = append(event.Symbols, s.Symbol)
		event.Stats.Add(s.Recommendation)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.publish(ctx, run.Source, event)
}

// OnRefresh lets the producer observe store refreshes
func (p *Producer) OnRefresh(ctx context.Context, run models.RefreshRun, stocks []models.Stock) error {
	return p.PublishStocksRefreshed(ctx, run, stocks)
}

func (p *Producer) publish(ctx context.Context, key string, event models.StockEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
