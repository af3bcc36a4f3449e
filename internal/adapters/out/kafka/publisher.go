// Package kafka publishes order events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// EventOrderStatusChanged is the event type header value of status change messages.
const EventOrderStatusChanged = "OrderStatusChanged"

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewWriter creates a writer for topic on the broker at host. Messages are keyed
// by order id, so events of one order stay on one partition in order.
func NewWriter(host, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(host),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
}

// OrderEventPublisher implements ports.OrderEventPublisher over a Kafka writer.
type OrderEventPublisher struct {
	writer MessageWriter
}

func NewOrderEventPublisher(writer MessageWriter) (*OrderEventPublisher, error) {
	if writer == nil {
		return nil, errs.NewValueIsRequiredError("writer")
	}
	return &OrderEventPublisher{writer: writer}, nil
}

func (p *OrderEventPublisher) PublishOrderStatusChanged(ctx context.Context, event ports.OrderStatusChanged) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s: %w", EventOrderStatusChanged, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(event.OrderID),
		Value:   value,
		Time:    event.ChangedAt,
		Headers: []kafka.Header{{Key: "eventType", Value: []byte(EventOrderStatusChanged)}},
	})
	if err != nil {
		metrics.OrderEventsPublishedTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return fmt.Errorf("publish %s for order %s: %w", EventOrderStatusChanged, event.OrderID, err)
	}
	metrics.OrderEventsPublishedTotal.WithLabelValues(metrics.OutcomeAccepted).Inc()
	return nil
}

// Close flushes and closes the underlying writer.
func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher stands in for Kafka when publishing is disabled: events are
// written to the log instead.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "order-events")}
}

func (p *LogPublisher) PublishOrderStatusChanged(ctx context.Context, event ports.OrderStatusChanged) error {
	p.logger.DebugContext(ctx, "order status changed",
		"orderId", event.OrderID,
		"deliveryId", event.DeliveryID,
		"fromState", event.OldStatus.String(),
		"toState", event.NewStatus.String(),
	)
	return nil
}

func (p *LogPublisher) Close() error { return nil }
