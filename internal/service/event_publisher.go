package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/piyawat-k/ticket-ledger/internal/domain"
	"github.com/piyawat-k/ticket-ledger/pkg/kafka"
)

// EventPublisher defines the interface for publishing order lifecycle events
type EventPublisher interface {
	// PublishOrderCreated publishes an order created event
	PublishOrderCreated(ctx context.Context, order *domain.Order) error

	// PublishOrderFulfilled publishes an order fulfilled event
	PublishOrderFulfilled(ctx context.Context, order *domain.Order) error

	// PublishBookingFailed publishes an insufficient-inventory event
	PublishBookingFailed(ctx context.Context, order *domain.Order) error

	// PublishOrderCancelled publishes an order cancelled event
	PublishOrderCancelled(ctx context.Context, order *domain.Order) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "order-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ticket-ledger"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ticket-ledger-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishOrderCreated publishes an order created event
func (p *KafkaEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publishEvent(ctx, domain.OrderEventCreated, order)
}

// PublishOrderFulfilled publishes an order fulfilled event
func (p *KafkaEventPublisher) PublishOrderFulfilled(ctx context.Context, order *domain.Order) error {
	return p.publishEvent(ctx, domain.OrderEventFulfilled, order)
}

// PublishBookingFailed publishes an insufficient-inventory event
func (p *KafkaEventPublisher) PublishBookingFailed(ctx context.Context, order *domain.Order) error {
	return p.publishEvent(ctx, domain.OrderEventBookingFailed, order)
}

// PublishOrderCancelled publishes an order cancelled event
func (p *KafkaEventPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	return p.publishEvent(ctx, domain.OrderEventCancelled, order)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes an order event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.OrderEventType, order *domain.Order) error {
	eventID := uuid.New().String()
	event := domain.NewOrderEvent(eventType, order, eventID)

	value, err := event.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher for testing
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishOrderCreated is a no-op
func (p *NoOpEventPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	return nil
}

// PublishOrderFulfilled is a no-op
func (p *NoOpEventPublisher) PublishOrderFulfilled(ctx context.Context, order *domain.Order) error {
	return nil
}

// PublishBookingFailed is a no-op
func (p *NoOpEventPublisher) PublishBookingFailed(ctx context.Context, order *domain.Order) error {
	return nil
}

// PublishOrderCancelled is a no-op
func (p *NoOpEventPublisher) PublishOrderCancelled(ctx context.Context, order *domain.Order) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
