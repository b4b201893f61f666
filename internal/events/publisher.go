package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/shoplite/orders-service/internal/config"
	"github.com/shoplite/orders-service/internal/models"
)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated EventType = "order.created"
	EventTypeOrderUpdated EventType = "order.updated"
	EventTypeOrderDeleted EventType = "order.deleted"
)

// OrderEvent is the envelope published for every order lifecycle change.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   int64           `json:"order_id"`
	ClientID  int64           `json:"client_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderUpdated(ctx context.Context, order *models.Order) error
	PublishOrderDeleted(ctx context.Context, orderID, clientID int64) error
	Close() error
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logrus.Entry
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logrus.Entry) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.WithField("component", "event-publisher"),
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderCreated, order.ID, order.ClientID, data))
}

// PublishOrderUpdated publishes an order updated event.
func (p *KafkaPublisher) PublishOrderUpdated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderUpdated, order.ID, order.ClientID, data))
}

// PublishOrderDeleted publishes an order deleted event.
func (p *KafkaPublisher) PublishOrderDeleted(ctx context.Context, orderID, clientID int64) error {
	return p.publish(ctx, newEvent(EventTypeOrderDeleted, orderID, clientID, nil))
}

func newEvent(eventType EventType, orderID, clientID int64, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:        "evt_" + time.Now().UTC().Format("20060102150405.000000"),
		Type:      eventType,
		OrderID:   orderID,
		ClientID:  clientID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.OrderID, 10)),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		}).Error("Failed to publish event")
		return err
	}

	p.logger.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	}).Debug("Event published")

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockEventPublisher records events in memory for tests.
type MockEventPublisher struct {
	Events []*OrderEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make([]*OrderEvent, 0)}
}

func (m *MockEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderCreated, OrderID: order.ID, ClientID: order.ClientID})
	return nil
}

func (m *MockEventPublisher) PublishOrderUpdated(ctx context.Context, order *models.Order) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderUpdated, OrderID: order.ID, ClientID: order.ClientID})
	return nil
}

func (m *MockEventPublisher) PublishOrderDeleted(ctx context.Context, orderID, clientID int64) error {
	m.Events = append(m.Events, &OrderEvent{Type: EventTypeOrderDeleted, OrderID: orderID, ClientID: clientID})
	return nil
}

func (m *MockEventPublisher) Close() error {
	return nil
}
