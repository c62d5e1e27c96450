package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/models"
)

// StatusEvent is published whenever an evaluation changes status.
type StatusEvent struct {
	EvaluationID uuid.UUID               `json:"evaluation_id"`
	CandidateID  uuid.UUID               `json:"candidate_id"`
	Status       models.EvaluationStatus `json:"status"`
	TotalScore   *float64                `json:"total_score,omitempty"`
	Error        *string                 `json:"error,omitempty"`
	Timestamp    time.Time               `json:"timestamp"`
}

type EventPublisher interface {
	PublishStatus(ctx context.Context, event StatusEvent) error
	Close() error
}

type nopPublisher struct{}

// NewNopPublisher is used when no broker is configured.
func NewNopPublisher() EventPublisher { return nopPublisher{} }

func (nopPublisher) PublishStatus(ctx context.Context, event StatusEvent) error { return nil }
func (nopPublisher) Close() error                                               { return nil }

type amqpChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type amqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	log      *zap.Logger
}

// NewAMQPPublisher declares a durable topic exchange and publishes with
// routing key "evaluation.<id>".
func NewAMQPPublisher(url, exchange string, log *zap.Logger) (EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &amqpPublisher{conn: conn, channel: ch, exchange: exchange, log: logger.OrNop(log)}, nil
}

// PublishStatus implements EventPublisher.
func (p *amqpPublisher) PublishStatus(ctx context.Context, event StatusEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	routingKey := fmt.Sprintf("evaluation.%s", event.EvaluationID)

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.channel.Publish(p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   event.Timestamp,
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish status: %w", err)
	}

	p.log.Debug("status published", zap.String("routing_key", routingKey), zap.String("status", string(event.Status)))
	return nil
}

// Close implements EventPublisher.
func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.log.Warn("failed to close channel", zap.Error(err))
	}
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
