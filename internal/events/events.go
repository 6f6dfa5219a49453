// Package events publishes stock-movement notifications to a message
// broker. Publishing is best-effort: the ledger transaction has already
// committed by the time an event goes out.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/teacellar/apiserver/config"
)

// Movement describes one committed stock adjustment.
type Movement struct {
	AccountID      int       `json:"account_id"`
	ItemID         int       `json:"item_id"`
	ChangeAmount   int       `json:"change_amount"`
	CurrentBalance int       `json:"current_balance"`
	Reason         string    `json:"reason"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Backend defines the broker-agnostic publish operation.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher serializes movements and hands them to a backend on a fixed
// channel.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend and channel.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// Publish sends one movement event.
func (p *Publisher) Publish(ctx context.Context, movement Movement) error {
	if movement.OccurredAt.IsZero() {
		movement.OccurredAt = time.Now()
	}

	data, err := json.Marshal(movement)
	if err != nil {
		return err
	}

	attrs := map[string]string{
		"account_id": strconv.Itoa(movement.AccountID),
		"item_id":    strconv.Itoa(movement.ItemID),
		"reason":     movement.Reason,
	}
	_, err = p.backend.Publish(ctx, p.channel, data, attrs)
	return err
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}

// FromConfig builds a Publisher for the configured backend; a nil Publisher
// with a nil error means events are disabled.
func FromConfig(ctx context.Context, cfg config.EventsConfig) (*Publisher, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return NewPublisher(backend, cfg.Channel), nil
	case "pubsub":
		backend, err := NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return NewPublisher(backend, cfg.Channel), nil
	default:
		return nil, fmt.Errorf("unknown events backend %q", cfg.Backend)
	}
}
