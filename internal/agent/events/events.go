// Package events publishes agent lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/platform/kafka/producer"
)

// Header names set on every Kafka record.
const (
	HeaderEventType = "event_type"
	HeaderRequestID = "request_id"
)

// Producer is the subset of producer.Producer the Kafka publisher needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaPublisher writes events as JSON keyed by agent ID so every event for one agent
// lands on the same partition in order.
type KafkaPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaPublisher(p Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev models.Event) error {
	msg, err := ToMessage(p.topic, ev)
	if err != nil {
		return err
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// ToMessage encodes ev for topic.
func ToMessage(topic string, ev models.Event) (*producer.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	headers := map[string]string{HeaderEventType: string(ev.Type)}
	if ev.RequestID != "" {
		headers[HeaderRequestID] = ev.RequestID
	}
	return &producer.Message{
		Topic:   topic,
		Key:     []byte(ev.AgentID.String()),
		Value:   value,
		Headers: headers,
	}, nil
}

// LogPublisher writes events to the structured log when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, ev models.Event) error {
	if p.logger == nil {
		return nil
	}
	p.logger.InfoContext(ctx, "agent event",
		"event_type", string(ev.Type),
		"agent_id", ev.AgentID.String(),
		"identity_type", string(ev.IdentityType),
		"occurred_at", ev.OccurredAt,
		"request_id", ev.RequestID,
		"log_type", "event",
	)
	return nil
}

// Decode parses a record value written by KafkaPublisher.
func Decode(value []byte) (models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal(value, &ev); err != nil {
		return models.Event{}, fmt.Errorf("decode agent event: %w", err)
	}
	if ev.Type == "" || ev.AgentID.IsNil() {
		return models.Event{}, fmt.Errorf("decode agent event: missing type or agent_id")
	}
	return ev, nil
}
