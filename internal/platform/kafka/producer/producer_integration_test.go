//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"fieldforce/internal/platform/kafka"
	"fieldforce/internal/platform/kafka/producer"
	"fieldforce/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	prod, err := producer.New(producer.DefaultConfig([]string{s.kafka.Brokers}), nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.producer.Close(ctx)
	}
}

func (s *ProducerIntegrationSuite) TestEnsureTopicIsIdempotent() {
	ctx := context.Background()
	spec := kafka.TopicSpec{Name: "agent-events-ensure", Partitions: 1, ReplicationFactor: 1}

	s.Require().NoError(kafka.EnsureTopic(ctx, []string{s.kafka.Brokers}, spec))
	s.Require().NoError(kafka.EnsureTopic(ctx, []string{s.kafka.Brokers}, spec))
}

// Produce returns only after the broker acknowledged the record.
func (s *ProducerIntegrationSuite) TestProduceDeliversRecordWithHeaders() {
	ctx := context.Background()
	topic := "agent-events-produce"
	s.Require().NoError(kafka.EnsureTopic(ctx, []string{s.kafka.Brokers},
		kafka.TopicSpec{Name: topic, Partitions: 1, ReplicationFactor: 1}))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic:   topic,
		Key:     []byte("agent-1"),
		Value:   []byte(`{"type":"agent_created"}`),
		Headers: map[string]string{"event_type": "agent_created"},
	})
	s.Require().NoError(err)

	client, err := s.kafka.NewConsumer("producer-test", topic)
	s.Require().NoError(err)
	defer client.Close()

	record := s.kafka.WaitForMessage(ctx, client, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == "agent-1"
	})
	s.Require().NotNil(record)
	s.JSONEq(`{"type":"agent_created"}`, string(record.Value))
	s.Require().Len(record.Headers, 1)
	s.Equal("event_type", record.Headers[0].Key)
	s.Equal("agent_created", string(record.Headers[0].Value))
}

func (s *ProducerIntegrationSuite) TestHealthAndClose() {
	ctx := context.Background()
	prod, err := producer.New(producer.DefaultConfig([]string{s.kafka.Brokers}), nil)
	s.Require().NoError(err)

	s.NoError(prod.Health(ctx))
	s.NoError(prod.Close(ctx))
	s.ErrorIs(prod.Health(ctx), producer.ErrClosed)
	s.ErrorIs(prod.Produce(ctx, &producer.Message{Topic: "x"}), producer.ErrClosed)
}
