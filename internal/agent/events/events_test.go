package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldforce/internal/agent/models"
	"fieldforce/internal/platform/kafka/producer"
	"fieldforce/pkg/testutil"
)

type recordingProducer struct {
	msgs []*producer.Message
	err  error
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func TestKafkaPublisher(t *testing.T) {
	a := testutil.NewAgentBuilder().Build()
	ev := models.NewEvent(models.EventAgentCreated, a, testutil.FixedNow, "req-42")

	rec := &recordingProducer{}
	require.NoError(t, NewKafkaPublisher(rec, "agent-events").Publish(context.Background(), ev))
	require.Len(t, rec.msgs, 1)

	msg := rec.msgs[0]
	assert.Equal(t, "agent-events", msg.Topic)
	assert.Equal(t, a.ID.String(), string(msg.Key))
	assert.Equal(t, map[string]string{HeaderEventType: "agent_created", HeaderRequestID: "req-42"}, msg.Headers)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "agent_created", decoded["type"])
	assert.Equal(t, "sa_id", decoded["identity_type"])
	assert.NotContains(t, string(msg.Value), a.SAIDNumber, "events never carry identity numbers")
}

func TestKafkaPublisher_ProduceError(t *testing.T) {
	a := testutil.NewAgentBuilder().Build()
	rec := &recordingProducer{err: errors.New("broker down")}

	err := NewKafkaPublisher(rec, "agent-events").Publish(context.Background(),
		models.NewEvent(models.EventAgentDeleted, a, testutil.FixedNow, ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent_deleted")
	assert.NotContains(t, rec.msgs[0].Headers, HeaderRequestID)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	a := testutil.NewAgentBuilder().Build()

	require.NoError(t, NewLogPublisher(logger).Publish(context.Background(),
		models.NewEvent(models.EventAgentDeactivated, a, testutil.FixedNow, "req-1")))
	assert.Contains(t, buf.String(), `"event_type":"agent_deactivated"`)
	assert.NotContains(t, buf.String(), a.SAIDNumber)

	assert.NoError(t, NewLogPublisher(nil).Publish(context.Background(), models.Event{}))
}

func TestDecode(t *testing.T) {
	a := testutil.NewAgentBuilder().Build()
	msg, err := ToMessage("agent-events", models.NewEvent(models.EventAgentUpdated, a, testutil.FixedNow, "req-7"))
	require.NoError(t, err)

	ev, err := Decode(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, models.EventAgentUpdated, ev.Type)
	assert.Equal(t, a.ID, ev.AgentID)
	assert.True(t, testutil.FixedNow.Equal(ev.OccurredAt))
	assert.Equal(t, "req-7", ev.RequestID)

	_, err = Decode([]byte(`{"type":"agent_created"}`))
	assert.Error(t, err)
	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
