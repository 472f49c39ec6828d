package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fieldforce/pkg/domain-errors"
)

// TestParseAgentID validates the parsing invariant:
// "agent IDs must be valid, non-empty, non-nil UUIDs"
func TestParseAgentID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAgentID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAgentID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseAgentID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		raw := uuid.New()
		id, err := ParseAgentID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, AgentID(raw), id)
		assert.Equal(t, raw.String(), id.String())
		assert.False(t, id.IsNil())
	})
}

func TestAgentID_JSON(t *testing.T) {
	id := NewAgentID()

	b, err := json.Marshal(struct {
		ID AgentID `json:"id"`
	}{ID: id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+id.String()+`"}`, string(b))

	var decoded struct {
		ID AgentID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, id, decoded.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id":"nope"}`), &decoded))
}
