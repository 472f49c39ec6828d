package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLivenessAndStatus(t *testing.T) {
	h := New("test")

	assert.Equal(t, http.StatusOK, serve(h, "/health/live").Code)

	w := serve(h, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "test", status.Environment)
}

func TestReadiness(t *testing.T) {
	t.Run("ready with no checks", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(New("test"), "/health/ready").Code)
	})

	t.Run("one failing check makes the service not ready", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("database", func(context.Context) error { return nil })
		h.RegisterCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		w := serve(h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "up", body.Checks["database"])
		assert.Equal(t, "down: connection refused", body.Checks["redis"])
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		h := New("test")
		var hadDeadline bool
		h.RegisterCheck("kafka", func(ctx context.Context) error {
			_, hadDeadline = ctx.Deadline()
			return nil
		})
		serve(h, "/health/ready")
		assert.True(t, hadDeadline)
	})
}
