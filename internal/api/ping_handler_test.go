package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	model string
	err   error
}

func (s *stubPinger) Ping(ctx context.Context) (string, error) {
	return s.model, s.err
}

func TestPingHandler(t *testing.T) {
	t.Run("reports the resolved model", func(t *testing.T) {
		handler := NewPingHandler(&stubPinger{model: "gemini-2.5-flash"})

		rec := httptest.NewRecorder()
		handler.Ping(rec, httptest.NewRequest(http.MethodGet, "/api/ai-ping", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp PingResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "gemini-2.5-flash", resp.Model)
	})

	t.Run("unreachable backend returns 503", func(t *testing.T) {
		handler := NewPingHandler(&stubPinger{err: errors.New("no models available")})

		rec := httptest.NewRecorder()
		handler.Ping(rec, httptest.NewRequest(http.MethodGet, "/api/ai-ping", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
