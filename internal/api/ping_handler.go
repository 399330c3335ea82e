package api

import (
	"context"
	"net/http"

	"github.com/studyforge/studyforge-api/internal/api/shared"
)

// ModelPinger reports the generation model the backend would use.
// Implemented by the Gemini client.
type ModelPinger interface {
	Ping(ctx context.Context) (string, error)
}

// PingResponse represents the response data for the generator health probe
type PingResponse struct {
	Status string `json:"status"`
	Model  string `json:"model,omitempty"`
}

// PingHandler handles the generator health probe
type PingHandler struct {
	pinger ModelPinger
}

// NewPingHandler creates a new PingHandler
func NewPingHandler(pinger ModelPinger) *PingHandler {
	return &PingHandler{pinger: pinger}
}

// Ping handles GET /api/ai-ping requests. It resolves the model that a
// generation would use right now; a resolution failure means the backend
// is unreachable or has no usable model.
func (h *PingHandler) Ping(w http.ResponseWriter, r *http.Request) {
	model, err := h.pinger.Ping(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(
			w,
			r,
			http.StatusServiceUnavailable,
			"Generation backend unavailable",
			err,
		)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PingResponse{
		Status: "ok",
		Model:  model,
	})
}
