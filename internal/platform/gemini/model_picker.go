package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/studyforge/studyforge-api/internal/generation"
)

// preferredModels lists backend models in preference order. The first one
// the API reports as available wins.
var preferredModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-2.5-flash-lite",
}

// ModelCatalog reports which backend models are currently available.
type ModelCatalog interface {
	// ListModels returns the short names of available models, without
	// the "models/" prefix.
	ListModels(ctx context.Context) ([]string, error)
}

// restCatalog queries the generative language REST API for the model list.
type restCatalog struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewRESTCatalog creates a ModelCatalog backed by the public ListModels
// endpoint.
func NewRESTCatalog(apiKey string) ModelCatalog {
	return &restCatalog{
		apiKey:  apiKey,
		baseURL: "https://generativelanguage.googleapis.com/v1/models",
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *restCatalog) ListModels(ctx context.Context) ([]string, error) {
	endpoint := c.baseURL + "?key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build model list request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, generation.NewTransientError("model list request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("model list returned status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests {
			return nil, generation.NewTransientError("model list request throttled", err)
		}
		return nil, err
	}

	var body struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode model list: %v", generation.ErrInvalidResponse, err)
	}

	names := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

// pickModel selects the best available model: the first preferred one the
// catalog reports, or any available model when none of the preferred set
// is offered.
func pickModel(ctx context.Context, logger *slog.Logger, catalog ModelCatalog) (string, error) {
	available, err := catalog.ListModels(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}

	availableSet := make(map[string]struct{}, len(available))
	for _, name := range available {
		availableSet[name] = struct{}{}
	}

	for _, candidate := range preferredModels {
		if _, ok := availableSet[candidate]; ok {
			logger.DebugContext(ctx, "Selected preferred model", "model", candidate)
			return candidate, nil
		}
	}

	if len(available) > 0 {
		logger.WarnContext(ctx, "No preferred model available, falling back",
			"model", available[0])
		return available[0], nil
	}

	return "", generation.ErrNoModelAvailable
}
