package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/studyforge/studyforge-api/internal/config"
	"github.com/studyforge/studyforge-api/internal/domain"
	"github.com/studyforge/studyforge-api/internal/generation"
)

// contentCaller abstracts the single backend call the generator makes so
// tests can substitute a fake without a real API client.
type contentCaller interface {
	// GenerateContent sends the prompt parts to the named model and
	// returns the raw response text.
	GenerateContent(ctx context.Context, model string, prompts []string) (string, error)
}

// genaiCaller implements contentCaller on top of the genai SDK client.
type genaiCaller struct {
	client *genai.Client
}

func (c *genaiCaller) GenerateContent(ctx context.Context, model string, prompts []string) (string, error) {
	contents := make([]*genai.Content, 0, len(prompts))
	for _, p := range prompts {
		contents = append(contents, genai.NewContentFromText(p, genai.RoleUser))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.3)),
		MaxOutputTokens:  7000,
		ResponseMIMEType: "application/json",
	}

	resp, err := c.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
	}
	return text, nil
}

// GeminiGenerator implements the generation.Generator interface using
// Google's Gemini API to generate structured study material.
type GeminiGenerator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// catalog reports which backend models are available
	catalog ModelCatalog

	// caller performs the actual content request
	caller contentCaller

	// modelOverride, when non-empty, skips catalog lookup entirely
	modelOverride string
}

// NewGeminiGenerator creates a GeminiGenerator from LLM configuration.
// The backend client is created eagerly so a bad API key surfaces at
// startup rather than on the first job.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &GeminiGenerator{
		logger:        logger,
		catalog:       NewRESTCatalog(cfg.GeminiAPIKey),
		caller:        &genaiCaller{client: client},
		modelOverride: cfg.ModelOverride,
	}, nil
}

// Generate produces a study layout for the given request. It selects a
// model, builds the schema-enforcing prompt for the requested difficulty,
// and parses the JSON response. A response that is not valid JSON for the
// layout schema is a permanent failure.
func (g *GeminiGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Result, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, ErrEmptyTopic
	}

	model, err := g.resolveModel(ctx)
	if err != nil {
		return nil, err
	}

	cfg := settingsForDifficulty(req.Difficulty)
	systemPrompt := buildSystemPrompt(cfg)
	userPrompt := buildUserPrompt(req.Topic, req.Difficulty, req.Purpose)

	g.logger.InfoContext(ctx, "Calling generation backend",
		"model", model,
		"topic", req.Topic,
		"difficulty", req.Difficulty,
		"chapters", cfg.Chapters)

	text, err := g.caller.GenerateContent(ctx, model, []string{systemPrompt, userPrompt})
	if err != nil {
		if errors.Is(err, generation.ErrInvalidResponse) {
			return nil, generation.NewPermanentError("backend returned unusable response", err)
		}
		// Leave transience to text classification downstream.
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	var layout domain.StudyLayout
	if err := json.Unmarshal([]byte(text), &layout); err != nil {
		g.logger.ErrorContext(ctx, "Failed to parse generation response",
			"model", model,
			"error", err,
			"response_length", len(text))
		return nil, generation.NewPermanentError("failed to parse JSON response",
			fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err))
	}
	if layout.Title == "" || len(layout.Chapters) == 0 {
		return nil, generation.NewPermanentError("response missing required layout fields",
			generation.ErrInvalidResponse)
	}

	g.logger.InfoContext(ctx, "Generation succeeded",
		"model", model,
		"chapters", len(layout.Chapters))

	return &generation.Result{
		Model:     model,
		Prompt:    req,
		Layout:    &layout,
		RawOutput: text,
	}, nil
}

// pingPrompt is the trivial prompt Ping sends to prove a model can
// actually answer, not merely appear in the catalog.
const pingPrompt = "Say 'pong'"

// Ping verifies the generation path end to end. It walks the candidate
// models with a trivial prompt and returns the first one that answers;
// a listed model can still refuse requests, so resolving a name alone
// proves nothing.
func (g *GeminiGenerator) Ping(ctx context.Context) (string, error) {
	var lastErr error
	for _, model := range g.pingCandidates(ctx) {
		if _, err := g.caller.GenerateContent(ctx, model, []string{pingPrompt}); err != nil {
			g.logger.WarnContext(ctx, "Model failed ping", "model", model, "error", err)
			lastErr = err
			continue
		}
		g.logger.DebugContext(ctx, "Ping succeeded", "model", model)
		return model, nil
	}

	if lastErr != nil {
		return "", fmt.Errorf("no model answered the ping prompt: %w", lastErr)
	}
	return "", generation.ErrNoModelAvailable
}

// pingCandidates lists the models Ping should try, best first. When the
// catalog cannot be listed it falls back to the static preference order
// so a listing outage does not mask a working generation path.
func (g *GeminiGenerator) pingCandidates(ctx context.Context) []string {
	if g.modelOverride != "" {
		return []string{g.modelOverride}
	}

	available, err := g.catalog.ListModels(ctx)
	if err != nil {
		g.logger.WarnContext(ctx, "Model listing failed, pinging preferred models directly",
			"error", err)
		return preferredModels
	}

	availableSet := make(map[string]struct{}, len(available))
	for _, name := range available {
		availableSet[name] = struct{}{}
	}

	candidates := make([]string, 0, len(preferredModels))
	for _, name := range preferredModels {
		if _, ok := availableSet[name]; ok {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 && len(available) > 0 {
		candidates = append(candidates, available[0])
	}
	return candidates
}

func (g *GeminiGenerator) resolveModel(ctx context.Context) (string, error) {
	if g.modelOverride != "" {
		return g.modelOverride, nil
	}
	return pickModel(ctx, g.logger, g.catalog)
}
