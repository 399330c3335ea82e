package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyforge/studyforge-api/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCatalog returns a fixed model list or error.
type fakeCatalog struct {
	models []string
	err    error
}

func (f *fakeCatalog) ListModels(ctx context.Context) ([]string, error) {
	return f.models, f.err
}

// fakeCaller records the call and returns canned text or an error.
type fakeCaller struct {
	text  string
	err   error
	model string
	sent  []string
}

func (f *fakeCaller) GenerateContent(ctx context.Context, model string, prompts []string) (string, error) {
	f.model = model
	f.sent = prompts
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestGenerator(catalog ModelCatalog, caller contentCaller) *GeminiGenerator {
	return &GeminiGenerator{
		logger:  testLogger(),
		catalog: catalog,
		caller:  caller,
	}
}

func TestSettingsForDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		difficulty   string
		wantChapters int
		wantDepth    string
	}{
		{"easy", 3, "introductory"},
		{"Easy", 3, "introductory"},
		{"hard", 6, "advanced depth"},
		{"HARD", 6, "advanced depth"},
		{"medium", 4, "balanced depth"},
		{"", 4, "balanced depth"},
		{"anything else", 4, "balanced depth"},
	}

	for _, tt := range tests {
		t.Run("difficulty "+tt.difficulty, func(t *testing.T) {
			got := settingsForDifficulty(tt.difficulty)
			assert.Equal(t, tt.wantChapters, got.Chapters)
			assert.Equal(t, tt.wantDepth, got.Depth)
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildSystemPrompt(difficultySettings{Chapters: 6, Depth: "advanced depth"})

	assert.Contains(t, prompt, "Generate exactly 6 chapters")
	assert.Contains(t, prompt, "advanced depth")
	assert.Contains(t, prompt, `"estimatedTime"`)
	assert.Contains(t, prompt, "STRICT JSON ONLY")
	assert.Contains(t, prompt, `"Example: ..."`)
}

func TestBuildUserPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildUserPrompt("Graph Theory", "hard", "exam prep")

	assert.Contains(t, prompt, `"Graph Theory"`)
	assert.Contains(t, prompt, "Difficulty: hard")
	assert.Contains(t, prompt, "Purpose: exam prep")
}

func TestPickModel(t *testing.T) {
	t.Parallel()

	t.Run("picks highest preference available", func(t *testing.T) {
		catalog := &fakeCatalog{models: []string{"gemini-2.0-flash", "gemini-2.5-flash", "embedding-001"}}
		model, err := pickModel(context.Background(), testLogger(), catalog)
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", model)
	})

	t.Run("falls back to any available model", func(t *testing.T) {
		catalog := &fakeCatalog{models: []string{"some-experimental-model"}}
		model, err := pickModel(context.Background(), testLogger(), catalog)
		require.NoError(t, err)
		assert.Equal(t, "some-experimental-model", model)
	})

	t.Run("errors when no models exist", func(t *testing.T) {
		catalog := &fakeCatalog{models: nil}
		_, err := pickModel(context.Background(), testLogger(), catalog)
		assert.ErrorIs(t, err, generation.ErrNoModelAvailable)
	})

	t.Run("propagates catalog errors", func(t *testing.T) {
		catalog := &fakeCatalog{err: errors.New("listing failed")}
		_, err := pickModel(context.Background(), testLogger(), catalog)
		assert.ErrorContains(t, err, "listing failed")
	})
}

// walkingCaller rejects configured models and records the order in which
// models were tried.
type walkingCaller struct {
	reject map[string]error
	tried  []string
	sent   []string
}

func (w *walkingCaller) GenerateContent(ctx context.Context, model string, prompts []string) (string, error) {
	w.tried = append(w.tried, model)
	w.sent = prompts
	if err, ok := w.reject[model]; ok {
		return "", err
	}
	return "pong", nil
}

func TestPing(t *testing.T) {
	t.Parallel()

	t.Run("reports first model that answers", func(t *testing.T) {
		caller := &walkingCaller{}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro", "gemini-2.5-flash"}}, caller)

		model, err := g.Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-pro", model)
		assert.Equal(t, []string{"gemini-2.5-pro"}, caller.tried)
		assert.Equal(t, []string{"Say 'pong'"}, caller.sent)
	})

	t.Run("walks past a listed but unusable model", func(t *testing.T) {
		caller := &walkingCaller{reject: map[string]error{
			"gemini-2.5-pro": errors.New("503 model overloaded"),
		}}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro", "gemini-2.5-flash"}}, caller)

		model, err := g.Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash", model)
		assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, caller.tried)
	})

	t.Run("all models failing surfaces the last error", func(t *testing.T) {
		caller := &walkingCaller{reject: map[string]error{
			"gemini-2.5-pro":   errors.New("503 model overloaded"),
			"gemini-2.5-flash": errors.New("quota exceeded"),
		}}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro", "gemini-2.5-flash"}}, caller)

		_, err := g.Ping(context.Background())
		require.Error(t, err)
		assert.ErrorContains(t, err, "quota exceeded")
	})

	t.Run("override pings only that model", func(t *testing.T) {
		caller := &walkingCaller{}
		g := newTestGenerator(&fakeCatalog{err: errors.New("should not be called")}, caller)
		g.modelOverride = "gemini-2.0-flash"

		model, err := g.Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.0-flash", model)
		assert.Equal(t, []string{"gemini-2.0-flash"}, caller.tried)
	})

	t.Run("catalog outage falls back to preferred list", func(t *testing.T) {
		caller := &walkingCaller{}
		g := newTestGenerator(&fakeCatalog{err: errors.New("listing failed")}, caller)

		model, err := g.Ping(context.Background())
		require.NoError(t, err)
		assert.Equal(t, preferredModels[0], model)
	})

	t.Run("empty catalog has nothing to ping", func(t *testing.T) {
		g := newTestGenerator(&fakeCatalog{models: nil}, &walkingCaller{})
		_, err := g.Ping(context.Background())
		assert.ErrorIs(t, err, generation.ErrNoModelAvailable)
	})
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	validJSON := `{
		"title": "Graph Theory",
		"summary": "An overview of graphs.",
		"chapters": [
			{
				"title": "Basics",
				"estimatedTime": "30 minutes",
				"description": "Nodes and edges.",
				"bullets": ["vertices", "edges", "degrees", "paths"]
			}
		]
	}`

	req := generation.Request{Topic: "Graph Theory", Difficulty: "easy", Purpose: "exam prep"}

	t.Run("returns parsed layout on success", func(t *testing.T) {
		caller := &fakeCaller{text: validJSON}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro"}}, caller)

		result, err := g.Generate(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, "gemini-2.5-pro", result.Model)
		assert.Equal(t, req, result.Prompt)
		assert.Equal(t, validJSON, result.RawOutput)
		require.NotNil(t, result.Layout)
		assert.Equal(t, "Graph Theory", result.Layout.Title)
		require.Len(t, result.Layout.Chapters, 1)
		assert.Equal(t, "Basics", result.Layout.Chapters[0].Title)
	})

	t.Run("sends system prompt before user prompt", func(t *testing.T) {
		caller := &fakeCaller{text: validJSON}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro"}}, caller)

		_, err := g.Generate(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, caller.sent, 2)
		assert.True(t, strings.HasPrefix(caller.sent[0], "Return ONLY valid JSON"))
		assert.Contains(t, caller.sent[1], "Graph Theory")
	})

	t.Run("model override skips catalog", func(t *testing.T) {
		caller := &fakeCaller{text: validJSON}
		g := newTestGenerator(&fakeCatalog{err: errors.New("should not be called")}, caller)
		g.modelOverride = "gemini-2.0-flash"

		result, err := g.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "gemini-2.0-flash", result.Model)
		assert.Equal(t, "gemini-2.0-flash", caller.model)
	})

	t.Run("unparseable response is permanent", func(t *testing.T) {
		caller := &fakeCaller{text: "sorry, here is your material: {broken"}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro"}}, caller)

		_, err := g.Generate(context.Background(), req)
		require.Error(t, err)
		assert.False(t, generation.IsTransient(err))
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})

	t.Run("layout missing chapters is permanent", func(t *testing.T) {
		caller := &fakeCaller{text: `{"title": "Empty", "summary": "", "chapters": []}`}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro"}}, caller)

		_, err := g.Generate(context.Background(), req)
		require.Error(t, err)
		assert.False(t, generation.IsTransient(err))
	})

	t.Run("backend call error keeps its text", func(t *testing.T) {
		caller := &fakeCaller{err: errors.New("503 model overloaded")}
		g := newTestGenerator(&fakeCatalog{models: []string{"gemini-2.5-pro"}}, caller)

		_, err := g.Generate(context.Background(), req)
		require.Error(t, err)
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
		assert.True(t, generation.IsTransient(err))
	})

	t.Run("empty topic is rejected", func(t *testing.T) {
		g := newTestGenerator(&fakeCatalog{}, &fakeCaller{})
		_, err := g.Generate(context.Background(), generation.Request{Topic: "  ", Difficulty: "easy"})
		assert.ErrorIs(t, err, ErrEmptyTopic)
	})
}
