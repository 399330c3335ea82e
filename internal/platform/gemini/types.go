package gemini

import "strings"

// difficultySettings controls how a user-facing difficulty level shapes
// the generated layout.
type difficultySettings struct {
	// Chapters is the exact number of chapters the model is asked for.
	Chapters int
	// Depth is a natural-language depth hint injected into the prompt.
	Depth string
}

// settingsForDifficulty maps a free-form difficulty label onto concrete
// prompt parameters. Unknown labels get a balanced middle ground.
func settingsForDifficulty(difficulty string) difficultySettings {
	switch strings.ToLower(strings.TrimSpace(difficulty)) {
	case "easy":
		return difficultySettings{Chapters: 3, Depth: "introductory"}
	case "hard":
		return difficultySettings{Chapters: 6, Depth: "advanced depth"}
	default:
		return difficultySettings{Chapters: 4, Depth: "balanced depth"}
	}
}
