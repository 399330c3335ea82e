package gemini

import (
	"fmt"
	"strings"
)

const schemaBlock = `{
  "title": string,
  "summary": string,
  "chapters": [
    {
      "title": string,
      "estimatedTime": string,
      "description": string,
      "bullets": string[]
    }
  ]
}`

// buildSystemPrompt produces the schema-enforcing instruction block. The
// model is told exactly how many chapters to emit and at what depth.
func buildSystemPrompt(cfg difficultySettings) string {
	var b strings.Builder
	b.WriteString("Return ONLY valid JSON using the EXACT schema below.\n")
	b.WriteString("Do NOT include anything outside the JSON (no text, no markdown, no comments).\n\n")
	b.WriteString(schemaBlock)
	b.WriteString("\n\nCONTENT RULES:\n")
	fmt.Fprintf(&b, "- Generate exactly %d chapters at %s.\n", cfg.Chapters, cfg.Depth)
	b.WriteString("- Each \"description\" must contain 2-4 detailed paragraphs.\n")
	b.WriteString("- Each chapter must include one explicit \"Example: ...\" text.\n")
	b.WriteString("- Each bullets[] must contain 4-7 detailed bullet points.\n")
	b.WriteString("- The result MUST be valid JSON. No trailing commas. No invalid characters.\n")
	b.WriteString("- STRICT JSON ONLY.")
	return b.String()
}

// buildUserPrompt states the actual request: topic, difficulty, purpose.
func buildUserPrompt(topic, difficulty, purpose string) string {
	return fmt.Sprintf(
		"Generate a structured study material for the topic %q.\nDifficulty: %s\nPurpose: %s",
		topic, difficulty, purpose,
	)
}
