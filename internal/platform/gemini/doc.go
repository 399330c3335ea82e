// Package gemini implements the generation.Generator interface using
// Google's Gemini API. It owns backend model selection, prompt
// construction from a difficulty level, and the strict structured-output
// contract: the API is asked for JSON and anything unparseable is a
// permanent contract violation.
package gemini
