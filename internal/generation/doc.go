// Package generation provides interfaces and supporting policy for
// interacting with external AI/LLM services. It abstracts the details of
// LLM API integration (Gemini), allowing the application to generate
// study materials without coupling to a specific external service, and
// it owns the retry policy shared by callers of that service.
package generation
