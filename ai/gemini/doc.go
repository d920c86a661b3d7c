// Package gemini provides AI service implementations on the Google Gemini API.
//
// Completion and embeddings use google.golang.org/genai. Entity extraction is
// completion-backed, asking the model for JSON output.
package gemini
