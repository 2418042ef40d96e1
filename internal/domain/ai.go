package domain

import (
	"context"
	"strings"
)

// MaxEmbedInputLen bounds the text submitted to embedding providers, in runes.
// Upstream models enforce token limits; this keeps requests well under them.
const MaxEmbedInputLen = 8000

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatModel generates a free-text answer for a rendered prompt.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// HealthChecker verifies AI provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CleanText trims whitespace and truncates to MaxEmbedInputLen runes.
// Rune-based so Cyrillic question text is never cut mid-character.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > MaxEmbedInputLen {
		return string(runes[:MaxEmbedInputLen])
	}
	return s
}
