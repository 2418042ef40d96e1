package search

import (
	"context"
	"time"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

// CandidateRepo reads scoring candidates from the directory database.
type CandidateRepo interface {
	FetchCandidates(ctx context.Context, cityFilter string) ([]domain.Candidate, error)
}

// ResultCache stores full search results keyed by (question, city).
// Implementations must absorb store failures and report safe defaults.
type ResultCache interface {
	Get(ctx context.Context, question, city string) (domain.SearchResult, bool)
	Set(ctx context.Context, question, city string, res domain.SearchResult, ttl time.Duration) bool
	Delete(ctx context.Context, question, city string) bool
	DeleteAll(ctx context.Context) int
}

// Embedder vectorizes the question text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatModel generates the natural-language answer from a rendered prompt.
type ChatModel interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
