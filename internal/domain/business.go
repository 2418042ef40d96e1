package domain

// KeyPrefix namespaces every key this service writes to the cache store.
const KeyPrefix = "yb:"

// Candidate is a business record eligible for scoring: active and carrying
// a precomputed embedding. Owned by the directory database, read-only here.
type Candidate struct {
	ID          int64
	Name        string
	Description string
	Summary     string
	Category    string
	District    string
	Embedding   []float32
}

// ScoredMatch is a Candidate annotated with its cosine similarity to the
// current query vector. Ephemeral, recomputed per request.
type ScoredMatch struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Summary     string  `json:"summary"`
	Category    string  `json:"category"`
	District    string  `json:"district"`
	Score       float64 `json:"score"`
}

// SearchResult is the unit returned to the caller and the unit of caching.
type SearchResult struct {
	Answer     string        `json:"answer"`
	Businesses []ScoredMatch `json:"businesses"`
	Cached     bool          `json:"cached"`
}
