package search

import (
	"context"
	"strings"
	"time"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

// --- Mocks ---

type mockCache struct {
	entries   map[string]domain.SearchResult
	setCalls  int
	lastTTL   time.Duration
	getCalled bool
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]domain.SearchResult)}
}

func cacheKey(question, city string) string {
	city = strings.TrimSpace(city)
	if city == "" {
		city = "all"
	}
	return question + "|" + city
}

func (m *mockCache) Get(_ context.Context, question, city string) (domain.SearchResult, bool) {
	m.getCalled = true
	res, ok := m.entries[cacheKey(question, city)]
	return res, ok
}

func (m *mockCache) Set(_ context.Context, question, city string, res domain.SearchResult, ttl time.Duration) bool {
	m.setCalls++
	m.lastTTL = ttl
	m.entries[cacheKey(question, city)] = res
	return true
}

func (m *mockCache) Delete(_ context.Context, question, city string) bool {
	key := cacheKey(question, city)
	if _, ok := m.entries[key]; !ok {
		return false
	}
	delete(m.entries, key)
	return true
}

func (m *mockCache) DeleteAll(_ context.Context) int {
	n := len(m.entries)
	m.entries = make(map[string]domain.SearchResult)
	return n
}

type mockRepo struct {
	candidates []domain.Candidate
	err        error
	called     bool
	lastCity   string
}

func (m *mockRepo) FetchCandidates(_ context.Context, cityFilter string) ([]domain.Candidate, error) {
	m.called = true
	m.lastCity = cityFilter
	return m.candidates, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	calls  int
	lastIn string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	m.lastIn = text
	return m.vec, m.err
}

type mockChat struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockChat) Complete(_ context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	return m.answer, m.err
}
