// Package search implements the RAG search orchestration: cache check,
// question embedding, candidate retrieval, similarity ranking, prompt
// building, and answer generation.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yellowbooks/bizsearch/internal/domain"
	"github.com/yellowbooks/bizsearch/internal/metrics"
)

// noMatchAnswer is returned, and cached, when ranking yields no candidates.
const noMatchAnswer = "Уучлаарай, таны хайлтад тохирох бизнес олдсонгүй. " +
	"Өөр асуулт асууна уу эсвэл хайлтын нөхцлөө өөрчилнө үү."

const (
	defaultTopN = 5
	defaultTTL  = 30 * time.Minute
)

// Service runs the end-to-end search pipeline.
type Service struct {
	cache    ResultCache
	repo     CandidateRepo
	embedder Embedder
	chat     ChatModel
	logger   *zap.Logger
	ttl      time.Duration
	topN     int
}

// New creates a search service with a 30 minute cache TTL and topN of 5.
func New(cache ResultCache, repo CandidateRepo, embedder Embedder, chat ChatModel, logger *zap.Logger) *Service {
	return &Service{
		cache:    cache,
		repo:     repo,
		embedder: embedder,
		chat:     chat,
		logger:   logger,
		ttl:      defaultTTL,
		topN:     defaultTopN,
	}
}

// WithCaching overrides the cache TTL.
func (s *Service) WithCaching(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithDefaultTopN overrides the result count used when the caller passes none.
func (s *Service) WithDefaultTopN(n int) *Service {
	if n > 0 {
		s.topN = n
	}
	return s
}

// Search answers a free-text question about directory businesses.
// Pipeline: cache check, embed the question, retrieve candidates, rank by
// cosine similarity, build the prompt, generate the answer, cache the result.
// Zero ranked candidates short-circuit before the generation call with a
// fixed apology, which is cached under the same TTL so a no-match query does
// not re-run retrieval for half an hour.
//
// Provider failures abort the request: there is no meaningful partial result.
// Cache failures never do; the cache layer degrades to a miss on its own.
func (s *Service) Search(ctx context.Context, question, city string, topN int) (domain.SearchResult, error) {
	if topN <= 0 {
		topN = s.topN
	}

	if cached, ok := s.cache.Get(ctx, question, city); ok {
		metrics.SearchCacheTotal.WithLabelValues("hit").Inc()
		s.logger.Info("Search cache hit", zap.String("question", question), zap.String("city", city))
		// The stored entry keeps cached=false; only the returned copy flips it.
		cached.Cached = true
		return cached, nil
	}

	metrics.SearchCacheTotal.WithLabelValues("miss").Inc()
	s.logger.Info("Search cache miss", zap.String("question", question), zap.String("city", city))

	queryVec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("embed question: %w", err)
	}

	candidates, err := s.repo.FetchCandidates(ctx, city)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("fetch candidates: %w", err)
	}

	metrics.SearchCandidatesRetrieved.Observe(float64(len(candidates)))
	s.logger.Info("Retrieved candidate businesses", zap.Int("count", len(candidates)))

	matches, err := rank(queryVec, candidates, topN)
	if err != nil {
		return domain.SearchResult{}, err
	}

	if len(matches) == 0 {
		result := domain.SearchResult{
			Answer:     noMatchAnswer,
			Businesses: []domain.ScoredMatch{},
			Cached:     false,
		}
		s.cache.Set(ctx, question, city, result, s.ttl)
		return result, nil
	}

	s.logger.Info("Ranked top businesses", zap.Int("count", len(matches)))

	answer, err := s.chat.Complete(ctx, buildPrompt(question, matches))
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("generate answer: %w", err)
	}

	result := domain.SearchResult{
		Answer:     strings.TrimSpace(answer),
		Businesses: matches,
		Cached:     false,
	}
	s.cache.Set(ctx, question, city, result, s.ttl)

	s.logger.Info("Search completed and cached", zap.String("question", question))

	return result, nil
}

// ClearCache removes the cached result for one (question, city) pair.
func (s *Service) ClearCache(ctx context.Context, question, city string) bool {
	return s.cache.Delete(ctx, question, city)
}

// ClearAllCache removes every cached search result and returns the count.
func (s *Service) ClearAllCache(ctx context.Context) int {
	return s.cache.DeleteAll(ctx)
}
