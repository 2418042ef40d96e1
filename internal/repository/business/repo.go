// Package business retrieves candidate records from the directory database.
// The directory itself (records, categories, addresses, the offline embedding
// job) is owned elsewhere; this repository only reads.
package business

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

// Repo fetches scoring candidates: active businesses with a precomputed
// embedding, bounded to keep downstream scoring cost predictable.
type Repo struct {
	pool  *pgxpool.Pool
	limit int
}

// New creates a candidate repository. limit bounds every fetch.
func New(pool *pgxpool.Pool, limit int) *Repo {
	return &Repo{pool: pool, limit: limit}
}

const baseQuery = `
	SELECT
		b.id,
		b.name,
		b.description,
		b.summary,
		b.embedding,
		c.name AS category,
		COALESCE(
			(SELECT array_agg(a.address ORDER BY a.id)
			 FROM business_addresses a
			 WHERE a.business_id = b.id),
			'{}'
		) AS addresses
	FROM businesses b
	JOIN categories c ON c.id = b.category_id
	WHERE b.is_active AND b.embedding IS NOT NULL`

// FetchCandidates returns up to the configured limit of eligible candidates.
// A non-empty cityFilter restricts to businesses having at least one address
// containing the city substring. The match is case-sensitive raw containment
// on free-text addresses, not a geocoded lookup; changing that would alter
// recall, so it stays as the directory defined it.
func (r *Repo) FetchCandidates(ctx context.Context, cityFilter string) ([]domain.Candidate, error) {
	query := baseQuery
	args := []any{}

	if cityFilter != "" {
		query += `
	AND EXISTS (
		SELECT 1 FROM business_addresses a
		WHERE a.business_id = b.id AND a.address LIKE '%' || $1 || '%'
	)`
		args = append(args, cityFilter)
	}

	query += fmt.Sprintf("\n\tORDER BY b.id\n\tLIMIT %d", r.limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var (
			c         domain.Candidate
			desc      *string
			rawEmbed  []byte
			addresses []string
		)
		if err := rows.Scan(&c.ID, &c.Name, &desc, &c.Summary, &rawEmbed, &c.Category, &addresses); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		if desc != nil {
			c.Description = *desc
		}

		// The embedding column is a JSON array written by the offline batch job.
		if err := json.Unmarshal(rawEmbed, &c.Embedding); err != nil {
			return nil, fmt.Errorf("parse embedding for business %d: %w", c.ID, err)
		}

		c.District = DeriveDistrict(addresses)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return candidates, nil
}

// DeriveDistrict extracts a display label from the first address, truncated
// at the first comma. Businesses without an address show as "Unknown".
func DeriveDistrict(addresses []string) string {
	if len(addresses) == 0 {
		return "Unknown"
	}
	district, _, _ := strings.Cut(addresses[0], ",")
	return strings.TrimSpace(district)
}
