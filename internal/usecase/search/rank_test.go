package search

import (
	"errors"
	"testing"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

func TestRank_StableOnTies(t *testing.T) {
	// X and Y tie exactly; Z scores lower. Retrieval order X, Y must survive.
	query := []float32{1, 0}
	candidates := []domain.Candidate{
		candidate(1, "X", []float32{2, 0}),
		candidate(2, "Y", []float32{5, 0}),
		candidate(3, "Z", []float32{1, 1}),
	}

	matches, err := rank(query, candidates, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{matches[0].Name, matches[1].Name, matches[2].Name}
	want := []string{"X", "Y", "Z"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q (full order %v)", i, want[i], got[i], got)
		}
	}
}

func TestRank_TruncatesToTopN(t *testing.T) {
	query := []float32{1, 0}
	candidates := []domain.Candidate{
		candidate(1, "low", []float32{0, 1}),
		candidate(2, "high", []float32{1, 0}),
		candidate(3, "mid", []float32{1, 1}),
	}

	matches, err := rank(query, candidates, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Name != "high" || matches[1].Name != "mid" {
		t.Errorf("expected [high mid], got [%s %s]", matches[0].Name, matches[1].Name)
	}
}

func TestRank_EmptyInput(t *testing.T) {
	matches, err := rank([]float32{1, 0}, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matches == nil || len(matches) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", matches)
	}
}

func TestRank_DimMismatch(t *testing.T) {
	_, err := rank([]float32{1, 0}, []domain.Candidate{candidate(1, "A", []float32{1, 0, 0})}, 5)
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Errorf("expected ErrVectorDimMismatch, got %v", err)
	}
}
