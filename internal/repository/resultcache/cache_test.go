package resultcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yellowbooks/bizsearch/internal/domain"
)

const ttl = 30 * time.Minute

func TestKey_Deterministic(t *testing.T) {
	q := "Хаана сайн ресторан байдаг вэ?"
	city := "Сүхбаатар"

	if Key(q, city) != Key(q, city) {
		t.Error("identical inputs must produce identical keys")
	}
}

func TestKey_EmptyCityEqualsAll(t *testing.T) {
	q := "Хаана сайн ресторан байдаг вэ?"

	if Key(q, "") != Key(q, "all") {
		t.Error("empty city must normalize to the \"all\" token")
	}
}

func TestKey_DistinctCitiesDiffer(t *testing.T) {
	q := "Хаана сайн ресторан байдаг вэ?"

	if Key(q, "Сүхбаатар") == Key(q, "Баянгол") {
		t.Error("distinct cities must produce distinct keys")
	}
}

func TestKey_Prefix(t *testing.T) {
	if !strings.HasPrefix(Key("q", ""), keyPrefix) {
		t.Errorf("expected key under prefix %q", keyPrefix)
	}
}

func TestCache_RoundTrip(t *testing.T) {
	ms := newMockKVStore()
	c := New(ms, zap.NewNop())
	ctx := context.Background()

	res := domain.SearchResult{
		Answer: "Болно оо.",
		Businesses: []domain.ScoredMatch{
			{ID: 1, Name: "Modern Nomads", Category: "Ресторан", District: "Сүхбаатар", Score: 0.91},
		},
	}

	if ok := c.Set(ctx, "асуулт", "Сүхбаатар", res, ttl); !ok {
		t.Fatal("expected set to succeed")
	}

	got, ok := c.Get(ctx, "асуулт", "Сүхбаатар")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.Answer != res.Answer || len(got.Businesses) != 1 || got.Businesses[0].Name != "Modern Nomads" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	c := New(newMockKVStore(), zap.NewNop())

	if _, ok := c.Get(context.Background(), "асуулт", ""); ok {
		t.Error("expected miss")
	}
}

func TestCache_StoreErrorsDegradeToMiss(t *testing.T) {
	ms := newMockKVStore()
	ms.getErr = errors.New("connection refused")
	ms.setErr = errors.New("connection refused")
	ms.delErr = errors.New("connection refused")
	c := New(ms, zap.NewNop())
	ctx := context.Background()

	if _, ok := c.Get(ctx, "q", ""); ok {
		t.Error("expected miss when store is down")
	}
	if ok := c.Set(ctx, "q", "", domain.SearchResult{Answer: "a"}, ttl); ok {
		t.Error("expected set to report failure when store is down")
	}
	if ok := c.Delete(ctx, "q", ""); ok {
		t.Error("expected delete to report failure when store is down")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	ms := newMockKVStore()
	c := New(ms, zap.NewNop())
	ctx := context.Background()

	ms.data[Key("q", "")] = []byte("{not json")

	if _, ok := c.Get(ctx, "q", ""); ok {
		t.Error("expected corrupt entry to read as miss")
	}
}

func TestCache_DeleteRemovesExactEntry(t *testing.T) {
	ms := newMockKVStore()
	c := New(ms, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, "q", "Сүхбаатар", domain.SearchResult{Answer: "a"}, ttl)
	c.Set(ctx, "q", "Баянгол", domain.SearchResult{Answer: "b"}, ttl)

	if ok := c.Delete(ctx, "q", "Сүхбаатар"); !ok {
		t.Fatal("expected delete to succeed")
	}

	if _, ok := c.Get(ctx, "q", "Сүхбаатар"); ok {
		t.Error("deleted entry still retrievable")
	}
	if _, ok := c.Get(ctx, "q", "Баянгол"); !ok {
		t.Error("unrelated entry was removed")
	}
}

func TestCache_DeleteAllCountsAndClears(t *testing.T) {
	ms := newMockKVStore()
	c := New(ms, zap.NewNop())
	ctx := context.Background()

	c.Set(ctx, "q1", "", domain.SearchResult{}, ttl)
	c.Set(ctx, "q2", "", domain.SearchResult{}, ttl)
	c.Set(ctx, "q3", "Хан-Уул", domain.SearchResult{}, ttl)
	// A key outside the search prefix must survive.
	ms.data[domain.KeyPrefix+"other:1"] = []byte("{}")

	if n := c.DeleteAll(ctx); n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}

	for _, q := range []string{"q1", "q2"} {
		if _, ok := c.Get(ctx, q, ""); ok {
			t.Errorf("entry %q still retrievable after DeleteAll", q)
		}
	}
	if _, ok := ms.data[domain.KeyPrefix+"other:1"]; !ok {
		t.Error("DeleteAll removed a key outside the search prefix")
	}
}

func TestNoop_AlwaysMisses(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	if ok := c.Set(ctx, "q", "", domain.SearchResult{Answer: "a"}, ttl); ok {
		t.Error("noop set must report false")
	}
	if _, ok := c.Get(ctx, "q", ""); ok {
		t.Error("noop get must miss")
	}
	if n := c.DeleteAll(ctx); n != 0 {
		t.Errorf("noop DeleteAll must return 0, got %d", n)
	}
}
