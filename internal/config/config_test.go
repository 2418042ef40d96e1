package config

import (
	"os"
	"testing"
)

func TestValidate_InvalidProviderSelector(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Postgres: PostgresConfig{URL: "postgres://localhost:5432/yb"},
		AI: AIConfig{
			EmbeddingProvider: "anthropic",
			ChatProvider:      "openai",
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid provider selector")
	}

	expected := `ai.embedding_provider must be "openai" or "gemini", got "anthropic"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidProviderSelectors(t *testing.T) {
	for _, provider := range []string{"openai", "gemini"} {
		t.Run("provider="+provider, func(t *testing.T) {
			cfg := Config{
				HTTP:     HTTPConfig{Port: 8080},
				Postgres: PostgresConfig{URL: "postgres://localhost:5432/yb"},
				AI: AIConfig{
					EmbeddingProvider: provider,
					ChatProvider:      provider,
				},
			}

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for provider %q: %v", provider, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 0},
		Postgres: PostgresConfig{URL: "postgres://localhost:5432/yb"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingPostgresURL(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		AI:   AIConfig{EmbeddingProvider: "openai", ChatProvider: "openai"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing postgres url")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Cache.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Cache.ReadinessTimeout)
	}
	if cfg.AI.EmbeddingProvider != "openai" {
		t.Errorf("expected embedding provider 'openai', got %q", cfg.AI.EmbeddingProvider)
	}
	if cfg.Search.CandidateLimit != 500 {
		t.Errorf("expected CandidateLimit=500, got %d", cfg.Search.CandidateLimit)
	}
	if cfg.Search.DefaultTopN != 5 {
		t.Errorf("expected DefaultTopN=5, got %d", cfg.Search.DefaultTopN)
	}
	if cfg.Search.CacheTTLSec != 1800 {
		t.Errorf("expected CacheTTLSec=1800, got %d", cfg.Search.CacheTTLSec)
	}
}

func TestApplyDefaults_ChatInheritsEmbeddingProvider(t *testing.T) {
	cfg := Config{AI: AIConfig{EmbeddingProvider: "gemini"}}
	cfg.ApplyDefaults()

	if cfg.AI.ChatProvider != "gemini" {
		t.Errorf("expected chat provider to inherit 'gemini', got %q", cfg.AI.ChatProvider)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 120, ShutdownSec: 5},
		Cache:  CacheConfig{ReadinessTimeout: 15},
		Search: SearchConfig{CandidateLimit: 200, DefaultTopN: 3, CacheTTLSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.CandidateLimit != 200 {
		t.Errorf("expected CandidateLimit=200, got %d", cfg.Search.CandidateLimit)
	}
	if cfg.Search.CacheTTLSec != 60 {
		t.Errorf("expected CacheTTLSec=60, got %d", cfg.Search.CacheTTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("BIZSEARCH_TEST_KEY", "sk-abc")
	defer os.Unsetenv("BIZSEARCH_TEST_KEY")

	in := []byte("api_key: ${BIZSEARCH_TEST_KEY}\nbase_url: ${BIZSEARCH_TEST_URL:-https://api.openai.com/v1}\n")
	out := string(expandEnvVars(in))

	want := "api_key: sk-abc\nbase_url: https://api.openai.com/v1\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}
