package feeders

import (
	"errors"
	"testing"
	"time"
)

func TestDotEnvFeeder_FeedKey(t *testing.T) {
	path := writeTempFile(t, "fib.env", `
# cache settings
FIB_CACHE_ENGINE="redis"
export FIB_CACHE_MAX_ITEMS=12
FIB_CACHE_DEFAULT_TTL='2m'
`)

	var cfg cacheSection
	if err := NewDotEnvFeeder(path, "FIB").FeedKey("cache", &cfg); err != nil {
		t.Fatalf("FeedKey failed: %v", err)
	}
	if cfg.Engine != "redis" || cfg.MaxItems != 12 || cfg.DefaultTTL != 2*time.Minute {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestDotEnvFeeder_ProcessEnvWins(t *testing.T) {
	path := writeTempFile(t, "fib.env", "FIB_CACHE_ENGINE=redis\n")
	t.Setenv("FIB_CACHE_ENGINE", "memory")

	var cfg cacheSection
	if err := NewDotEnvFeeder(path, "FIB").FeedKey("cache", &cfg); err != nil {
		t.Fatalf("FeedKey failed: %v", err)
	}
	if cfg.Engine != "memory" {
		t.Errorf("expected process environment to win, got %q", cfg.Engine)
	}
}

func TestDotEnvFeeder_Errors(t *testing.T) {
	if err := NewDotEnvFeeder("/nonexistent.env", "FIB").Feed(&cacheSection{}); !errors.Is(err, ErrReadFile) {
		t.Errorf("expected ErrReadFile, got %v", err)
	}

	path := writeTempFile(t, "bad.env", "JUST_A_WORD\n")
	if err := NewDotEnvFeeder(path, "FIB").Feed(&cacheSection{}); !errors.Is(err, ErrInvalidDotEnvLine) {
		t.Errorf("expected ErrInvalidDotEnvLine, got %v", err)
	}
}
