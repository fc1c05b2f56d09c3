package feeders

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type cacheSection struct {
	Engine     string        `yaml:"engine" toml:"engine" env:"ENGINE"`
	MaxItems   int           `yaml:"maxItems" toml:"maxItems" env:"MAX_ITEMS"`
	DefaultTTL time.Duration `yaml:"defaultTTL" toml:"defaultTTL" env:"DEFAULT_TTL"`
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

func TestYamlFeeder_Feed(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
appName: fib
cache:
  engine: redis
`)

	type Config struct {
		AppName string `yaml:"appName"`
	}

	var config Config
	if err := NewYamlFeeder(path).Feed(&config); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if config.AppName != "fib" {
		t.Errorf("Expected AppName to be 'fib', got '%s'", config.AppName)
	}
}

func TestYamlFeeder_FeedKey(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
cache:
  engine: redis
  maxItems: 42
  defaultTTL: 90s
`)

	section := cacheSection{Engine: "memory"}
	feeder := NewYamlFeeder(path)
	if err := feeder.FeedKey("cache", &section); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if section.Engine != "redis" {
		t.Errorf("Expected Engine to be 'redis', got '%s'", section.Engine)
	}
	if section.MaxItems != 42 {
		t.Errorf("Expected MaxItems to be 42, got %d", section.MaxItems)
	}
	if section.DefaultTTL != 90*time.Second {
		t.Errorf("Expected DefaultTTL to be 90s, got %v", section.DefaultTTL)
	}

	untouched := cacheSection{Engine: "memory"}
	if err := feeder.FeedKey("httpapi", &untouched); err != nil {
		t.Fatalf("Expected no error for missing key, got %v", err)
	}
	if untouched.Engine != "memory" {
		t.Errorf("Expected missing key to leave target untouched, got '%s'", untouched.Engine)
	}
}

func TestYamlFeeder_MissingFile(t *testing.T) {
	var section cacheSection
	if err := NewYamlFeeder("/nonexistent/config.yaml").FeedKey("cache", &section); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
