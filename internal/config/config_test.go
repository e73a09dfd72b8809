package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Account != "@treehut" {
		t.Errorf("expected default account @treehut, got %s", cfg.Account)
	}
	if cfg.Sentiment.SampleSize != 50 {
		t.Errorf("expected sample size 50, got %d", cfg.Sentiment.SampleSize)
	}
	if cfg.Sentiment.SampleSeed != 42 {
		t.Errorf("expected sample seed 42, got %d", cfg.Sentiment.SampleSeed)
	}
	if cfg.Sentiment.RequestTimeout() != 120*time.Second {
		t.Errorf("expected 120s request timeout, got %s", cfg.Sentiment.RequestTimeout())
	}
	if len(cfg.Categories.Scents) == 0 || len(cfg.Categories.Products) == 0 {
		t.Error("expected default vocabularies to be populated")
	}
	if cfg.Email.Enabled() {
		t.Error("email should be disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gramlens.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Account != "@treehut" {
		t.Errorf("expected default account, got %s", cfg.Account)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to be written on first load: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gramlens.toml")

	cfg := Default()
	cfg.Account = "@somebrand"
	cfg.Sentiment.SampleSize = 25
	cfg.Categories.Scents = map[string][]string{"amber": {"amber", "musk"}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("config did not survive round trip\nsaved:  %+v\nloaded: %+v", cfg, loaded)
	}
}

func TestLoadBackfillsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gramlens.toml")
	partial := strings.Join([]string{
		`account = "@minimal"`,
		``,
		`[categories.scents]`,
		`amber = ["amber"]`,
	}, "\n")
	if err := os.WriteFile(path, []byte(partial), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load partial config: %v", err)
	}

	if cfg.Account != "@minimal" {
		t.Errorf("expected account from file, got %s", cfg.Account)
	}
	if cfg.Sentiment.BatchSize != 10 {
		t.Errorf("expected default batch size 10, got %d", cfg.Sentiment.BatchSize)
	}
	if cfg.Input.TimestampColumn != "timestamp" {
		t.Errorf("expected default timestamp column, got %s", cfg.Input.TimestampColumn)
	}

	// A custom vocabulary replaces the default outright, no merging.
	want := map[string][]string{"amber": {"amber"}}
	if !reflect.DeepEqual(cfg.Categories.Scents, want) {
		t.Errorf("expected scents %v, got %v", want, cfg.Categories.Scents)
	}
	if len(cfg.Categories.Products) == 0 {
		t.Error("expected untouched products vocabulary to fall back to defaults")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty column name", func(c *Config) { c.Input.MediaIDColumn = "" }},
		{"zero batch size", func(c *Config) { c.Sentiment.BatchSize = 0 }},
		{"negative concurrency", func(c *Config) { c.Sentiment.MaxConcurrency = -1 }},
		{"unknown sample policy", func(c *Config) { c.Sentiment.SamplePolicy = "random" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestEmailEnabled(t *testing.T) {
	e := EmailConfig{SMTPHost: "smtp.example.com", ToAddr: "team@example.com"}
	if !e.Enabled() {
		t.Error("expected email to be enabled with host and recipient set")
	}
	e.ToAddr = ""
	if e.Enabled() {
		t.Error("expected email to be disabled without a recipient")
	}
}
