package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration
type Config struct {
	Version    int              `toml:"version"`
	Account    string           `toml:"account"`
	Input      InputConfig      `toml:"input"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Categories CategoriesConfig `toml:"categories"`
	Sentiment  SentimentConfig  `toml:"sentiment"`
	Output     OutputConfig     `toml:"output"`
	Schedule   ScheduleConfig   `toml:"schedule"`
	Email      EmailConfig      `toml:"email"`
}

// InputConfig names the columns the loader expects in an engagement export.
type InputConfig struct {
	TimestampColumn string `toml:"timestamp_column"`
	MediaIDColumn   string `toml:"media_id_column"`
	CommentColumn   string `toml:"comment_column"`
	CaptionColumn   string `toml:"caption_column"`
}

type AnalysisConfig struct {
	TopPosts  int `toml:"top_posts"`
	PeakHours int `toml:"peak_hours"`
}

// CategoriesConfig carries the caption vocabularies. Post type markers are
// checked in priority order: giveaway first, then PR recruitment.
type CategoriesConfig struct {
	GiveawayKeywords []string            `toml:"giveaway_keywords"`
	PRKeywords       []string            `toml:"pr_keywords"`
	Scents           map[string][]string `toml:"scents"`
	Products         map[string][]string `toml:"products"`
}

type SentimentConfig struct {
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	SampleSize        int     `toml:"sample_size"`
	SamplePolicy      string  `toml:"sample_policy"` // "seeded" or "first"
	SampleSeed        int64   `toml:"sample_seed"`
	MinCommentLength  int     `toml:"min_comment_length"`
	BatchSize         int     `toml:"batch_size"`
	MaxConcurrency    int     `toml:"max_concurrency"`
	RequestsPerMinute float64 `toml:"requests_per_minute"`
	RequestTimeoutSec int     `toml:"request_timeout_seconds"`
	RankSize          int     `toml:"rank_size"`
}

// RequestTimeout returns the per-call timeout as a duration.
func (s SentimentConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSec) * time.Second
}

type OutputConfig struct {
	Dir string `toml:"dir"`
}

type ScheduleConfig struct {
	Cron     string `toml:"cron"`
	Timezone string `toml:"timezone"`
}

type EmailConfig struct {
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	SMTPUser string `toml:"smtp_user"`
	SMTPPass string `toml:"smtp_pass"`
	FromAddr string `toml:"from_address"`
	ToAddr   string `toml:"to_address"`
}

// Enabled reports whether scheduled runs should mail their summaries.
func (e EmailConfig) Enabled() bool {
	return e.SMTPHost != "" && e.ToAddr != ""
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Version: 1,
		Account: "@treehut",
		Input: InputConfig{
			TimestampColumn: "timestamp",
			MediaIDColumn:   "media_id",
			CommentColumn:   "comment_text",
			CaptionColumn:   "media_caption",
		},
		Analysis: AnalysisConfig{
			TopPosts:  10,
			PeakHours: 3,
		},
		Categories: CategoriesConfig{
			GiveawayKeywords: []string{"giveaway", "contest", "win"},
			PRKeywords:       []string{"ambassador", "pr list", "pr team", "recruit"},
			Scents: map[string][]string{
				"vanilla":   {"vanilla"},
				"tangerine": {"tangerine", "orange"},
				"coconut":   {"coconut"},
				"shea":      {"shea"},
				"tropical":  {"tropical", "mango", "pineapple"},
				"berry":     {"berry", "strawberry", "raspberry"},
				"citrus":    {"citrus", "lemon", "lime"},
			},
			Products: map[string][]string{
				"scrub":     {"scrub", "exfoliat"},
				"lotion":    {"lotion", "moisturiz"},
				"hand_wash": {"hand wash", "handwash"},
				"shave":     {"shave", "pre-shave"},
				"serum":     {"serum"},
				"oil":       {"oil"},
			},
		},
		Sentiment: SentimentConfig{
			Model:             "claude-sonnet-4-20250514",
			SampleSize:        50,
			SamplePolicy:      "seeded",
			SampleSeed:        42,
			MinCommentLength:  5,
			BatchSize:         10,
			MaxConcurrency:    2,
			RequestsPerMinute: 60,
			RequestTimeoutSec: 120,
			RankSize:          5,
		},
		Output: OutputConfig{
			Dir: "reports",
		},
		Schedule: ScheduleConfig{
			Cron:     "0 7 * * *",
			Timezone: "America/New_York",
		},
		Email: EmailConfig{
			SMTPPort: 587,
		},
	}
}

// Validate rejects values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Input.TimestampColumn == "" || c.Input.MediaIDColumn == "" ||
		c.Input.CommentColumn == "" || c.Input.CaptionColumn == "" {
		return fmt.Errorf("input column names must not be empty")
	}
	if c.Sentiment.BatchSize < 1 {
		return fmt.Errorf("sentiment batch_size must be at least 1, got %d", c.Sentiment.BatchSize)
	}
	if c.Sentiment.MaxConcurrency < 1 {
		return fmt.Errorf("sentiment max_concurrency must be at least 1, got %d", c.Sentiment.MaxConcurrency)
	}
	if p := c.Sentiment.SamplePolicy; p != "seeded" && p != "first" {
		return fmt.Errorf("sentiment sample_policy must be %q or %q, got %q", "seeded", "first", p)
	}
	return nil
}

// Load reads config from the given path, creating it with defaults on first run.
// Keys absent from the file fall back to their defaults.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("failed to write default config: %w", err)
		}
		return cfg, nil
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.fillMissing()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// fillMissing backfills zero values with defaults so a hand-trimmed config
// file still loads. Decoding straight into Default() would merge the
// vocabulary maps instead of replacing them.
func (c *Config) fillMissing() {
	def := Default()
	if c.Account == "" {
		c.Account = def.Account
	}
	if c.Input.TimestampColumn == "" {
		c.Input.TimestampColumn = def.Input.TimestampColumn
	}
	if c.Input.MediaIDColumn == "" {
		c.Input.MediaIDColumn = def.Input.MediaIDColumn
	}
	if c.Input.CommentColumn == "" {
		c.Input.CommentColumn = def.Input.CommentColumn
	}
	if c.Input.CaptionColumn == "" {
		c.Input.CaptionColumn = def.Input.CaptionColumn
	}
	if c.Analysis.TopPosts == 0 {
		c.Analysis.TopPosts = def.Analysis.TopPosts
	}
	if c.Analysis.PeakHours == 0 {
		c.Analysis.PeakHours = def.Analysis.PeakHours
	}
	if c.Categories.GiveawayKeywords == nil {
		c.Categories.GiveawayKeywords = def.Categories.GiveawayKeywords
	}
	if c.Categories.PRKeywords == nil {
		c.Categories.PRKeywords = def.Categories.PRKeywords
	}
	if c.Categories.Scents == nil {
		c.Categories.Scents = def.Categories.Scents
	}
	if c.Categories.Products == nil {
		c.Categories.Products = def.Categories.Products
	}
	if c.Sentiment.Model == "" {
		c.Sentiment.Model = def.Sentiment.Model
	}
	if c.Sentiment.SampleSize == 0 {
		c.Sentiment.SampleSize = def.Sentiment.SampleSize
	}
	if c.Sentiment.SamplePolicy == "" {
		c.Sentiment.SamplePolicy = def.Sentiment.SamplePolicy
	}
	if c.Sentiment.SampleSeed == 0 {
		c.Sentiment.SampleSeed = def.Sentiment.SampleSeed
	}
	if c.Sentiment.MinCommentLength == 0 {
		c.Sentiment.MinCommentLength = def.Sentiment.MinCommentLength
	}
	if c.Sentiment.BatchSize == 0 {
		c.Sentiment.BatchSize = def.Sentiment.BatchSize
	}
	if c.Sentiment.MaxConcurrency == 0 {
		c.Sentiment.MaxConcurrency = def.Sentiment.MaxConcurrency
	}
	if c.Sentiment.RequestsPerMinute == 0 {
		c.Sentiment.RequestsPerMinute = def.Sentiment.RequestsPerMinute
	}
	if c.Sentiment.RequestTimeoutSec == 0 {
		c.Sentiment.RequestTimeoutSec = def.Sentiment.RequestTimeoutSec
	}
	if c.Sentiment.RankSize == 0 {
		c.Sentiment.RankSize = def.Sentiment.RankSize
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = def.Schedule.Cron
	}
	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = def.Schedule.Timezone
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = def.Email.SMTPPort
	}
}

// Save writes config to disk
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}
