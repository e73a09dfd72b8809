package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gramlens/gramlens/internal/types"
)

func TestWriteSentimentCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "sentiment_scores.csv")

	results := []types.SentimentResult{
		{RowID: 7, MediaID: "post_b", Label: types.SentimentNegative, Confidence: 0.9, Score: -0.9},
		{RowID: 2, MediaID: "post_a", Label: types.SentimentPositive, Confidence: 0.85, Score: 0.85},
		{RowID: 5, MediaID: "post_a", Unscored: true},
	}

	if err := WriteSentimentCSV(path, results); err != nil {
		t.Fatalf("WriteSentimentCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")

	if len(lines) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "row_id,media_id,sentiment,confidence,score,unscored" {
		t.Errorf("unexpected header: %s", lines[0])
	}

	// Rows come back in source order regardless of input order.
	if !strings.HasPrefix(lines[1], "2,post_a,positive,0.85,0.8500,false") {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if lines[2] != "5,post_a,,,,true" {
		t.Errorf("unscored row should keep identity and flag only: %s", lines[2])
	}
	if !strings.HasPrefix(lines[3], "7,post_b,negative,0.90,-0.9000,false") {
		t.Errorf("unexpected last row: %s", lines[3])
	}
}

func TestStepOutputRoundTrip(t *testing.T) {
	cacheDir := t.TempDir()

	saved := []types.SentimentResult{
		{RowID: 1, MediaID: "post_a", Label: types.SentimentPositive, Confidence: 0.7, Score: 0.7},
	}

	path, err := SaveStepOutput(cacheDir, StepSentiment, saved)
	if err != nil {
		t.Fatalf("SaveStepOutput failed: %v", err)
	}
	if filepath.Ext(path) != ".json" {
		t.Errorf("expected json artifact, got %s", path)
	}

	loaded, from, err := LoadLatestStepOutput[[]types.SentimentResult](cacheDir, StepSentiment)
	if err != nil {
		t.Fatalf("LoadLatestStepOutput failed: %v", err)
	}
	if from != path {
		t.Errorf("loaded from %s, want %s", from, path)
	}
	if !reflect.DeepEqual(loaded, saved) {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadLatestStepOutputEmpty(t *testing.T) {
	_, _, err := LoadLatestStepOutput[[]types.SentimentResult](t.TempDir(), StepSentiment)
	if err == nil {
		t.Fatal("expected error for missing cache")
	}
}

func TestSaveExchange(t *testing.T) {
	cacheDir := t.TempDir()

	path, err := SaveExchange(cacheDir, Exchange{
		Provider: "anthropic",
		Model:    "claude-sonnet-4-20250514",
		Prompt:   "score these",
		Response: `[{"comment_id": 1}]`,
	})
	if err != nil {
		t.Fatalf("SaveExchange failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read exchange: %v", err)
	}

	var loaded Exchange
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("exchange is not valid JSON: %v", err)
	}
	if loaded.ID == "" {
		t.Error("expected a generated exchange ID")
	}
	if loaded.Provider != "anthropic" || loaded.Model != "claude-sonnet-4-20250514" {
		t.Errorf("unexpected exchange: %+v", loaded)
	}
}
