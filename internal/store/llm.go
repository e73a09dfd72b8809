package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Exchange represents a prompt/response pair for caching. Keeping every
// exchange on disk makes bad model output debuggable after the fact.
type Exchange struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	Error     string    `json:"error,omitempty"`
}

// SaveExchange serializes an LLM exchange to JSON under the cache directory.
// Returns the path to the saved file.
func SaveExchange(cacheDir string, exchange Exchange) (string, error) {
	dir := filepath.Join(cacheDir, "llm")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	if exchange.ID == "" {
		exchange.ID = uuid.NewString()
	}
	path := filepath.Join(dir, generateFilename(".json"))

	data, err := json.MarshalIndent(exchange, "", "  ")
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return path, nil
}
