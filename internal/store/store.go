package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/gramlens/gramlens/internal/types"
)

// CacheDir returns the cache root for pipeline artifacts, for example
// ~/.cache/gramlens on Linux.
func CacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gramlens"), nil
}

// WriteReport writes a rendered report, creating parent directories as needed.
func WriteReport(path, content string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteSentimentCSV writes one row per sampled comment, scored or not.
// Unscored rows keep their identity columns and carry an explicit flag so
// nothing about a failed batch is silently dropped. Rows are ordered by
// source row so identical runs produce identical files.
func WriteSentimentCSV(path string, results []types.SentimentResult) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	ordered := make([]types.SentimentResult, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].RowID < ordered[j].RowID })

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"row_id", "media_id", "sentiment", "confidence", "score", "unscored"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range ordered {
		row := []string{
			strconv.Itoa(r.RowID),
			r.MediaID,
			string(r.Label),
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			strconv.FormatBool(r.Unscored),
		}
		if r.Unscored {
			row[2], row[3], row[4] = "", "", ""
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r.RowID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}
