package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gramlens/gramlens/internal/config"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engagements.csv")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func defaultCols() config.InputConfig {
	return config.Default().Input
}

func TestLoadParsesRows(t *testing.T) {
	path := writeCSV(t, `timestamp,media_id,comment_text,media_caption
2025-03-01 09:15:00,post_a,"love this scent!","New vanilla scrub is here"
2025-03-02T18:30:00,post_b,need this,"GIVEAWAY time! Win a set"
`)

	records, rep, err := Load(path, defaultCols())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rep.Rows != 2 || rep.Loaded != 2 || rep.Dropped != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.RowID != 1 {
		t.Errorf("expected RowID 1, got %d", first.RowID)
	}
	if first.MediaID != "post_a" {
		t.Errorf("expected media id post_a, got %q", first.MediaID)
	}
	if first.CommentText != "love this scent!" {
		t.Errorf("unexpected comment: %q", first.CommentText)
	}
	want := time.Date(2025, 3, 1, 9, 15, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, first.Timestamp)
	}
	if records[1].Timestamp.Hour() != 18 {
		t.Errorf("expected hour 18, got %d", records[1].Timestamp.Hour())
	}
}

func TestLoadMissingColumnFailsWhole(t *testing.T) {
	path := writeCSV(t, `timestamp,comment_text,media_caption
2025-03-01 09:15:00,hello,caption
`)

	_, _, err := Load(path, defaultCols())
	var dfe *DataFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected DataFormatError, got %v", err)
	}
	if len(dfe.Missing) != 1 || dfe.Missing[0] != "media_id" {
		t.Errorf("expected missing media_id, got %v", dfe.Missing)
	}
}

func TestLoadDropsAndCountsBadRows(t *testing.T) {
	path := writeCSV(t, `timestamp,media_id,comment_text,media_caption
2025-03-01 09:15:00,post_a,fine,cap
not-a-timestamp,post_a,broken clock,cap
2025-03-01 10:00:00,,no media id,cap
2025-03-01 11:00:00,post_b,also fine,cap
`)

	records, rep, err := Load(path, defaultCols())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rep.Rows != 4 {
		t.Errorf("expected 4 rows seen, got %d", rep.Rows)
	}
	if rep.Dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", rep.Dropped)
	}
	if rep.Loaded != 2 || len(records) != 2 {
		t.Fatalf("expected 2 loaded, got %d (records %d)", rep.Loaded, len(records))
	}

	// RowID reflects position in the file, not position after drops.
	if records[1].RowID != 4 {
		t.Errorf("expected surviving row to keep RowID 4, got %d", records[1].RowID)
	}
}

func TestLoadEmptyCommentIsKept(t *testing.T) {
	path := writeCSV(t, `timestamp,media_id,comment_text,media_caption
2025-03-01 09:15:00,post_a,,cap
`)

	records, rep, err := Load(path, defaultCols())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if rep.Dropped != 0 || len(records) != 1 {
		t.Fatalf("empty comment should load: report %+v", rep)
	}
	if records[0].CommentText != "" {
		t.Errorf("expected empty comment, got %q", records[0].CommentText)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), defaultCols())
	var dfe *DataFormatError
	if !errors.As(err, &dfe) {
		t.Fatalf("expected DataFormatError, got %v", err)
	}
}

func TestLoadBOMHeader(t *testing.T) {
	path := writeCSV(t, "﻿"+`timestamp,media_id,comment_text,media_caption
2025-03-01 09:15:00,post_a,hi,cap
`)

	records, _, err := Load(path, defaultCols())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestLoadCommentWithCommasAndNewlines(t *testing.T) {
	path := writeCSV(t, `timestamp,media_id,comment_text,media_caption
2025-03-01 09:15:00,post_a,"line one,
line two",cap
`)

	records, _, err := Load(path, defaultCols())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].CommentText != "line one,\nline two" {
		t.Errorf("unexpected comment: %q", records[0].CommentText)
	}
}
