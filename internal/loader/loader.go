package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/types"
)

// DataFormatError reports an export file whose shape cannot be read at all,
// as opposed to individual rows that get dropped.
type DataFormatError struct {
	Path    string
	Missing []string // required columns absent from the header
	Err     error
}

func (e *DataFormatError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing required columns: %s", e.Path, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// Report counts what happened during a load.
type Report struct {
	Rows    int // data rows in the file, header excluded
	Loaded  int
	Dropped int
}

// Accepted timestamp layouts, tried in order. Fractional seconds and
// timezone offsets are optional where the layout allows.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Load reads an engagement export and returns one record per usable row.
// Rows with an unparseable timestamp or an empty media ID are dropped and
// counted, never silently skipped. A header that lacks a required column
// fails the whole load with a DataFormatError.
func Load(path string, cols config.InputConfig) ([]types.EngagementRecord, Report, error) {
	var rep Report

	f, err := os.Open(path)
	if err != nil {
		return nil, rep, &DataFormatError{Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, rep, &DataFormatError{Path: path, Err: fmt.Errorf("failed to read header: %w", err)}
	}
	idx, err := columnIndex(path, header, cols)
	if err != nil {
		return nil, rep, err
	}

	var records []types.EngagementRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rep, &DataFormatError{Path: path, Err: fmt.Errorf("failed to read row: %w", err)}
		}
		rep.Rows++

		rec, reason := buildRecord(rep.Rows, row, idx)
		if reason != "" {
			rep.Dropped++
			logrus.Debugf("dropping row %d: %s", rep.Rows, reason)
			continue
		}
		records = append(records, rec)
		rep.Loaded++
	}

	return records, rep, nil
}

// columnIndex maps the required column names onto header positions.
func columnIndex(path string, header []string, cols config.InputConfig) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "﻿") // exports often carry a BOM
		}
		byName[strings.TrimSpace(name)] = i
	}

	required := []string{cols.TimestampColumn, cols.MediaIDColumn, cols.CommentColumn, cols.CaptionColumn}
	var missing []string
	for _, name := range required {
		if _, ok := byName[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &DataFormatError{Path: path, Missing: missing}
	}

	return map[string]int{
		"timestamp": byName[cols.TimestampColumn],
		"media_id":  byName[cols.MediaIDColumn],
		"comment":   byName[cols.CommentColumn],
		"caption":   byName[cols.CaptionColumn],
	}, nil
}

// buildRecord turns one CSV row into a record, or names the reason it was dropped.
func buildRecord(rowID int, row []string, idx map[string]int) (types.EngagementRecord, string) {
	field := func(key string) string {
		pos := idx[key]
		if pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	mediaID := field("media_id")
	if mediaID == "" {
		return types.EngagementRecord{}, "empty media id"
	}

	raw := field("timestamp")
	if raw == "" {
		return types.EngagementRecord{}, "empty timestamp"
	}
	ts, ok := parseTimestamp(raw)
	if !ok {
		return types.EngagementRecord{}, fmt.Sprintf("unparseable timestamp %q", raw)
	}

	return types.EngagementRecord{
		RowID:        rowID,
		MediaID:      mediaID,
		Timestamp:    ts,
		CommentText:  field("comment"),
		MediaCaption: field("caption"),
	}, ""
}

func parseTimestamp(raw string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
