package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Meta identifies one report run. GeneratedAt is injected by the caller so
// rendering stays deterministic under test.
type Meta struct {
	Account     string
	Source      string // input file the report was built from
	GeneratedAt time.Time
	RowsTotal   int
	RowsDropped int
}

// SampleInfo describes how the sentiment sample was drawn.
type SampleInfo struct {
	Eligible int
	Policy   string
	Seed     int64
}

// noData marks a section whose backing aggregate is empty. Rendering a
// placeholder beats printing a zero that looks like a measurement.
const noData = "_No data available for this metric._"

// markdownTable renders a GitHub-style table.
func markdownTable(headers []string, rows [][]string) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}

// finding pairs an observation with the action it suggests. Every
// recommendation in a report traces back to a stated finding.
type finding struct {
	text   string
	action string
}

func renderFindings(buf *bytes.Buffer, findings []finding) {
	for _, f := range findings {
		fmt.Fprintf(buf, "**Finding:** %s\n\n", f.text)
		fmt.Fprintf(buf, "**Recommendation:** %s\n\n", f.action)
	}
}

// truncate shortens a caption for table display without splitting runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
