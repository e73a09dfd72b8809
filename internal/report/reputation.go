package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gramlens/gramlens/internal/types"
)

// Reputation renders the brand reputation report for a scored comment
// sample as Markdown.
func Reputation(sum *types.ReputationSummary, meta Meta, sample SampleInfo) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Brand Reputation: %s\n\n", meta.Account)
	fmt.Fprintf(&buf, "Generated %s from `%s`.\n\n",
		meta.GeneratedAt.Format("2006-01-02 15:04"), meta.Source)

	writeExecutiveSummary(&buf, sum)
	writeDistribution(&buf, sum)
	writeThemes(&buf, sum)
	writePostRanking(&buf, sum)
	writeCoverage(&buf, sum, sample)

	return buf.String()
}

func writeExecutiveSummary(buf *bytes.Buffer, sum *types.ReputationSummary) {
	buf.WriteString("## Executive Summary\n\n")

	if sum.Scored == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}

	fmt.Fprintf(buf, "- Health score: %.1f on a -100 to +100 scale (positive share minus negative share)\n",
		sum.HealthScore)
	fmt.Fprintf(buf, "- Positive %s, neutral %s, negative %s of %d scored comments\n",
		pct(sum.PositivePct), pct(sum.NeutralPct), pct(sum.NegativePct), sum.Scored)
	if len(sum.Themes) > 0 {
		fmt.Fprintf(buf, "- Most discussed theme: %s (%d mentions)\n",
			sum.Themes[0].Theme, sum.Themes[0].Count)
	}
	buf.WriteString("\n")
}

func writeDistribution(buf *bytes.Buffer, sum *types.ReputationSummary) {
	buf.WriteString("## Sentiment Distribution\n\n")

	if sum.Scored == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}

	rows := [][]string{
		{"positive", strconv.Itoa(sum.Positive), pct(sum.PositivePct)},
		{"neutral", strconv.Itoa(sum.Neutral), pct(sum.NeutralPct)},
		{"negative", strconv.Itoa(sum.Negative), pct(sum.NegativePct)},
	}
	buf.WriteString(markdownTable([]string{"Sentiment", "Comments", "Share"}, rows))
	buf.WriteString("\n")

	if len(sum.ByPostType) > 0 {
		typeRows := make([][]string, 0, len(sum.ByPostType))
		for _, ts := range sum.ByPostType {
			typeRows = append(typeRows, []string{
				string(ts.PostType),
				strconv.Itoa(ts.Positive),
				strconv.Itoa(ts.Neutral),
				strconv.Itoa(ts.Negative),
			})
		}
		buf.WriteString(markdownTable([]string{"Post Type", "Positive", "Neutral", "Negative"}, typeRows))
		buf.WriteString("\n")
	}
}

func writeThemes(buf *bytes.Buffer, sum *types.ReputationSummary) {
	buf.WriteString("## Top Themes\n\n")

	if len(sum.Themes) == 0 {
		buf.WriteString(noData + "\n\n")
	} else {
		rows := make([][]string, 0, len(sum.Themes))
		for _, tc := range sum.Themes {
			rows = append(rows, []string{tc.Theme, strconv.Itoa(tc.Count)})
		}
		buf.WriteString(markdownTable([]string{"Theme", "Mentions"}, rows))
		buf.WriteString("\n")
	}

	buf.WriteString("## Positive Feedback Themes\n\n")
	writeThemeList(buf, sum.PositiveThemes)

	buf.WriteString("## Areas for Improvement\n\n")
	writeThemeList(buf, sum.NegativeThemes)
}

func writeThemeList(buf *bytes.Buffer, themes []types.ThemeCount) {
	if len(themes) == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}
	for i, tc := range themes {
		fmt.Fprintf(buf, "%d. %s (%d mentions)\n", i+1, tc.Theme, tc.Count)
	}
	buf.WriteString("\n")
}

func writePostRanking(buf *bytes.Buffer, sum *types.ReputationSummary) {
	buf.WriteString("## Post Sentiment Ranking\n\n")

	if len(sum.TopPosts) == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}

	buf.WriteString("### Most Positive\n\n")
	buf.WriteString(postScoreTable(sum.TopPosts))
	buf.WriteString("\n### Most Negative\n\n")
	buf.WriteString(postScoreTable(sum.BottomPosts))
	buf.WriteString("\n")
}

func postScoreTable(posts []types.PostScore) string {
	if len(posts) == 0 {
		return noData + "\n"
	}
	rows := make([][]string, 0, len(posts))
	for _, ps := range posts {
		rows = append(rows, []string{
			ps.MediaID,
			fmt.Sprintf("%.2f", ps.AvgScore),
			strconv.Itoa(ps.Comments),
			truncate(ps.Caption, 60),
		})
	}
	return markdownTable([]string{"Post", "Avg Score", "Scored Comments", "Caption"}, rows)
}

func writeCoverage(buf *bytes.Buffer, sum *types.ReputationSummary, sample SampleInfo) {
	buf.WriteString("## Sample Coverage\n\n")

	fmt.Fprintf(buf, "- Sampled %d of %d eligible comments", sum.Sampled, sample.Eligible)
	switch sample.Policy {
	case "seeded":
		fmt.Fprintf(buf, " (seeded shuffle, seed %d)\n", sample.Seed)
	case "first":
		buf.WriteString(" (first eligible rows)\n")
	case "cached":
		buf.WriteString(" (re-rendered from a cached scoring run)\n")
	default:
		buf.WriteString("\n")
	}
	fmt.Fprintf(buf, "- Scored: %d, unscored: %d\n", sum.Scored, sum.Unscored)
	if sum.Unscored > 0 {
		buf.WriteString("- Unscored comments come from failed scoring batches; they are counted here and flagged in the CSV, never silently dropped.\n")
	}
	buf.WriteString("\n")
}

// ReputationSummaryText is the plain text digest printed to stdout after a
// sentiment run.
func ReputationSummaryText(sum *types.ReputationSummary, meta Meta) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Brand reputation for %s\n", meta.Account)

	if sum.Scored == 0 {
		buf.WriteString("No comments were scored.\n")
		if sum.Unscored > 0 {
			fmt.Fprintf(&buf, "  Unscored: %d (all scoring batches failed)\n", sum.Unscored)
		}
		return buf.String()
	}

	fmt.Fprintf(&buf, "  Health:   %.1f (positive %s / neutral %s / negative %s)\n",
		sum.HealthScore, pct(sum.PositivePct), pct(sum.NeutralPct), pct(sum.NegativePct))
	fmt.Fprintf(&buf, "  Scored:   %d of %d sampled\n", sum.Scored, sum.Sampled)
	if sum.Unscored > 0 {
		fmt.Fprintf(&buf, "  Unscored: %d (from failed batches)\n", sum.Unscored)
	}
	if len(sum.Themes) > 0 {
		fmt.Fprintf(&buf, "  Theme:    %s (%d mentions)\n", sum.Themes[0].Theme, sum.Themes[0].Count)
	}

	return buf.String()
}
