package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/gramlens/gramlens/internal/stats"
	"github.com/gramlens/gramlens/internal/types"
)

// Engagement renders the full engagement analysis as Markdown. The layout
// walks the three marketing goals in order: when to post, what to post,
// and which products to lead with.
func Engagement(res *stats.Result, meta Meta) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Engagement Analysis: %s\n\n", meta.Account)
	fmt.Fprintf(&buf, "Generated %s from `%s`.\n\n",
		meta.GeneratedAt.Format("2006-01-02 15:04"), meta.Source)

	writeOverview(&buf, res, meta)
	writeSchedule(&buf, res)
	writeContent(&buf, res)
	writeProducts(&buf, res)

	return buf.String()
}

func writeOverview(buf *bytes.Buffer, res *stats.Result, meta Meta) {
	buf.WriteString("## Overview\n\n")

	ov := res.Overview
	if ov.TotalComments == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}

	fmt.Fprintf(buf, "- Comments analyzed: %d across %d posts (%.1f per post)\n",
		ov.TotalComments, ov.UniquePosts, ov.AvgPerPost)
	fmt.Fprintf(buf, "- Date range: %s to %s\n",
		ov.First.Format("2006-01-02"), ov.Last.Format("2006-01-02"))
	if meta.RowsDropped > 0 {
		fmt.Fprintf(buf, "- Rows dropped at load: %d of %d\n", meta.RowsDropped, meta.RowsTotal)
	}
	buf.WriteString("\n")
}

func writeSchedule(buf *bytes.Buffer, res *stats.Result) {
	buf.WriteString("## Posting Schedule\n\n")

	ov := res.Overview
	if len(ov.PeakHours) == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}

	rows := make([][]string, 0, len(ov.PeakHours))
	for _, hc := range ov.PeakHours {
		rows = append(rows, []string{
			fmt.Sprintf("%02d:00", hc.Hour),
			strconv.Itoa(hc.Count),
		})
	}
	buf.WriteString(markdownTable([]string{"Peak Hour", "Comments"}, rows))
	buf.WriteString("\n")

	renderFindings(buf, scheduleFindings(ov))
}

func scheduleFindings(ov stats.Overview) []finding {
	var out []finding

	if len(ov.PeakHours) > 0 {
		top := ov.PeakHours[0]
		out = append(out, finding{
			text: fmt.Sprintf("Engagement peaks at %02d:00 with %d comments; the top %d windows together draw %d comments.",
				top.Hour, top.Count, len(ov.PeakHours), sumHourCounts(ov.PeakHours)),
			action: fmt.Sprintf("Schedule posts shortly before %02d:00 so fresh content meets the audience at its most active.", top.Hour),
		})
	}

	if ov.ActiveDays > 1 {
		out = append(out, finding{
			text: fmt.Sprintf("Day %d of the month drew the most comments (%d) and day %d the fewest (%d), against a typical day at %.1f.",
				ov.PeakDay.Day, ov.PeakDay.Count, ov.QuietDay.Day, ov.QuietDay.Count, ov.MeanDaily),
			action: fmt.Sprintf("Reserve launches and announcements for high-traffic days like day %d; use quiet days for community prompts that rebuild momentum.", ov.PeakDay.Day),
		})
	}

	return out
}

func sumHourCounts(hours []stats.HourCount) int {
	total := 0
	for _, hc := range hours {
		total += hc.Count
	}
	return total
}

func writeContent(buf *bytes.Buffer, res *stats.Result) {
	buf.WriteString("## Content Strategy\n\n")

	if len(res.TopPosts) == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}

	rows := make([][]string, 0, len(res.TopPosts))
	for i, ps := range res.TopPosts {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			ps.MediaID,
			strconv.Itoa(ps.CommentCount),
			string(ps.PostType),
			truncate(ps.Caption, 80),
		})
	}
	buf.WriteString(markdownTable([]string{"Rank", "Post", "Comments", "Type", "Caption"}, rows))
	buf.WriteString("\n")

	renderFindings(buf, contentFindings(res))
}

func contentFindings(res *stats.Result) []finding {
	var out []finding

	giveaway, _ := res.PostTypeStats(types.PostTypeGiveaway)
	regular, _ := res.PostTypeStats(types.PostTypeRegular)
	gAvg, gOK := giveaway.AvgPerPost()
	rAvg, rOK := regular.AvgPerPost()

	switch {
	case gOK && rOK && rAvg > 0:
		out = append(out, finding{
			text: fmt.Sprintf("Giveaway posts average %.1f comments against %.1f for regular posts, a %.1fx lift across %d giveaway posts.",
				gAvg, rAvg, gAvg/rAvg, giveaway.Posts),
			action: "Keep giveaways in the calendar as engagement spikes, but anchor reach on regular posts so the lift stays meaningful.",
		})
	case gOK && !rOK:
		out = append(out, finding{
			text:   fmt.Sprintf("Every analyzed post is a giveaway (%d posts, %.1f comments each); there is no regular baseline to compare against.", giveaway.Posts, gAvg),
			action: "Publish non-giveaway content to establish a baseline before judging giveaway lift.",
		})
	}

	if pr, ok := res.PostTypeStats(types.PostTypePR); ok && pr.Posts > 0 {
		prAvg, _ := pr.AvgPerPost()
		out = append(out, finding{
			text:   fmt.Sprintf("PR recruitment posts (%d) average %.1f comments each.", pr.Posts, prAvg),
			action: "Route ambassador interest from these posts into a standing application link so the energy converts after the comment thread cools.",
		})
	}

	return out
}

func writeProducts(buf *bytes.Buffer, res *stats.Result) {
	buf.WriteString("## Product & Scent Focus\n\n")

	if len(res.Products) == 0 && len(res.Scents) == 0 {
		buf.WriteString(noData + "\n\n")
		return
	}

	buf.WriteString("### Products\n\n")
	buf.WriteString(categoryTable(res.Products))
	buf.WriteString("\n### Scents\n\n")
	buf.WriteString(categoryTable(res.Scents))
	buf.WriteString("\n")

	renderFindings(buf, productFindings(res))
}

func categoryTable(rows []types.CategoryStats) string {
	if len(rows) == 0 {
		return noData + "\n"
	}
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		avg := "-"
		if v, ok := row.AvgPerPost(); ok {
			avg = fmt.Sprintf("%.1f", v)
		}
		out = append(out, []string{
			row.Label,
			strconv.Itoa(row.Posts),
			strconv.Itoa(row.Comments),
			avg,
		})
	}
	return markdownTable([]string{"Category", "Posts", "Comments", "Avg/Post"}, out)
}

func productFindings(res *stats.Result) []finding {
	var out []finding

	if lead, ok := leadCategory(res.Products); ok {
		avg, _ := lead.AvgPerPost()
		out = append(out, finding{
			text: fmt.Sprintf("%q leads product categories at %.1f comments per post across %d posts.",
				lead.Label, avg, lead.Posts),
			action: fmt.Sprintf("Weight upcoming creative toward %s content while testing whether the lead holds outside giveaways.", lead.Label),
		})
	}

	if lead, ok := leadCategory(res.Scents); ok {
		avg, _ := lead.AvgPerPost()
		out = append(out, finding{
			text: fmt.Sprintf("%q is the scent family drawing the most conversation (%.1f comments per post).",
				lead.Label, avg),
			action: fmt.Sprintf("Feature %s prominently in the next drop and pair it with the leading product category.", lead.Label),
		})
	}

	return out
}

// leadCategory returns the busiest real category, skipping the
// uncategorized bucket.
func leadCategory(rows []types.CategoryStats) (types.CategoryStats, bool) {
	for _, row := range rows {
		if row.Label == stats.Uncategorized {
			continue
		}
		if _, ok := row.AvgPerPost(); ok {
			return row, true
		}
	}
	return types.CategoryStats{}, false
}

// EngagementSummary is the plain text digest printed to stdout after a run.
func EngagementSummary(res *stats.Result, meta Meta) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Engagement analysis for %s\n", meta.Account)

	ov := res.Overview
	if ov.TotalComments == 0 {
		buf.WriteString("No usable rows in the export.\n")
		return buf.String()
	}

	fmt.Fprintf(&buf, "  Comments: %d across %d posts (%.1f per post)\n",
		ov.TotalComments, ov.UniquePosts, ov.AvgPerPost)
	fmt.Fprintf(&buf, "  Range:    %s to %s\n",
		ov.First.Format("2006-01-02"), ov.Last.Format("2006-01-02"))
	if len(ov.PeakHours) > 0 {
		fmt.Fprintf(&buf, "  Peak:     %02d:00 (%d comments)\n",
			ov.PeakHours[0].Hour, ov.PeakHours[0].Count)
	}
	if meta.RowsDropped > 0 {
		fmt.Fprintf(&buf, "  Dropped:  %d of %d rows\n", meta.RowsDropped, meta.RowsTotal)
	}

	return buf.String()
}
