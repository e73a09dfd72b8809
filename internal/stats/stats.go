package stats

import (
	"sort"
	"time"

	"github.com/gramlens/gramlens/internal/classify"
	"github.com/gramlens/gramlens/internal/types"
)

// Options bounds the ranked views in a Result.
type Options struct {
	TopPosts  int
	PeakHours int
}

// HourCount is one hour-of-day bucket.
type HourCount struct {
	Hour  int
	Count int
}

// DayCount is one day-of-month bucket.
type DayCount struct {
	Day   int
	Count int
}

// Overview carries the headline numbers for a whole export.
type Overview struct {
	TotalComments int
	UniquePosts   int
	AvgPerPost    float64
	First         time.Time
	Last          time.Time
	ActiveDays    int     // days of month with at least one comment
	MeanDaily     float64 // mean comments per active day
	PeakDay       DayCount
	QuietDay      DayCount
	PeakHours     []HourCount
}

// Result is everything the reports and charts consume. All slices are
// sorted so identical input produces identical output.
type Result struct {
	Overview  Overview
	Posts     []types.PostStats // every post, most commented first
	TopPosts  []types.PostStats
	PostTypes []types.CategoryStats // regular, giveaway, pr-recruitment
	Scents    []types.CategoryStats
	Products  []types.CategoryStats
	Hourly    [24]int
	Daily     [32]int // indexed by day of month, slot 0 unused
}

// PostTypeStats looks up the breakdown row for one post type.
func (r *Result) PostTypeStats(pt types.PostType) (types.CategoryStats, bool) {
	for _, c := range r.PostTypes {
		if c.Label == string(pt) {
			return c, true
		}
	}
	return types.CategoryStats{}, false
}

// Uncategorized labels posts whose caption matches no vocabulary entry.
const Uncategorized = "uncategorized"

// Aggregate folds the records into every table the reports need. An empty
// input yields a zero Result; renderers print placeholders rather than
// fabricated numbers.
func Aggregate(records []types.EngagementRecord, cls *classify.Classifier, opts Options) *Result {
	res := &Result{}
	if len(records) == 0 {
		return res
	}

	byPost := make(map[string]*types.PostStats)
	for _, rec := range records {
		res.Hourly[rec.Timestamp.Hour()]++
		res.Daily[rec.Timestamp.Day()]++

		ps, ok := byPost[rec.MediaID]
		if !ok {
			ps = &types.PostStats{
				MediaID:   rec.MediaID,
				Caption:   rec.MediaCaption,
				FirstSeen: rec.Timestamp,
			}
			byPost[rec.MediaID] = ps
		}
		ps.CommentCount++
		if rec.Timestamp.Before(ps.FirstSeen) {
			ps.FirstSeen = rec.Timestamp
		}
		if ps.Caption == "" && rec.MediaCaption != "" {
			ps.Caption = rec.MediaCaption
		}
	}

	res.Posts = make([]types.PostStats, 0, len(byPost))
	for _, ps := range byPost {
		ps.PostType = cls.PostType(ps.Caption)
		ps.Hour = ps.FirstSeen.Hour()
		ps.Day = ps.FirstSeen.Day()
		res.Posts = append(res.Posts, *ps)
	}
	sort.Slice(res.Posts, func(i, j int) bool {
		if res.Posts[i].CommentCount != res.Posts[j].CommentCount {
			return res.Posts[i].CommentCount > res.Posts[j].CommentCount
		}
		return res.Posts[i].MediaID < res.Posts[j].MediaID
	})

	top := opts.TopPosts
	if top <= 0 || top > len(res.Posts) {
		top = len(res.Posts)
	}
	res.TopPosts = res.Posts[:top]

	res.PostTypes = postTypeBreakdown(res.Posts)
	res.Scents = vocabularyBreakdown(res.Posts, cls.Scents)
	res.Products = vocabularyBreakdown(res.Posts, cls.Products)
	res.Overview = buildOverview(records, res, opts.PeakHours)

	return res
}

// postTypeBreakdown partitions posts by type. Every type gets a row even
// when empty so the partition always sums to the post count.
func postTypeBreakdown(posts []types.PostStats) []types.CategoryStats {
	order := []types.PostType{types.PostTypeRegular, types.PostTypeGiveaway, types.PostTypePR}
	rows := make([]types.CategoryStats, len(order))
	index := make(map[types.PostType]int, len(order))
	for i, pt := range order {
		rows[i] = types.CategoryStats{Label: string(pt)}
		index[pt] = i
	}
	for _, ps := range posts {
		i := index[ps.PostType]
		rows[i].Posts++
		rows[i].Comments += ps.CommentCount
	}
	return rows
}

// vocabularyBreakdown buckets posts by matched labels. A post can land in
// several buckets; a post matching nothing lands in "uncategorized".
func vocabularyBreakdown(posts []types.PostStats, match func(string) []string) []types.CategoryStats {
	buckets := make(map[string]*types.CategoryStats)
	add := func(label string, ps types.PostStats) {
		b, ok := buckets[label]
		if !ok {
			b = &types.CategoryStats{Label: label}
			buckets[label] = b
		}
		b.Posts++
		b.Comments += ps.CommentCount
	}

	for _, ps := range posts {
		labels := match(ps.Caption)
		if len(labels) == 0 {
			add(Uncategorized, ps)
			continue
		}
		for _, label := range labels {
			add(label, ps)
		}
	}

	rows := make([]types.CategoryStats, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, *b)
	}
	sortByAvg(rows)
	return rows
}

// sortByAvg orders category rows by mean comments per post, busiest first.
func sortByAvg(rows []types.CategoryStats) {
	sort.Slice(rows, func(i, j int) bool {
		ai, iok := rows[i].AvgPerPost()
		aj, jok := rows[j].AvgPerPost()
		if iok != jok {
			return iok
		}
		if ai != aj {
			return ai > aj
		}
		return rows[i].Label < rows[j].Label
	})
}

func buildOverview(records []types.EngagementRecord, res *Result, peakHours int) Overview {
	ov := Overview{
		TotalComments: len(records),
		UniquePosts:   len(res.Posts),
		First:         records[0].Timestamp,
		Last:          records[0].Timestamp,
	}
	for _, rec := range records {
		if rec.Timestamp.Before(ov.First) {
			ov.First = rec.Timestamp
		}
		if rec.Timestamp.After(ov.Last) {
			ov.Last = rec.Timestamp
		}
	}
	ov.AvgPerPost = float64(ov.TotalComments) / float64(ov.UniquePosts)

	ov.PeakDay = DayCount{Day: 0, Count: -1}
	ov.QuietDay = DayCount{Day: 0, Count: -1}
	for day := 1; day <= 31; day++ {
		n := res.Daily[day]
		if n == 0 {
			continue
		}
		ov.ActiveDays++
		if n > ov.PeakDay.Count {
			ov.PeakDay = DayCount{Day: day, Count: n}
		}
		if ov.QuietDay.Count == -1 || n < ov.QuietDay.Count {
			ov.QuietDay = DayCount{Day: day, Count: n}
		}
	}
	if ov.ActiveDays > 0 {
		ov.MeanDaily = float64(ov.TotalComments) / float64(ov.ActiveDays)
	}

	ov.PeakHours = topHours(res.Hourly, peakHours)
	return ov
}

// topHours ranks hour buckets by volume, busiest first, smaller hour on
// ties. Hours with no comments never rank.
func topHours(hourly [24]int, n int) []HourCount {
	ranked := make([]HourCount, 0, 24)
	for h, count := range hourly {
		if count > 0 {
			ranked = append(ranked, HourCount{Hour: h, Count: count})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Hour < ranked[j].Hour
	})
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
