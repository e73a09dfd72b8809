package sentiment

import (
	"sort"

	"github.com/gramlens/gramlens/internal/types"
)

// Summarize rolls scored results up into the reputation view. Percentages
// are taken over scored comments only; unscored rows are counted but never
// influence a percentage.
func Summarize(results []types.SentimentResult, rankSize int) *types.ReputationSummary {
	sum := &types.ReputationSummary{Sampled: len(results)}

	themes := make(map[string]int)
	positiveThemes := make(map[string]int)
	negativeThemes := make(map[string]int)
	byType := make(map[types.PostType]*types.TypeSentiment)
	byPost := make(map[string]*postAccumulator)

	for _, r := range results {
		if r.Unscored {
			sum.Unscored++
			continue
		}
		sum.Scored++

		ts, ok := byType[r.PostType]
		if !ok {
			ts = &types.TypeSentiment{PostType: r.PostType}
			byType[r.PostType] = ts
		}

		switch r.Label {
		case types.SentimentPositive:
			sum.Positive++
			ts.Positive++
		case types.SentimentNegative:
			sum.Negative++
			ts.Negative++
		default:
			sum.Neutral++
			ts.Neutral++
		}

		for _, theme := range r.Themes {
			themes[theme]++
			switch r.Label {
			case types.SentimentPositive:
				positiveThemes[theme]++
			case types.SentimentNegative:
				negativeThemes[theme]++
			}
		}

		acc, ok := byPost[r.MediaID]
		if !ok {
			acc = &postAccumulator{caption: r.Caption}
			byPost[r.MediaID] = acc
		}
		acc.total += r.Score
		acc.count++
	}

	if sum.Scored > 0 {
		scored := float64(sum.Scored)
		sum.PositivePct = 100 * float64(sum.Positive) / scored
		sum.NeutralPct = 100 * float64(sum.Neutral) / scored
		sum.NegativePct = 100 * float64(sum.Negative) / scored
		sum.HealthScore = sum.PositivePct - sum.NegativePct
	}

	sum.Themes = topThemes(themes, 10)
	sum.PositiveThemes = topThemes(positiveThemes, 3)
	sum.NegativeThemes = topThemes(negativeThemes, 3)
	sum.ByPostType = orderedTypeSentiments(byType)
	sum.TopPosts, sum.BottomPosts = rankPosts(byPost, rankSize)

	return sum
}

type postAccumulator struct {
	caption string
	total   float64
	count   int
}

// topThemes ranks themes by mentions, most mentioned first, alphabetical on
// ties so the rollup is reproducible.
func topThemes(counts map[string]int, n int) []types.ThemeCount {
	ranked := make([]types.ThemeCount, 0, len(counts))
	for theme, count := range counts {
		ranked = append(ranked, types.ThemeCount{Theme: theme, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Theme < ranked[j].Theme
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// orderedTypeSentiments emits post type rows in canonical order, skipping
// types with no scored comments.
func orderedTypeSentiments(byType map[types.PostType]*types.TypeSentiment) []types.TypeSentiment {
	var out []types.TypeSentiment
	for _, pt := range []types.PostType{types.PostTypeRegular, types.PostTypeGiveaway, types.PostTypePR} {
		if ts, ok := byType[pt]; ok {
			out = append(out, *ts)
		}
	}
	return out
}

// rankPosts orders posts by mean signed score. Top is the best end, bottom
// the worst end ordered worst first. Short lists can appear in both.
func rankPosts(byPost map[string]*postAccumulator, rankSize int) (top, bottom []types.PostScore) {
	ranked := make([]types.PostScore, 0, len(byPost))
	for mediaID, acc := range byPost {
		ranked = append(ranked, types.PostScore{
			MediaID:  mediaID,
			Caption:  acc.caption,
			Comments: acc.count,
			AvgScore: acc.total / float64(acc.count),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].AvgScore != ranked[j].AvgScore {
			return ranked[i].AvgScore > ranked[j].AvgScore
		}
		return ranked[i].MediaID < ranked[j].MediaID
	})

	n := rankSize
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}

	top = append(top, ranked[:n]...)
	for i := len(ranked) - 1; i >= len(ranked)-n; i-- {
		bottom = append(bottom, ranked[i])
	}
	return top, bottom
}
