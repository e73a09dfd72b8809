package types

import "time"

// PostType buckets a post by what its caption is asking the audience to do.
type PostType string

const (
	PostTypeRegular  PostType = "regular"
	PostTypeGiveaway PostType = "giveaway"
	PostTypePR       PostType = "pr-recruitment"
)

// SentimentLabel is the coarse polarity assigned to a single comment.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// Weight maps the label onto a signed axis: positive pulls up, negative
// pulls down, neutral contributes nothing.
func (l SentimentLabel) Weight() float64 {
	switch l {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}

// EngagementRecord is one comment left on one post, as read from an
// engagement export.
type EngagementRecord struct {
	RowID        int       `json:"row_id"` // 1-based position in the source file
	MediaID      string    `json:"media_id"`
	Timestamp    time.Time `json:"timestamp"`
	CommentText  string    `json:"comment_text"`
	MediaCaption string    `json:"media_caption"`
}

// PostStats aggregates every comment that landed on a single post.
type PostStats struct {
	MediaID      string    `json:"media_id"`
	Caption      string    `json:"caption"`
	CommentCount int       `json:"comment_count"`
	PostType     PostType  `json:"post_type"`
	FirstSeen    time.Time `json:"first_seen"` // earliest comment, standing in for publish time
	Hour         int       `json:"hour"`
	Day          int       `json:"day"`
}

// CategoryStats is one row of a category breakdown (post type, scent, product).
type CategoryStats struct {
	Label    string `json:"label"`
	Posts    int    `json:"posts"`
	Comments int    `json:"comments"`
}

// AvgPerPost reports mean comments per post and whether the bucket has any
// posts at all. Callers render a placeholder when ok is false rather than a
// zero that looks like a measurement.
func (c CategoryStats) AvgPerPost() (avg float64, ok bool) {
	if c.Posts == 0 {
		return 0, false
	}
	return float64(c.Comments) / float64(c.Posts), true
}

// SentimentResult is the scored form of one sampled comment.
type SentimentResult struct {
	RowID       int            `json:"row_id"`
	MediaID     string         `json:"media_id"`
	PostType    PostType       `json:"post_type"`
	Caption     string         `json:"caption,omitempty"`
	CommentText string         `json:"comment_text"`
	Label       SentimentLabel `json:"label"`
	Confidence  float64        `json:"confidence"` // 0.0 through 1.0
	Score       float64        `json:"score"`      // Label weight scaled by confidence
	Themes      []string       `json:"themes"`
	Feedback    string         `json:"feedback"`
	Unscored    bool           `json:"unscored"` // true when the scoring call failed
	Batch       int            `json:"batch"`
}

// ThemeCount is one theme with the number of scored comments that mention it.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// PostScore ranks one post by the mean signed score of its sampled comments.
type PostScore struct {
	MediaID  string  `json:"media_id"`
	Caption  string  `json:"caption"`
	Comments int     `json:"comments"` // scored comments that backed the mean
	AvgScore float64 `json:"avg_score"`
}

// TypeSentiment breaks label counts down for one post type.
type TypeSentiment struct {
	PostType PostType `json:"post_type"`
	Positive int      `json:"positive"`
	Neutral  int      `json:"neutral"`
	Negative int      `json:"negative"`
}

// ReputationSummary is the rolled-up view of a scored comment sample.
type ReputationSummary struct {
	Sampled  int `json:"sampled"`
	Scored   int `json:"scored"`
	Unscored int `json:"unscored"`

	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`

	// Percentages are taken over scored comments only.
	PositivePct float64 `json:"positive_pct"`
	NeutralPct  float64 `json:"neutral_pct"`
	NegativePct float64 `json:"negative_pct"`

	// HealthScore is PositivePct minus NegativePct, so it runs -100 to +100.
	HealthScore float64 `json:"health_score"`

	Themes         []ThemeCount    `json:"themes"`
	PositiveThemes []ThemeCount    `json:"positive_themes"`
	NegativeThemes []ThemeCount    `json:"negative_themes"`
	ByPostType     []TypeSentiment `json:"by_post_type"`
	TopPosts       []PostScore     `json:"top_posts"`
	BottomPosts    []PostScore     `json:"bottom_posts"`
}
