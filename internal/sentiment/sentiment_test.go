package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/gramlens/gramlens/internal/classify"
	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/sentiment/providers"
	"github.com/gramlens/gramlens/internal/types"
)

// fakeProvider scripts batch responses without any network.
type fakeProvider struct {
	mu      sync.Mutex
	calls   [][]providers.Request
	fail    func(batch []providers.Request) error
	respond func(batch []providers.Request) []providers.Score
}

func (f *fakeProvider) ScoreComments(_ context.Context, _ string, batch []providers.Request) ([]providers.Score, error) {
	f.mu.Lock()
	f.calls = append(f.calls, batch)
	f.mu.Unlock()

	if f.fail != nil {
		if err := f.fail(batch); err != nil {
			return nil, err
		}
	}
	return f.respond(batch), nil
}

func testConfig() config.SentimentConfig {
	cfg := config.Default().Sentiment
	cfg.RequestsPerMinute = 60000 // keep the limiter out of the way under test
	return cfg
}

func testAnalyzer(p providers.Provider, cfg config.SentimentConfig) *Analyzer {
	cls := classify.New(config.Default().Categories)
	return New(p, "@treehut", cls, cfg)
}

func makeRecords(n int) []types.EngagementRecord {
	records := make([]types.EngagementRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, types.EngagementRecord{
			RowID:        i,
			MediaID:      fmt.Sprintf("post_%d", (i-1)/10),
			CommentText:  fmt.Sprintf("comment number %d with plenty of text", i),
			MediaCaption: "spring restock",
		})
	}
	return records
}

func positiveScores(batch []providers.Request) []providers.Score {
	scores := make([]providers.Score, 0, len(batch))
	for _, req := range batch {
		scores = append(scores, providers.Score{
			CommentID:  req.ID,
			Sentiment:  "positive",
			Confidence: 0.8,
			Themes:     []string{"scent"},
			Feedback:   "likes it",
		})
	}
	return scores
}

func TestEligible(t *testing.T) {
	records := []types.EngagementRecord{
		{RowID: 1, CommentText: "short"},                 // exactly 5 runes, not eligible
		{RowID: 2, CommentText: "longer than five"},      // eligible
		{RowID: 3, CommentText: ""},                      // empty, not eligible
		{RowID: 4, CommentText: "❤❤❤❤❤❤"}, // 6 runes of hearts, eligible
	}

	got := Eligible(records, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 eligible records, got %d", len(got))
	}
	if got[0].RowID != 2 || got[1].RowID != 4 {
		t.Errorf("unexpected eligible rows: %+v", got)
	}
}

func TestSampleFirstPolicy(t *testing.T) {
	cfg := testConfig()
	cfg.SamplePolicy = "first"

	records := makeRecords(30)
	sample := Sample(records, cfg, 10)

	if len(sample) != 10 {
		t.Fatalf("expected 10 sampled, got %d", len(sample))
	}
	for i, rec := range sample {
		if rec.RowID != i+1 {
			t.Fatalf("first policy should take the head in order, got row %d at %d", rec.RowID, i)
		}
	}
}

func TestSampleSeededDeterministic(t *testing.T) {
	cfg := testConfig()
	records := makeRecords(100)

	a := Sample(records, cfg, 20)
	b := Sample(records, cfg, 20)

	if len(a) != 20 {
		t.Fatalf("expected 20 sampled, got %d", len(a))
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("seeded sampling must be reproducible across runs")
	}
	for i := 1; i < len(a); i++ {
		if a[i-1].RowID >= a[i].RowID {
			t.Fatal("sample should come back in source order")
		}
	}

	cfg.SampleSeed = 43
	c := Sample(records, cfg, 20)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should draw different samples")
	}
}

func TestSampleSmallerThanRequest(t *testing.T) {
	records := makeRecords(5)
	sample := Sample(records, testConfig(), 50)
	if len(sample) != 5 {
		t.Fatalf("expected all 5 records, got %d", len(sample))
	}
}

func TestScoreAllHappyPath(t *testing.T) {
	fake := &fakeProvider{respond: positiveScores}
	a := testAnalyzer(fake, testConfig())

	results, errs := a.ScoreAll(context.Background(), makeRecords(15))
	if len(errs) != 0 {
		t.Fatalf("unexpected batch errors: %v", errs)
	}
	if len(results) != 15 {
		t.Fatalf("expected 15 results, got %d", len(results))
	}

	for _, r := range results {
		if r.Unscored {
			t.Fatalf("row %d should be scored", r.RowID)
		}
		if r.Label != types.SentimentPositive {
			t.Errorf("row %d label = %s", r.RowID, r.Label)
		}
		if r.Score != 0.8 {
			t.Errorf("row %d score = %v, want 0.8", r.RowID, r.Score)
		}
		if r.PostType != types.PostTypeRegular {
			t.Errorf("row %d post type = %s", r.RowID, r.PostType)
		}
	}

	if len(fake.calls) != 2 {
		t.Errorf("expected 2 batches for 15 comments at size 10, got %d", len(fake.calls))
	}
}

func TestScoreAllIsolatesFailedBatch(t *testing.T) {
	fake := &fakeProvider{
		respond: positiveScores,
		fail: func(batch []providers.Request) error {
			// The second batch holds rows 11 through 20.
			if batch[0].ID > 10 {
				return errors.New("model fell over")
			}
			return nil
		},
	}
	a := testAnalyzer(fake, testConfig())

	results, errs := a.ScoreAll(context.Background(), makeRecords(20))

	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 batch error, got %d", len(errs))
	}
	if errs[0].Batch != 1 || errs[0].Size != 10 {
		t.Errorf("unexpected batch error: %+v", errs[0])
	}

	if len(results) != 20 {
		t.Fatalf("every sampled comment must appear in results, got %d", len(results))
	}

	var scored, unscored int
	for _, r := range results {
		if r.Unscored {
			unscored++
			if r.RowID <= 10 {
				t.Errorf("row %d belongs to the healthy batch", r.RowID)
			}
			if r.Label != "" {
				t.Errorf("unscored row %d should carry no label", r.RowID)
			}
		} else {
			scored++
		}
	}
	if scored != 10 || unscored != 10 {
		t.Errorf("scored/unscored = %d/%d, want 10/10", scored, unscored)
	}
}

func TestScoreAllMergesByID(t *testing.T) {
	fake := &fakeProvider{
		respond: func(batch []providers.Request) []providers.Score {
			// Answer in reverse order with one row missing: merging must go
			// by ID, and the gap must surface as unscored.
			var scores []providers.Score
			for i := len(batch) - 1; i >= 0; i-- {
				if batch[i].ID == 2 {
					continue
				}
				sentiment := "negative"
				if batch[i].ID%2 == 0 {
					sentiment = "neutral"
				}
				scores = append(scores, providers.Score{
					CommentID:  batch[i].ID,
					Sentiment:  sentiment,
					Confidence: 0.5,
				})
			}
			return scores
		},
	}
	a := testAnalyzer(fake, testConfig())

	results, errs := a.ScoreAll(context.Background(), makeRecords(4))
	if len(errs) != 0 {
		t.Fatalf("unexpected batch errors: %v", errs)
	}

	byRow := make(map[int]types.SentimentResult)
	for _, r := range results {
		byRow[r.RowID] = r
	}

	if !byRow[2].Unscored {
		t.Error("row 2 was missing from the response and must be unscored")
	}
	if byRow[1].Label != types.SentimentNegative || byRow[1].Score != -0.5 {
		t.Errorf("row 1 = %+v", byRow[1])
	}
	if byRow[4].Label != types.SentimentNeutral || byRow[4].Score != 0 {
		t.Errorf("row 4 = %+v", byRow[4])
	}
}

func TestScoreAllNormalizesModelOutput(t *testing.T) {
	fake := &fakeProvider{
		respond: func(batch []providers.Request) []providers.Score {
			return []providers.Score{{
				CommentID:  batch[0].ID,
				Sentiment:  "  POSITIVE ",
				Confidence: 1.7,
				Themes:     []string{"Product Quality", "product_quality", "", "scent", "price"},
				Feedback:   "  trimmed  ",
			}}
		},
	}
	cfg := testConfig()
	cfg.BatchSize = 1
	a := testAnalyzer(fake, cfg)

	results, _ := a.ScoreAll(context.Background(), makeRecords(1))
	r := results[0]

	if r.Label != types.SentimentPositive {
		t.Errorf("label = %s", r.Label)
	}
	if r.Confidence != 1 || r.Score != 1 {
		t.Errorf("confidence should clamp to 1, got %v (score %v)", r.Confidence, r.Score)
	}
	want := []string{"product_quality", "scent", "price"}
	if !reflect.DeepEqual(r.Themes, want) {
		t.Errorf("themes = %v, want %v", r.Themes, want)
	}
	if r.Feedback != "trimmed" {
		t.Errorf("feedback = %q", r.Feedback)
	}
}

func TestSummarize(t *testing.T) {
	results := []types.SentimentResult{
		{RowID: 1, MediaID: "a", PostType: types.PostTypeRegular, Label: types.SentimentPositive, Score: 0.9, Themes: []string{"scent", "texture"}},
		{RowID: 2, MediaID: "a", PostType: types.PostTypeRegular, Label: types.SentimentPositive, Score: 0.7, Themes: []string{"scent"}},
		{RowID: 3, MediaID: "b", PostType: types.PostTypeGiveaway, Label: types.SentimentNegative, Score: -0.8, Themes: []string{"price", "scent"}},
		{RowID: 4, MediaID: "b", PostType: types.PostTypeGiveaway, Label: types.SentimentNeutral, Score: 0},
		{RowID: 5, MediaID: "c", Unscored: true},
	}

	sum := Summarize(results, 5)

	if sum.Sampled != 5 || sum.Scored != 4 || sum.Unscored != 1 {
		t.Fatalf("coverage wrong: %+v", sum)
	}
	if sum.Positive != 2 || sum.Neutral != 1 || sum.Negative != 1 {
		t.Fatalf("label counts wrong: %+v", sum)
	}

	// Percentages are over the 4 scored comments, never the 5 sampled.
	if sum.PositivePct != 50 || sum.NeutralPct != 25 || sum.NegativePct != 25 {
		t.Errorf("percentages wrong: %v/%v/%v", sum.PositivePct, sum.NeutralPct, sum.NegativePct)
	}
	if sum.HealthScore != 25 {
		t.Errorf("health score = %v, want 25", sum.HealthScore)
	}

	if len(sum.Themes) == 0 || sum.Themes[0].Theme != "scent" || sum.Themes[0].Count != 3 {
		t.Errorf("top theme wrong: %+v", sum.Themes)
	}
	if len(sum.PositiveThemes) == 0 || sum.PositiveThemes[0].Theme != "scent" {
		t.Errorf("positive themes wrong: %+v", sum.PositiveThemes)
	}
	if len(sum.NegativeThemes) != 2 {
		t.Errorf("negative themes wrong: %+v", sum.NegativeThemes)
	}

	if len(sum.ByPostType) != 2 {
		t.Fatalf("expected 2 post type rows, got %+v", sum.ByPostType)
	}
	if sum.ByPostType[0].PostType != types.PostTypeRegular || sum.ByPostType[0].Positive != 2 {
		t.Errorf("regular row wrong: %+v", sum.ByPostType[0])
	}

	if len(sum.TopPosts) != 2 {
		t.Fatalf("expected 2 ranked posts (unscored-only posts never rank), got %d", len(sum.TopPosts))
	}
	if sum.TopPosts[0].MediaID != "a" || math.Abs(sum.TopPosts[0].AvgScore-0.8) > 1e-9 {
		t.Errorf("top post wrong: %+v", sum.TopPosts[0])
	}
	if sum.BottomPosts[0].MediaID != "b" || math.Abs(sum.BottomPosts[0].AvgScore+0.4) > 1e-9 {
		t.Errorf("bottom post wrong: %+v", sum.BottomPosts[0])
	}
}

func TestSummarizeAllUnscored(t *testing.T) {
	results := []types.SentimentResult{
		{RowID: 1, MediaID: "a", Unscored: true},
		{RowID: 2, MediaID: "a", Unscored: true},
	}

	sum := Summarize(results, 5)

	if sum.Scored != 0 || sum.Unscored != 2 {
		t.Fatalf("coverage wrong: %+v", sum)
	}
	if sum.HealthScore != 0 || sum.PositivePct != 0 {
		t.Errorf("percentages must stay zero with nothing scored: %+v", sum)
	}
	if len(sum.TopPosts) != 0 {
		t.Errorf("no posts should rank: %+v", sum.TopPosts)
	}
}
