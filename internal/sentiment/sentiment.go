package sentiment

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gramlens/gramlens/internal/classify"
	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/sentiment/providers"
	"github.com/gramlens/gramlens/internal/types"
)

// BatchError describes one failed scoring batch. The run keeps going; the
// batch members surface as unscored rows instead of failing the report.
type BatchError struct {
	Batch int
	Size  int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch %d (%d comments): %v", e.Batch, e.Size, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// Analyzer scores sampled comments through an LLM provider.
type Analyzer struct {
	provider providers.Provider
	account  string
	cls      *classify.Classifier
	cfg      config.SentimentConfig
	limiter  *rate.Limiter
}

// New creates an analyzer that honors the configured rate limit and
// concurrency cap.
func New(provider providers.Provider, account string, cls *classify.Classifier, cfg config.SentimentConfig) *Analyzer {
	return &Analyzer{
		provider: provider,
		account:  account,
		cls:      cls,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerMinute/60.0), 1),
	}
}

// Eligible filters records that carry enough comment text to score.
func Eligible(records []types.EngagementRecord, minLen int) []types.EngagementRecord {
	var out []types.EngagementRecord
	for _, rec := range records {
		if utf8.RuneCountInString(rec.CommentText) > minLen {
			out = append(out, rec)
		}
	}
	return out
}

// Sample selects up to n eligible comments. The seeded policy shuffles with
// a fixed seed so reruns over the same export pick the same comments; the
// first policy just takes the head of the file. Either way the sample comes
// back in source order.
func Sample(eligible []types.EngagementRecord, cfg config.SentimentConfig, n int) []types.EngagementRecord {
	if n <= 0 || n >= len(eligible) {
		out := make([]types.EngagementRecord, len(eligible))
		copy(out, eligible)
		return out
	}

	var picked []types.EngagementRecord
	switch cfg.SamplePolicy {
	case "first":
		picked = append(picked, eligible[:n]...)
	default:
		rng := rand.New(rand.NewSource(cfg.SampleSeed))
		perm := rng.Perm(len(eligible))
		picked = make([]types.EngagementRecord, 0, n)
		for _, i := range perm[:n] {
			picked = append(picked, eligible[i])
		}
	}

	sort.Slice(picked, func(i, j int) bool { return picked[i].RowID < picked[j].RowID })
	return picked
}

// ScoreAll fans the sample out to the provider in batches. Batches run
// concurrently under the configured cap, and a failed batch marks its
// members unscored without disturbing the others.
func (a *Analyzer) ScoreAll(ctx context.Context, sample []types.EngagementRecord) ([]types.SentimentResult, []*BatchError) {
	if len(sample) == 0 {
		return nil, nil
	}

	bs := a.cfg.BatchSize
	numBatches := (len(sample) + bs - 1) / bs
	slots := make([][]types.SentimentResult, numBatches)
	batchErrs := make([]*BatchError, numBatches)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.MaxConcurrency)

	for i := 0; i < len(sample); i += bs {
		batchIdx := i / bs
		end := min(i+bs, len(sample))
		batch := sample[i:end]

		g.Go(func() error {
			// Never return an error here: the group would cancel
			// healthy batches along with the failed one.
			slots[batchIdx], batchErrs[batchIdx] = a.scoreBatch(gctx, batchIdx, batch)
			return nil
		})
	}
	g.Wait()

	var results []types.SentimentResult
	for _, slot := range slots {
		results = append(results, slot...)
	}
	var errs []*BatchError
	for _, be := range batchErrs {
		if be != nil {
			errs = append(errs, be)
		}
	}
	return results, errs
}

func (a *Analyzer) scoreBatch(ctx context.Context, idx int, batch []types.EngagementRecord) ([]types.SentimentResult, *BatchError) {
	if err := a.limiter.Wait(ctx); err != nil {
		return a.unscoredBatch(batch, idx), &BatchError{Batch: idx, Size: len(batch), Err: err}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout())
	defer cancel()

	reqs := make([]providers.Request, len(batch))
	for i, rec := range batch {
		reqs[i] = providers.Request{ID: rec.RowID, Caption: rec.MediaCaption, Comment: rec.CommentText}
	}

	scores, err := a.provider.ScoreComments(callCtx, a.account, reqs)
	if err != nil {
		logrus.Warnf("sentiment batch %d failed: %v", idx, err)
		return a.unscoredBatch(batch, idx), &BatchError{Batch: idx, Size: len(batch), Err: err}
	}

	byID := make(map[int]providers.Score, len(scores))
	for _, s := range scores {
		byID[s.CommentID] = s
	}

	results := make([]types.SentimentResult, 0, len(batch))
	for _, rec := range batch {
		res := a.baseResult(rec, idx)
		s, ok := byID[rec.RowID]
		if !ok {
			logrus.Warnf("batch %d response missing comment %d, marking unscored", idx, rec.RowID)
			res.Unscored = true
			results = append(results, res)
			continue
		}

		label := normalizeLabel(s.Sentiment)
		confidence := clamp01(s.Confidence)
		res.Label = label
		res.Confidence = confidence
		res.Score = label.Weight() * confidence
		res.Themes = normalizeThemes(s.Themes)
		res.Feedback = strings.TrimSpace(s.Feedback)
		results = append(results, res)
	}
	return results, nil
}

func (a *Analyzer) unscoredBatch(batch []types.EngagementRecord, idx int) []types.SentimentResult {
	results := make([]types.SentimentResult, 0, len(batch))
	for _, rec := range batch {
		res := a.baseResult(rec, idx)
		res.Unscored = true
		results = append(results, res)
	}
	return results
}

func (a *Analyzer) baseResult(rec types.EngagementRecord, batch int) types.SentimentResult {
	return types.SentimentResult{
		RowID:       rec.RowID,
		MediaID:     rec.MediaID,
		PostType:    a.cls.PostType(rec.MediaCaption),
		Caption:     rec.MediaCaption,
		CommentText: rec.CommentText,
		Batch:       batch,
	}
}

// normalizeLabel maps model output onto the three known labels. Anything
// unrecognized counts as neutral rather than inventing a fourth bucket.
func normalizeLabel(raw string) types.SentimentLabel {
	switch types.SentimentLabel(strings.ToLower(strings.TrimSpace(raw))) {
	case types.SentimentPositive:
		return types.SentimentPositive
	case types.SentimentNegative:
		return types.SentimentNegative
	case types.SentimentNeutral:
		return types.SentimentNeutral
	default:
		logrus.Debugf("unrecognized sentiment label %q, treating as neutral", raw)
		return types.SentimentNeutral
	}
}

// normalizeThemes lowercases and deduplicates themes so "Product Quality"
// and "product_quality" roll up together.
func normalizeThemes(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.ReplaceAll(t, " ", "_")
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == 3 {
			break
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
