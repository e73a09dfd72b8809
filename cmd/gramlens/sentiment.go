package main

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gramlens/gramlens/internal/auth"
	"github.com/gramlens/gramlens/internal/classify"
	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/loader"
	"github.com/gramlens/gramlens/internal/logging"
	"github.com/gramlens/gramlens/internal/report"
	"github.com/gramlens/gramlens/internal/report/charts"
	"github.com/gramlens/gramlens/internal/sentiment"
	"github.com/gramlens/gramlens/internal/sentiment/providers"
	"github.com/gramlens/gramlens/internal/store"
	"github.com/gramlens/gramlens/internal/types"
)

func runSentiment(args []string) {
	fs := flag.NewFlagSet("sentiment", flag.ExitOnError)
	csvPath := fs.String("csv", "engagements.csv", "path to the engagement CSV export")
	configPath := fs.String("config", "gramlens.toml", "path to the config file")
	outDir := fs.String("out", "", "output directory (overrides output.dir from config)")
	sampleSize := fs.Int("sample", 0, "comments to score (overrides sentiment.sample_size from config)")
	reuse := fs.Bool("reuse", false, "re-render reports from the last cached scoring run instead of calling the API")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	logging.Setup(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *sampleSize > 0 {
		cfg.Sentiment.SampleSize = *sampleSize
	}

	cacheDir, err := store.CacheDir()
	if err != nil {
		logrus.Fatalf("failed to resolve cache directory: %v", err)
	}

	var (
		results    []types.SentimentResult
		sampleInfo report.SampleInfo
		source     string
	)

	if *reuse {
		cached, from, err := store.LoadLatestStepOutput[[]types.SentimentResult](cacheDir, store.StepSentiment)
		if err != nil {
			logrus.Fatalf("no cached scoring run to reuse: %v", err)
		}
		logrus.Infof("Reusing scored sample from %s", from)
		results = cached
		source = filepath.Base(from)
		sampleInfo = report.SampleInfo{Eligible: len(cached), Policy: "cached"}
	} else {
		key, err := auth.ResolveAPIKey(cfg.Sentiment.APIKey)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		runID := uuid.NewString()
		logrus.Infof("Starting sentiment run %s for %s", runID[:8], cfg.Account)

		records, loadRep, err := loader.Load(*csvPath, cfg.Input)
		if err != nil {
			logrus.Fatalf("failed to load engagement data: %v", err)
		}
		logrus.Infof("Loaded %d of %d rows (%d dropped)", loadRep.Loaded, loadRep.Rows, loadRep.Dropped)

		eligible := sentiment.Eligible(records, cfg.Sentiment.MinCommentLength)
		sample := sentiment.Sample(eligible, cfg.Sentiment, cfg.Sentiment.SampleSize)
		if len(sample) == 0 {
			logrus.Warnf("No comments long enough to score in %s, report will contain placeholders", *csvPath)
		} else {
			logrus.Infof("Scoring %d of %d eligible comments with %s", len(sample), len(eligible), cfg.Sentiment.Model)
		}

		provider := providers.NewAnthropicProvider(key, cfg.Sentiment.Model, cacheDir)
		cls := classify.New(cfg.Categories)
		analyzer := sentiment.New(provider, cfg.Account, cls, cfg.Sentiment)

		var batchErrs []*sentiment.BatchError
		results, batchErrs = analyzer.ScoreAll(context.Background(), sample)
		if len(batchErrs) > 0 {
			logrus.Warnf("%d scoring batches failed, affected comments are flagged unscored", len(batchErrs))
		}

		source = *csvPath
		sampleInfo = report.SampleInfo{
			Eligible: len(eligible),
			Policy:   cfg.Sentiment.SamplePolicy,
			Seed:     cfg.Sentiment.SampleSeed,
		}

		if path, err := store.SaveStepOutput(cacheDir, store.StepSentiment, results); err != nil {
			logrus.Warnf("Failed to cache scoring output: %v", err)
		} else {
			logrus.Debugf("Cached scoring output to %s", path)
		}
	}

	sum := sentiment.Summarize(results, cfg.Sentiment.RankSize)
	meta := report.Meta{
		Account:     cfg.Account,
		Source:      source,
		GeneratedAt: time.Now(),
	}

	reportPath := filepath.Join(cfg.Output.Dir, "brand_reputation.md")
	if err := store.WriteReport(reportPath, report.Reputation(sum, meta, sampleInfo)); err != nil {
		logrus.Fatalf("failed to write report: %v", err)
	}
	logrus.Infof("Wrote %s", reportPath)

	csvOut := filepath.Join(cfg.Output.Dir, "sentiment_scores.csv")
	if err := store.WriteSentimentCSV(csvOut, results); err != nil {
		logrus.Fatalf("failed to write sentiment CSV: %v", err)
	}
	logrus.Infof("Wrote %s", csvOut)

	renderer := charts.New(filepath.Join(cfg.Output.Dir, "charts"))
	rendered, failed := renderer.RenderReputation(sum)
	if failed > 0 {
		logrus.Warnf("Rendered %d charts, %d skipped", len(rendered), failed)
	} else {
		logrus.Infof("Rendered %d charts", len(rendered))
	}

	fmt.Print(report.ReputationSummaryText(sum, meta))
}
