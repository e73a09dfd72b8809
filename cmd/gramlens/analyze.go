package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"

	"github.com/gramlens/gramlens/internal/classify"
	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/loader"
	"github.com/gramlens/gramlens/internal/logging"
	"github.com/gramlens/gramlens/internal/report"
	"github.com/gramlens/gramlens/internal/report/charts"
	"github.com/gramlens/gramlens/internal/stats"
	"github.com/gramlens/gramlens/internal/store"
)

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	csvPath := fs.String("csv", "engagements.csv", "path to the engagement CSV export")
	configPath := fs.String("config", "gramlens.toml", "path to the config file")
	outDir := fs.String("out", "", "output directory (overrides output.dir from config)")
	plots := fs.Bool("plots", false, "render PNG charts alongside the report")
	openAfter := fs.Bool("open", false, "open the report when done")
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

	reportPath, err := generateEngagementReport(cfg, *csvPath, *plots)
	if err != nil {
		logrus.Fatalf("analysis failed: %v", err)
	}

	if *openAfter {
		if err := browser.OpenFile(reportPath); err != nil {
			logrus.Warnf("failed to open report: %v", err)
		}
	}
}

// generateEngagementReport runs the load, aggregate, and render pipeline and
// returns the path of the written report. Shared by analyze and schedule.
func generateEngagementReport(cfg *config.Config, csvPath string, plots bool) (string, error) {
	runID := uuid.NewString()
	logrus.Infof("Starting engagement run %s for %s", runID[:8], cfg.Account)

	records, loadRep, err := loader.Load(csvPath, cfg.Input)
	if err != nil {
		return "", err
	}
	logrus.Infof("Loaded %d of %d rows (%d dropped)", loadRep.Loaded, loadRep.Rows, loadRep.Dropped)
	if loadRep.Loaded == 0 {
		logrus.Warnf("No usable rows in %s, report will contain placeholders", csvPath)
	}

	cls := classify.New(cfg.Categories)
	res := stats.Aggregate(records, cls, stats.Options{
		TopPosts:  cfg.Analysis.TopPosts,
		PeakHours: cfg.Analysis.PeakHours,
	})

	if cacheDir, err := store.CacheDir(); err == nil {
		if path, err := store.SaveStepOutput(cacheDir, store.StepStats, res); err != nil {
			logrus.Warnf("Failed to cache aggregation output: %v", err)
		} else {
			logrus.Debugf("Cached aggregation output to %s", path)
		}
	}

	meta := report.Meta{
		Account:     cfg.Account,
		Source:      csvPath,
		GeneratedAt: time.Now(),
		RowsTotal:   loadRep.Rows,
		RowsDropped: loadRep.Dropped,
	}
	md := report.Engagement(res, meta)

	reportPath := filepath.Join(cfg.Output.Dir, "engagement_report.md")
	if err := store.WriteReport(reportPath, md); err != nil {
		return "", err
	}
	logrus.Infof("Wrote %s", reportPath)

	if plots {
		renderer := charts.New(filepath.Join(cfg.Output.Dir, "charts"))
		rendered, failed := renderer.RenderEngagement(res)
		if failed > 0 {
			logrus.Warnf("Rendered %d charts, %d skipped", len(rendered), failed)
		} else {
			logrus.Infof("Rendered %d charts", len(rendered))
		}
	}

	fmt.Print(report.EngagementSummary(res, meta))
	return reportPath, nil
}
