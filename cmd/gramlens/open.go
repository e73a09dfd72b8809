package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/sirupsen/logrus"

	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/logging"
	"github.com/gramlens/gramlens/internal/store"
)

func runOpen(args []string) {
	fs := flag.NewFlagSet("open", flag.ExitOnError)
	configPath := fs.String("config", "gramlens.toml", "path to the config file")
	fs.Parse(args)

	logging.Setup(false)

	target := fs.Arg(0)
	if target == "" {
		target = "report"
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	var path string
	switch target {
	case "report":
		path = filepath.Join(cfg.Output.Dir, "engagement_report.md")
	case "reputation":
		path = filepath.Join(cfg.Output.Dir, "brand_reputation.md")
	case "charts":
		path = filepath.Join(cfg.Output.Dir, "charts")
	case "config":
		path = *configPath
	case "cache":
		path, err = store.CacheDir()
		if err != nil {
			logrus.Fatalf("failed to resolve cache directory: %v", err)
		}
	default:
		fmt.Printf("Unknown open target: %s\n\n", target)
		fmt.Println("Targets: report, reputation, charts, config, cache")
		os.Exit(1)
	}

	if _, err := os.Stat(path); err != nil {
		logrus.Fatalf("nothing to open at %s, run analyze or sentiment first", path)
	}
	if err := browser.OpenFile(path); err != nil {
		logrus.Fatalf("failed to open %s: %v", path, err)
	}
}
