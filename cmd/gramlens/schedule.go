package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gramlens/gramlens/internal/config"
	"github.com/gramlens/gramlens/internal/logging"
	"github.com/gramlens/gramlens/internal/notify"
	"github.com/gramlens/gramlens/internal/scheduler"
)

func runSchedule(args []string) {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	csvPath := fs.String("csv", "engagements.csv", "path to the engagement CSV export")
	configPath := fs.String("config", "gramlens.toml", "path to the config file")
	plots := fs.Bool("plots", true, "render PNG charts on each run")
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	logging.Setup(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	sched, err := scheduler.New(cfg.Schedule.Timezone)
	if err != nil {
		logrus.Fatalf("failed to create scheduler: %v", err)
	}

	job := func(_ context.Context) error {
		reportPath, err := generateEngagementReport(cfg, *csvPath, *plots)
		if err != nil {
			return err
		}
		if !cfg.Email.Enabled() {
			return nil
		}
		notifier, err := notify.NewFromConfig(cfg.Email)
		if err != nil {
			return fmt.Errorf("failed to set up email notifier: %w", err)
		}
		md, err := os.ReadFile(reportPath)
		if err != nil {
			return fmt.Errorf("failed to read report for email: %w", err)
		}
		if err := notifier.SendReport(cfg.Account, time.Now(), string(md)); err != nil {
			return fmt.Errorf("failed to email report: %w", err)
		}
		logrus.Infof("Emailed report to %s", cfg.Email.ToAddr)
		return nil
	}

	if err := sched.AddJob("engagement-report", cfg.Schedule.Cron, job); err != nil {
		logrus.Fatalf("failed to schedule report job: %v", err)
	}
	sched.Start()

	for _, info := range sched.ListJobs() {
		logrus.Infof("Next run of %s at %s", info.Name, info.NextRun.Format(time.RFC1123))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logrus.Info("Shutting down, waiting for running jobs")
	<-sched.Stop().Done()
}
