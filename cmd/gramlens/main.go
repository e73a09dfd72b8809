// Command gramlens turns Instagram engagement exports into marketing reports.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(os.Args[2:])
	case "sentiment":
		runSentiment(os.Args[2:])
	case "schedule":
		runSchedule(os.Args[2:])
	case "open":
		runOpen(os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: gramlens <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  analyze    Build the engagement report from a CSV export")
	fmt.Println("  sentiment  Score a comment sample and build the reputation report")
	fmt.Println("  schedule   Run the engagement report on a cron schedule")
	fmt.Println("  open       Open a report, the charts directory, config, or cache")
	fmt.Println()
	fmt.Println("Run 'gramlens <command> -h' for command flags.")
}
