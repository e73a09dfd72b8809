package logging

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Setup configures the process-wide logger for CLI use. Log lines go to
// stderr so report summaries on stdout stay pipeable.
func Setup(verbose bool) {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&lineFormatter{})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// lineFormatter renders "[2006-01-02 15:04:05] [LEVEL] message" lines.
type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := strings.ToUpper(entry.Level.String())
	line := fmt.Sprintf("[%s] [%-5s] %s",
		entry.Time.Format("2006-01-02 15:04:05"), level, entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		// Sorted fields keep log lines stable across runs.
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, entry.Data[k])
		}
	}

	return []byte(line + "\n"), nil
}
