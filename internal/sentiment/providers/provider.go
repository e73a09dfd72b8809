package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
)

// Request is one comment to score, keyed by the source row it maps back to.
type Request struct {
	ID      int
	Caption string
	Comment string
}

// Score is the model's judgment of one comment.
type Score struct {
	CommentID  int      `json:"comment_id"`
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Themes     []string `json:"themes"`
	Feedback   string   `json:"feedback"`
}

// Provider defines the interface for LLM scoring backends.
type Provider interface {
	ScoreComments(ctx context.Context, account string, batch []Request) ([]Score, error)
}

// ParseScores parses raw JSON bytes from an LLM provider into Score objects.
// Each provider is responsible for assembling the complete JSON before
// calling this.
func ParseScores(jsonBytes []byte) ([]Score, error) {
	var scores []Score
	if err := json.Unmarshal(jsonBytes, &scores); err != nil {
		return nil, fmt.Errorf("failed to parse score JSON: %w (response was: %.500s)", err, string(jsonBytes))
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("response contained no scores")
	}
	return scores, nil
}

var (
	fencedArrayRe = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(\[.*?\])\s*\n?` + "```")
	bareArrayRe   = regexp.MustCompile(`(?s)(\[.*\])`)
)

// ExtractJSON pulls a JSON array out of model output, tolerating markdown
// code fences and prose around the payload.
func ExtractJSON(text string) string {
	if matches := fencedArrayRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	if matches := bareArrayRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}
