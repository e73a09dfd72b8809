package providers

import (
	"fmt"
	"strings"
)

// captionPreview keeps prompts compact; captions only orient the model.
const captionPreview = 100

// buildPrompt constructs the LLM prompt for scoring a batch of comments.
func buildPrompt(account string, batch []Request) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are analyzing Instagram comments left on %s's posts to gauge brand sentiment.\n\n", account))

	sb.WriteString("## Comments to Score\n\n")
	for i, req := range batch {
		sb.WriteString(fmt.Sprintf("### Comment %d (ID: %d)\n", i+1, req.ID))
		if req.Caption != "" {
			sb.WriteString(fmt.Sprintf("Post caption: %s\n", truncate(req.Caption, captionPreview)))
		}
		sb.WriteString(fmt.Sprintf("Comment: %s\n\n", req.Comment))
	}

	sb.WriteString("## Task\n\n")
	sb.WriteString("For each comment, provide:\n")
	sb.WriteString("1. comment_id (integer): The ID shown above\n")
	sb.WriteString("2. sentiment (string): \"positive\", \"negative\", or \"neutral\"\n")
	sb.WriteString("3. confidence (0.0 to 1.0): How certain you are of the sentiment\n")
	sb.WriteString("4. themes (array, max 3): Topics raised, e.g. \"scent\", \"product_quality\", \"texture\", \"price\", \"availability\", \"packaging\"\n")
	sb.WriteString("5. feedback (string): One sentence capturing any specific praise or complaint, empty if none\n\n")

	sb.WriteString("IMPORTANT: Respond with ONLY a valid JSON array. No markdown, no code blocks, no explanation - just the raw JSON starting with [ and ending with ].\n\n")
	sb.WriteString("Example structure:\n")
	sb.WriteString(`[{"comment_id": 42, "sentiment": "positive", "confidence": 0.85, "themes": ["scent"], "feedback": "Wants the vanilla scent restocked"}]`)
	sb.WriteString("\n")

	return sb.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
