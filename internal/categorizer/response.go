package categorizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/finance-analyzer/internal/models"
)

// extractJSON strips a surrounding markdown code fence, which models often add
// even when asked not to.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func parseSuggestions(text string) ([]models.CategorySuggestion, error) {
	var suggestions []models.CategorySuggestion
	if err := json.Unmarshal([]byte(extractJSON(text)), &suggestions); err != nil {
		return nil, fmt.Errorf("invalid response from categorization model: %w", err)
	}
	for i := range suggestions {
		suggestions[i].Confidence = clampConfidence(suggestions[i].Confidence)
	}
	return suggestions, nil
}

func parseAnalysis(text string) (*models.SpendingAnalysis, error) {
	var analysis models.SpendingAnalysis
	if err := json.Unmarshal([]byte(extractJSON(text)), &analysis); err != nil {
		return nil, fmt.Errorf("invalid response from analysis model: %w", err)
	}
	return &analysis, nil
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
