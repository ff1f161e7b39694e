package categorizer

import (
	"context"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
)

// DefaultBatchSize is the number of transactions sent per AI request.
const DefaultBatchSize = 50

// AIStrategy sends candidates to an AIClient in batches.
type AIStrategy struct {
	client    AIClient
	batchSize int
	logger    logging.Logger
}

func NewAIStrategy(client AIClient, batchSize int, logger logging.Logger) *AIStrategy {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &AIStrategy{client: client, batchSize: batchSize, logger: logger}
}

func (s *AIStrategy) Name() string {
	return "AI"
}

// Suggest stops at the first failing batch and returns what earlier batches
// produced alongside the error. Suggestions for ids that were not submitted
// are discarded.
func (s *AIStrategy) Suggest(ctx context.Context, candidates []Candidate, categories []string) ([]models.CategorySuggestion, error) {
	var out []models.CategorySuggestion
	for start := 0; start < len(candidates); start += s.batchSize {
		end := min(start+s.batchSize, len(candidates))
		batch := candidates[start:end]

		submitted := make(map[int]bool, len(batch))
		prompt := make([]PromptTransaction, 0, len(batch))
		for _, c := range batch {
			submitted[c.Index] = true
			prompt = append(prompt, toPromptTransaction(c.Index, c.Transaction))
		}

		suggestions, err := s.client.SuggestCategories(ctx, prompt, categories)
		if err != nil {
			return out, err
		}
		for _, sug := range suggestions {
			if !submitted[sug.TransactionID] || sug.SuggestedCategory == "" {
				s.logger.Debug("Ignoring suggestion for unknown transaction",
					logging.F("transaction_id", sug.TransactionID))
				continue
			}
			delete(submitted, sug.TransactionID)
			out = append(out, sug)
		}
	}
	return out, nil
}
