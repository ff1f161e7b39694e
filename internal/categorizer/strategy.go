package categorizer

import (
	"context"

	"fjacquet/finance-analyzer/internal/models"
)

// Candidate is a transaction awaiting a category. Index is its position in
// the batch handed to the Categorizer and becomes the suggestion's
// TransactionID.
type Candidate struct {
	Index       int
	Transaction models.ParsedTransaction
}

// Strategy suggests categories for some or all candidates. Candidates left
// without a suggestion are passed to the next strategy.
type Strategy interface {
	Name() string
	Suggest(ctx context.Context, candidates []Candidate, categories []string) ([]models.CategorySuggestion, error)
}
