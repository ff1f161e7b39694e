// Package categorizer suggests categories for parsed transactions. Strategies
// run in order (keywords from the categories file, then the AI model) and each
// only sees the transactions earlier strategies left uncategorized.
package categorizer

import (
	"context"
	"errors"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
	"fjacquet/finance-analyzer/internal/parsererror"
)

// Categorizer runs a chain of strategies.
type Categorizer struct {
	strategies []Strategy
	logger     logging.Logger
}

// NewCategorizer creates a Categorizer from strategies, in precedence order.
func NewCategorizer(logger logging.Logger, strategies ...Strategy) *Categorizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Categorizer{strategies: strategies, logger: logger}
}

// New builds the standard chain: keywords, then the AI client when one is given.
func New(configs []models.CategoryConfig, ai AIClient, batchSize int, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	strategies := []Strategy{NewKeywordStrategy(configs, logger)}
	if ai != nil {
		strategies = append(strategies, NewAIStrategy(ai, batchSize, logger))
	}
	return NewCategorizer(logger, strategies...)
}

// Categorize returns suggestions indexed by position in txs. A failing
// strategy does not stop later ones; the suggestions gathered are returned
// together with the joined *parsererror.CategorizationError values.
func (c *Categorizer) Categorize(ctx context.Context, txs []models.StagedTransaction, categories []models.Category) ([]models.CategorySuggestion, error) {
	names := make([]string, 0, len(categories))
	for _, cat := range categories {
		names = append(names, cat.Name)
	}

	pending := make([]Candidate, 0, len(txs))
	for i, tx := range txs {
		pending = append(pending, Candidate{Index: i, Transaction: tx.ParsedTransaction})
	}

	var (
		all  []models.CategorySuggestion
		errs []error
	)
	for _, strategy := range c.strategies {
		if len(pending) == 0 {
			break
		}
		suggestions, err := strategy.Suggest(ctx, pending, names)
		if err != nil {
			catErr := &parsererror.CategorizationError{Strategy: strategy.Name(), Count: len(pending), Err: err}
			c.logger.WithError(err).Warn("Categorization strategy failed",
				logging.F("strategy", strategy.Name()),
				logging.F(logging.FieldCount, len(pending)))
			errs = append(errs, catErr)
		}
		all = append(all, suggestions...)
		pending = remaining(pending, suggestions)
	}

	c.logger.Info("Categorization finished",
		logging.F(logging.FieldCount, len(all)),
		logging.F("uncategorized", len(pending)))
	return all, errors.Join(errs...)
}

func remaining(pending []Candidate, resolved []models.CategorySuggestion) []Candidate {
	if len(resolved) == 0 {
		return pending
	}
	done := make(map[int]bool, len(resolved))
	for _, s := range resolved {
		done[s.TransactionID] = true
	}
	out := pending[:0:0]
	for _, c := range pending {
		if !done[c.Index] {
			out = append(out, c)
		}
	}
	return out
}
