package categorizer

import (
	"context"
	"fmt"
	"strings"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
)

// KeywordStrategy categorizes by case-insensitive keyword matches against the
// merchant and description, using the keywords declared per category in the
// categories YAML file. Matches are certain (confidence 1.0).
type KeywordStrategy struct {
	rules  []keywordRule
	logger logging.Logger
}

type keywordRule struct {
	keyword  string
	category string
}

// NewKeywordStrategy builds the rule list from category configs. Declaration
// order is match precedence.
func NewKeywordStrategy(configs []models.CategoryConfig, logger logging.Logger) *KeywordStrategy {
	s := &KeywordStrategy{logger: logger}
	for _, cfg := range configs {
		for _, kw := range cfg.Keywords {
			kw = strings.ToUpper(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			s.rules = append(s.rules, keywordRule{keyword: kw, category: cfg.Name})
		}
	}
	return s
}

func (s *KeywordStrategy) Name() string {
	return "Keyword"
}

// RuleCount is the number of keyword rules loaded.
func (s *KeywordStrategy) RuleCount() int {
	return len(s.rules)
}

// Suggest never fails; unmatched candidates get no suggestion.
func (s *KeywordStrategy) Suggest(_ context.Context, candidates []Candidate, _ []string) ([]models.CategorySuggestion, error) {
	var out []models.CategorySuggestion
	for _, c := range candidates {
		merchant := strings.ToUpper(c.Transaction.Merchant)
		description := strings.ToUpper(c.Transaction.Description)
		for _, rule := range s.rules {
			if strings.Contains(merchant, rule.keyword) || strings.Contains(description, rule.keyword) {
				out = append(out, models.CategorySuggestion{
					TransactionID:     c.Index,
					SuggestedCategory: rule.category,
					Confidence:        1.0,
					Reasoning:         fmt.Sprintf("matched keyword %q", rule.keyword),
				})
				s.logger.Debug("Transaction categorized using keyword matching",
					logging.F(logging.FieldCategory, rule.category),
					logging.F("keyword", rule.keyword))
				break
			}
		}
	}
	return out, nil
}
