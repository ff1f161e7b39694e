// Package insight turns an AI analysis of stored transactions into
// dismissable insights.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fjacquet/finance-analyzer/internal/currencyutils"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

const (
	maxSubscriptions   = 5
	maxAnomalies       = 3
	maxTrends          = 3
	maxRecommendations = 3
)

var (
	// ErrAIUnavailable is returned when no analyzer is configured.
	ErrAIUnavailable = errors.New("AI service is not configured, set GEMINI_API_KEY to enable it")
	// ErrNoTransactions is returned when there is nothing to analyze.
	ErrNoTransactions = errors.New("no transactions found, upload a statement first")
)

// Analyzer produces a spending analysis over a date range.
type Analyzer interface {
	AnalyzeSpending(ctx context.Context, startDate, endDate string, txs []models.Transaction) (*models.SpendingAnalysis, error)
}

// Store is the persistence the insight service needs.
type Store interface {
	AllTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
	DateRange(ctx context.Context) (from, to models.Date, ok bool, err error)
	CreateInsight(ctx context.Context, in *models.Insight) error
	ListInsights(ctx context.Context, dismissed *bool) ([]models.Insight, error)
	DismissInsight(ctx context.Context, id int64) error
	DeleteInsight(ctx context.Context, id int64) error
	DeleteExpiredInsights(ctx context.Context, now time.Time) (int64, error)
}

// Service generates and manages insights.
type Service struct {
	store    Store
	analyzer Analyzer
	logger   logging.Logger
}

// NewService creates an insight service. analyzer may be nil, in which case
// Generate returns ErrAIUnavailable.
func NewService(store Store, analyzer Analyzer, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{store: store, analyzer: analyzer, logger: logger}
}

// Generate analyzes every stored transaction and saves the resulting insights.
func (s *Service) Generate(ctx context.Context) (*models.GenerateResult, error) {
	if s.analyzer == nil {
		return nil, ErrAIUnavailable
	}
	from, to, ok, err := s.store.DateRange(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoTransactions
	}
	txs, err := s.store.AllTransactions(ctx, models.TransactionFilter{})
	if err != nil {
		return nil, err
	}

	analysis, err := s.analyzer.AnalyzeSpending(ctx, from.String(), to.String(), txs)
	if err != nil {
		return nil, fmt.Errorf("analyze spending: %w", err)
	}

	result := &models.GenerateResult{Insights: []models.Insight{}}
	for _, in := range FromAnalysis(analysis) {
		if err := s.store.CreateInsight(ctx, &in); err != nil {
			return nil, err
		}
		result.Insights = append(result.Insights, in)
	}
	result.Generated = len(result.Insights)

	s.logger.Info("Generated insights",
		logging.F(logging.FieldCount, result.Generated),
		logging.F("from", from.String()),
		logging.F("to", to.String()))
	return result, nil
}

// FromAnalysis maps an analysis to unsaved insights, capping each kind.
func FromAnalysis(a *models.SpendingAnalysis) []models.Insight {
	if a == nil {
		return nil
	}
	var out []models.Insight
	for _, sub := range head(a.Subscriptions, maxSubscriptions) {
		out = append(out, models.Insight{
			Type:  models.InsightRecommendation,
			Title: "Subscription: " + sub.Merchant,
			Description: fmt.Sprintf("You have a %s subscription for %s",
				sub.Frequency, currencyutils.FormatAmount(decimal.NewFromFloat(sub.Amount), "USD")),
			Priority: 1,
		})
	}
	for _, anomaly := range head(a.Anomalies, maxAnomalies) {
		meta, _ := json.Marshal(map[string]int64{"transactionId": anomaly.TransactionID})
		out = append(out, models.Insight{
			Type:        models.InsightAnomaly,
			Title:       "Unusual Transaction Detected",
			Description: anomaly.Reason,
			Priority:    2,
			Metadata:    string(meta),
		})
	}
	for _, trend := range head(a.Trends, maxTrends) {
		out = append(out, models.Insight{
			Type:        models.InsightTrend,
			Title:       trend.Category + " Spending Trend",
			Description: fmt.Sprintf("%s spending is %s by %g%%", trend.Category, trend.Trend, trend.Percentage),
			Priority:    1,
		})
	}
	for _, rec := range head(a.Recommendations, maxRecommendations) {
		out = append(out, models.Insight{
			Type:        models.InsightRecommendation,
			Title:       "Savings Opportunity",
			Description: rec,
			Priority:    1,
		})
	}
	return out
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// List returns insights, optionally filtered by dismissal.
func (s *Service) List(ctx context.Context, dismissed *bool) ([]models.Insight, error) {
	return s.store.ListInsights(ctx, dismissed)
}

// Dismiss hides an insight.
func (s *Service) Dismiss(ctx context.Context, id int64) error {
	return s.store.DismissInsight(ctx, id)
}

// Delete removes an insight.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteInsight(ctx, id)
}

// CleanupExpired removes expired insights and returns how many were deleted.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredInsights(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("Removed expired insights", logging.F(logging.FieldCount, n))
	}
	return n, nil
}
