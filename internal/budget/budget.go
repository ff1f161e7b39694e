// Package budget manages per-category spending budgets and reports how much
// of each has been used.
package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fjacquet/finance-analyzer/internal/currencyutils"
	"fjacquet/finance-analyzer/internal/dateutils"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidPeriod is returned for periods other than monthly, quarterly
	// and yearly.
	ErrInvalidPeriod = errors.New("period must be monthly, quarterly or yearly")
	// ErrInvalidAmount is returned for budgets that are not positive.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidMonth is returned for months not in YYYY-MM form.
	ErrInvalidMonth = errors.New("month must be YYYY-MM")
)

// Store is the persistence the budget service needs.
type Store interface {
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	ListBudgets(ctx context.Context) ([]models.Budget, error)
	BudgetsForCategory(ctx context.Context, categoryID int64) ([]models.Budget, error)
	ActiveBudgets(ctx context.Context, day models.Date) ([]models.Budget, error)
	CreateBudget(ctx context.Context, b *models.Budget) error
	UpdateBudget(ctx context.Context, b *models.Budget) error
	DeleteBudget(ctx context.Context, id int64) error
	SpentInCategory(ctx context.Context, categoryID int64, from, to models.Date) (decimal.Decimal, error)
}

// Service implements budget operations.
type Service struct {
	store  Store
	logger logging.Logger
	now    func() time.Time
}

// NewService creates a budget service.
func NewService(store Store, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

func (s *Service) today() models.Date {
	return models.NewDate(s.now())
}

// List returns every budget.
func (s *Service) List(ctx context.Context) ([]models.Budget, error) {
	return s.store.ListBudgets(ctx)
}

// Upsert sets the budget of a category. The category's active budget is
// updated when there is one, otherwise a new budget starting today is created.
func (s *Service) Upsert(ctx context.Context, categoryID int64, amount decimal.Decimal, period models.BudgetPeriod) (*models.Budget, error) {
	if !period.Valid() {
		return nil, ErrInvalidPeriod
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	budgets, err := s.store.BudgetsForCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	for _, b := range budgets {
		if b.EndDate != nil && b.EndDate.Before(today.Time) {
			continue
		}
		b.Amount = amount
		b.Period = period
		if err := s.store.UpdateBudget(ctx, &b); err != nil {
			return nil, err
		}
		s.logger.Info("Budget updated",
			logging.F(logging.FieldCategory, category.Name),
			logging.F("amount", amount.String()))
		return &b, nil
	}

	b := &models.Budget{
		CategoryID:    categoryID,
		CategoryName:  category.Name,
		CategoryColor: category.Color,
		Amount:        amount,
		Period:        period,
		StartDate:     today,
	}
	if err := s.store.CreateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("create budget: %w", err)
	}
	s.logger.Info("Budget created",
		logging.F(logging.FieldCategory, category.Name),
		logging.F("amount", amount.String()))
	return b, nil
}

// Active returns today's budgets with what has been spent since each started.
func (s *Service) Active(ctx context.Context) ([]models.BudgetWithSpending, error) {
	today := s.today()
	budgets, err := s.store.ActiveBudgets(ctx, today)
	if err != nil {
		return nil, err
	}
	out := make([]models.BudgetWithSpending, 0, len(budgets))
	for _, b := range budgets {
		spent, err := s.store.SpentInCategory(ctx, b.CategoryID, b.StartDate, today)
		if err != nil {
			return nil, err
		}
		out = append(out, models.BudgetWithSpending{Budget: b, Spent: spent, Remaining: b.Amount.Sub(spent)})
	}
	return out, nil
}

// Status reports spending against every budget active at the start of month
// ("YYYY-MM"). An empty month means the current one.
func (s *Service) Status(ctx context.Context, month string) (*models.BudgetStatus, error) {
	if month == "" {
		month = dateutils.CurrentMonth(s.now())
	}
	from, to, err := dateutils.MonthRange(month)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	start, end := models.NewDate(from), models.NewDate(to)

	budgets, err := s.store.ActiveBudgets(ctx, start)
	if err != nil {
		return nil, err
	}

	status := &models.BudgetStatus{
		Month:       month,
		TotalBudget: decimal.Zero,
		TotalSpent:  decimal.Zero,
		Categories:  []models.BudgetCategoryStatus{},
	}
	for _, b := range budgets {
		category, err := s.store.GetCategory(ctx, b.CategoryID)
		if err != nil {
			s.logger.WithError(err).Warn("Skipping budget without category", logging.F("budget_id", b.ID))
			continue
		}
		spent, err := s.store.SpentInCategory(ctx, b.CategoryID, start, end)
		if err != nil {
			return nil, err
		}
		pct := currencyutils.Percent(spent, b.Amount)
		status.Categories = append(status.Categories, models.BudgetCategoryStatus{
			Category:   *category,
			Budget:     b.Amount,
			Spent:      spent,
			Percentage: pct,
			Status:     State(pct),
		})
		status.TotalBudget = status.TotalBudget.Add(b.Amount)
		status.TotalSpent = status.TotalSpent.Add(spent)
	}
	status.Remaining = status.TotalBudget.Sub(status.TotalSpent)
	return status, nil
}

// State classifies a usage percentage.
func State(percentage float64) models.BudgetState {
	switch {
	case percentage >= models.BudgetOverThreshold:
		return models.BudgetOver
	case percentage >= models.BudgetNearThreshold:
		return models.BudgetNear
	default:
		return models.BudgetUnder
	}
}

// Delete removes a budget.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteBudget(ctx, id)
}
