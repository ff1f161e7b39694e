package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the recurrence of a budget target.
type BudgetPeriod string

const (
	PeriodMonthly   BudgetPeriod = "monthly"
	PeriodQuarterly BudgetPeriod = "quarterly"
	PeriodYearly    BudgetPeriod = "yearly"
)

// Valid reports whether p is a known period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// Budget is a spending target for one category.
type Budget struct {
	ID            int64           `json:"id"`
	CategoryID    int64           `json:"category_id"`
	CategoryName  string          `json:"category_name,omitempty"`
	CategoryColor string          `json:"category_color,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Period        BudgetPeriod    `json:"period"`
	StartDate     Date            `json:"start_date"`
	EndDate       *Date           `json:"end_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ActiveOn reports whether the budget applies on day.
func (b Budget) ActiveOn(day Date) bool {
	if b.StartDate.After(day.Time) {
		return false
	}
	return b.EndDate == nil || !b.EndDate.Before(day.Time)
}

// BudgetWithSpending is an active budget with its spending to date.
type BudgetWithSpending struct {
	Budget
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Budget status thresholds, in percent of the budget amount.
const (
	BudgetNearThreshold = 80
	BudgetOverThreshold = 100
)

// BudgetState classifies spending against a budget.
type BudgetState string

const (
	BudgetUnder BudgetState = "under"
	BudgetNear  BudgetState = "near"
	BudgetOver  BudgetState = "over"
)

// BudgetCategoryStatus is one line of a monthly budget report.
type BudgetCategoryStatus struct {
	Category   Category        `json:"category"`
	Budget     decimal.Decimal `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Percentage float64         `json:"percentage"`
	Status     BudgetState     `json:"status"`
}

// BudgetStatus is the monthly budget report.
type BudgetStatus struct {
	Month       string                 `json:"month"`
	TotalBudget decimal.Decimal        `json:"total_budget"`
	TotalSpent  decimal.Decimal        `json:"total_spent"`
	Remaining   decimal.Decimal        `json:"remaining"`
	Categories  []BudgetCategoryStatus `json:"categories"`
}
