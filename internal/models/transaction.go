package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the money direction of a transaction.
type TransactionType string

const (
	TypeDebit    TransactionType = "debit"
	TypeCredit   TransactionType = "credit"
	TypeTransfer TransactionType = "transfer"
)

// ParsedTransaction is one normalized row produced by a bank parser.
// Amount is always non-negative; Type carries the direction.
type ParsedTransaction struct {
	Date                Date            `json:"date"`
	Description         string          `json:"description"`
	Amount              decimal.Decimal `json:"amount"`
	Type                TransactionType `json:"type"`
	OriginalDescription string          `json:"original_description"`
	Merchant            string          `json:"merchant"`
}

// StagedTransaction is a parsed transaction held by an upload job until the
// user confirms it, together with any category suggestion.
type StagedTransaction struct {
	ParsedTransaction
	CategoryID          *int64   `json:"category_id,omitempty"`
	SuggestedCategory   string   `json:"suggested_category,omitempty"`
	ConfidenceScore     *float64 `json:"confidence_score,omitempty"`
	Reasoning           string   `json:"reasoning,omitempty"`
	ManuallyCategorized bool     `json:"manually_categorized"`
}

// Transaction is a persisted transaction. The category name/color/icon are
// filled from a join when reading.
type Transaction struct {
	ID                  int64           `json:"id" csv:"id"`
	Date                Date            `json:"date" csv:"date"`
	Description         string          `json:"description" csv:"description"`
	Amount              decimal.Decimal `json:"amount" csv:"amount"`
	CategoryID          *int64          `json:"category_id" csv:"-"`
	CategoryName        string          `json:"category_name,omitempty" csv:"category"`
	CategoryColor       string          `json:"category_color,omitempty" csv:"-"`
	CategoryIcon        string          `json:"category_icon,omitempty" csv:"-"`
	Merchant            string          `json:"merchant" csv:"merchant"`
	AccountName         string          `json:"account_name,omitempty" csv:"account_name"`
	AccountLast4        string          `json:"account_last4,omitempty" csv:"account_last4"`
	TransactionType     TransactionType `json:"transaction_type" csv:"type"`
	OriginalDescription string          `json:"original_description" csv:"original_description"`
	Notes               string          `json:"notes,omitempty" csv:"notes"`
	IsRecurring         bool            `json:"is_recurring" csv:"-"`
	ConfidenceScore     *float64        `json:"confidence_score" csv:"-"`
	ManuallyCategorized bool            `json:"manually_categorized" csv:"-"`
	CreatedAt           time.Time       `json:"created_at" csv:"-"`
	UpdatedAt           time.Time       `json:"updated_at" csv:"-"`
}

// NewTransactionFromStaged builds the row written on confirm.
func NewTransactionFromStaged(s StagedTransaction) Transaction {
	return Transaction{
		Date:                s.Date,
		Description:         s.Description,
		Amount:              s.Amount,
		CategoryID:          s.CategoryID,
		Merchant:            s.Merchant,
		TransactionType:     s.Type,
		OriginalDescription: s.OriginalDescription,
		ConfidenceScore:     s.ConfidenceScore,
		ManuallyCategorized: s.ManuallyCategorized,
	}
}

// IsDebit reports whether money left the account.
func (t Transaction) IsDebit() bool {
	return t.TransactionType == TypeDebit
}

// TransactionFilter narrows a transaction listing. Zero values mean "no filter".
type TransactionFilter struct {
	CategoryID *int64
	StartDate  *Date
	EndDate    *Date
	Merchant   string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Page       int
	Limit      int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// Normalize applies paging defaults.
func (f *TransactionFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

// TransactionPatch is a partial update of a stored transaction. Nil fields
// are left unchanged.
type TransactionPatch struct {
	Date            *Date            `json:"date"`
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	CategoryID      *int64           `json:"category_id"`
	Merchant        *string          `json:"merchant"`
	TransactionType *TransactionType `json:"transaction_type"`
	Notes           *string          `json:"notes"`
	IsRecurring     *bool            `json:"is_recurring"`
}

// Empty reports whether the patch changes nothing.
func (p TransactionPatch) Empty() bool {
	return p.Date == nil && p.Description == nil && p.Amount == nil && p.CategoryID == nil &&
		p.Merchant == nil && p.TransactionType == nil && p.Notes == nil && p.IsRecurring == nil
}

// Valid reports whether t is a known direction.
func (t TransactionType) Valid() bool {
	return t == TypeDebit || t == TypeCredit || t == TypeTransfer
}

// TransactionPage is one page of a listing.
type TransactionPage struct {
	Transactions []Transaction `json:"transactions"`
	Total        int           `json:"total"`
	Page         int           `json:"page"`
	Limit        int           `json:"limit"`
}

// CategorySpending is the per-category part of TransactionStats.
type CategorySpending struct {
	CategoryID *int64          `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Count      int             `json:"count"`
}

// TransactionStats summarizes a date range.
type TransactionStats struct {
	TotalSpent       decimal.Decimal    `json:"total_spent"`
	TotalIncome      decimal.Decimal    `json:"total_income"`
	NetCashFlow      decimal.Decimal    `json:"net_cash_flow"`
	TransactionCount int                `json:"transaction_count"`
	ByCategory       []CategorySpending `json:"by_category"`
}
