package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fjacquet/finance-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

const transactionSelect = `SELECT t.id, t.date, t.description, t.amount, t.category_id,
	COALESCE(c.name, ''), COALESCE(c.color, ''), COALESCE(c.icon, ''),
	COALESCE(t.merchant, ''), COALESCE(t.account_name, ''), COALESCE(t.account_last4, ''),
	COALESCE(t.transaction_type, ''), COALESCE(t.original_description, ''), COALESCE(t.notes, ''),
	t.is_recurring, t.confidence_score, t.manually_categorized, t.created_at, t.updated_at
	FROM transactions t LEFT JOIN categories c ON t.category_id = c.id`

func scanTransaction(row interface{ Scan(...any) error }) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Date, &t.Description, &t.Amount, &t.CategoryID,
		&t.CategoryName, &t.CategoryColor, &t.CategoryIcon,
		&t.Merchant, &t.AccountName, &t.AccountLast4,
		&t.TransactionType, &t.OriginalDescription, &t.Notes,
		&t.IsRecurring, &t.ConfidenceScore, &t.ManuallyCategorized, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// BulkCreateTransactions inserts all transactions in one SQL transaction.
// Either every row is written or none is.
func (db *DB) BulkCreateTransactions(ctx context.Context, txs []models.Transaction) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin bulk insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO transactions
		(date, description, amount, category_id, merchant, account_name, account_last4,
		 transaction_type, original_description, notes, is_recurring, confidence_score, manually_categorized)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txs {
		var kind sql.NullString
		if t.TransactionType != "" {
			kind = sql.NullString{String: string(t.TransactionType), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, t.Date, t.Description, t.Amount, t.CategoryID,
			nullString(t.Merchant), nullString(t.AccountName), nullString(t.AccountLast4),
			kind, nullString(t.OriginalDescription), nullString(t.Notes),
			t.IsRecurring, t.ConfidenceScore, t.ManuallyCategorized); err != nil {
			return 0, fmt.Errorf("insert transaction %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk insert: %w", err)
	}
	return len(txs), nil
}

func filterClause(f models.TransactionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.CategoryID != nil {
		conds = append(conds, "t.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.StartDate != nil {
		conds = append(conds, "t.date >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		conds = append(conds, "t.date <= ?")
		args = append(args, *f.EndDate)
	}
	if f.Merchant != "" {
		conds = append(conds, "t.merchant LIKE ?")
		args = append(args, "%"+f.Merchant+"%")
	}
	if f.MinAmount != nil {
		conds = append(conds, "t.amount >= ?")
		args = append(args, *f.MinAmount)
	}
	if f.MaxAmount != nil {
		conds = append(conds, "t.amount <= ?")
		args = append(args, *f.MaxAmount)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListTransactions returns one page of transactions matching f, newest first.
func (db *DB) ListTransactions(ctx context.Context, f models.TransactionFilter) (*models.TransactionPage, error) {
	f.Normalize()
	where, args := filterClause(f)

	page := &models.TransactionPage{Transactions: []models.Transaction{}, Page: f.Page, Limit: f.Limit}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions t`+where, args...).Scan(&page.Total); err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	query := transactionSelect + where + ` ORDER BY t.date DESC, t.id DESC LIMIT ? OFFSET ?`
	rows, err := db.QueryContext(ctx, query, append(args, f.Limit, (f.Page-1)*f.Limit)...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		page.Transactions = append(page.Transactions, t)
	}
	return page, rows.Err()
}

// AllTransactions returns every transaction matching f without paging.
func (db *DB) AllTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	where, args := filterClause(f)
	rows, err := db.QueryContext(ctx, transactionSelect+where+` ORDER BY t.date DESC, t.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// RecentTransactions returns up to limit transactions, newest first.
func (db *DB) RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error) {
	page, err := db.ListTransactions(ctx, models.TransactionFilter{Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Transactions, nil
}

// GetTransaction returns one transaction by ID.
func (db *DB) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	t, err := scanTransaction(db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return &t, nil
}

// UpdateTransactionCategory assigns a category by hand.
func (db *DB) UpdateTransactionCategory(ctx context.Context, id int64, categoryID *int64) error {
	res, err := db.ExecContext(ctx,
		`UPDATE transactions SET category_id = ?, manually_categorized = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		categoryID, id)
	if err != nil {
		return fmt.Errorf("update transaction category: %w", err)
	}
	return affectedOne(res, "update transaction category")
}

// UpdateTransaction applies the non-nil fields of patch. Setting a category
// marks the transaction as manually categorized. An empty patch only checks
// that the row exists.
func (db *DB) UpdateTransaction(ctx context.Context, id int64, patch models.TransactionPatch) error {
	if patch.Empty() {
		_, err := db.GetTransaction(ctx, id)
		return err
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Date != nil {
		set("date", *patch.Date)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Amount != nil {
		set("amount", *patch.Amount)
	}
	if patch.CategoryID != nil {
		set("category_id", *patch.CategoryID)
		set("manually_categorized", true)
	}
	if patch.Merchant != nil {
		set("merchant", *patch.Merchant)
	}
	if patch.TransactionType != nil {
		set("transaction_type", string(*patch.TransactionType))
	}
	if patch.Notes != nil {
		set("notes", *patch.Notes)
	}
	if patch.IsRecurring != nil {
		set("is_recurring", *patch.IsRecurring)
	}
	args = append(args, id)

	res, err := db.ExecContext(ctx,
		`UPDATE transactions SET `+strings.Join(sets, ", ")+`, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		args...)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return affectedOne(res, "update transaction")
}

// DeleteTransaction removes one transaction.
func (db *DB) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return affectedOne(res, "delete transaction")
}

// DateRange returns the earliest and latest transaction dates. ok is false
// when there are no transactions.
func (db *DB) DateRange(ctx context.Context) (from, to models.Date, ok bool, err error) {
	var count int
	var minDate, maxDate sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT COUNT(*), CAST(MIN(date) AS TEXT), CAST(MAX(date) AS TEXT) FROM transactions`).
		Scan(&count, &minDate, &maxDate)
	if err != nil {
		return from, to, false, fmt.Errorf("transaction date range: %w", err)
	}
	if count == 0 {
		return from, to, false, nil
	}
	if err := from.Scan(minDate.String); err != nil {
		return from, to, false, err
	}
	if err := to.Scan(maxDate.String); err != nil {
		return from, to, false, err
	}
	return from, to, true, nil
}

// TransactionStats summarizes spending and income between from and to.
// Nil bounds are open.
func (db *DB) TransactionStats(ctx context.Context, from, to *models.Date) (*models.TransactionStats, error) {
	where, args := filterClause(models.TransactionFilter{StartDate: from, EndDate: to})

	stats := &models.TransactionStats{ByCategory: []models.CategorySpending{}}
	err := db.QueryRowContext(ctx, `SELECT
		COALESCE(SUM(CASE WHEN t.transaction_type = 'debit' THEN ABS(t.amount) ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN t.transaction_type = 'credit' THEN ABS(t.amount) ELSE 0 END), 0),
		COUNT(*)
		FROM transactions t`+where, args...).
		Scan(&stats.TotalSpent, &stats.TotalIncome, &stats.TransactionCount)
	if err != nil {
		return nil, fmt.Errorf("transaction stats: %w", err)
	}
	stats.TotalSpent = stats.TotalSpent.Round(2)
	stats.TotalIncome = stats.TotalIncome.Round(2)
	stats.NetCashFlow = stats.TotalIncome.Sub(stats.TotalSpent)

	debitWhere := " WHERE t.transaction_type = 'debit'"
	if where != "" {
		debitWhere = where + " AND t.transaction_type = 'debit'"
	}
	rows, err := db.QueryContext(ctx, `SELECT t.category_id, COALESCE(c.name, ?), COALESCE(c.color, ''),
		SUM(ABS(t.amount)) AS total, COUNT(*)
		FROM transactions t LEFT JOIN categories c ON t.category_id = c.id`+debitWhere+`
		GROUP BY t.category_id ORDER BY total DESC`,
		append([]any{models.CategoryUncategorized}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs models.CategorySpending
		if err := rows.Scan(&cs.CategoryID, &cs.Name, &cs.Color, &cs.Total, &cs.Count); err != nil {
			return nil, fmt.Errorf("scan category stats: %w", err)
		}
		cs.Total = cs.Total.Round(2)
		stats.ByCategory = append(stats.ByCategory, cs)
	}
	return stats, rows.Err()
}

// SpentInCategory sums debits in categoryID between from and to inclusive.
func (db *DB) SpentInCategory(ctx context.Context, categoryID int64, from, to models.Date) (decimal.Decimal, error) {
	var spent decimal.Decimal
	err := db.QueryRowContext(ctx, `SELECT COALESCE(SUM(ABS(amount)), 0) FROM transactions
		WHERE category_id = ? AND transaction_type = 'debit' AND date >= ? AND date <= ?`,
		categoryID, from, to).Scan(&spent)
	if err != nil {
		return decimal.Zero, fmt.Errorf("spent in category %d: %w", categoryID, err)
	}
	return spent.Round(2), nil
}
