package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fjacquet/finance-analyzer/internal/models"
)

const budgetSelect = `SELECT b.id, b.category_id, COALESCE(c.name, ''), COALESCE(c.color, ''),
	b.amount, b.period, b.start_date, b.end_date, b.created_at, b.updated_at
	FROM budgets b JOIN categories c ON b.category_id = c.id`

func scanBudget(row interface{ Scan(...any) error }) (models.Budget, error) {
	var b models.Budget
	err := row.Scan(&b.ID, &b.CategoryID, &b.CategoryName, &b.CategoryColor,
		&b.Amount, &b.Period, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (db *DB) queryBudgets(ctx context.Context, query string, args ...any) ([]models.Budget, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// ListBudgets returns every budget, newest first.
func (db *DB) ListBudgets(ctx context.Context) ([]models.Budget, error) {
	return db.queryBudgets(ctx, budgetSelect+` ORDER BY b.start_date DESC, b.id DESC`)
}

// BudgetsForCategory returns the budgets of one category, newest first.
func (db *DB) BudgetsForCategory(ctx context.Context, categoryID int64) ([]models.Budget, error) {
	return db.queryBudgets(ctx, budgetSelect+` WHERE b.category_id = ? ORDER BY b.start_date DESC, b.id DESC`, categoryID)
}

// ActiveBudgets returns budgets that started on or before day and have not
// ended before it.
func (db *DB) ActiveBudgets(ctx context.Context, day models.Date) ([]models.Budget, error) {
	return db.queryBudgets(ctx, budgetSelect+`
		WHERE b.start_date <= ? AND (b.end_date IS NULL OR b.end_date >= ?)
		ORDER BY c.name`, day, day)
}

// GetBudget returns one budget by ID.
func (db *DB) GetBudget(ctx context.Context, id int64) (*models.Budget, error) {
	b, err := scanBudget(db.QueryRowContext(ctx, budgetSelect+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get budget %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get budget %d: %w", id, err)
	}
	return &b, nil
}

// CreateBudget inserts b and sets its ID.
func (db *DB) CreateBudget(ctx context.Context, b *models.Budget) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO budgets (category_id, amount, period, start_date, end_date) VALUES (?, ?, ?, ?, ?)`,
		b.CategoryID, b.Amount, string(b.Period), b.StartDate, b.EndDate)
	if err != nil {
		return translate(err, "insert budget")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get budget id: %w", err)
	}
	b.ID = id
	return nil
}

// UpdateBudget changes the amount, period and end date of b.
func (db *DB) UpdateBudget(ctx context.Context, b *models.Budget) error {
	res, err := db.ExecContext(ctx,
		`UPDATE budgets SET amount = ?, period = ?, end_date = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		b.Amount, string(b.Period), b.EndDate, b.ID)
	if err != nil {
		return translate(err, "update budget")
	}
	return affectedOne(res, "update budget")
}

// DeleteBudget removes one budget.
func (db *DB) DeleteBudget(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return affectedOne(res, "delete budget")
}
