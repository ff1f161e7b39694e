package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fjacquet/finance-analyzer/internal/models"
)

const categoryColumns = `id, name, parent_id, COALESCE(icon, ''), COALESCE(color, ''), is_system, created_at, updated_at`

func scanCategory(row interface{ Scan(...any) error }) (models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.ParentID, &c.Icon, &c.Color, &c.IsSystem, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// ListCategories returns all categories ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory returns one category by ID.
func (db *DB) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	c, err := scanCategory(db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	return &c, nil
}

// GetCategoryByName looks a category up by its exact name.
func (db *DB) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := scanCategory(db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get category %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get category %q: %w", name, err)
	}
	return &c, nil
}

// CreateCategory inserts c and sets its ID.
func (db *DB) CreateCategory(ctx context.Context, c *models.Category) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO categories (name, parent_id, icon, color, is_system) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.ParentID, nullString(c.Icon), nullString(c.Color), c.IsSystem)
	if err != nil {
		return translate(err, "insert category")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get category id: %w", err)
	}
	c.ID = id
	return nil
}

// UpdateCategory changes the name, parent, icon and color of c.
func (db *DB) UpdateCategory(ctx context.Context, c *models.Category) error {
	res, err := db.ExecContext(ctx,
		`UPDATE categories SET name = ?, parent_id = ?, icon = ?, color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		c.Name, c.ParentID, nullString(c.Icon), nullString(c.Color), c.ID)
	if err != nil {
		return translate(err, "update category")
	}
	return affectedOne(res, "update category")
}

// DeleteCategory removes a user category. System categories are never deleted
// and report ErrNotFound.
func (db *DB) DeleteCategory(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND is_system = 0`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return affectedOne(res, "delete category")
}

// SeedCategories inserts configured categories as system categories, leaving
// existing names untouched. It returns how many were added.
func (db *DB) SeedCategories(ctx context.Context, configs []models.CategoryConfig) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO categories (name, icon, color, is_system) VALUES (?, ?, ?, 1)`)
	if err != nil {
		return 0, fmt.Errorf("prepare seed: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, c := range configs {
		res, err := stmt.ExecContext(ctx, c.Name, nullString(c.Icon), nullString(c.Color))
		if err != nil {
			return 0, fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return added, nil
}
