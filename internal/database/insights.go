package database

import (
	"context"
	"fmt"
	"time"

	"fjacquet/finance-analyzer/internal/models"
)

// CreateInsight inserts in and sets its ID.
func (db *DB) CreateInsight(ctx context.Context, in *models.Insight) error {
	var expires any
	if in.ExpiresAt != nil {
		expires = in.ExpiresAt.UTC()
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO insights (type, title, description, priority, metadata, expires_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(in.Type), in.Title, in.Description, in.Priority, nullString(in.Metadata), expires)
	if err != nil {
		return fmt.Errorf("insert insight: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get insight id: %w", err)
	}
	in.ID = id
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ListInsights returns insights by priority then age. A nil dismissed returns
// all of them.
func (db *DB) ListInsights(ctx context.Context, dismissed *bool) ([]models.Insight, error) {
	query := `SELECT id, type, title, COALESCE(description, ''), priority, COALESCE(metadata, ''),
		is_dismissed, is_read, created_at, expires_at FROM insights`
	var args []any
	if dismissed != nil {
		query += ` WHERE is_dismissed = ?`
		args = append(args, *dismissed)
	}
	query += ` ORDER BY priority DESC, created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	defer rows.Close()

	insights := []models.Insight{}
	for rows.Next() {
		var in models.Insight
		if err := rows.Scan(&in.ID, &in.Type, &in.Title, &in.Description, &in.Priority, &in.Metadata,
			&in.IsDismissed, &in.IsRead, &in.CreatedAt, &in.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan insight: %w", err)
		}
		insights = append(insights, in)
	}
	return insights, rows.Err()
}

// DismissInsight hides an insight from the default listing.
func (db *DB) DismissInsight(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `UPDATE insights SET is_dismissed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("dismiss insight: %w", err)
	}
	return affectedOne(res, "dismiss insight")
}

// DeleteInsight removes one insight.
func (db *DB) DeleteInsight(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM insights WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete insight: %w", err)
	}
	return affectedOne(res, "delete insight")
}

// DeleteExpiredInsights removes insights whose expiry is before now.
func (db *DB) DeleteExpiredInsights(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM insights WHERE expires_at IS NOT NULL AND expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired insights: %w", err)
	}
	return res.RowsAffected()
}
