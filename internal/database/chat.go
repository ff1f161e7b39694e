package database

import (
	"context"
	"fmt"
	"time"

	"fjacquet/finance-analyzer/internal/models"
)

// CreateChatMessage appends msg to its session and sets its ID.
func (db *DB) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	res, err := db.ExecContext(ctx,
		`INSERT INTO chat_messages (session_id, role, content) VALUES (?, ?, ?)`,
		msg.SessionID, string(msg.Role), msg.Content)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get chat message id: %w", err)
	}
	msg.ID = id
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ListChatMessages returns the messages of a session in the order written.
func (db *DB) ListChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, session_id, role, content, created_at FROM chat_messages WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListChatSessions returns one entry per session with its latest message,
// most recent session first.
func (db *DB) ListChatSessions(ctx context.Context) ([]models.ChatSession, error) {
	rows, err := db.QueryContext(ctx, `SELECT session_id, content, created_at FROM chat_messages
		WHERE id IN (SELECT MAX(id) FROM chat_messages GROUP BY session_id)
		ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.ChatSession{}
	for rows.Next() {
		var s models.ChatSession
		if err := rows.Scan(&s.SessionID, &s.LastMessage, &s.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteChatSession removes every message of a session.
func (db *DB) DeleteChatSession(ctx context.Context, sessionID string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	return affectedOne(res, "delete chat session")
}
