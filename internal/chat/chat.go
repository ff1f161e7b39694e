// Package chat answers questions about the user's finances and keeps the
// conversation history per session.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const contextTransactions = 100

var (
	// ErrAIUnavailable is returned when no assistant is configured.
	ErrAIUnavailable = errors.New("AI service is not configured, set GEMINI_API_KEY to enable it")
	// ErrEmptyMessage is returned for blank messages.
	ErrEmptyMessage = errors.New("message is required")
)

// Assistant produces a reply given the earlier messages of a session.
type Assistant interface {
	Chat(ctx context.Context, history []models.ChatMessage, message, summary string) (string, error)
}

// Store is the persistence the chat service needs.
type Store interface {
	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	ListChatMessages(ctx context.Context, sessionID string) ([]models.ChatMessage, error)
	ListChatSessions(ctx context.Context) ([]models.ChatSession, error)
	DeleteChatSession(ctx context.Context, sessionID string) error
	RecentTransactions(ctx context.Context, limit int) ([]models.Transaction, error)
}

// Service runs chat sessions.
type Service struct {
	store     Store
	assistant Assistant
	logger    logging.Logger
}

// NewService creates a chat service. assistant may be nil, in which case Send
// returns ErrAIUnavailable.
func NewService(store Store, assistant Assistant, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{store: store, assistant: assistant, logger: logger}
}

// Send stores message in sessionID (a new session when empty), asks the
// assistant and stores its reply.
func (s *Service) Send(ctx context.Context, message, sessionID string) (*models.ChatReply, error) {
	if s.assistant == nil {
		return nil, ErrAIUnavailable
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	log := s.logger.WithField(logging.FieldSessionID, sessionID)

	history, err := s.store.ListChatMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	userMsg := &models.ChatMessage{SessionID: sessionID, Role: models.RoleUser, Content: message}
	if err := s.store.CreateChatMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	summary, err := s.summary(ctx)
	if err != nil {
		return nil, err
	}

	response, err := s.assistant.Chat(ctx, history, message, summary)
	if err != nil {
		log.WithError(err).Error("Chat request failed")
		return nil, fmt.Errorf("chat: %w", err)
	}

	reply := &models.ChatMessage{SessionID: sessionID, Role: models.RoleAssistant, Content: response}
	if err := s.store.CreateChatMessage(ctx, reply); err != nil {
		return nil, err
	}
	log.Debug("Chat reply stored", logging.F("history", len(history)))
	return &models.ChatReply{SessionID: sessionID, Response: response}, nil
}

// summary describes the most recent transactions for the assistant.
func (s *Service) summary(ctx context.Context) (string, error) {
	txs, err := s.store.RecentTransactions(ctx, contextTransactions)
	if err != nil {
		return "", err
	}
	spent := decimal.Zero
	for _, tx := range txs {
		if tx.IsDebit() {
			spent = spent.Add(tx.Amount.Abs())
		}
	}
	return fmt.Sprintf("Recent transactions count: %d\nTotal spending: $%s\nTransaction data is available for detailed queries.",
		len(txs), spent.StringFixed(2)), nil
}

// Sessions lists sessions with their latest message.
func (s *Service) Sessions(ctx context.Context) ([]models.ChatSession, error) {
	return s.store.ListChatSessions(ctx)
}

// Session returns the messages of one session.
func (s *Service) Session(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	return s.store.ListChatMessages(ctx, sessionID)
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.store.DeleteChatSession(ctx, sessionID)
}
