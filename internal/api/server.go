// Package api exposes the finance analyzer over a JSON HTTP API.
package api

import (
	"context"
	"io"
	"net/http"

	"fjacquet/finance-analyzer/internal/budget"
	"fjacquet/finance-analyzer/internal/chat"
	"fjacquet/finance-analyzer/internal/insight"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
	"fjacquet/finance-analyzer/internal/upload"
)

// DefaultMaxUploadSize is used when Options.MaxUploadSize is not set.
const DefaultMaxUploadSize = 10 << 20

// FileSaver stores uploaded files and returns their stored name.
type FileSaver interface {
	Save(filename string, r io.Reader) (string, error)
}

// BankLister reports the supported bank formats.
type BankLister interface {
	SupportedBanks() []string
}

// Store is the transaction and category persistence used directly by handlers.
type Store interface {
	ListTransactions(ctx context.Context, f models.TransactionFilter) (*models.TransactionPage, error)
	AllTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, patch models.TransactionPatch) error
	UpdateTransactionCategory(ctx context.Context, id int64, categoryID *int64) error
	DeleteTransaction(ctx context.Context, id int64) error
	TransactionStats(ctx context.Context, from, to *models.Date) (*models.TransactionStats, error)

	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	CreateCategory(ctx context.Context, c *models.Category) error
	UpdateCategory(ctx context.Context, c *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// Deps are the services the server routes to.
type Deps struct {
	Uploads  *upload.Service
	Files    FileSaver
	Banks    BankLister
	Store    Store
	Budgets  *budget.Service
	Insights *insight.Service
	Chat     *chat.Service
}

// Options tune the server.
type Options struct {
	MaxUploadSize int64
	CORSOrigin    string
}

// Server routes HTTP requests to the services.
type Server struct {
	deps   Deps
	opts   Options
	logger logging.Logger
}

// NewServer creates a Server.
func NewServer(deps Deps, opts Options, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	return &Server{deps: deps, opts: opts, logger: logger}
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/upload/banks", s.handleBanks)
	mux.HandleFunc("GET /api/upload/{jobId}/status", s.handleJobStatus)
	mux.HandleFunc("POST /api/upload/{jobId}/confirm", s.handleConfirm)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /api/transactions/stats", s.handleTransactionStats)
	mux.HandleFunc("GET /api/transactions/export", s.handleExportTransactions)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}/category", s.handleUpdateTransactionCategory)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories/{id}", s.handleGetCategory)
	mux.HandleFunc("PUT /api/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("GET /api/budget", s.handleListBudgets)
	mux.HandleFunc("GET /api/budget/active", s.handleActiveBudgets)
	mux.HandleFunc("GET /api/budget/status", s.handleBudgetStatus)
	mux.HandleFunc("POST /api/budget", s.handleCreateBudget)
	mux.HandleFunc("PUT /api/budget/{categoryId}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /api/budget/{id}", s.handleDeleteBudget)

	mux.HandleFunc("GET /api/insights", s.handleListInsights)
	mux.HandleFunc("POST /api/insights/generate", s.handleGenerateInsights)
	mux.HandleFunc("POST /api/insights/{id}/dismiss", s.handleDismissInsight)
	mux.HandleFunc("PUT /api/insights/{id}/dismiss", s.handleDismissInsight)
	mux.HandleFunc("DELETE /api/insights/{id}", s.handleDeleteInsight)

	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/chat/sessions", s.handleChatSessions)
	mux.HandleFunc("GET /api/chat/sessions/{id}", s.handleChatSession)
	mux.HandleFunc("DELETE /api/chat/sessions/{id}", s.handleDeleteChatSession)

	return Chain(mux, Recovery(s.logger), Logger(s.logger), CORS(s.opts.CORSOrigin))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"status": "ok", "timestamp": nowUTC()})
}

type successResponse struct {
	Success bool `json:"success"`
}
