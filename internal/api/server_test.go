package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"fjacquet/finance-analyzer/internal/budget"
	"fjacquet/finance-analyzer/internal/chat"
	"fjacquet/finance-analyzer/internal/database"
	"fjacquet/finance-analyzer/internal/factory"
	"fjacquet/finance-analyzer/internal/filestore"
	"fjacquet/finance-analyzer/internal/insight"
	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"
	"fjacquet/finance-analyzer/internal/parsererror"
	"fjacquet/finance-analyzer/internal/upload"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chaseCSV = `Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
DEBIT,01/15/2024,"WHOLE FOODS MARKET #123",-45.67,DEBIT_CARD,1000.00,
CREDIT,01/16/2024,"PAYROLL DEPOSIT",2000.00,ACH_CREDIT,3000.00,
DEBIT,01/17/2024,"NETFLIX.COM",-15.99,DEBIT_CARD,2984.01,
`

type testEnv struct {
	handler http.Handler
	uploads *upload.Service
	db      *database.DB
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logger := logging.NewMockLogger()

	db, err := database.Open(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { _ = db.Close() })

	files, err := filestore.New(filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	registry := factory.DefaultRegistry(logger)
	uploads := upload.NewService(upload.NewJobStore(), registry, files, db, logger).WithCategories(db)

	srv := NewServer(Deps{
		Uploads:  uploads,
		Files:    files,
		Banks:    registry,
		Store:    db,
		Budgets:  budget.NewService(db, logger),
		Insights: insight.NewService(db, nil, logger),
		Chat:     chat.NewService(db, nil, logger),
	}, Options{MaxUploadSize: 1 << 20}, logger)

	return &testEnv{handler: srv.Handler(), uploads: uploads, db: db}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodOptions, "/api/transactions", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestUpload_RejectsNonCSV(t *testing.T) {
	env := newEnv(t)
	rec := env.upload(t, "statement.pdf", "%PDF")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "Only CSV files are allowed")
}

func TestUpload_MissingFile(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodPost, "/api/upload", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	env := newEnv(t)
	rec := env.upload(t, "big.csv", strings.Repeat("x", 2<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUpload_UnknownJob(t *testing.T) {
	env := newEnv(t)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/upload/nope/status", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/upload/nope/confirm", nil).Code)
}

func TestUpload_RoundTrip(t *testing.T) {
	env := newEnv(t)

	rec := env.upload(t, "chase.csv", chaseCSV)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	jobID := decode[map[string]string](t, rec)["jobId"]
	require.NotEmpty(t, jobID)
	env.uploads.Wait()

	rec = env.do(t, http.MethodGet, "/api/upload/"+jobID+"/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode[models.UploadJob](t, rec)
	assert.Equal(t, models.JobCompleted, job.Status)
	assert.Equal(t, "Chase", job.BankFormat)
	require.Len(t, job.Transactions, 3)

	rec = env.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Groceries", "color": "#00ff00"})
	require.Equal(t, http.StatusCreated, rec.Code)
	groceries := decode[models.Category](t, rec)

	rec = env.do(t, http.MethodPost, "/api/upload/"+jobID+"/confirm", map[string]any{
		"corrections": []map[string]int64{{"transactionId": 0, "categoryId": groceries.ID + 1000}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "unknown category")

	rec = env.do(t, http.MethodPost, "/api/upload/"+jobID+"/confirm", map[string]any{
		"corrections": []map[string]int64{{"transactionId": 0, "categoryId": groceries.ID}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[models.ConfirmResult](t, rec)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.SavedCount)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/api/upload/"+jobID+"/confirm", nil).Code)

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/transactions?category=%d", groceries.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.TransactionPage](t, rec)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Groceries", page.Transactions[0].CategoryName)
	assert.True(t, page.Transactions[0].ManuallyCategorized)

	rec = env.do(t, http.MethodGet, "/api/transactions/stats?startDate=2024-01-01&endDate=2024-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.TransactionStats](t, rec)
	assert.Equal(t, 3, stats.TransactionCount)
	assert.Equal(t, "61.66", stats.TotalSpent.StringFixed(2))

	rec = env.do(t, http.MethodGet, "/api/transactions/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "id,date,description,amount"))
}

func TestTransactions_CategoryUpdateAndDelete(t *testing.T) {
	env := newEnv(t)
	ctx := t.Context()
	d, err := models.ParseDate("2024-01-15")
	require.NoError(t, err)
	_, err = env.db.BulkCreateTransactions(ctx, []models.Transaction{{Date: d, Description: "X", TransactionType: models.TypeDebit}})
	require.NoError(t, err)
	c := &models.Category{Name: "Misc"}
	require.NoError(t, env.db.CreateCategory(ctx, c))

	page, err := env.db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/transactions/%d", page.Transactions[0].ID)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, path+"/category", map[string]any{}).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPut, path+"/category", map[string]any{"category_id": 999}).Code)

	rec := env.do(t, http.MethodPut, path+"/category", map[string]any{"category_id": c.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Misc", decode[models.Transaction](t, rec).CategoryName)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/transactions/abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/transactions?startDate=01/15/2024", nil).Code)
}

func TestUpload_ConfirmHeaderOnly(t *testing.T) {
	env := newEnv(t)

	rec := env.upload(t, "empty.csv", "Posting Date,Description,Amount,Type\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	jobID := decode[map[string]string](t, rec)["jobId"]
	env.uploads.Wait()

	rec = env.do(t, http.MethodPost, "/api/upload/"+jobID+"/confirm", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[models.ConfirmResult](t, rec)
	assert.True(t, result.Success)
	assert.Zero(t, result.SavedCount)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/upload/"+jobID+"/status", nil).Code)
}

func TestTransactions_Update(t *testing.T) {
	env := newEnv(t)
	ctx := t.Context()
	d, err := models.ParseDate("2024-01-15")
	require.NoError(t, err)
	_, err = env.db.BulkCreateTransactions(ctx, []models.Transaction{{
		Date: d, Description: "AMZN MKTP", Merchant: "AMZN", Amount: decimal.RequireFromString("12.50"), TransactionType: models.TypeDebit,
	}})
	require.NoError(t, err)
	c := &models.Category{Name: "Shopping"}
	require.NoError(t, env.db.CreateCategory(ctx, c))

	page, err := env.db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	path := fmt.Sprintf("/api/transactions/%d", page.Transactions[0].ID)

	rec := env.do(t, http.MethodPut, path, map[string]any{
		"description": "Amazon order",
		"merchant":    "Amazon",
		"notes":       "birthday gift",
		"category_id": c.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tx := decode[models.Transaction](t, rec)
	assert.Equal(t, "Amazon order", tx.Description)
	assert.Equal(t, "Amazon", tx.Merchant)
	assert.Equal(t, "birthday gift", tx.Notes)
	assert.Equal(t, "Shopping", tx.CategoryName)
	assert.True(t, tx.ManuallyCategorized)
	assert.Equal(t, "12.50", tx.Amount.StringFixed(2), "untouched fields are kept")
	assert.Equal(t, models.TypeDebit, tx.TransactionType)

	rec = env.do(t, http.MethodPut, path, map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Amazon order", decode[models.Transaction](t, rec).Description)

	tests := []struct {
		name string
		path string
		body map[string]any
		want int
	}{
		{"missing transaction", "/api/transactions/9999", map[string]any{"notes": "x"}, http.StatusNotFound},
		{"missing category", path, map[string]any{"category_id": 9999}, http.StatusNotFound},
		{"bad type", path, map[string]any{"transaction_type": "refund"}, http.StatusBadRequest},
		{"empty description", path, map[string]any{"description": ""}, http.StatusBadRequest},
		{"negative amount", path, map[string]any{"amount": "-1"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.do(t, http.MethodPut, tt.path, tt.body).Code)
		})
	}
}

func TestCategories(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Pets"})
	require.Equal(t, http.StatusCreated, rec.Code)
	pets := decode[models.Category](t, rec)

	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/api/categories", map[string]string{"name": "Pets"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/categories", map[string]string{"name": " "}).Code)

	path := fmt.Sprintf("/api/categories/%d", pets.ID)
	rec = env.do(t, http.MethodPut, path, map[string]string{"color": "#ff0000"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "#ff0000", decode[models.Category](t, rec).Color)

	rec = env.do(t, http.MethodGet, "/api/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Category](t, rec), 1)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, nil).Code)
}

func TestBudgets(t *testing.T) {
	env := newEnv(t)
	c := &models.Category{Name: "Dining"}
	require.NoError(t, env.db.CreateCategory(t.Context(), c))

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/budget", map[string]any{"categoryId": c.ID}).Code)
	assert.Equal(t, http.StatusBadRequest,
		env.do(t, http.MethodPost, "/api/budget", map[string]any{"categoryId": c.ID, "amount": 100, "period": "weekly"}).Code)

	rec := env.do(t, http.MethodPost, "/api/budget", map[string]any{"categoryId": c.ID, "amount": "250.50", "period": "monthly"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b := decode[models.Budget](t, rec)
	assert.Equal(t, "250.5", b.Amount.String())

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/budget/%d", c.ID), map[string]any{"amount": 300, "period": "monthly"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, b.ID, decode[models.Budget](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/api/budget/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.BudgetWithSpending](t, rec), 1)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/budget/status", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/budget/status?month=2024", nil).Code)

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, fmt.Sprintf("/api/budget/%d", b.ID), nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, fmt.Sprintf("/api/budget/%d", b.ID), nil).Code)
}

func TestAIEndpointsWithoutAI(t *testing.T) {
	env := newEnv(t)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/insights/generate", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodPost, "/api/chat", map[string]string{"message": "hi"}).Code)

	rec := env.do(t, http.MethodGet, "/api/insights?dismissed=false", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/chat/sessions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestBanks(t *testing.T) {
	env := newEnv(t)
	rec := env.do(t, http.MethodGet, "/api/upload/banks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Chase"}, decode[map[string][]string](t, rec)["banks"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{upload.ErrJobNotFound, http.StatusNotFound},
		{fmt.Errorf("get: %w", database.ErrNotFound), http.StatusNotFound},
		{upload.ErrJobNotCompleted, http.StatusConflict},
		{database.ErrDuplicate, http.StatusConflict},
		{&parsererror.FormatError{Supported: []string{"Chase"}}, http.StatusUnprocessableEntity},
		{&parsererror.MissingColumnsError{Parser: "Chase", Columns: []string{"amount"}}, http.StatusUnprocessableEntity},
		{invalid("bad page"), http.StatusBadRequest},
		{fmt.Errorf("%w: 12", upload.ErrUnknownCategory), http.StatusBadRequest},
		{&parsererror.ValidationError{File: "a.txt", Reason: "Only CSV files are allowed"}, http.StatusBadRequest},
		{insight.ErrAIUnavailable, http.StatusServiceUnavailable},
		{fmt.Errorf("save transactions: %w", errors.New("disk I/O error")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := logging.NewMockLogger()
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), Recovery(logger), Logger(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.True(t, logger.HasEntry("ERROR", "Panic recovered"))
	assert.True(t, logger.HasEntry("INFO", "HTTP request"))
}
