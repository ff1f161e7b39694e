package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/finance-analyzer/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func createCategory(t *testing.T, db *DB, name string) int64 {
	t.Helper()
	c := &models.Category{Name: name, Color: "#123456"}
	require.NoError(t, db.CreateCategory(context.Background(), c))
	return c.ID
}

func TestInit_Idempotent(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, db.Init())
}

func TestCategories_CRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	c := &models.Category{Name: "Pets", Icon: "🐶", Color: "#abcdef"}
	require.NoError(t, db.CreateCategory(ctx, c))
	assert.NotZero(t, c.ID)

	err := db.CreateCategory(ctx, &models.Category{Name: "Pets"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := db.GetCategoryByName(ctx, "Pets")
	require.NoError(t, err)
	assert.Equal(t, "🐶", got.Icon)

	c.Name = "Animals"
	require.NoError(t, db.UpdateCategory(ctx, c))
	got, err = db.GetCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Animals", got.Name)

	require.NoError(t, db.DeleteCategory(ctx, c.ID))
	_, err = db.GetCategory(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.UpdateCategory(ctx, c), ErrNotFound)
}

func TestSeedCategories(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	configs := []models.CategoryConfig{{Name: "Groceries", Color: "#00ff00"}, {Name: "Dining"}}

	added, err := db.SeedCategories(ctx, configs)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = db.SeedCategories(ctx, configs)
	require.NoError(t, err)
	assert.Zero(t, added)

	cats, err := db.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Dining", cats[0].Name)
	assert.True(t, cats[0].IsSystem)

	assert.ErrorIs(t, db.DeleteCategory(ctx, cats[0].ID), ErrNotFound, "system categories stay")
}

func sampleTransactions(t *testing.T, groceries int64) []models.Transaction {
	return []models.Transaction{
		{Date: mustDate(t, "2024-01-15"), Description: "WHOLE FOODS", Amount: decimal.RequireFromString("-45.67"),
			CategoryID: &groceries, Merchant: "WHOLE FOODS", TransactionType: models.TypeDebit},
		{Date: mustDate(t, "2024-01-20"), Description: "SALARY", Amount: decimal.RequireFromString("2000.00"),
			TransactionType: models.TypeCredit},
		{Date: mustDate(t, "2024-02-03"), Description: "NETFLIX", Amount: decimal.RequireFromString("-15.99"),
			Merchant: "NETFLIX", TransactionType: models.TypeDebit},
	}
}

func TestTransactions_BulkCreateAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	groceries := createCategory(t, db, "Groceries")

	n, err := db.BulkCreateTransactions(ctx, sampleTransactions(t, groceries))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	page, err := db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, models.DefaultPageSize, page.Limit)
	require.Len(t, page.Transactions, 3)
	assert.Equal(t, "NETFLIX", page.Transactions[0].Description, "newest first")
	assert.Equal(t, "Groceries", page.Transactions[2].CategoryName)
	assert.True(t, decimal.RequireFromString("-45.67").Equal(page.Transactions[2].Amount))
	assert.Equal(t, "2024-01-15", page.Transactions[2].Date.String())

	start := mustDate(t, "2024-01-01")
	end := mustDate(t, "2024-01-31")
	page, err = db.ListTransactions(ctx, models.TransactionFilter{StartDate: &start, EndDate: &end, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Transactions, 1)

	page, err = db.ListTransactions(ctx, models.TransactionFilter{Merchant: "netf"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
}

func TestTransactions_BulkCreateIsAtomic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	missing := int64(999)

	txs := sampleTransactions(t, createCategory(t, db, "Groceries"))
	txs[2].CategoryID = &missing

	_, err := db.BulkCreateTransactions(ctx, txs)
	require.Error(t, err)

	page, err := db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestTransactions_UpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	groceries := createCategory(t, db, "Groceries")
	_, err := db.BulkCreateTransactions(ctx, sampleTransactions(t, groceries))
	require.NoError(t, err)

	page, err := db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	id := page.Transactions[0].ID

	require.NoError(t, db.UpdateTransactionCategory(ctx, id, &groceries))
	got, err := db.GetTransaction(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, groceries, *got.CategoryID)
	assert.True(t, got.ManuallyCategorized)

	require.NoError(t, db.DeleteTransaction(ctx, id))
	_, err = db.GetTransaction(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeleteTransaction(ctx, id), ErrNotFound)
}

func TestTransactions_PartialUpdate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	groceries := createCategory(t, db, "Groceries")
	_, err := db.BulkCreateTransactions(ctx, sampleTransactions(t, groceries))
	require.NoError(t, err)

	page, err := db.ListTransactions(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	before := page.Transactions[0]

	desc, notes, recurring := "Renamed", "checked", true
	credit := models.TypeCredit
	amount := decimal.RequireFromString("99.10")
	require.NoError(t, db.UpdateTransaction(ctx, before.ID, models.TransactionPatch{
		Description:     &desc,
		Notes:           &notes,
		IsRecurring:     &recurring,
		TransactionType: &credit,
		Amount:          &amount,
		CategoryID:      &groceries,
	}))

	got, err := db.GetTransaction(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Description)
	assert.Equal(t, "checked", got.Notes)
	assert.True(t, got.IsRecurring)
	assert.Equal(t, models.TypeCredit, got.TransactionType)
	assert.Equal(t, "99.10", got.Amount.StringFixed(2))
	require.NotNil(t, got.CategoryID)
	assert.Equal(t, groceries, *got.CategoryID)
	assert.True(t, got.ManuallyCategorized)
	assert.Equal(t, before.Merchant, got.Merchant, "nil fields are kept")
	assert.Equal(t, before.Date, got.Date)

	assert.NoError(t, db.UpdateTransaction(ctx, before.ID, models.TransactionPatch{}))
	assert.ErrorIs(t, db.UpdateTransaction(ctx, 9999, models.TransactionPatch{}), ErrNotFound)
	assert.ErrorIs(t, db.UpdateTransaction(ctx, 9999, models.TransactionPatch{Notes: &notes}), ErrNotFound)
}

func TestTransactionStats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	groceries := createCategory(t, db, "Groceries")
	_, err := db.BulkCreateTransactions(ctx, sampleTransactions(t, groceries))
	require.NoError(t, err)

	stats, err := db.TransactionStats(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "61.66", stats.TotalSpent.StringFixed(2))
	assert.Equal(t, "2000.00", stats.TotalIncome.StringFixed(2))
	assert.Equal(t, "1938.34", stats.NetCashFlow.StringFixed(2))
	assert.Equal(t, 3, stats.TransactionCount)
	require.Len(t, stats.ByCategory, 2)
	assert.Equal(t, "Groceries", stats.ByCategory[0].Name)
	assert.Equal(t, models.CategoryUncategorized, stats.ByCategory[1].Name)

	from := mustDate(t, "2024-02-01")
	stats, err = db.TransactionStats(ctx, &from, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TransactionCount)

	first, last, ok, err := db.DateRange(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-15", first.String())
	assert.Equal(t, "2024-02-03", last.String())
}

func TestBudgets(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	groceries := createCategory(t, db, "Groceries")
	_, err := db.BulkCreateTransactions(ctx, sampleTransactions(t, groceries))
	require.NoError(t, err)

	b := &models.Budget{CategoryID: groceries, Amount: decimal.NewFromInt(400),
		Period: models.PeriodMonthly, StartDate: mustDate(t, "2024-01-01")}
	require.NoError(t, db.CreateBudget(ctx, b))

	dup := *b
	assert.ErrorIs(t, db.CreateBudget(ctx, &dup), ErrDuplicate)

	active, err := db.ActiveBudgets(ctx, mustDate(t, "2024-01-10"))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Groceries", active[0].CategoryName)
	assert.Nil(t, active[0].EndDate)

	active, err = db.ActiveBudgets(ctx, mustDate(t, "2023-12-31"))
	require.NoError(t, err)
	assert.Empty(t, active)

	spent, err := db.SpentInCategory(ctx, groceries, mustDate(t, "2024-01-01"), mustDate(t, "2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, "45.67", spent.StringFixed(2))

	end := mustDate(t, "2024-06-30")
	b.Amount = decimal.NewFromInt(500)
	b.EndDate = &end
	require.NoError(t, db.UpdateBudget(ctx, b))
	got, err := db.GetBudget(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "500", got.Amount.String())
	require.NotNil(t, got.EndDate)
	assert.Equal(t, "2024-06-30", got.EndDate.String())

	require.NoError(t, db.DeleteBudget(ctx, b.ID))
	all, err := db.ListBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInsights(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	expired := &models.Insight{Type: models.InsightAlert, Title: "old", ExpiresAt: &past}
	kept := &models.Insight{Type: models.InsightAnomaly, Title: "Unusual", Priority: 2, Metadata: `{"transactionId":1}`}
	require.NoError(t, db.CreateInsight(ctx, expired))
	require.NoError(t, db.CreateInsight(ctx, kept))

	n, err := db.DeleteExpiredInsights(ctx, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, db.DismissInsight(ctx, kept.ID))
	notDismissed := false
	list, err := db.ListInsights(ctx, &notDismissed)
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = db.ListInsights(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsDismissed)
	assert.Equal(t, `{"transactionId":1}`, list[0].Metadata)

	require.NoError(t, db.DeleteInsight(ctx, kept.ID))
	assert.ErrorIs(t, db.DeleteInsight(ctx, kept.ID), ErrNotFound)
	assert.ErrorIs(t, db.DismissInsight(ctx, kept.ID), ErrNotFound)
}

func TestChat(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, m := range []models.ChatMessage{
		{SessionID: "a", Role: models.RoleUser, Content: "hi"},
		{SessionID: "a", Role: models.RoleAssistant, Content: "hello"},
		{SessionID: "b", Role: models.RoleUser, Content: "budget?"},
	} {
		msg := m
		require.NoError(t, db.CreateChatMessage(ctx, &msg))
	}

	msgs, err := db.ListChatMessages(ctx, "a")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.RoleAssistant, msgs[1].Role)

	sessions, err := db.ListChatSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].SessionID)
	assert.Equal(t, "hello", sessions[1].LastMessage)

	require.NoError(t, db.DeleteChatSession(ctx, "a"))
	assert.ErrorIs(t, db.DeleteChatSession(ctx, "a"), ErrNotFound)
}
