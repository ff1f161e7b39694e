package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)

	data, err := json.Marshal(struct {
		D Date `json:"d"`
	}{d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-01-15"}`, string(data))

	var back struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.D.Equal(d.Time))
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want string
	}{
		{name: "iso text", src: "2024-03-01", want: "2024-03-01"},
		{name: "timestamp text", src: "2024-03-01 00:00:00", want: "2024-03-01"},
		{name: "bytes", src: []byte("2024-03-02"), want: "2024-03-02"},
		{name: "time", src: time.Date(2024, 3, 3, 15, 4, 0, 0, time.UTC), want: "2024-03-03"},
		{name: "null", src: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestUploadJob_CloneIsDeep(t *testing.T) {
	catID := int64(3)
	score := 0.9
	job := &UploadJob{
		ID:     "j1",
		Status: JobCompleted,
		Transactions: []StagedTransaction{{
			ParsedTransaction: ParsedTransaction{Description: "STARBUCKS", Amount: decimal.RequireFromString("5.25")},
			CategoryID:        &catID,
			ConfidenceScore:   &score,
		}},
	}

	c := job.Clone()
	*c.Transactions[0].CategoryID = 99
	c.Transactions[0].Description = "changed"

	assert.Equal(t, int64(3), *job.Transactions[0].CategoryID)
	assert.Equal(t, "STARBUCKS", job.Transactions[0].Description)
	assert.Nil(t, (*UploadJob)(nil).Clone())
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, JobPending.IsTerminal())
	assert.False(t, JobProcessing.IsTerminal())
	assert.True(t, JobCompleted.IsTerminal())
	assert.True(t, JobFailed.IsTerminal())
}

func TestTransactionFilter_Normalize(t *testing.T) {
	f := TransactionFilter{}
	f.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPageSize, f.Limit)

	f = TransactionFilter{Page: 3, Limit: 5000}
	f.Normalize()
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, MaxPageSize, f.Limit)
}

func TestBudget_ActiveOn(t *testing.T) {
	start, _ := ParseDate("2024-01-01")
	end, _ := ParseDate("2024-06-30")
	b := Budget{StartDate: start, EndDate: &end}

	day := func(s string) Date { d, _ := ParseDate(s); return d }
	assert.False(t, b.ActiveOn(day("2023-12-31")))
	assert.True(t, b.ActiveOn(day("2024-01-01")))
	assert.True(t, b.ActiveOn(day("2024-06-30")))
	assert.False(t, b.ActiveOn(day("2024-07-01")))

	open := Budget{StartDate: start}
	assert.True(t, open.ActiveOn(day("2030-01-01")))
}

func TestNewTransactionFromStaged(t *testing.T) {
	catID := int64(7)
	staged := StagedTransaction{
		ParsedTransaction: ParsedTransaction{
			Description:         "PAYROLL DEPOSIT",
			Amount:              decimal.RequireFromString("1000.00"),
			Type:                TypeCredit,
			OriginalDescription: "PAYROLL DEPOSIT",
			Merchant:            "PAYROLL DEPOSIT",
		},
		CategoryID:          &catID,
		ManuallyCategorized: true,
	}
	tx := NewTransactionFromStaged(staged)
	assert.Equal(t, TypeCredit, tx.TransactionType)
	assert.Equal(t, &catID, tx.CategoryID)
	assert.True(t, tx.ManuallyCategorized)
	assert.False(t, tx.IsDebit())
}

func TestBudgetPeriod_Valid(t *testing.T) {
	assert.True(t, PeriodMonthly.Valid())
	assert.False(t, BudgetPeriod("weekly").Valid())
}
