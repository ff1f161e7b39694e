package api

import (
	"net/http"
	"net/url"
	"strconv"

	"fjacquet/finance-analyzer/internal/common"
	"fjacquet/finance-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

func queryInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, invalid("invalid " + key)
	}
	return n, nil
}

func queryDate(q url.Values, key string) (*models.Date, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, invalid("invalid " + key + ", expected YYYY-MM-DD")
	}
	return &d, nil
}

func queryDecimal(q url.Values, key string) (*decimal.Decimal, error) {
	v := q.Get(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, invalid("invalid " + key)
	}
	return &d, nil
}

func parseFilter(q url.Values) (models.TransactionFilter, error) {
	var (
		f   models.TransactionFilter
		err error
	)
	if f.Page, err = queryInt(q, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = queryInt(q, "limit"); err != nil {
		return f, err
	}
	if v := q.Get("category"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, invalid("invalid category")
		}
		f.CategoryID = &id
	}
	if f.StartDate, err = queryDate(q, "startDate"); err != nil {
		return f, err
	}
	if f.EndDate, err = queryDate(q, "endDate"); err != nil {
		return f, err
	}
	f.Merchant = q.Get("merchant")
	if f.MinAmount, err = queryDecimal(q, "minAmount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = queryDecimal(q, "maxAmount"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	page, err := s.deps.Store.ListTransactions(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func (s *Server) handleTransactionStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := queryDate(q, "startDate")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	to, err := queryDate(q, "endDate")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	stats, err := s.deps.Store.TransactionStats(r.Context(), from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	txs, err := s.deps.Store.AllTransactions(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := common.WriteTransactions(w, txs); err != nil {
		s.logger.WithError(err).Error("Failed to write CSV export")
	}
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tx, err := s.deps.Store.GetTransaction(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var patch models.TransactionPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.fail(w, r, err)
		return
	}
	switch {
	case patch.TransactionType != nil && !patch.TransactionType.Valid():
		s.fail(w, r, invalid("transaction_type must be debit, credit or transfer"))
		return
	case patch.Description != nil && *patch.Description == "":
		s.fail(w, r, invalid("description must not be empty"))
		return
	case patch.Amount != nil && patch.Amount.IsNegative():
		s.fail(w, r, invalid("amount must not be negative"))
		return
	}
	if patch.CategoryID != nil {
		if _, err := s.deps.Store.GetCategory(r.Context(), *patch.CategoryID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if err := s.deps.Store.UpdateTransaction(r.Context(), id, patch); err != nil {
		s.fail(w, r, err)
		return
	}
	tx, err := s.deps.Store.GetTransaction(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

type categoryAssignment struct {
	CategoryID      *int64 `json:"category_id"`
	CategoryIDCamel *int64 `json:"categoryId"`
}

func (s *Server) handleUpdateTransactionCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body categoryAssignment
	if err := decodeJSON(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	categoryID := body.CategoryID
	if categoryID == nil {
		categoryID = body.CategoryIDCamel
	}
	if categoryID == nil {
		WriteError(w, http.StatusBadRequest, "category_id is required")
		return
	}
	if _, err := s.deps.Store.GetCategory(r.Context(), *categoryID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Store.UpdateTransactionCategory(r.Context(), id, categoryID); err != nil {
		s.fail(w, r, err)
		return
	}
	tx, err := s.deps.Store.GetTransaction(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Store.DeleteTransaction(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
