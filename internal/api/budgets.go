package api

import (
	"net/http"

	"fjacquet/finance-analyzer/internal/models"

	"github.com/shopspring/decimal"
)

// budgetRequest accepts amounts sent as JSON numbers or strings.
type budgetRequest struct {
	CategoryID int64               `json:"categoryId"`
	Amount     decimal.NullDecimal `json:"amount"`
	Period     models.BudgetPeriod `json:"period"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Budgets.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleActiveBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.deps.Budgets.Active(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.deps.Budgets.Status(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

func (s *Server) upsertBudget(w http.ResponseWriter, r *http.Request, categoryID int64, req budgetRequest) {
	if categoryID <= 0 || !req.Amount.Valid || req.Period == "" {
		WriteError(w, http.StatusBadRequest, "categoryId, amount and period are required")
		return
	}
	b, err := s.deps.Budgets.Upsert(r.Context(), categoryID, req.Amount.Decimal, req.Period)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, b)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	s.upsertBudget(w, r, req.CategoryID, req)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	categoryID, err := pathID(r, "categoryId")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	s.upsertBudget(w, r, categoryID, req)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Budgets.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, successResponse{Success: true})
}
