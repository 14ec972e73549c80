package http

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Category     string     `json:"category"`
	MonthlyLimit core.Money `json:"monthlyLimit"`
}

type budgetResponse struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	MonthlyLimit core.Money `json:"monthlyLimit"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{ID: b.ID, Category: b.Category, MonthlyLimit: b.MonthlyLimit, UpdatedAt: b.UpdatedAt}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Budgets.List(r.Context(), session(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]budgetResponse, 0, len(items))
	for _, b := range items {
		out = append(out, toBudgetResponse(b))
	}
	NewJSONResponse().Body(out).Write(w)
}

// handleSetBudget creates or replaces the limit for one category.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, errBadJSON) {
			BadRequestError(err.Error()).Write(w)
		} else {
			writeError(w, r, err)
		}
		return
	}
	b, err := s.svc.Budgets.Set(r.Context(), session(r).UserID, sanitizeInput(req.Category), req.MonthlyLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(toBudgetResponse(b)).Write(w)
}
