package http

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type expenseRequest struct {
	Amount        core.Money `json:"amount"`
	Category      string     `json:"category"`
	Date          core.Date  `json:"date"`
	PaymentMethod string     `json:"paymentMethod"`
	Description   string     `json:"description"`
}

func (req expenseRequest) input() services.ExpenseInput {
	return services.ExpenseInput{
		Amount:        req.Amount,
		Category:      sanitizeInput(req.Category),
		Date:          req.Date,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Description:   sanitizeInput(req.Description),
	}
}

type expenseResponse struct {
	ID            string     `json:"id"`
	Amount        core.Money `json:"amount"`
	Category      string     `json:"category"`
	Date          core.Date  `json:"date"`
	PaymentMethod string     `json:"paymentMethod"`
	Description   string     `json:"description"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		Amount:        e.Amount,
		Category:      e.Category,
		Date:          e.Date,
		PaymentMethod: e.PaymentMethod,
		Description:   e.Description,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// decodeExpense reads an expense body, writing the error response itself
// when it returns false.
func decodeExpense(w http.ResponseWriter, r *http.Request) (expenseRequest, bool) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, errBadJSON) {
			BadRequestError(err.Error()).Write(w)
		} else {
			writeError(w, r, err)
		}
		return req, false
	}
	return req, true
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := s.svc.Expenses.List(r.Context(), session(r).UserID, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]expenseResponse, 0, len(items))
	for _, e := range items {
		out = append(out, toExpenseResponse(e))
	}
	NewJSONResponse().Body(out).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExpense(w, r)
	if !ok {
		return
	}
	e, err := s.svc.Expenses.Create(r.Context(), session(r).UserID, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		Body(toExpenseResponse(e)).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExpense(w, r)
	if !ok {
		return
	}
	e, err := s.svc.Expenses.Update(r.Context(), session(r).UserID, r.PathValue("id"), req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(toExpenseResponse(e)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Expenses.Delete(r.Context(), session(r).UserID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
