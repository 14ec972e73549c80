package http

import (
	"net/http"

	"fintrack/internal/services"
)

type dashboardResponse struct {
	services.Dashboard
	PeriodExpenses []expenseResponse `json:"periodExpenses"`
}

// handleDashboard returns the summary for ?year&month (default: current
// month) with ?top payment methods.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	period, err := ParsePeriod(query, s.svc.Dashboard.DefaultPeriod())
	if err != nil {
		writeError(w, r, err)
		return
	}
	top, err := ParseTop(query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.svc.Dashboard.Summary(r.Context(), session(r).UserID, period, top)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := dashboardResponse{Dashboard: d, PeriodExpenses: make([]expenseResponse, 0, len(d.PeriodExpenses))}
	for _, e := range d.PeriodExpenses {
		resp.PeriodExpenses = append(resp.PeriodExpenses, toExpenseResponse(e))
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	out, err := s.svc.Dashboard.Suggestions(r.Context(), session(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string][]string{"suggestions": out}).Write(w)
}
