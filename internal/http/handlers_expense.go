package http

import (
	"encoding/json"
	"net/http"

	applog "fintrack/internal/log"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	expense, err := s.ledger.CreateExpense(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogRecordCreated(r.Context(), "expense", expense.ID, expense.Amount.Cents)

	s.invalidateMonth(expense.Date)
	writeJSON(w, http.StatusCreated, toExpenseDTO(expense))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	expenses, err := s.ledger.ListExpensesByMonth(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]expenseDTO, 0, len(expenses))
	for _, e := range expenses {
		dtos = append(dtos, toExpenseDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.ledger.GetExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseDTO(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id := r.PathValue("id")
	previous, prevErr := s.ledger.GetExpense(r.Context(), id)
	expense, err := s.ledger.UpdateExpense(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// An edit that moves the record stales two months.
	if prevErr == nil {
		s.invalidateMonth(previous.Date)
	}
	s.invalidateMonth(expense.Date)
	writeJSON(w, http.StatusOK, toExpenseDTO(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	previous, prevErr := s.ledger.GetExpense(r.Context(), id)
	if err := s.ledger.DeleteExpense(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if prevErr == nil {
		s.invalidateMonth(previous.Date)
	}
	w.WriteHeader(http.StatusNoContent)
}
