package http

import (
	"encoding/json"
	"net/http"

	applog "fintrack/internal/log"
)

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var payload incomePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	income, err := s.ledger.CreateIncome(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogRecordCreated(r.Context(), "income", income.ID, income.Amount.Cents)

	s.invalidateMonth(income.Date)
	writeJSON(w, http.StatusCreated, toIncomeDTO(income))
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	incomes, err := s.ledger.ListIncomesByMonth(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]incomeDTO, 0, len(incomes))
	for _, in := range incomes {
		dtos = append(dtos, toIncomeDTO(in))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	income, err := s.ledger.GetIncome(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toIncomeDTO(income))
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	var payload incomePayload
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
	previous, prevErr := s.ledger.GetIncome(r.Context(), id)
	income, err := s.ledger.UpdateIncome(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if prevErr == nil {
		s.invalidateMonth(previous.Date)
	}
	s.invalidateMonth(income.Date)
	writeJSON(w, http.StatusOK, toIncomeDTO(income))
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	previous, prevErr := s.ledger.GetIncome(r.Context(), id)
	if err := s.ledger.DeleteIncome(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if prevErr == nil {
		s.invalidateMonth(previous.Date)
	}
	w.WriteHeader(http.StatusNoContent)
}
