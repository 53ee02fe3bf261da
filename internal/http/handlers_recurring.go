package http

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	var payload recurringPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	re, err := s.ledger.CreateRecurringExpense(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringDTO(re))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	templates, err := s.ledger.ListRecurringExpenses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]recurringDTO, 0, len(templates))
	for _, re := range templates {
		dtos = append(dtos, toRecurringDTO(re))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	re, err := s.ledger.GetRecurringExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(re))
}

func (s *Server) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	var payload recurringPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	re, err := s.ledger.UpdateRecurringExpense(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringDTO(re))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteRecurringExpense(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
