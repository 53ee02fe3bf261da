package http

import (
	"encoding/json"
	"net/http"

	"fintrack/internal/core"
)

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var payload cardPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	card, err := s.ledger.CreateCreditCard(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardDTO(card))
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.ledger.ListCreditCards(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]cardDTO, 0, len(cards))
	for _, c := range cards {
		dtos = append(dtos, toCardDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.ledger.GetCreditCard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCardDTO(card))
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var payload cardPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	input, err := payload.toInput()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	card, err := s.ledger.UpdateCreditCard(r.Context(), r.PathValue("id"), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardDTO(card))
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteCreditCard(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCardUtilization(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	utilization, err := s.aggregator.CreditUtilization(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, utilizationDTO{CardID: id, Utilization: utilization})
}

func (s *Server) handleRecomputeCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	balance, err := s.ledger.RecomputeBalance(r.Context(), core.OwnerCard, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceDTO{ID: id, BalanceCents: balance})
}
