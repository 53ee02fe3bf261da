package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/core"
)

func (s *Server) summaryCacheKey(year, month int) string {
	return fmt.Sprintf("summary:%04d-%02d", year, month)
}

func (s *Server) calendarCacheKey(year, month int) string {
	return fmt.Sprintf("calendar:%04d-%02d", year, month)
}

func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	key := s.summaryCacheKey(year, month)

	if summary, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "year", year, "month", month)
		writeJSON(w, http.StatusOK, toSummaryDTO(summary))
		return
	}

	summary, err := s.aggregator.MonthlySummary(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

func (s *Server) handleCalendarTotals(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)
	key := s.calendarCacheKey(year, month)

	if totals, found := s.calendarCache.Get(key); found {
		slog.DebugContext(r.Context(), "Calendar cache hit", "year", year, "month", month)
		writeJSON(w, http.StatusOK, toCalendarDTO(year, month, totals))
		return
	}

	totals, err := s.aggregator.CalendarTotals(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.calendarCache.Set(key, totals)
	writeJSON(w, http.StatusOK, toCalendarDTO(year, month, totals))
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	nw, err := s.aggregator.NetWorth(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, netWorthDTO{
		AccountsCents: nw.AccountsCents,
		CardsCents:    nw.CardsCents,
		TotalCents:    nw.TotalCents,
	})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ownerID := strings.TrimSpace(r.URL.Query().Get("owner_id"))
	if ownerID == "" {
		writeError(w, r, http.StatusBadRequest, "owner_id query parameter is required")
		return
	}

	transactions, err := s.ledger.ListTransactions(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]transactionDTO, 0, len(transactions))
	for _, t := range transactions {
		dtos = append(dtos, toTransactionDTO(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	domain := core.CategoryDomain(strings.TrimSpace(r.URL.Query().Get("domain")))
	if domain == "" {
		domain = core.DomainExpense
	}

	categories, err := s.ledger.ListCategories(r.Context(), domain)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	dtos := make([]categoryDTO, 0, len(categories))
	for _, c := range categories {
		dtos = append(dtos, toCategoryDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}
