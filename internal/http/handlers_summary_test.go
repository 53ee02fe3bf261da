package http

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMonthlySummaryEndpointReflectsWrites(t *testing.T) {
	srv := newTestServer(t)

	post := func(amount string) {
		t.Helper()
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
			"description": "expense", "amount": amount, "date": "2026-03-05",
			"category": "Groceries", "method": "cash",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create expense status = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	post("50.00")

	rec := doJSON(t, srv, http.MethodGet, "/api/summary?year=2026&month=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary struct {
		ExpenseTotalCents int64 `json:"expense_total_cents"`
		NetCents          int64 `json:"net_cents"`
	}
	decodeBody(t, rec, &summary)
	if summary.ExpenseTotalCents != 5000 {
		t.Errorf("expense total = %d, want 5000", summary.ExpenseTotalCents)
	}

	// A write invalidates the cached summary, so the next read sees it.
	post("100.00")

	rec = doJSON(t, srv, http.MethodGet, "/api/summary?year=2026&month=3", nil)
	decodeBody(t, rec, &summary)
	if summary.ExpenseTotalCents != 15000 {
		t.Errorf("expense total after second write = %d, want 15000", summary.ExpenseTotalCents)
	}
	if summary.NetCents != -15000 {
		t.Errorf("net = %d, want -15000", summary.NetCents)
	}
}

func TestSummaryCacheInvalidatedPerMonth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
		"description": "expense", "amount": "30.00", "date": "2026-03-05",
		"category": "Groceries", "method": "cash",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body %s", rec.Code, rec.Body.String())
	}
	var expense struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &expense)

	getTotal := func(month int) int64 {
		t.Helper()
		rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/summary?year=2026&month=%d", month), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("summary status = %d", rec.Code)
		}
		var summary struct {
			ExpenseTotalCents int64 `json:"expense_total_cents"`
		}
		decodeBody(t, rec, &summary)
		return summary.ExpenseTotalCents
	}

	// Prime the cache for both months.
	if got := getTotal(3); got != 3000 {
		t.Fatalf("March total = %d, want 3000", got)
	}
	if got := getTotal(4); got != 0 {
		t.Fatalf("April total = %d, want 0", got)
	}

	// Moving the expense to April stales both cached months.
	rec = doJSON(t, srv, http.MethodPut, "/api/expenses/"+expense.ID, map[string]any{
		"description": "expense", "amount": "30.00", "date": "2026-04-10",
		"category": "Groceries", "method": "cash",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update expense status = %d, body %s", rec.Code, rec.Body.String())
	}

	if got := getTotal(3); got != 0 {
		t.Errorf("March total after move = %d, want 0", got)
	}
	if got := getTotal(4); got != 3000 {
		t.Errorf("April total after move = %d, want 3000", got)
	}
}

func TestCalendarEndpoint(t *testing.T) {
	srv := newTestServer(t)

	for _, amount := range []string{"50.00", "100.00"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/expenses", map[string]any{
			"description": "expense", "amount": amount, "date": "2026-03-05",
			"category": "Groceries", "method": "cash",
		})
		if rec.Code != http.StatusCreated {
			t.Fatalf("create expense status = %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/summary/calendar?year=2026&month=3", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("calendar status = %d", rec.Code)
	}
	var calendar struct {
		Days map[string]struct {
			AmountCents int64 `json:"amount_cents"`
			Count       int   `json:"count"`
		} `json:"days"`
	}
	decodeBody(t, rec, &calendar)
	day, ok := calendar.Days["5"]
	if !ok {
		t.Fatal("expected entry for day 5")
	}
	if day.AmountCents != 15000 || day.Count != 2 {
		t.Errorf("day 5 = %+v, want amount 15000 count 2", day)
	}
}

func TestNetWorthAndUtilizationEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/accounts", map[string]any{
		"bank_name": "Test Bank", "type": "checking", "currency": "EUR", "balance": "1000.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create account status = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/api/cards", map[string]any{
		"bank_name": "Test Bank", "label": "Everyday", "last_four": "4242",
		"limit": "30000.00", "balance": "8000.00",
		"cutoff_day": 15, "payment_day": 28,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create card status = %d, body %s", rec.Code, rec.Body.String())
	}
	var card struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &card)

	rec = doJSON(t, srv, http.MethodGet, "/api/networth", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("networth status = %d", rec.Code)
	}
	var nw struct {
		AccountsCents int64 `json:"accounts_cents"`
		CardsCents    int64 `json:"cards_cents"`
		TotalCents    int64 `json:"total_cents"`
	}
	decodeBody(t, rec, &nw)
	if nw.AccountsCents != 100000 || nw.CardsCents != 800000 || nw.TotalCents != -700000 {
		t.Errorf("net worth = %+v", nw)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/cards/"+card.ID+"/utilization", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("utilization status = %d", rec.Code)
	}
	var util struct {
		Utilization string `json:"utilization"`
	}
	decodeBody(t, rec, &util)
	if util.Utilization != "26.7%" {
		t.Errorf("utilization = %q, want 26.7%%", util.Utilization)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/categories?domain=expense", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories status = %d", rec.Code)
	}
	var categories []struct {
		Name   string `json:"name"`
		Domain string `json:"domain"`
	}
	decodeBody(t, rec, &categories)
	if len(categories) != 10 {
		t.Errorf("expense categories = %d, want 10", len(categories))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/categories?domain=bogus", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bogus domain status = %d, want 422", rec.Code)
	}
}

func TestTransactionsRequireOwnerID(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing owner_id status = %d, want 400", rec.Code)
	}
}
