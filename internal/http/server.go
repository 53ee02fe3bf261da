package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// Server exposes the ledger over a JSON API. Aggregate reads go through
// LRU caches keyed by month; expense and income writes invalidate the
// months they touch so reads issued after a write observe its effect.
type Server struct {
	http.Server
	ledger      *services.Ledger
	aggregator  *services.Aggregator
	rateLimiter *rateLimiter

	summaryCache  *cache.LRUCache[core.MonthlySummary]
	calendarCache *cache.LRUCache[map[int]core.DayTotal]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, ledger *services.Ledger, aggregator *services.Aggregator, summaryTTL time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:        ledger,
		aggregator:    aggregator,
		rateLimiter:   newRateLimiter(),
		summaryCache:  cache.NewLRUCache[core.MonthlySummary](100, summaryTTL),
		calendarCache: cache.NewLRUCache[map[int]core.DayTotal](100, summaryTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.calendarCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /api/accounts", s.withSecurityHeaders(s.handleCreateAccount))
	mux.HandleFunc("GET /api/accounts", s.withSecurityHeaders(s.handleListAccounts))
	mux.HandleFunc("GET /api/accounts/{id}", s.withSecurityHeaders(s.handleGetAccount))
	mux.HandleFunc("PUT /api/accounts/{id}", s.withSecurityHeaders(s.handleUpdateAccount))
	mux.HandleFunc("DELETE /api/accounts/{id}", s.withSecurityHeaders(s.handleDeleteAccount))
	mux.HandleFunc("POST /api/accounts/{id}/recompute", s.withSecurityHeaders(s.handleRecomputeAccount))

	mux.HandleFunc("POST /api/cards", s.withSecurityHeaders(s.handleCreateCard))
	mux.HandleFunc("GET /api/cards", s.withSecurityHeaders(s.handleListCards))
	mux.HandleFunc("GET /api/cards/{id}", s.withSecurityHeaders(s.handleGetCard))
	mux.HandleFunc("PUT /api/cards/{id}", s.withSecurityHeaders(s.handleUpdateCard))
	mux.HandleFunc("DELETE /api/cards/{id}", s.withSecurityHeaders(s.handleDeleteCard))
	mux.HandleFunc("GET /api/cards/{id}/utilization", s.withSecurityHeaders(s.handleCardUtilization))
	mux.HandleFunc("POST /api/cards/{id}/recompute", s.withSecurityHeaders(s.handleRecomputeCard))

	mux.HandleFunc("POST /api/expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.withSecurityHeaders(s.handleListExpenses))
	mux.HandleFunc("GET /api/expenses/{id}", s.withSecurityHeaders(s.handleGetExpense))
	mux.HandleFunc("PUT /api/expenses/{id}", s.withSecurityHeaders(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withSecurityHeaders(s.handleDeleteExpense))

	mux.HandleFunc("POST /api/incomes", s.withSecurityHeaders(s.handleCreateIncome))
	mux.HandleFunc("GET /api/incomes", s.withSecurityHeaders(s.handleListIncomes))
	mux.HandleFunc("GET /api/incomes/{id}", s.withSecurityHeaders(s.handleGetIncome))
	mux.HandleFunc("PUT /api/incomes/{id}", s.withSecurityHeaders(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.withSecurityHeaders(s.handleDeleteIncome))

	mux.HandleFunc("POST /api/recurring", s.withSecurityHeaders(s.handleCreateRecurring))
	mux.HandleFunc("GET /api/recurring", s.withSecurityHeaders(s.handleListRecurring))
	mux.HandleFunc("GET /api/recurring/{id}", s.withSecurityHeaders(s.handleGetRecurring))
	mux.HandleFunc("PUT /api/recurring/{id}", s.withSecurityHeaders(s.handleUpdateRecurring))
	mux.HandleFunc("DELETE /api/recurring/{id}", s.withSecurityHeaders(s.handleDeleteRecurring))

	mux.HandleFunc("GET /api/transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("GET /api/categories", s.withSecurityHeaders(s.handleListCategories))
	mux.HandleFunc("GET /api/summary", s.withSecurityHeaders(s.handleMonthlySummary))
	mux.HandleFunc("GET /api/summary/calendar", s.withSecurityHeaders(s.handleCalendarTotals))
	mux.HandleFunc("GET /api/networth", s.withSecurityHeaders(s.handleNetWorth))

	return s
}

// withSecurityHeaders adds security headers, rate limiting, and request logging to responses
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		logger := applog.NewStructuredLogger(applog.FromContext(ctx).With(applog.FieldRequestID, requestID))
		logger.LogHTTPStart(ctx, r, clientIP)

		// Rate limit mutations only; aggregate reads are cached anyway
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.LogError(ctx, "Rate limit exceeded", nil, applog.ComponentRateLimit, r.Method,
				applog.NewFields().WithClientIP(clientIP))
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		logger.LogHTTPEnd(ctx, r, rw.statusCode, duration.Milliseconds(), clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// invalidateMonth drops the cached aggregates for one calendar month.
// Record writes call this for every month they touch so summary and
// calendar reads never serve stale totals.
func (s *Server) invalidateMonth(d core.Date) {
	suffix := fmt.Sprintf("%04d-%02d", d.Year(), d.Month())
	s.summaryCache.DeletePrefix("summary:" + suffix)
	s.calendarCache.DeletePrefix("calendar:" + suffix)
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
