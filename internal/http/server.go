package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/auth"
	"github.com/phisoli/parasekreterim/internal/log"
	"github.com/phisoli/parasekreterim/internal/middleware/trace"
	"github.com/phisoli/parasekreterim/internal/quotes"
	"github.com/phisoli/parasekreterim/internal/services"
	"github.com/phisoli/parasekreterim/internal/storage"
)

// UserStore is the account-level persistence the auth handlers need.
type UserStore interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (storage.User, error)
	GetUserByID(ctx context.Context, id int64) (storage.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	CompleteSetup(ctx context.Context, userID int64, initialBalance decimal.Decimal) (storage.User, error)
	CreateResetToken(ctx context.Context, userID int64) (string, error)
	ConsumeResetToken(ctx context.Context, token string, maxAge time.Duration) (int64, error)
}

// Deps bundles everything the server serves.
type Deps struct {
	Ledger  *services.LedgerService
	Reports *services.ReportService
	Goals   *services.GoalService
	Quotes  *quotes.Service
	Auth    *auth.Service
	Users   UserStore
	Logger  *log.Logger
}

type Server struct {
	http.Server

	ledger  *services.LedgerService
	reports *services.ReportService
	goals   *services.GoalService
	quotes  *quotes.Service
	auth    *auth.Service
	users   UserStore
	logger  *log.Logger

	limiter      *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// HTTP server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		ledger:  deps.Ledger,
		reports: deps.Reports,
		goals:   deps.Goals,
		quotes:  deps.Quotes,
		auth:    deps.Auth,
		users:   deps.Users,
		logger:  deps.Logger.WithComponent(log.ComponentHTTP),
		limiter: newRateLimiter(),
	}

	tracer := trace.NewMiddleware(deps.Logger)
	s.Server = http.Server{
		Addr:         addr,
		Handler:      tracer.Middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.public(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.public(s.handleLogin))
	mux.HandleFunc("POST /api/auth/forgot-password", s.public(s.handleForgotPassword))
	mux.HandleFunc("POST /api/auth/reset-password", s.public(s.handleResetPassword))

	mux.HandleFunc("GET /api/me", s.protected(s.handleMe))
	mux.HandleFunc("POST /api/me/setup", s.protected(s.handleSetup))

	mux.HandleFunc("GET /api/transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/categories", s.protected(s.handleListCategories))
	mux.HandleFunc("POST /api/categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("PUT /api/categories/{id}", s.protected(s.handleRenameCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/dashboard", s.protected(s.handleDashboard))
	mux.HandleFunc("GET /api/reports/summary", s.protected(s.handleSummary))
	mux.HandleFunc("GET /api/reports/breakdown", s.protected(s.handleBreakdown))
	mux.HandleFunc("GET /api/reports/range", s.protected(s.handleRangeReport))
	mux.HandleFunc("GET /api/reports/trend", s.protected(s.handleTrend))

	mux.HandleFunc("POST /api/calculators/compound-interest", s.protected(s.handleCompoundInterest))
	mux.HandleFunc("POST /api/calculators/loan", s.protected(s.handleLoanPayment))
	mux.HandleFunc("POST /api/calculators/mortgage", s.protected(s.handleMortgagePayment))
	mux.HandleFunc("POST /api/calculators/investment", s.protected(s.handleInvestmentGrowth))

	mux.HandleFunc("GET /api/limits", s.protected(s.handleListLimits))
	mux.HandleFunc("POST /api/limits", s.protected(s.handleCreateLimit))
	mux.HandleFunc("PUT /api/limits/{id}", s.protected(s.handleUpdateLimit))
	mux.HandleFunc("DELETE /api/limits/{id}", s.protected(s.handleDeleteLimit))

	mux.HandleFunc("GET /api/goals/saving", s.protected(s.handleListSavingGoals))
	mux.HandleFunc("POST /api/goals/saving", s.protected(s.handleCreateSavingGoal))
	mux.HandleFunc("DELETE /api/goals/saving/{id}", s.protected(s.handleDeleteSavingGoal))
	mux.HandleFunc("POST /api/goals/saving/{id}/deposit", s.protected(s.handleDeposit))

	mux.HandleFunc("GET /api/goals/purchase", s.protected(s.handleListPurchaseGoals))
	mux.HandleFunc("POST /api/goals/purchase", s.protected(s.handleCreatePurchaseGoal))
	mux.HandleFunc("DELETE /api/goals/purchase/{id}", s.protected(s.handleDeletePurchaseGoal))

	mux.HandleFunc("GET /api/quotes", s.protected(s.handleQuotes))

	return s
}

// Shutdown stops the server and its background loops exactly once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// public applies rate limiting and response headers to an open route.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(extractIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next(w, r)
	}
}

// protected additionally requires a valid bearer token and stores the
// user ID in the request context.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.public(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" || tokenString == header {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		uid, err := s.auth.ParseToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next(w, r.WithContext(withUserID(r.Context(), uid)))
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
