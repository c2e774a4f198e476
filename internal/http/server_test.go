package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/phisoli/parasekreterim/internal/auth"
	"github.com/phisoli/parasekreterim/internal/cache"
	"github.com/phisoli/parasekreterim/internal/log"
	"github.com/phisoli/parasekreterim/internal/quotes"
	"github.com/phisoli/parasekreterim/internal/services"
	"github.com/phisoli/parasekreterim/internal/storage"
)

type testEnv struct {
	srv  *Server
	repo *storage.SQLiteRepository
}

// newTestEnv wires the server against a real SQLite database in a
// temporary directory, so handlers are exercised end to end through the
// services and storage layers.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	dashCache := cache.NewLRUCache[services.Dashboard](16, time.Minute)
	quoteCache := cache.NewLRUCache[[]quotes.Quote](4, time.Minute)

	srv := NewServer(":0", Deps{
		Ledger:  services.NewLedgerService(repo, nil, logger),
		Reports: services.NewReportService(repo, dashCache, logger),
		Goals:   services.NewGoalService(repo, nil, logger),
		Quotes:  quotes.NewService(nil, quoteCache, logger),
		Auth:    auth.NewService("test-secret", time.Hour),
		Users:   repo,
		Logger:  logger,
	})
	t.Cleanup(func() { srv.limiter.stop() })

	return &testEnv{srv: srv, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = buf
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.srv.Server.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// register creates an account and returns its user ID and bearer token.
func (e *testEnv) register(t *testing.T, email, username string) (int64, string) {
	t.Helper()

	rr := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"username": username,
		"password": "correct-horse",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		User  userResponse `json:"user"`
		Token string       `json:"token"`
	}
	decodeBody(t, rr, &resp)
	return resp.User.ID, resp.Token
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := env.do(t, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ayse@example.com", "ayse")

	// Duplicate email must be rejected.
	rr := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "ayse@example.com",
		"username": "ayse2",
		"password": "correct-horse",
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ayse@example.com",
		"password": "correct-horse",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var tok tokenResponse
	decodeBody(t, rr, &tok)
	if tok.Token == "" {
		t.Error("login returned empty token")
	}

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ayse@example.com",
		"password": "wrong-password",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rr.Code)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "ayse@example.com",
		"username": "ayse",
		"password": "short",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("short password status = %d, want 400", rr.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/transactions", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/transactions", "not-a-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("garbage token status = %d, want 401", rr.Code)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	rr := env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Salary",
		"category_type": "income",
		"amount":        "2500",
		"date":          "2025-03-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create income status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Groceries",
		"category_type": "expense",
		"amount":        "300.50",
		"date":          "2025-03-02",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var created transactionResponse
	decodeBody(t, rr, &created)

	rr = env.do(t, http.MethodGet, "/api/me", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me status = %d", rr.Code)
	}
	var me userResponse
	decodeBody(t, rr, &me)
	if me.Balance != "2199.50" {
		t.Errorf("balance = %s, want 2199.50", me.Balance)
	}

	rr = env.do(t, http.MethodGet, "/api/transactions", token, nil)
	var list struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decodeBody(t, rr, &list)
	if len(list.Transactions) != 2 {
		t.Fatalf("listed %d transactions, want 2", len(list.Transactions))
	}

	rr = env.do(t, http.MethodPut, fmt.Sprintf("/api/transactions/%d", created.ID), token, map[string]any{
		"category_name": "Groceries",
		"category_type": "expense",
		"amount":        "100",
		"date":          "2025-03-02",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/me", token, nil)
	decodeBody(t, rr, &me)
	if me.Balance != "2400.00" {
		t.Errorf("balance after edit = %s, want 2400.00", me.Balance)
	}

	rr = env.do(t, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), token, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), token, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("get deleted status = %d, want 404", rr.Code)
	}
}

func TestTransactionRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	cases := []struct {
		name string
		body map[string]any
	}{
		{"bad amount", map[string]any{
			"category_name": "Groceries", "category_type": "expense",
			"amount": "abc",
		}},
		{"negative amount", map[string]any{
			"category_name": "Groceries", "category_type": "expense",
			"amount": "-5",
		}},
		{"bad category type", map[string]any{
			"category_name": "Groceries", "category_type": "savings",
			"amount": "5",
		}},
		{"bad date", map[string]any{
			"category_name": "Groceries", "category_type": "expense",
			"amount": "5", "date": "02-03-2025",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/transactions", token, tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}
}

func TestUsersCannotSeeEachOther(t *testing.T) {
	env := newTestEnv(t)
	_, tokenA := env.register(t, "ayse@example.com", "ayse")
	_, tokenB := env.register(t, "berk@example.com", "berk")

	rr := env.do(t, http.MethodPost, "/api/transactions", tokenA, map[string]any{
		"category_name": "Salary",
		"category_type": "income",
		"amount":        "2500",
		"date":          "2025-03-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rr.Code)
	}
	var created transactionResponse
	decodeBody(t, rr, &created)

	rr = env.do(t, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), tokenB, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("cross-user get status = %d, want 404", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/transactions", tokenB, nil)
	var list struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decodeBody(t, rr, &list)
	if len(list.Transactions) != 0 {
		t.Errorf("user B sees %d transactions, want 0", len(list.Transactions))
	}
}

func TestDashboardEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Salary",
		"category_type": "income",
		"amount":        "2000",
		"date":          "2025-03-01",
	})
	env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Rent",
		"category_type": "expense",
		"amount":        "800",
		"date":          "2025-03-05",
	})

	rr := env.do(t, http.MethodGet, "/api/dashboard?date=2025-03-15", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var d struct {
		Balance string `json:"balance"`
		Month   struct {
			Income  string `json:"income"`
			Expense string `json:"expense"`
		} `json:"month"`
	}
	decodeBody(t, rr, &d)
	if d.Balance != "1200.00" {
		t.Errorf("balance = %s, want 1200.00", d.Balance)
	}
	if d.Month.Income != "2000.00" || d.Month.Expense != "800.00" {
		t.Errorf("month = %+v", d.Month)
	}
}

func TestLimitEndpoints(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Groceries",
		"category_type": "expense",
		"amount":        "600",
	})

	rr := env.do(t, http.MethodGet, "/api/categories?type=expense", token, nil)
	var cats struct {
		Categories []categoryResponse `json:"categories"`
	}
	decodeBody(t, rr, &cats)
	if len(cats.Categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(cats.Categories))
	}

	rr = env.do(t, http.MethodPost, "/api/limits", token, map[string]any{
		"category_id": cats.Categories[0].ID,
		"threshold":   "500",
		"period":      "monthly",
		"start_date":  "2025-01-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create limit status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/limits", token, nil)
	var limits struct {
		Limits []limitResponse `json:"limits"`
	}
	decodeBody(t, rr, &limits)
	if len(limits.Limits) != 1 {
		t.Fatalf("got %d limits, want 1", len(limits.Limits))
	}
	if limits.Limits[0].Spent != "600.00" {
		t.Errorf("spent = %s, want 600.00", limits.Limits[0].Spent)
	}
	if !limits.Limits[0].Exceeded {
		t.Error("limit not flagged exceeded")
	}

	rr = env.do(t, http.MethodPost, "/api/limits", token, map[string]any{
		"category_id": cats.Categories[0].ID,
		"threshold":   "500",
		"period":      "fortnightly",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", rr.Code)
	}
}

func TestSavingGoalDeposit(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Salary",
		"category_type": "income",
		"amount":        "1000",
	})

	rr := env.do(t, http.MethodPost, "/api/goals/saving", token, map[string]any{
		"name":        "Vacation",
		"target":      "2000",
		"target_date": "2030-06-01",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var goal savingGoalResponse
	decodeBody(t, rr, &goal)

	rr = env.do(t, http.MethodPost, fmt.Sprintf("/api/goals/saving/%d/deposit", goal.ID), token, map[string]any{
		"amount": "250",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("deposit status = %d, body = %s", rr.Code, rr.Body.String())
	}
	decodeBody(t, rr, &goal)
	if goal.Current != "250.00" {
		t.Errorf("goal current = %s, want 250.00", goal.Current)
	}
	if goal.Progress != 12.5 {
		t.Errorf("progress = %v, want 12.5", goal.Progress)
	}

	rr = env.do(t, http.MethodGet, "/api/me", token, nil)
	var me userResponse
	decodeBody(t, rr, &me)
	if me.Balance != "750.00" {
		t.Errorf("balance = %s, want 750.00", me.Balance)
	}
}

func TestPurchaseGoalAffordability(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Salary",
		"category_type": "income",
		"amount":        "10000",
	})

	rr := env.do(t, http.MethodPost, "/api/goals/purchase", token, map[string]any{
		"name":            "Laptop",
		"price":           "1500",
		"trigger_percent": "20",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create goal status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/goals/purchase", token, nil)
	var goals struct {
		Goals []purchaseGoalResponse `json:"goals"`
	}
	decodeBody(t, rr, &goals)
	if len(goals.Goals) != 1 {
		t.Fatalf("got %d goals, want 1", len(goals.Goals))
	}
	if !goals.Goals[0].Affordable {
		t.Error("goal not flagged affordable")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	uid, _ := env.register(t, "ayse@example.com", "ayse")

	rr := env.do(t, http.MethodPost, "/api/auth/forgot-password", "", map[string]string{
		"email": "nobody@example.com",
	})
	if rr.Code != http.StatusOK {
		t.Errorf("forgot-password for unknown email status = %d, want 200", rr.Code)
	}

	// The token is delivered out of band; mint one directly.
	token, err := env.repo.CreateResetToken(context.Background(), uid)
	if err != nil {
		t.Fatalf("create reset token: %v", err)
	}

	rr = env.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"token":    token,
		"password": "new-password",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body = %s", rr.Code, rr.Body.String())
	}

	// The token is single use.
	rr = env.do(t, http.MethodPost, "/api/auth/reset-password", "", map[string]string{
		"token":    token,
		"password": "another-password",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("reused token status = %d, want 400", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ayse@example.com",
		"password": "new-password",
	})
	if rr.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", rr.Code)
	}
	rr = env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "ayse@example.com",
		"password": "correct-horse",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("login with old password status = %d, want 401", rr.Code)
	}
}

func TestQuotesEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	// With no providers configured the snapshot comes from the static
	// defaults, which still cover the whole catalog.
	rr := env.do(t, http.MethodGet, "/api/quotes?filter=crypto", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("quotes status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var page quotes.Page
	decodeBody(t, rr, &page)
	if page.Total != 15 {
		t.Errorf("crypto total = %d, want 15", page.Total)
	}
	if len(page.Quotes) != 10 {
		t.Errorf("page size = %d, want 10", len(page.Quotes))
	}

	rr = env.do(t, http.MethodGet, "/api/quotes?filter=bonds", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown filter status = %d, want 400", rr.Code)
	}
}

func TestCalculatorEndpoints(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	rr := env.do(t, http.MethodPost, "/api/calculators/loan", token, map[string]any{
		"principal":   "100000",
		"annual_rate": "0.12",
		"months":      120,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("loan status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var loan struct {
		MonthlyPayment string `json:"monthly_payment"`
	}
	decodeBody(t, rr, &loan)
	if loan.MonthlyPayment == "" {
		t.Error("loan response missing monthly_payment")
	}

	rr = env.do(t, http.MethodPost, "/api/calculators/loan", token, map[string]any{
		"principal":   "-5",
		"annual_rate": "0.12",
		"months":      120,
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative principal status = %d, want 400", rr.Code)
	}
}

func TestCalculatorHorizonLimits(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{"investment years", "/api/calculators/investment", map[string]any{
			"initial": "1000", "monthly_contribution": "100", "annual_rate": "0.05", "years": 20000,
		}},
		{"compound years", "/api/calculators/compound-interest", map[string]any{
			"principal": "1000", "annual_rate": "0.05", "years": 101, "compounds_per_year": 12,
		}},
		{"compound frequency", "/api/calculators/compound-interest", map[string]any{
			"principal": "1000", "annual_rate": "0.05", "years": 10, "compounds_per_year": 100000,
		}},
		{"loan months", "/api/calculators/loan", map[string]any{
			"principal": "100000", "annual_rate": "0.12", "months": 601,
		}},
		{"mortgage years", "/api/calculators/mortgage", map[string]any{
			"principal": "100000", "annual_rate": "0.08", "years": 101, "frequency": "monthly",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, tt.path, token, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rr.Code)
			}
		})
	}

	// The caps themselves stay usable.
	rr := env.do(t, http.MethodPost, "/api/calculators/investment", token, map[string]any{
		"initial": "1000", "monthly_contribution": "100", "annual_rate": "0.05", "years": 100,
	})
	if rr.Code != http.StatusOK {
		t.Errorf("boundary years status = %d, body = %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/reports/trend?months=500", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("trend months status = %d, want 400", rr.Code)
	}
	rr = env.do(t, http.MethodGet, "/api/reports/trend?months=120", token, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("trend boundary status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestUpdateLimitEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	env.do(t, http.MethodPost, "/api/transactions", token, map[string]any{
		"category_name": "Groceries",
		"category_type": "expense",
		"amount":        "600",
	})

	rr := env.do(t, http.MethodGet, "/api/categories?type=expense", token, nil)
	var cats struct {
		Categories []categoryResponse `json:"categories"`
	}
	decodeBody(t, rr, &cats)

	rr = env.do(t, http.MethodPost, "/api/limits", token, map[string]any{
		"category_id": cats.Categories[0].ID,
		"threshold":   "500",
		"period":      "monthly",
		"start_date":  "2025-01-01",
	})
	var created limitResponse
	decodeBody(t, rr, &created)

	rr = env.do(t, http.MethodPut, fmt.Sprintf("/api/limits/%d", created.ID), token, map[string]any{
		"category_id": cats.Categories[0].ID,
		"threshold":   "900",
		"period":      "monthly",
		"start_date":  "2025-01-01",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("update limit status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var updated limitResponse
	decodeBody(t, rr, &updated)
	if updated.Threshold != "900.00" {
		t.Errorf("threshold = %s, want 900.00", updated.Threshold)
	}
	if updated.Spent != "600.00" {
		t.Errorf("spent = %s, want 600.00", updated.Spent)
	}
	if updated.Exceeded {
		t.Error("limit still flagged exceeded after raising threshold")
	}

	rr = env.do(t, http.MethodPut, fmt.Sprintf("/api/limits/%d", created.ID), token, map[string]any{
		"category_id": cats.Categories[0].ID,
		"threshold":   "900",
		"period":      "fortnightly",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", rr.Code)
	}

	_, other := env.register(t, "mehmet@example.com", "mehmet")
	rr = env.do(t, http.MethodPut, fmt.Sprintf("/api/limits/%d", created.ID), other, map[string]any{
		"category_id": cats.Categories[0].ID,
		"threshold":   "1",
		"period":      "monthly",
	})
	if rr.Code != http.StatusNotFound {
		t.Errorf("foreign limit status = %d, want 404", rr.Code)
	}
}

func TestCategoryManagement(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	rr := env.do(t, http.MethodPost, "/api/categories", token, map[string]any{
		"name": "Books",
		"type": "expense",
		"icon": "book",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var books categoryResponse
	decodeBody(t, rr, &books)
	if books.Name != "Books" || books.Type != "expense" {
		t.Errorf("created category = %+v", books)
	}

	rr = env.do(t, http.MethodPost, "/api/categories", token, map[string]any{
		"name": "Games",
		"type": "arcade",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d, want 400", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/categories", token, map[string]any{
		"name": "Music",
		"type": "expense",
	})
	var music categoryResponse
	decodeBody(t, rr, &music)

	rr = env.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%d", music.ID), token, map[string]any{
		"name": "Concerts",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var renamed categoryResponse
	decodeBody(t, rr, &renamed)
	if renamed.Name != "Concerts" {
		t.Errorf("renamed to %s, want Concerts", renamed.Name)
	}

	rr = env.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%d", renamed.ID), token, map[string]any{
		"name": "books",
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("rename onto taken name status = %d, want 409", rr.Code)
	}
}

func TestAccountSetup(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "ayse@example.com", "ayse")

	rr := env.do(t, http.MethodPost, "/api/me/setup", token, map[string]any{
		"initial_balance": "5000",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("setup status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var user struct {
		Balance   string `json:"balance"`
		SetupDone bool   `json:"setup_done"`
	}
	decodeBody(t, rr, &user)
	if user.Balance != "5000.00" {
		t.Errorf("balance = %s, want 5000.00", user.Balance)
	}
	if !user.SetupDone {
		t.Error("setup_done not set")
	}

	rr = env.do(t, http.MethodGet, "/api/categories", token, nil)
	var cats struct {
		Categories []categoryResponse `json:"categories"`
	}
	decodeBody(t, rr, &cats)
	if len(cats.Categories) == 0 {
		t.Error("setup did not seed categories")
	}

	rr = env.do(t, http.MethodPost, "/api/me/setup", token, map[string]any{
		"initial_balance": "9000",
	})
	if rr.Code != http.StatusConflict {
		t.Errorf("second setup status = %d, want 409", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/me/setup", token, map[string]any{
		"initial_balance": "-10",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("negative balance status = %d, want 400", rr.Code)
	}
}
