package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/core"
	"github.com/phisoli/parasekreterim/internal/services"
)

type categoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Icon string `json:"icon"`
}

type transactionResponse struct {
	ID          int64            `json:"id"`
	Category    categoryResponse `json:"category"`
	Amount      string           `json:"amount"`
	Description string           `json:"description"`
	Date        string           `json:"date"`
	Recurring   bool             `json:"recurring"`
}

type transactionRequest struct {
	CategoryName string `json:"category_name"`
	CategoryType string `json:"category_type"`
	CategoryIcon string `json:"category_icon"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	Recurring    bool   `json:"recurring"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Type: string(c.Type), Icon: c.Icon}
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Category:    toCategoryResponse(t.Category),
		Amount:      t.Amount.StringFixed(2),
		Description: t.Description,
		Date:        t.Date.Format("2006-01-02"),
		Recurring:   t.Recurring,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = toTransactionResponse(t)
	}
	return out
}

func (s *Server) parseTransactionInput(w http.ResponseWriter, r *http.Request) (services.TransactionInput, bool) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return services.TransactionInput{}, false
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return services.TransactionInput{}, false
	}

	date := time.Now().UTC()
	if req.Date != "" {
		if date, err = time.Parse("2006-01-02", req.Date); err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
			return services.TransactionInput{}, false
		}
	}

	return services.TransactionInput{
		UserID:       userID(r),
		CategoryName: strings.TrimSpace(req.CategoryName),
		CategoryType: core.CategoryType(req.CategoryType),
		CategoryIcon: strings.TrimSpace(req.CategoryIcon),
		Amount:       amount,
		Description:  strings.TrimSpace(req.Description),
		Date:         date,
		Recurring:    req.Recurring,
	}, true
}

// afterLedgerWrite refreshes everything derived from the balance.
func (s *Server) afterLedgerWrite(r *http.Request) {
	uid := userID(r)
	s.reports.Invalidate(uid)
	s.goals.EvaluatePurchaseGoals(r.Context(), uid)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := s.parseTransactionInput(w, r)
	if !ok {
		return
	}

	t, err := s.ledger.Record(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.afterLedgerWrite(r)
	writeJSON(w, http.StatusCreated, toTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, ok := s.parseTransactionInput(w, r)
	if !ok {
		return
	}

	t, err := s.ledger.Edit(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.afterLedgerWrite(r)
	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.Remove(r.Context(), userID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}

	s.afterLedgerWrite(r)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.ledger.Get(r.Context(), userID(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(t))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error

	if r.URL.Query().Get("from") != "" {
		if from, err = parseDateParam(r, "from"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if r.URL.Query().Get("to") != "" {
		if to, err = parseDateParam(r, "to"); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	txs, err := s.ledger.List(r.Context(), userID(r), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Transactions []transactionResponse `json:"transactions"`
	}{toTransactionResponses(txs)})
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	ct := core.CategoryType(r.URL.Query().Get("type"))
	if ct != "" {
		if err := ct.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	cats, err := s.ledger.Categories(r.Context(), ct)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]categoryResponse, len(cats))
	for i, c := range cats {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, struct {
		Categories []categoryResponse `json:"categories"`
	}{out})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
		Icon string `json:"icon"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat, err := s.ledger.CreateCategory(r.Context(), strings.TrimSpace(req.Name),
		core.CategoryType(req.Type), req.Icon)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(cat))
}

func (s *Server) handleRenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cat, err := s.ledger.RenameCategory(r.Context(), id, strings.TrimSpace(req.Name))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(cat))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.RemoveCategory(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
