package http

import (
	"net/http"

	"github.com/phisoli/parasekreterim/internal/core"
	"github.com/phisoli/parasekreterim/internal/services"
)

// Trend builds one report per month, so the window is capped.
const maxTrendMonths = 120

type summaryResponse struct {
	Period      string  `json:"period"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Income      string  `json:"income"`
	Expense     string  `json:"expense"`
	NetSavings  string  `json:"net_savings"`
	SavingsRate float64 `json:"savings_rate"`
}

type breakdownItemResponse struct {
	Category   categoryResponse `json:"category"`
	Amount     string           `json:"amount"`
	Percentage float64          `json:"percentage"`
}

type breakdownResponse struct {
	Type  string                  `json:"type"`
	Start string                  `json:"start"`
	End   string                  `json:"end"`
	Total string                  `json:"total"`
	Items []breakdownItemResponse `json:"items"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Period:      string(s.Period),
		Start:       s.Start.Format("2006-01-02"),
		End:         s.End.Format("2006-01-02"),
		Income:      s.Income.StringFixed(2),
		Expense:     s.Expense.StringFixed(2),
		NetSavings:  s.NetSavings.StringFixed(2),
		SavingsRate: s.SavingsRate,
	}
}

func toBreakdownResponse(b core.CategoryBreakdown) breakdownResponse {
	items := make([]breakdownItemResponse, len(b.Items))
	for i, item := range b.Items {
		items[i] = breakdownItemResponse{
			Category:   toCategoryResponse(item.Category),
			Amount:     item.Amount.StringFixed(2),
			Percentage: item.Percentage,
		}
	}
	return breakdownResponse{
		Type:  string(b.Type),
		Start: b.Start.Format("2006-01-02"),
		End:   b.End.Format("2006-01-02"),
		Total: b.Total.StringFixed(2),
		Items: items,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := s.reports.Dashboard(r.Context(), userID(r), now)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Balance   string                `json:"balance"`
		Month     summaryResponse       `json:"month"`
		Breakdown breakdownResponse     `json:"breakdown"`
		Recent    []transactionResponse `json:"recent"`
	}{
		Balance:   d.Balance.StringFixed(2),
		Month:     toSummaryResponse(d.Month),
		Breakdown: toBreakdownResponse(d.Breakdown),
		Recent:    toTransactionResponses(d.Recent),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	ref, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period := core.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = core.Monthly
	}

	summary, err := s.reports.Summary(r.Context(), userID(r), period, ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	ref, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	period := core.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = core.Monthly
	}

	ct := core.CategoryType(r.URL.Query().Get("type"))
	if ct == "" {
		ct = core.Expense
	}

	b, err := s.reports.Breakdown(r.Context(), userID(r), ct, period, ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBreakdownResponse(b))
}

func (s *Server) handleRangeReport(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.reports.Range(r.Context(), userID(r), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRangeResponse(report))
}

type dailyPointResponse struct {
	Date    string `json:"date"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

func toRangeResponse(r services.RangeReport) any {
	daily := make([]dailyPointResponse, len(r.Daily))
	for i, p := range r.Daily {
		daily[i] = dailyPointResponse{
			Date:    p.Date.Format("2006-01-02"),
			Income:  p.Income.StringFixed(2),
			Expense: p.Expense.StringFixed(2),
		}
	}

	byCategory := make([]breakdownItemResponse, len(r.ByCategory))
	for i, item := range r.ByCategory {
		byCategory[i] = breakdownItemResponse{
			Category:   toCategoryResponse(item.Category),
			Amount:     item.Amount.StringFixed(2),
			Percentage: item.Percentage,
		}
	}

	return struct {
		Start      string                  `json:"start"`
		End        string                  `json:"end"`
		Income     string                  `json:"income"`
		Expense    string                  `json:"expense"`
		NetSavings string                  `json:"net_savings"`
		ByCategory []breakdownItemResponse `json:"by_category"`
		Daily      []dailyPointResponse    `json:"daily"`
	}{
		Start:      r.Start.Format("2006-01-02"),
		End:        r.End.Format("2006-01-02"),
		Income:     r.Income.StringFixed(2),
		Expense:    r.Expense.StringFixed(2),
		NetSavings: r.NetSavings.StringFixed(2),
		ByCategory: byCategory,
		Daily:      daily,
	}
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	ref, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	months := parseIntParam(r, "months", 6)
	if months > maxTrendMonths {
		writeError(w, http.StatusBadRequest, "months must be at most 120")
		return
	}
	series, err := s.reports.Trend(r.Context(), userID(r), months, ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	in := make([]string, len(series.Points))
	ex := make([]string, len(series.Points))
	nt := make([]string, len(series.Points))
	for i, p := range series.Points {
		in[i] = p.Income.StringFixed(2)
		ex[i] = p.Expense.StringFixed(2)
		nt[i] = p.NetSavings.StringFixed(2)
	}

	writeJSON(w, http.StatusOK, struct {
		Labels     []string `json:"labels"`
		Income     []string `json:"income"`
		Expense    []string `json:"expense"`
		NetSavings []string `json:"net_savings"`
	}{
		Labels:     series.Labels(),
		Income:     in,
		Expense:    ex,
		NetSavings: nt,
	})
}
