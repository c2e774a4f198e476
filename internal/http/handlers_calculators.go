package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/phisoli/parasekreterim/internal/core"
)

// Horizon caps. The projection loops in core run one iteration per
// period, so unbounded client input would let a single request burn
// arbitrary CPU.
const (
	maxProjectionYears  = 100
	maxLoanMonths       = 600
	maxCompoundsPerYear = 366
)

func parseAmountField(w http.ResponseWriter, name, value string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return decimal.Zero, false
	}
	return d, true
}

func (s *Server) handleCompoundInterest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Principal        string `json:"principal"`
		AnnualRate       string `json:"annual_rate"`
		Years            int    `json:"years"`
		CompoundsPerYear int    `json:"compounds_per_year"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Years > maxProjectionYears {
		writeError(w, http.StatusBadRequest, "years must be at most 100")
		return
	}
	if req.CompoundsPerYear > maxCompoundsPerYear {
		writeError(w, http.StatusBadRequest, "compounds_per_year must be at most 366")
		return
	}

	principal, ok := parseAmountField(w, "principal", req.Principal)
	if !ok {
		return
	}
	rate, ok := parseAmountField(w, "annual_rate", req.AnnualRate)
	if !ok {
		return
	}

	result, err := core.CompoundInterest(principal, rate, req.Years, req.CompoundsPerYear)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		FinalAmount   string `json:"final_amount"`
		TotalInterest string `json:"total_interest"`
	}{
		FinalAmount:   result.StringFixed(2),
		TotalInterest: result.Sub(principal).StringFixed(2),
	})
}

func (s *Server) handleLoanPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Principal  string `json:"principal"`
		AnnualRate string `json:"annual_rate"`
		Months     int    `json:"months"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Months > maxLoanMonths {
		writeError(w, http.StatusBadRequest, "months must be at most 600")
		return
	}

	principal, ok := parseAmountField(w, "principal", req.Principal)
	if !ok {
		return
	}
	rate, ok := parseAmountField(w, "annual_rate", req.AnnualRate)
	if !ok {
		return
	}

	payment, err := core.LoanPayment(principal, rate, req.Months)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	total := payment.Mul(decimal.NewFromInt(int64(req.Months)))
	writeJSON(w, http.StatusOK, struct {
		MonthlyPayment string `json:"monthly_payment"`
		TotalPaid      string `json:"total_paid"`
		TotalInterest  string `json:"total_interest"`
	}{
		MonthlyPayment: payment.StringFixed(2),
		TotalPaid:      total.StringFixed(2),
		TotalInterest:  total.Sub(principal).StringFixed(2),
	})
}

func (s *Server) handleMortgagePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Principal  string `json:"principal"`
		AnnualRate string `json:"annual_rate"`
		Years      int    `json:"years"`
		Frequency  string `json:"frequency"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Years > maxProjectionYears {
		writeError(w, http.StatusBadRequest, "years must be at most 100")
		return
	}

	principal, ok := parseAmountField(w, "principal", req.Principal)
	if !ok {
		return
	}
	rate, ok := parseAmountField(w, "annual_rate", req.AnnualRate)
	if !ok {
		return
	}

	freq := core.PaymentFrequency(req.Frequency)
	if freq == "" {
		freq = core.FreqMonthly
	}

	payment, err := core.MortgagePayment(principal, rate, req.Years, freq)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Payment   string `json:"payment"`
		Frequency string `json:"frequency"`
	}{
		Payment:   payment.StringFixed(2),
		Frequency: string(freq),
	})
}

func (s *Server) handleInvestmentGrowth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Initial             string `json:"initial"`
		MonthlyContribution string `json:"monthly_contribution"`
		AnnualRate          string `json:"annual_rate"`
		Years               int    `json:"years"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Years > maxProjectionYears {
		writeError(w, http.StatusBadRequest, "years must be at most 100")
		return
	}

	initial, ok := parseAmountField(w, "initial", req.Initial)
	if !ok {
		return
	}
	monthly, ok := parseAmountField(w, "monthly_contribution", req.MonthlyContribution)
	if !ok {
		return
	}
	rate, ok := parseAmountField(w, "annual_rate", req.AnnualRate)
	if !ok {
		return
	}

	projection, err := core.InvestmentGrowth(initial, monthly, rate, req.Years)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	snapshots := make([]struct {
		Year  int    `json:"year"`
		Value string `json:"value"`
	}, len(projection.YearlySnapshots))
	for i, snap := range projection.YearlySnapshots {
		snapshots[i].Year = snap.Year
		snapshots[i].Value = snap.Value.StringFixed(2)
	}

	writeJSON(w, http.StatusOK, struct {
		FinalValue       string `json:"final_value"`
		TotalContributed string `json:"total_contributed"`
		TotalGrowth      string `json:"total_growth"`
		YearlySnapshots  any    `json:"yearly_snapshots"`
	}{
		FinalValue:       projection.FinalValue.StringFixed(2),
		TotalContributed: projection.TotalContributed.StringFixed(2),
		TotalGrowth:      projection.TotalGrowth.StringFixed(2),
		YearlySnapshots:  snapshots,
	})
}
