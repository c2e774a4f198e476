package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/phisoli/parasekreterim/internal/core"
	"github.com/phisoli/parasekreterim/internal/services"
)

type limitResponse struct {
	ID        int64            `json:"id"`
	Category  categoryResponse `json:"category"`
	Threshold string           `json:"threshold"`
	Period    string           `json:"period"`
	StartDate string           `json:"start_date"`
	Spent     string           `json:"spent"`
	Exceeded  bool             `json:"exceeded"`
}

func (s *Server) handleCreateLimit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CategoryID int64  `json:"category_id"`
		Threshold  string `json:"threshold"`
		Period     string `json:"period"`
		StartDate  string `json:"start_date"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threshold, ok := parseAmountField(w, "threshold", req.Threshold)
	if !ok {
		return
	}

	start := time.Now().UTC()
	if req.StartDate != "" {
		var err error
		if start, err = time.Parse("2006-01-02", req.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date, want YYYY-MM-DD")
			return
		}
	}

	l, err := s.goals.CreateLimit(r.Context(), userID(r), req.CategoryID,
		threshold, core.Period(req.Period), start)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, limitResponse{
		ID:        l.ID,
		Category:  toCategoryResponse(l.Category),
		Threshold: l.Threshold.StringFixed(2),
		Period:    string(l.Period),
		StartDate: l.StartDate.Format("2006-01-02"),
		Spent:     "0.00",
	})
}

func (s *Server) handleUpdateLimit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		CategoryID int64  `json:"category_id"`
		Threshold  string `json:"threshold"`
		Period     string `json:"period"`
		StartDate  string `json:"start_date"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	threshold, ok := parseAmountField(w, "threshold", req.Threshold)
	if !ok {
		return
	}

	start := time.Now().UTC()
	if req.StartDate != "" {
		if start, err = time.Parse("2006-01-02", req.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "invalid start_date, want YYYY-MM-DD")
			return
		}
	}

	l, err := s.goals.UpdateLimit(r.Context(), userID(r), id, req.CategoryID,
		threshold, core.Period(req.Period), start)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Spending is recomputed so the caller sees where the new
	// threshold stands right away.
	spent := "0.00"
	exceeded := false
	statuses, err := s.goals.LimitStatuses(r.Context(), userID(r), time.Now().UTC())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	for _, st := range statuses {
		if st.Limit.ID == l.ID {
			spent = st.Spent.StringFixed(2)
			exceeded = st.Exceeded
		}
	}

	writeJSON(w, http.StatusOK, limitResponse{
		ID:        l.ID,
		Category:  toCategoryResponse(l.Category),
		Threshold: l.Threshold.StringFixed(2),
		Period:    string(l.Period),
		StartDate: l.StartDate.Format("2006-01-02"),
		Spent:     spent,
		Exceeded:  exceeded,
	})
}

func (s *Server) handleListLimits(w http.ResponseWriter, r *http.Request) {
	now, err := parseDateParam(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	statuses, err := s.goals.LimitStatuses(r.Context(), userID(r), now)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]limitResponse, len(statuses))
	for i, st := range statuses {
		out[i] = limitResponse{
			ID:        st.Limit.ID,
			Category:  toCategoryResponse(st.Limit.Category),
			Threshold: st.Limit.Threshold.StringFixed(2),
			Period:    string(st.Limit.Period),
			StartDate: st.Limit.StartDate.Format("2006-01-02"),
			Spent:     st.Spent.StringFixed(2),
			Exceeded:  st.Exceeded,
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Limits []limitResponse `json:"limits"`
	}{out})
}

func (s *Server) handleDeleteLimit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.goals.DeleteLimit(r.Context(), userID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type savingGoalResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Target     string  `json:"target"`
	Current    string  `json:"current"`
	TargetDate string  `json:"target_date"`
	Progress   float64 `json:"progress"`
}

func toSavingGoalResponse(st services.SavingGoalStatus) savingGoalResponse {
	return savingGoalResponse{
		ID:         st.Goal.ID,
		Name:       st.Goal.Name,
		Target:     st.Goal.Target.StringFixed(2),
		Current:    st.Goal.Current.StringFixed(2),
		TargetDate: st.Goal.TargetDate.Format("2006-01-02"),
		Progress:   st.Progress,
	}
}

func (s *Server) handleCreateSavingGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Target     string `json:"target"`
		TargetDate string `json:"target_date"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	target, ok := parseAmountField(w, "target", req.Target)
	if !ok {
		return
	}

	targetDate, err := time.Parse("2006-01-02", req.TargetDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid target_date, want YYYY-MM-DD")
		return
	}

	g, err := s.goals.CreateSavingGoal(r.Context(), userID(r),
		strings.TrimSpace(req.Name), target, targetDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSavingGoalResponse(services.SavingGoalStatus{
		Goal: g, Progress: g.Progress(),
	}))
}

func (s *Server) handleListSavingGoals(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.goals.SavingGoals(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]savingGoalResponse, len(statuses))
	for i, st := range statuses {
		out[i] = toSavingGoalResponse(st)
	}
	writeJSON(w, http.StatusOK, struct {
		Goals []savingGoalResponse `json:"goals"`
	}{out})
}

func (s *Server) handleDeleteSavingGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.goals.DeleteSavingGoal(r.Context(), userID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Amount string `json:"amount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, ok := parseAmountField(w, "amount", req.Amount)
	if !ok {
		return
	}

	g, err := s.goals.Deposit(r.Context(), userID(r), id, amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The balance moved, so derived views and purchase goals are stale.
	s.afterLedgerWrite(r)

	writeJSON(w, http.StatusOK, toSavingGoalResponse(services.SavingGoalStatus{
		Goal: g, Progress: g.Progress(),
	}))
}

type purchaseGoalResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Price          string `json:"price"`
	TriggerPercent string `json:"trigger_percent"`
	Notified       bool   `json:"notified"`
	Affordable     bool   `json:"affordable"`
}

func (s *Server) handleCreatePurchaseGoal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Price          string `json:"price"`
		TriggerPercent string `json:"trigger_percent"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	price, ok := parseAmountField(w, "price", req.Price)
	if !ok {
		return
	}
	trigger, ok := parseAmountField(w, "trigger_percent", req.TriggerPercent)
	if !ok {
		return
	}

	g, err := s.goals.CreatePurchaseGoal(r.Context(), userID(r),
		strings.TrimSpace(req.Name), price, trigger)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, purchaseGoalResponse{
		ID:             g.ID,
		Name:           g.Name,
		Price:          g.Price.StringFixed(2),
		TriggerPercent: g.TriggerPercent.String(),
		Notified:       g.Notified,
	})
}

func (s *Server) handleListPurchaseGoals(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.goals.PurchaseGoals(r.Context(), userID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]purchaseGoalResponse, len(statuses))
	for i, st := range statuses {
		out[i] = purchaseGoalResponse{
			ID:             st.Goal.ID,
			Name:           st.Goal.Name,
			Price:          st.Goal.Price.StringFixed(2),
			TriggerPercent: st.Goal.TriggerPercent.String(),
			Notified:       st.Goal.Notified,
			Affordable:     st.Affordable,
		}
	}
	writeJSON(w, http.StatusOK, struct {
		Goals []purchaseGoalResponse `json:"goals"`
	}{out})
}

func (s *Server) handleDeletePurchaseGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.goals.DeletePurchaseGoal(r.Context(), userID(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
