package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/infra/metrics"
	red "trading-signal-subscription/internal/infra/redis"
)

// ---- JSON plumbing ----

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels onto HTTP statuses. Everything the core
// reports is a precondition violation, not a retryable fault.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidTransactionID) || errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrDuplicateClaim) ||
		errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrClaimAlreadyReviewed) ||
		errors.Is(err, domain.ErrTrialAlreadyUsed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrAccountSuspended):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

type accountView struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name,omitempty"`
	TradingViewUsername string `json:"tradingview_username"`
	Role                string `json:"role"`
	IsActive            bool   `json:"is_active"`
}

func toAccountView(a *model.Account) accountView {
	return accountView{
		ID:                  a.ID,
		Email:               a.Email,
		Name:                a.Name,
		TradingViewUsername: a.TradingViewUsername,
		Role:                string(a.Role),
		IsActive:            a.IsActive,
	}
}

type claimView struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TXID          string     `json:"txid"`
	AmountCents   int64      `json:"amount_cents"`
	RequestedPlan string     `json:"requested_plan"`
	PaymentDate   time.Time  `json:"payment_date"`
	Status        string     `json:"status"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	AdminNote     string     `json:"admin_note,omitempty"`
}

func toClaimView(c *model.PaymentClaim) claimView {
	return claimView{
		ID:            c.ID,
		UserID:        c.UserID,
		TXID:          c.TXID,
		AmountCents:   c.AmountCents,
		RequestedPlan: c.RequestedPlan,
		PaymentDate:   c.PaymentDate,
		Status:        string(c.Status),
		ReviewedAt:    c.ReviewedAt,
		ReviewedBy:    c.ReviewedBy,
		AdminNote:     c.AdminNote,
	}
}

func toClaimViews(cs []*model.PaymentClaim) []claimView {
	out := make([]claimView, 0, len(cs))
	for _, c := range cs {
		out = append(out, toClaimView(c))
	}
	return out
}

type planView struct {
	ID           string `json:"id"`
	DurationDays *int   `json:"duration_days"` // null means no expiration
	PriceCents   int64  `json:"price_cents"`
}

// handleListPlans exposes the plan table so clients can render prices before
// submitting a payment claim.
func (s *Server) handleListPlans(w http.ResponseWriter, _ *http.Request) {
	plans := model.ListPlans()
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, planView{ID: string(p.ID), DurationDays: p.DurationDays, PriceCents: p.PriceCents})
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- auth ----

type registerRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	Name                string `json:"name"`
	TradingViewUsername string `json:"tradingview_username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	account, err := s.accountUC.Register(r.Context(), req.Email, req.Password, req.Name, req.TradingViewUsername, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountView(account))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	account, err := s.accountUC.Authenticate(r.Context(), req.Email, req.Password, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.auth.Mint(w, account.ID, account.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token   string      `json:"token"`
		Account accountView `json:"account"`
	}{Token: token, Account: toAccountView(account)})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// ---- member routes ----

func (s *Server) handleSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	status, err := s.subUC.StatusFor(r.Context(), sess.Subject, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

type submitClaimRequest struct {
	TXID          string `json:"txid"`
	AmountCents   int64  `json:"amount_cents"`
	RequestedPlan string `json:"requested_plan"`
}

func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())

	if s.limiter != nil {
		ok, err := s.limiter.Allow(r.Context(), red.ClaimSubmitKey(sess.Subject), s.rlCfg.ClaimSubmits, s.rlCfg.Window)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable; allowing request")
		} else if !ok {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many submissions, try again later"})
			return
		}
	}

	var req submitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	claim, err := s.payUC.SubmitClaim(r.Context(), sess.Subject, req.TXID, req.AmountCents, req.RequestedPlan, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.IncClaim("submitted")
	writeJSON(w, http.StatusCreated, toClaimView(claim))
}

func (s *Server) handleOwnClaims(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	claims, err := s.payUC.ListForUser(r.Context(), sess.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimViews(claims))
}

// ---- admin routes ----

func (s *Server) handlePendingClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.payUC.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toClaimViews(claims))
}

type reviewRequest struct {
	Note string `json:"note"`
}

func (s *Server) handleApproveClaim(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	var req reviewRequest
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means default note

	claim, err := s.payUC.ApproveClaim(r.Context(), chi.URLParam(r, "id"), sess.Subject, req.Note, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.IncClaim("approved")
	metrics.AddClaimRevenue(claim.AmountCents)
	writeJSON(w, http.StatusOK, toClaimView(claim))
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleRejectClaim(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reason == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "a rejection reason is required"})
		return
	}
	claim, err := s.payUC.RejectClaim(r.Context(), chi.URLParam(r, "id"), sess.Subject, req.Reason, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.IncClaim("rejected")
	writeJSON(w, http.StatusOK, toClaimView(claim))
}

func (s *Server) handleGrantTrial(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	sub, err := s.subUC.GrantTrial(r.Context(), chi.URLParam(r, "id"), sess.Subject, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.IncTrialGranted()
	writeJSON(w, http.StatusOK, sub)
}

type activateRequest struct {
	Plan string `json:"plan"`
}

func (s *Server) handleActivatePlan(w http.ResponseWriter, r *http.Request) {
	sess := SessionFrom(r.Context())
	var req activateRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	plan := model.ResolvePlan(req.Plan)
	sub, err := s.subUC.ActivatePlan(r.Context(), chi.URLParam(r, "id"), plan, sess.Subject, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type suspendRequest struct {
	Suspended bool `json:"suspended"`
}

func (s *Server) handleSuspend(w http.ResponseWriter, r *http.Request) {
	var req suspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.accountUC.SetSuspended(r.Context(), chi.URLParam(r, "id"), req.Suspended, time.Now()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	accounts, err := s.accountUC.List(r.Context(), offset, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accountView, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountView(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	account, err := s.accountUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountView(account))
}

func (s *Server) handlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subUC.ListPendingApprovals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.Dashboard(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.SetSubscriptionsTotal(map[model.SubscriptionStatus]int{
		model.SubscriptionStatusPendingApproval: stats.PendingApprovals,
		model.SubscriptionStatusTrial:           stats.TrialUsers,
		model.SubscriptionStatusActive:          stats.ActiveSubscriptions,
	})
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExportUsernames(w http.ResponseWriter, r *http.Request) {
	rows, err := s.statsUC.ExportActiveUsernames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleSweep exists for the external cron driver; the in-process worker
// runs the same operation on its own cadence.
func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	n, err := s.subUC.SweepExpired(r.Context(), time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.IncSubscriptionsExpired(n)
	writeJSON(w, http.StatusOK, struct {
		Expired int `json:"expired"`
	}{Expired: n})
}
