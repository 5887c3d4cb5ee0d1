package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"trading-signal-subscription/internal/config"
	red "trading-signal-subscription/internal/infra/redis"
	"trading-signal-subscription/internal/usecase"
)

// Server is the HTTP surface: member routes for registration, status and
// claim submission, admin routes for review, lifecycle and stats.
type Server struct {
	accountUC usecase.AccountUseCase
	subUC     usecase.SubscriptionUseCase
	payUC     usecase.PaymentUseCase
	statsUC   usecase.StatsUseCase
	auth      *AuthManager
	limiter   *red.RateLimiter
	rlCfg     config.RateLimitConfig
	log       *zerolog.Logger
}

func NewServer(
	accountUC usecase.AccountUseCase,
	subUC usecase.SubscriptionUseCase,
	payUC usecase.PaymentUseCase,
	statsUC usecase.StatsUseCase,
	auth *AuthManager,
	limiter *red.RateLimiter,
	rlCfg config.RateLimitConfig,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "Web").Logger()
	return &Server{
		accountUC: accountUC,
		subUC:     subUC,
		payUC:     payUC,
		statsUC:   statsUC,
		auth:      auth,
		limiter:   limiter,
		rlCfg:     rlCfg,
		log:       &l,
	}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(traceID)
	r.Use(requestLog(s.log))
	r.Use(recoverer(s.log))
	r.Use(timeout(10 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/plans", s.handleListPlans)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)
			r.Get("/subscription/status", s.handleSubscriptionStatus)
			r.Post("/payments", s.handleSubmitClaim)
			r.Get("/payments", s.handleOwnClaims)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Get("/payments/pending", s.handlePendingClaims)
			r.Post("/payments/{id}/approve", s.handleApproveClaim)
			r.Post("/payments/{id}/reject", s.handleRejectClaim)
			r.Get("/users", s.handleListUsers)
			r.Get("/users/{id}", s.handleGetUser)
			r.Post("/users/{id}/trial", s.handleGrantTrial)
			r.Post("/users/{id}/activate", s.handleActivatePlan)
			r.Post("/users/{id}/suspend", s.handleSuspend)
			r.Get("/approvals/pending", s.handlePendingApprovals)
			r.Get("/stats", s.handleStats)
			r.Get("/export/usernames", s.handleExportUsernames)
			r.Post("/sweep", s.handleSweep)
		})
	})

	return r
}
