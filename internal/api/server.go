package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/crm/internal/api/handler"
	mw "github.com/edvin/crm/internal/api/middleware"
	"github.com/edvin/crm/internal/config"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/model"
)

type Server struct {
	router      chi.Router
	logger      zerolog.Logger
	services    *core.Services
	corePool    *pgxpool.Pool
	cfg         *config.Config
	auditLogger *mw.AuditLogger
}

func NewServer(logger zerolog.Logger, coreDB *pgxpool.Pool, cfg *config.Config) *Server {
	services := core.NewServices(coreDB, logger, cfg.JWTSecret, cfg.JWTIssuer)
	auditLogger := mw.NewAuditLogger(coreDB, logger)

	s := &Server{
		router:      chi.NewRouter(),
		logger:      logger,
		services:    services,
		corePool:    coreDB,
		cfg:         cfg,
		auditLogger: auditLogger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	auth := handler.NewAuth(s.services.Auth)
	signup := handler.NewSignup(s.services.Provisioning)
	invitation := handler.NewInvitation(s.services.Invitation)
	plan := handler.NewPlan(s.services.Plan)

	// Public endpoints. Signup and redemption happen before the caller has a
	// membership, so they sit outside the tenant-scoped group.
	s.router.Post("/signup", signup.Create)
	s.router.Post("/login", auth.Login)
	s.router.Post("/invitations/redeem", invitation.Redeem)
	s.router.Get("/plans", plan.List)

	// Tenant-scoped API. Every request is resolved to a tenant from the Host
	// header, authenticated via JWT, and gated on an active membership.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.services.Auth))
		r.Use(mw.ResolveTenant(s.services.Tenant))
		r.Use(mw.TrackUsage(s.services.Usage))
		r.Use(s.auditLogger.Middleware)

		member := mw.RequireMember(s.services.Membership)
		manager := mw.RequireRole(s.services.Membership, model.RoleManager)
		admin := mw.RequireRole(s.services.Membership, model.RoleAdmin)

		dashboard := handler.NewDashboard(s.services.Dashboard)
		tenant := handler.NewTenant(s.services.Tenant, s.services.Plan)
		memberH := handler.NewMember(s.services.Membership)
		usage := handler.NewUsage(s.services.Usage)
		me := handler.NewMe(s.services.User)

		r.Group(func(r chi.Router) {
			r.Use(member)
			r.Get("/me", me.Get)
			r.Get("/dashboard/stats", dashboard.Stats)
			r.Get("/tenant", tenant.Current)
			r.Get("/members", memberH.List)
			r.Get("/usage", usage.Current)
			r.Get("/usage/history", usage.History)
			r.Get("/usage/limits", usage.Limits)
			r.Get("/plan/subscription", plan.Subscription)
		})

		r.Group(func(r chi.Router) {
			r.Use(manager)
			r.Put("/tenant/settings", tenant.UpdateSettings)
			r.Get("/invitations", invitation.List)
		})

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Put("/tenant/custom-domain", tenant.UpdateCustomDomain)
			r.Post("/tenant/plan", tenant.ChangePlan)
			r.Post("/invitations", invitation.Create)
			r.Post("/invitations/{id}/revoke", invitation.Revoke)
			r.Put("/members/{userID}/role", memberH.UpdateRole)
			r.Delete("/members/{userID}", memberH.Deactivate)
		})
	})

	// Operator API, authenticated by a static key. Not reachable by tenant
	// users.
	s.router.Route("/ops/v1", func(r chi.Router) {
		r.Use(mw.OpsAuth(s.cfg.OpsAPIKey))

		tenant := handler.NewTenant(s.services.Tenant, s.services.Plan)
		audit := handler.NewAudit(s.corePool)

		r.Get("/tenants", tenant.List)
		r.Post("/tenants", signup.Create)
		r.Get("/tenants/{id}", tenant.Get)
		r.Put("/tenants/{id}/status", tenant.UpdateStatus)
		r.Delete("/tenants/{id}", tenant.Delete)
		r.Get("/audit-logs", audit.List)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.corePool.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		healthy = false
	} else {
		checks["core_db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

// Close flushes background workers. Call during graceful shutdown.
func (s *Server) Close() {
	s.auditLogger.Close()
	s.services.Usage.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
