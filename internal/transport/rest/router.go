package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/frahmantamala/employee-management/api"
	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/auth"
	"github.com/frahmantamala/employee-management/internal/company"
	"github.com/frahmantamala/employee-management/internal/dashboard"
	"github.com/frahmantamala/employee-management/internal/department"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/metrics"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/internal/transport/middleware"
	"github.com/frahmantamala/employee-management/internal/transport/swagger"
	"github.com/frahmantamala/employee-management/internal/user"
)

// Handlers groups everything the router mounts. Metrics may be nil.
type Handlers struct {
	Health     *HealthHandler
	Auth       *auth.Handler
	RBAC       *auth.RBACAuthorization
	User       *user.Handler
	Company    *company.Handler
	Department *department.Handler
	Employee   *employee.Handler
	Dashboard  *dashboard.Handler
	Metrics    *metrics.Metrics
}

func RegisterAllRoutes(router chi.Router, cfg *internal.Config, h Handlers, logger *slog.Logger) {
	// Apply global middleware
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if h.Metrics != nil {
		router.Use(middleware.Metrics(h.Metrics.HTTPRequestsTotal, h.Metrics.HTTPRequestDuration))
	}

	router.Get("/openapi.yml", api.Handler())
	router.Handle("/swagger/*", swagger.Handler())

	if h.Metrics != nil && cfg.Observability.Metrics.Enabled {
		router.Handle(cfg.Observability.Metrics.Path, promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/auth/token", func(sr chi.Router) {
			sr.Use(middleware.RateLimitByIP(rate.Limit(cfg.Server.LoginRateLimit), cfg.Server.LoginBurst))
			sr.Post("/", h.Auth.Login)
			sr.Post("/refresh/", h.Auth.RefreshToken)
		})

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Group(func(mr chi.Router) {
				mr.Use(h.RBAC.RequireManagerOrAdmin())

				mr.Route("/companies", func(cr chi.Router) {
					cr.Get("/", h.Company.List)
					cr.Get("/all/", h.Company.ListAll)
					cr.Post("/create/", h.Company.Create)
					cr.Patch("/update/{id}/", h.Company.Update)
					cr.Delete("/delete/{id}/", h.Company.Delete)
					cr.Get("/{id}/", h.Company.Get)
				})

				mr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Department.List)
					dr.Get("/all/", h.Department.ListAll)
					dr.Post("/create/", h.Department.Create)
					dr.Patch("/update/{id}/", h.Department.Update)
					dr.Delete("/delete/{id}/", h.Department.Delete)
					dr.Get("/{id}/", h.Department.Get)
				})

				mr.Route("/employees", func(er chi.Router) {
					er.Get("/", h.Employee.List)
					er.Get("/hired/", h.Employee.ListHired)
					er.Post("/create/", h.Employee.Create)
					er.Patch("/update/{id}/", h.Employee.Update)
					er.Delete("/delete/{id}/", h.Employee.Delete)
					er.Post("/status/{id}/", h.Employee.UpdateStatus)
					er.Get("/{id}/", h.Employee.Get)
				})

				mr.Get("/dashboard/", h.Dashboard.Get)
			})

			pr.Group(func(ar chi.Router) {
				ar.Use(h.RBAC.RequireAdmin())
				ar.Get("/user-accounts/", h.User.ListAccounts)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteEnvelope(w, http.StatusNotFound, transport.Envelope{Message: "Not found."})
	})
}
