package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

// Totals are live row counts, not the stored counters.
type Totals struct {
	TotalCompanies   int64 `db:"total_companies" json:"total_companies"`
	TotalDepartments int64 `db:"total_departments" json:"total_departments"`
	TotalEmployees   int64 `db:"total_employees" json:"total_employees"`
}

type Repository interface {
	Totals(ctx context.Context) (Totals, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Totals(ctx context.Context) (Totals, error) {
	return s.repo.Totals(ctx)
}

type ServiceAPI interface {
	Totals(ctx context.Context) (Totals, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()),
		Service:     svc,
	}
}

// Get handles GET /api/dashboard/. Query failures are reported as a 400
// carrying the error text.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Service.Totals(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("dashboard query failed", "error", err)
		h.WriteError(w, http.StatusBadRequest, "Failed to retrieve dashboard", map[string]string{"error": err.Error()})
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Dashboard retrieved successfully", totals)
}
