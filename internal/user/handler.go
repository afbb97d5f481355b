package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, limit, offset int) ([]*User, int64, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, pagination internal.PaginationConfig) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.LoggerWrapper()).WithPagination(pagination),
		Service:     svc,
	}
}

// ListAccounts handles GET /api/user-accounts/
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	req, err := h.ParsePageRequest(r)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	users, total, err := h.Service.List(r.Context(), req.Limit(), req.Offset())
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	page, err := transport.NewPage(r, req, total, users)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "User accounts retrieved successfully", page)
}
