package company

import (
	"context"
	"net/http"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateCompanyDTO) (*Company, error)
	Get(ctx context.Context, id int64) (*Company, error)
	List(ctx context.Context, limit, offset int) ([]*Company, int64, error)
	ListAll(ctx context.Context) ([]*Company, error)
	Update(ctx context.Context, id int64, dto UpdateCompanyDTO) (*Company, error)
	Delete(ctx context.Context, id int64) error
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

// List handles GET /api/companies/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, err := h.ParsePageRequest(r)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	companies, total, err := h.Service.List(r.Context(), req.Limit(), req.Offset())
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	page, err := transport.NewPage(r, req, total, companies)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Companies retrieved successfully", page)
}

// ListAll handles GET /api/companies/all/
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Companies retrieved successfully", companies)
}

// Get handles GET /api/companies/{id}/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrCompanyNotFound, "")
		return
	}

	c, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Company retrieved successfully", c)
}

// Create handles POST /api/companies/create/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateCompanyDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Failed to create company")
		return
	}

	c, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Failed to create company")
		return
	}
	h.WriteSuccess(w, http.StatusCreated, "Company created successfully", c)
}

// Update handles PATCH /api/companies/update/{id}/
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrCompanyNotFound, "")
		return
	}

	var dto UpdateCompanyDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Failed to update company")
		return
	}

	c, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Failed to update company")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Company updated successfully", c)
}

// Delete handles DELETE /api/companies/delete/{id}/
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrCompanyNotFound, "")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Company deleted successfully", nil)
}
