package department

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error)
	Get(ctx context.Context, id int64) (*Department, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Department, int64, error)
	ListAll(ctx context.Context, filter Filter) ([]*Department, error)
	Update(ctx context.Context, id int64, dto UpdateDepartmentDTO) (*Department, error)
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

// parseFilter reads the optional ?company= query parameter.
func parseFilter(r *http.Request) (Filter, error) {
	raw := r.URL.Query().Get("company")
	if raw == "" {
		return Filter{}, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return Filter{}, internal.NewValidationFieldError("company", "Enter a whole number.", internal.ErrCodeInvalid)
	}
	return Filter{CompanyID: &id}, nil
}

// List handles GET /api/departments/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	req, err := h.ParsePageRequest(r)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	departments, total, err := h.Service.List(r.Context(), filter, req.Limit(), req.Offset())
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	page, err := transport.NewPage(r, req, total, departments)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Departments retrieved successfully", page)
}

// ListAll handles GET /api/departments/all/
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	departments, err := h.Service.ListAll(r.Context(), filter)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Departments retrieved successfully", departments)
}

// Get handles GET /api/departments/{id}/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrDepartmentNotFound, "")
		return
	}

	d, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Department retrieved successfully", d)
}

// Create handles POST /api/departments/create/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateDepartmentDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Failed to create department")
		return
	}

	d, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Failed to create department")
		return
	}
	h.WriteSuccess(w, http.StatusCreated, "Department created successfully", d)
}

// Update handles PATCH /api/departments/update/{id}/
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrDepartmentNotFound, "")
		return
	}

	var dto UpdateDepartmentDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Failed to update department")
		return
	}

	d, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Failed to update department")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Department updated successfully", d)
}

// Delete handles DELETE /api/departments/delete/{id}/
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrDepartmentNotFound, "")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Department deleted successfully", nil)
}
