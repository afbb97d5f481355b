package employee

import (
	"context"
	"net/http"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error)
	Get(ctx context.Context, id int64) (*Employee, error)
	List(ctx context.Context, limit, offset int) ([]*Employee, int64, error)
	ListHired(ctx context.Context, limit, offset int) ([]*Employee, int64, error)
	Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error)
	UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO) (*Employee, error)
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

type listFunc func(ctx context.Context, limit, offset int) ([]*Employee, int64, error)

func (h *Handler) writePage(w http.ResponseWriter, r *http.Request, list listFunc, message string) {
	req, err := h.ParsePageRequest(r)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	employees, total, err := list(r.Context(), req.Limit(), req.Offset())
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}

	page, err := transport.NewPage(r, req, total, employees)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, message, page)
}

// List handles GET /api/employees/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, h.Service.List, "Employees retrieved successfully")
}

// ListHired handles GET /api/employees/hired/
func (h *Handler) ListHired(w http.ResponseWriter, r *http.Request) {
	h.writePage(w, r, h.Service.ListHired, "Hired employees retrieved successfully")
}

// Get handles GET /api/employees/{id}/
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrEmployeeNotFound, "")
		return
	}

	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Employee retrieved successfully", e)
}

// Create handles POST /api/employees/create/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateEmployeeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Failed to create employee")
		return
	}

	e, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Failed to create employee")
		return
	}
	h.WriteSuccess(w, http.StatusCreated, "Employee created successfully", e)
}

// Update handles PATCH /api/employees/update/{id}/
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrEmployeeNotFound, "")
		return
	}

	var dto UpdateEmployeeDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Failed to update employee")
		return
	}

	e, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Failed to update employee")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Employee updated successfully", e)
}

// UpdateStatus handles POST /api/employees/status/{id}/
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrEmployeeNotFound, "")
		return
	}

	var dto UpdateStatusDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, msgStatusFailed)
		return
	}

	e, err := h.Service.UpdateStatus(r.Context(), id, dto)
	if err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Employee status updated successfully", e)
}

// Delete handles DELETE /api/employees/delete/{id}/
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := transport.URLParamID(r, "id")
	if !ok {
		h.WriteAppError(w, r, internal.ErrEmployeeNotFound, "")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.WriteAppError(w, r, err, "")
		return
	}
	h.WriteSuccess(w, http.StatusOK, "Employee deleted successfully", nil)
}
