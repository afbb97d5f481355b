package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Envelope is the body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  interface{} `json:"errors"`
}

// WriteEnvelope is used by middleware that has no BaseHandler at hand.
func WriteEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.LoggerWrapper().Error("failed to encode JSON response", "error", err)
	}
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger     *slog.Logger
	Pagination internal.PaginationConfig
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{
		Logger:     lg,
		Pagination: internal.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
	}
}

func (h *BaseHandler) WithPagination(cfg internal.PaginationConfig) *BaseHandler {
	if cfg.DefaultPageSize > 0 {
		h.Pagination = cfg
	}
	return h
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *BaseHandler) WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	h.WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteError writes an error envelope; errs is usually a field -> messages map.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string, errs interface{}) {
	if status >= http.StatusInternalServerError {
		h.Logger.Error("http error", "status", status, "message", message)
	} else {
		h.Logger.Debug("http error", "status", status, "message", message)
	}
	h.WriteJSON(w, status, Envelope{Success: false, Message: message, Errors: errs})
}

// WriteAppError maps err onto the envelope. failMessage, when set, replaces the
// message of validation failures ("Failed to create employee").
func (h *BaseHandler) WriteAppError(w http.ResponseWriter, r *http.Request, err error, failMessage string) {
	appErr, ok := internal.IsAppError(err)
	if !ok || appErr.Type == internal.ErrorTypeInternal {
		logger.From(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		h.WriteJSON(w, http.StatusInternalServerError, Envelope{Message: "Internal server error"})
		return
	}

	message := appErr.Message
	if appErr.Type == internal.ErrorTypeValidation && failMessage != "" {
		message = failMessage
	}
	h.WriteError(w, appErr.StatusCode, message, appErr.FieldErrors())
}

// DecodeJSON reads a JSON request body into dst.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.NewValidationFieldError("non_field_errors", "Request body is empty.", internal.ErrCodeInvalid)
		}
		return internal.NewValidationFieldError("non_field_errors", "JSON parse error - "+err.Error(), internal.ErrCodeInvalid)
	}
	return nil
}

// URLParamID parses a positive integer path parameter.
func URLParamID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	return BearerToken(r)
}

func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(authHeader[7:])
}
