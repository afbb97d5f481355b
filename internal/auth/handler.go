package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	Refresh(ctx context.Context, dto RefreshTokenDTO) (RefreshedToken, error)
	Principal(ctx context.Context, token string) (internal.Principal, error)
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

// Login handles POST /api/auth/token/
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Login failed")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Login failed")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Login successful", tokens)
}

// RefreshToken handles POST /api/auth/token/refresh/
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.WriteAppError(w, r, err, "Token refresh failed")
		return
	}

	token, err := h.Service.Refresh(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, r, err, "Token refresh failed")
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", token)
}

// AuthMiddleware resolves the bearer token and stores the principal on the
// request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := h.Service.Principal(r.Context(), h.ExtractTokenFromHeader(r))
		if err != nil {
			logger.From(r.Context()).Debug("auth middleware: rejected request", "path", r.URL.Path, "error", err)
			h.WriteAppError(w, r, err, "")
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), principal)
		ctx = logger.With(ctx, "user_id", principal.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
