package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/transport"
	"github.com/frahmantamala/employee-management/internal/user"
)

type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

// RequireRoles admits principals holding one of roles. It must run after
// AuthMiddleware.
func (ra *RBACAuthorization) RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	allowed := make(map[user.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok {
				ra.logger.Warn("authorization check failed: principal not found in context", "path", r.URL.Path)
				deny(w, internal.ErrNotAuthenticated)
				return
			}

			if _, ok := allowed[user.Role(principal.Role)]; !ok {
				ra.logger.Info("authorization denied", "user_id", principal.UserID, "role", principal.Role, "path", r.URL.Path)
				deny(w, internal.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (ra *RBACAuthorization) RequireManagerOrAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(user.RoleManager, user.RoleAdmin)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.RequireRoles(user.RoleAdmin)
}

func deny(w http.ResponseWriter, err *internal.AppError) {
	transport.WriteEnvelope(w, err.StatusCode, transport.Envelope{Message: err.Message})
}
