package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/employee-management/internal"
	userDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/user"
	"github.com/frahmantamala/employee-management/internal/user"
)

const (
	msgNoActiveAccount = "No active account found with the given credentials"
	msgTokenInvalid    = "Token is invalid or expired"
)

// UserRepository only ever returns active users; inactive and missing
// accounts both come back as user.ErrNotFound.
type UserRepository interface {
	GetActiveByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	GetActiveByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type TokenGenerator interface {
	GenerateAccessToken(u *user.User) (string, error)
	GenerateRefreshToken(u *user.User) (string, error)
	ValidateAccessToken(token string) (*Claims, error)
	ValidateRefreshToken(token string) (*Claims, error)
}

// Service is the main auth service with dependencies
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	logger         *slog.Logger
	now            func() time.Time
}

// NewService creates a new auth service
func NewService(userRepo UserRepository, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		logger:         logger,
		now:            time.Now,
	}
}

// Authenticate validates credentials and returns a token pair plus the
// caller's identity.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	dto.Email = user.NormalizeEmail(dto.Email)
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	row, err := s.userRepo.GetActiveByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return AuthTokens{}, invalidCredentials()
		}
		return AuthTokens{}, internal.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.InfoContext(ctx, "login rejected", "user_id", row.ID)
		return AuthTokens{}, invalidCredentials()
	}

	u := user.FromDataModel(row)
	accessToken, err := s.tokenGenerator.GenerateAccessToken(u)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue access token", err)
	}
	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(u)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to issue refresh token", err)
	}

	if err := s.userRepo.TouchLastLogin(ctx, u.ID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", u.ID, "error", err)
	}

	return AuthTokens{
		Refresh: refreshToken,
		Access:  accessToken,
		Email:   u.Email,
		Name:    u.Name,
		Role:    string(u.Role),
	}, nil
}

// Refresh exchanges a refresh token for a new access token. Claims are
// re-read from the user row so role changes apply on the next refresh.
func (s *Service) Refresh(ctx context.Context, dto RefreshTokenDTO) (RefreshedToken, error) {
	if err := dto.Validate(); err != nil {
		return RefreshedToken{}, err
	}

	claims, err := s.tokenGenerator.ValidateRefreshToken(dto.Refresh)
	if err != nil {
		return RefreshedToken{}, invalidRefreshToken()
	}

	row, err := s.userRepo.GetActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return RefreshedToken{}, invalidRefreshToken()
		}
		return RefreshedToken{}, internal.NewInternalError("failed to load user", err)
	}

	accessToken, err := s.tokenGenerator.GenerateAccessToken(user.FromDataModel(row))
	if err != nil {
		return RefreshedToken{}, internal.NewInternalError("failed to issue access token", err)
	}
	return RefreshedToken{Access: accessToken}, nil
}

// Principal resolves a bearer access token to the active user behind it.
func (s *Service) Principal(ctx context.Context, token string) (internal.Principal, error) {
	if token == "" {
		return internal.Principal{}, internal.ErrNotAuthenticated
	}

	claims, err := s.tokenGenerator.ValidateAccessToken(token)
	if err != nil {
		return internal.Principal{}, internal.ErrInvalidToken
	}

	row, err := s.userRepo.GetActiveByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return internal.Principal{}, internal.ErrInvalidToken
		}
		return internal.Principal{}, internal.NewInternalError("failed to load user", err)
	}

	return internal.Principal{
		UserID: row.ID,
		Email:  row.Email,
		Name:   row.Name,
		Role:   row.Role,
	}, nil
}

func invalidCredentials() error {
	return internal.NewValidationFieldError("non_field_errors", msgNoActiveAccount, internal.ErrCodeInvalidCredentials)
}

func invalidRefreshToken() error {
	return internal.NewValidationFieldError("non_field_errors", msgTokenInvalid, internal.ErrCodeInvalidToken)
}
