package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/employee-management/internal"
	userDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/user"
)

var ErrEmailTaken = errors.New("email already registered")

type Repository interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	List(ctx context.Context, limit, offset int) ([]*userDatamodel.User, int64, error)
}

type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create registers a user with a normalized email and a bcrypt hash of the
// password. The role defaults to employee.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	dto.Email = NormalizeEmail(dto.Email)
	if dto.Role == "" {
		dto.Role = string(RoleEmployee)
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, dto.Email); err == nil {
		return nil, emailTakenError()
	} else if !errors.Is(err, ErrNotFound) {
		return nil, internal.NewInternalError("failed to check email", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	row := &userDatamodel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
		Role:         dto.Role,
		IsActive:     true,
		IsStaff:      dto.IsStaff,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, emailTakenError()
		}
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", row.ID, "role", row.Role)
	return FromDataModel(row), nil
}

// CreateSuperuser creates an admin with staff access.
func (s *Service) CreateSuperuser(ctx context.Context, email, name, password string) (*User, error) {
	return s.Create(ctx, CreateUserDTO{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     string(RoleAdmin),
		IsStaff:  true,
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, int64, error) {
	rows, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, total, nil
}

func emailTakenError() error {
	return internal.NewValidationFieldError("email", "user with this email already exists.", internal.ErrCodeEmailTaken)
}
