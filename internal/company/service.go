package company

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-management/internal"
	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	"github.com/frahmantamala/employee-management/internal/counter"
)

// Repository is the company store. GetByID and UpdateName return
// internal.ErrCompanyNotFound for a missing row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, c *companyDatamodel.Company) error
	GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error)
	List(ctx context.Context, limit, offset int) ([]*companyDatamodel.Company, int64, error)
	ListAll(ctx context.Context) ([]*companyDatamodel.Company, error)
	UpdateName(ctx context.Context, id int64, name string) error
	// DeleteCascade removes the company with all of its departments and
	// employees.
	DeleteCascade(ctx context.Context, id int64) error
}

type Service struct {
	db        *gorm.DB
	repo      Repository
	recounter *counter.Recounter
	logger    *slog.Logger
}

func NewService(db *gorm.DB, repo Repository, recounter *counter.Recounter, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		recounter: recounter,
		logger:    logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &companyDatamodel.Company{Name: dto.Name}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, internal.NewInternalError("failed to create company", err)
	}

	s.logger.InfoContext(ctx, "company created", "company_id", row.ID)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Company, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Company, int64, error) {
	rows, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return FromDataModels(rows), total, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*Company, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return FromDataModels(rows), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateCompanyDTO) (*Company, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.Name != nil {
		if err := s.repo.UpdateName(ctx, id, *dto.Name); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// Delete removes the company and everything under it. The company row is
// locked first so no employee or department can be attached concurrently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.recounter.LockParents(ctx, tx, counter.NewParents().AddCompany(id))
		if err != nil {
			return err
		}
		if !locked.HasCompany(id) {
			return internal.ErrCompanyNotFound
		}
		return s.repo.WithTx(tx).DeleteCascade(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "company deleted", "company_id", id)
	return nil
}
