package department

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-management/internal"
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
	"github.com/frahmantamala/employee-management/internal/counter"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, d *departmentDatamodel.Department) error
	GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*departmentDatamodel.Department, int64, error)
	ListAll(ctx context.Context, filter Filter) ([]*departmentDatamodel.Department, error)
	// Update writes name and company_id only; the counter stays with the engine.
	Update(ctx context.Context, d *departmentDatamodel.Department) error
	CountEmployees(ctx context.Context, id int64) (int64, error)
	// DeleteCascade removes the department and its employees.
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

// Create inserts a department under a locked company and recounts the
// company's department_count in the same transaction.
func (s *Service) Create(ctx context.Context, dto CreateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row := &departmentDatamodel.Department{Name: dto.Name, CompanyID: dto.Company}
	var outcome counter.Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.recounter.LockParents(ctx, tx, counter.NewParents().AddCompany(dto.Company))
		if err != nil {
			return err
		}
		if !locked.HasCompany(dto.Company) {
			return internal.NewDoesNotExistError("company", dto.Company)
		}

		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return internal.NewInternalError("failed to create department", err)
		}
		outcome = s.recounter.AfterDepartmentWrite(ctx, tx, row.CompanyID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recounter.PublishSkips(ctx, outcome)
	s.logger.InfoContext(ctx, "department created", "department_id", row.ID, "company_id", row.CompanyID)
	return s.Get(ctx, row.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*Department, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Department, int64, error) {
	rows, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return FromDataModels(rows), total, nil
}

func (s *Service) ListAll(ctx context.Context, filter Filter) ([]*Department, error) {
	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	return FromDataModels(rows), nil
}

// Update renames and/or moves a department. Moving is only allowed while the
// department has no employees; both companies are recounted after a move.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateDepartmentDTO) (*Department, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var outcome counter.Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		oldCompany := current.CompanyID
		newCompany := oldCompany
		if dto.Company != nil {
			newCompany = *dto.Company
		}

		parents := counter.NewParents().AddEmployee(oldCompany, id).AddCompany(newCompany)
		locked, err := s.recounter.LockParents(ctx, tx, parents)
		if err != nil {
			return err
		}
		if !locked.HasDepartment(id) {
			return internal.ErrDepartmentNotFound
		}
		// The company may have changed since the unlocked read.
		if owner, _ := locked.CompanyOf(id); owner != oldCompany {
			return internal.NewConflictError("Department was modified concurrently, retry the request.", internal.ErrCodeConcurrentUpdate)
		}
		if !locked.HasCompany(newCompany) {
			return internal.NewDoesNotExistError("company", newCompany)
		}

		if newCompany != oldCompany {
			n, err := repo.CountEmployees(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return internal.NewValidationFieldError("company", msgCompanyLocked, internal.ErrCodeInvalid)
			}
		}

		// The row is locked now; merge onto what it holds, not the first read.
		current, err = repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if dto.Name != nil {
			current.Name = *dto.Name
		}
		current.CompanyID = newCompany
		if err := repo.Update(ctx, current); err != nil {
			return err
		}

		outcome = s.recounter.AfterDepartmentWrite(ctx, tx, oldCompany, newCompany)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recounter.PublishSkips(ctx, outcome)
	return s.Get(ctx, id)
}

// Delete removes the department with its employees and recounts both
// counters of the owning company.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var (
		companyID int64
		outcome   counter.Outcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		companyID = current.CompanyID

		locked, err := s.recounter.LockParents(ctx, tx, counter.NewParents().AddEmployee(companyID, id))
		if err != nil {
			return err
		}
		if !locked.HasDepartment(id) {
			return internal.ErrDepartmentNotFound
		}

		if err := repo.DeleteCascade(ctx, id); err != nil {
			return err
		}
		outcome = s.recounter.AfterDepartmentDelete(ctx, tx, companyID)
		return nil
	})
	if err != nil {
		return err
	}

	s.recounter.PublishSkips(ctx, outcome)
	s.logger.InfoContext(ctx, "department deleted", "department_id", id, "company_id", companyID)
	return nil
}
