package employee

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-management/internal"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/counter"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, e *employeeDatamodel.Employee) error
	GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	// GetForUpdate reads the row under a FOR UPDATE lock.
	GetForUpdate(ctx context.Context, id int64) (*employeeDatamodel.Employee, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*employeeDatamodel.Employee, int64, error)
	// Save writes the given columns, or every writable column when none are
	// named.
	Save(ctx context.Context, e *employeeDatamodel.Employee, columns ...string) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	db        *gorm.DB
	repo      Repository
	recounter *counter.Recounter
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the employee service. publisher may be nil.
func NewService(db *gorm.DB, repo Repository, recounter *counter.Recounter, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		recounter: recounter,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for hire dates and tenure.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create validates the placement under parent locks, applies the status
// lifecycle, inserts the row and recounts its department and company.
func (s *Service) Create(ctx context.Context, dto CreateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e := dto.toEntity()
	var (
		stamped bool
		outcome counter.Outcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parents := counter.NewParents().AddEmployee(e.Company, e.Department)
		locked, err := s.recounter.LockParents(ctx, tx, parents)
		if err != nil {
			return err
		}
		if err := checkPlacement(locked, e.Company, e.Department); err != nil {
			return err
		}

		stamped = hiredStamped(e.ApplyLifecycle(s.now()))
		row := ToDataModel(e)
		if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
			return internal.NewInternalError("failed to create employee", err)
		}
		e.ID = row.ID

		outcome = s.recounter.AfterEmployeeWrite(ctx, tx, parents)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recounter.PublishSkips(ctx, outcome)
	s.logger.InfoContext(ctx, "employee created", "employee_id", e.ID, "company_id", e.Company, "department_id", e.Department)
	if stamped {
		s.publishHired(ctx, e)
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Employee, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Employee, int64, error) {
	return s.list(ctx, Filter{}, limit, offset)
}

func (s *Service) ListHired(ctx context.Context, limit, offset int) ([]*Employee, int64, error) {
	hired := StatusHired
	return s.list(ctx, Filter{Status: &hired}, limit, offset)
}

func (s *Service) list(ctx context.Context, filter Filter, limit, offset int) ([]*Employee, int64, error) {
	rows, total, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return FromDataModels(rows), total, nil
}

// Update applies a partial update. The department/company pairing is checked
// against the merged values, and when the employee moves both the old and the
// new parents are recounted. The update is merged onto the row read under the
// lock, so concurrent changes to other columns survive.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateEmployeeDTO) (*Employee, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var (
		e       *Employee
		stamped bool
		outcome counter.Outcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		target := FromDataModel(current)
		dto.apply(target)

		parents := counter.NewParents().
			AddEmployee(current.CompanyID, current.DepartmentID).
			AddEmployee(target.Company, target.Department)
		locked, row, err := s.lockEmployee(ctx, tx, id, current, parents)
		if err != nil {
			return err
		}

		e = FromDataModel(row)
		dto.apply(e)
		if err := checkPlacement(locked, e.Company, e.Department); err != nil {
			return err
		}

		stamped = hiredStamped(e.ApplyLifecycle(s.now()))
		if err := repo.Save(ctx, ToDataModel(e)); err != nil {
			return err
		}

		outcome = s.recounter.AfterEmployeeWrite(ctx, tx, parents)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recounter.PublishSkips(ctx, outcome)
	s.logger.InfoContext(ctx, "employee updated", "employee_id", id)
	if stamped {
		s.publishHired(ctx, e)
	}
	return e, nil
}

// UpdateStatus changes only the status and whatever the lifecycle derives
// from it. A missing employee is reported before the body is validated.
func (s *Service) UpdateStatus(ctx context.Context, id int64, dto UpdateStatusDTO) (*Employee, error) {
	var (
		e       *Employee
		stamped bool
		outcome counter.Outcome
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := dto.Validate(); err != nil {
			return err
		}

		parents := counter.NewParents().AddEmployee(current.CompanyID, current.DepartmentID)
		_, row, err := s.lockEmployee(ctx, tx, id, current, parents)
		if err != nil {
			return err
		}

		e = FromDataModel(row)
		e.Status = Status(*dto.Status)
		changed := e.ApplyLifecycle(s.now())
		stamped = hiredStamped(changed)

		columns := append([]string{"status"}, changed...)
		if err := repo.Save(ctx, ToDataModel(e), columns...); err != nil {
			return err
		}

		outcome = s.recounter.AfterEmployeeWrite(ctx, tx, parents)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recounter.PublishSkips(ctx, outcome)
	s.logger.InfoContext(ctx, "employee status updated", "employee_id", id, "status", string(e.Status))
	if stamped {
		s.publishHired(ctx, e)
	}
	return e, nil
}

// Delete removes the employee and recounts its parents with the post-delete
// counts.
func (s *Service) Delete(ctx context.Context, id int64) error {
	var outcome counter.Outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		parents := counter.NewParents().AddEmployee(current.CompanyID, current.DepartmentID)
		if _, _, err := s.lockEmployee(ctx, tx, id, current, parents); err != nil {
			return err
		}

		if err := repo.Delete(ctx, id); err != nil {
			return err
		}

		outcome = s.recounter.AfterEmployeeWrite(ctx, tx, parents)
		return nil
	})
	if err != nil {
		return err
	}

	s.recounter.PublishSkips(ctx, outcome)
	s.logger.InfoContext(ctx, "employee deleted", "employee_id", id)
	return nil
}

// lockEmployee locks the parents and then the employee row itself, returning
// the locked row. If the row was moved between the unlocked read and the lock
// the request is rejected rather than recounting the wrong parents.
func (s *Service) lockEmployee(ctx context.Context, tx *gorm.DB, id int64, seen *employeeDatamodel.Employee, parents *counter.Parents) (counter.Locked, *employeeDatamodel.Employee, error) {
	locked, err := s.recounter.LockParents(ctx, tx, parents)
	if err != nil {
		return locked, nil, err
	}

	row, err := s.repo.WithTx(tx).GetForUpdate(ctx, id)
	if err != nil {
		return locked, nil, err
	}
	if row.CompanyID != seen.CompanyID || row.DepartmentID != seen.DepartmentID {
		return locked, nil, internal.NewConflictError("Employee was modified concurrently, retry the request.", internal.ErrCodeConcurrentUpdate)
	}
	return locked, row, nil
}

func (s *Service) publishHired(ctx context.Context, e *Employee) {
	if s.publisher == nil || e.HiredDate == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewEmployeeHiredEvent(e.ID, e.Company, *e.HiredDate)); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish employee hired event", "employee_id", e.ID, "error", err)
	}
}

// checkPlacement reports missing parents and a department that belongs to a
// different company, keyed by the offending field.
func checkPlacement(locked counter.Locked, companyID, departmentID int64) error {
	var details internal.ValidationErrors
	if !locked.HasCompany(companyID) {
		details.Add("company", internal.DoesNotExistMessage(companyID), internal.ErrCodeDoesNotExist)
	}

	owner, ok := locked.CompanyOf(departmentID)
	switch {
	case !ok:
		details.Add("department", internal.DoesNotExistMessage(departmentID), internal.ErrCodeDoesNotExist)
	case locked.HasCompany(companyID) && owner != companyID:
		details.Add("department", msgDepartmentCompany, internal.ErrCodeCompanyMismatch)
	}
	return details.AsError()
}

func hiredStamped(changed []string) bool {
	for _, c := range changed {
		if c == "hired_date" {
			return true
		}
	}
	return false
}
