package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
	"github.com/frahmantamala/employee-management/internal/core/events"
)

const (
	recountDepartmentSQL = `UPDATE departments
SET employee_count = (SELECT COUNT(*) FROM employees WHERE employees.department_id = ?)
WHERE id = ?`

	recountCompanySQL = `UPDATE companies
SET employee_count = (SELECT COUNT(*) FROM employees WHERE employees.company_id = ?),
    department_count = (SELECT COUNT(*) FROM departments WHERE departments.company_id = ?)
WHERE id = ?`

	recountCompanyDepartmentsSQL = `UPDATE companies
SET department_count = (SELECT COUNT(*) FROM departments WHERE departments.company_id = ?)
WHERE id = ?`
)

var errMissingParent = errors.New("parent row does not exist")

// Recorder receives one observation per recount target.
type Recorder interface {
	ObserveRecount(target, outcome string)
}

type Recounter struct {
	logger    *slog.Logger
	recorder  Recorder
	publisher events.Publisher
}

// NewRecounter builds the engine. recorder and publisher may be nil.
func NewRecounter(logger *slog.Logger, recorder Recorder, publisher events.Publisher) *Recounter {
	return &Recounter{
		logger:    logger,
		recorder:  recorder,
		publisher: publisher,
	}
}

// LockParents takes row locks on every parent in p, companies first and each
// list in ascending id order, and reports which rows exist. It must run
// inside tx before the child write.
func (r *Recounter) LockParents(ctx context.Context, tx *gorm.DB, p *Parents) (Locked, error) {
	companies, departments := p.sorted()
	locked := Locked{
		Companies:         make(map[int64]bool, len(companies)),
		DepartmentCompany: make(map[int64]int64, len(departments)),
	}

	if ids := nonZero(companies); len(ids) > 0 {
		var rows []companyDatamodel.Company
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id IN ?", ids).
			Order("id").
			Find(&rows).Error
		if err != nil {
			return locked, fmt.Errorf("lock companies: %w", err)
		}
		for _, row := range rows {
			locked.Companies[row.ID] = true
		}
	}

	if ids := nonZero(departments); len(ids) > 0 {
		var rows []departmentDatamodel.Department
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "company_id").
			Where("id IN ?", ids).
			Order("id").
			Find(&rows).Error
		if err != nil {
			return locked, fmt.Errorf("lock departments: %w", err)
		}
		for _, row := range rows {
			locked.DepartmentCompany[row.ID] = row.CompanyID
		}
	}

	return locked, nil
}

// AfterEmployeeWrite recounts every department's employee_count and every
// company's employee_count and department_count in p.
func (r *Recounter) AfterEmployeeWrite(ctx context.Context, tx *gorm.DB, p *Parents) Outcome {
	companies, departments := p.sorted()

	var out Outcome
	for _, id := range departments {
		out.merge(r.apply(ctx, tx, Target{Kind: KindDepartment, ID: id}, recountDepartmentSQL, id, id))
	}
	for _, id := range companies {
		out.merge(r.apply(ctx, tx, Target{Kind: KindCompany, ID: id}, recountCompanySQL, id, id, id))
	}

	r.report(ctx, out)
	return out
}

// AfterDepartmentWrite recounts only department_count on each company.
func (r *Recounter) AfterDepartmentWrite(ctx context.Context, tx *gorm.DB, companyIDs ...int64) Outcome {
	p := NewParents()
	for _, id := range companyIDs {
		p.AddCompany(id)
	}
	companies, _ := p.sorted()

	var out Outcome
	for _, id := range companies {
		out.merge(r.apply(ctx, tx, Target{Kind: KindCompany, ID: id}, recountCompanyDepartmentsSQL, id, id))
	}

	r.report(ctx, out)
	return out
}

// AfterDepartmentDelete recounts both company counters, since deleting a
// department also removes its employees.
func (r *Recounter) AfterDepartmentDelete(ctx context.Context, tx *gorm.DB, companyID int64) Outcome {
	out := r.apply(ctx, tx, Target{Kind: KindCompany, ID: companyID}, recountCompanySQL, companyID, companyID, companyID)
	r.report(ctx, out)
	return out
}

// apply runs one recount inside a savepoint so a failure rolls back only the
// recount and leaves the caller's transaction usable.
func (r *Recounter) apply(ctx context.Context, tx *gorm.DB, target Target, query string, args ...interface{}) Outcome {
	if target.ID == 0 {
		return Outcome{Skipped: []Skip{{Target: target, Reason: ReasonMissingParent}}}
	}

	err := tx.WithContext(ctx).Transaction(func(sp *gorm.DB) error {
		res := sp.Exec(query, args...)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errMissingParent
		}
		return nil
	})

	switch {
	case err == nil:
		return Outcome{Applied: []Target{target}}
	case errors.Is(err, errMissingParent):
		return Outcome{Skipped: []Skip{{Target: target, Reason: ReasonMissingParent}}}
	default:
		return Outcome{Skipped: []Skip{{Target: target, Reason: ReasonError, Err: err}}}
	}
}

func (r *Recounter) report(ctx context.Context, out Outcome) {
	for _, t := range out.Applied {
		r.observe(t.Kind, "applied")
	}
	for _, s := range out.Skipped {
		r.observe(s.Kind, "skipped")

		r.logger.WarnContext(ctx, "counter recount skipped",
			"target", string(s.Kind),
			"target_id", s.ID,
			"reason", string(s.Reason),
			"error", s.Err)
	}
}

// PublishSkips announces each skipped recount in out. Call it only once the
// transaction that ran the recounts has committed.
func (r *Recounter) PublishSkips(ctx context.Context, out Outcome) {
	if r.publisher == nil {
		return
	}
	for _, s := range out.Skipped {
		event := events.NewRecountSkippedEvent(string(s.Kind), s.ID, string(s.Reason), s.Err)
		if err := r.publisher.Publish(ctx, event); err != nil {
			r.logger.ErrorContext(ctx, "failed to publish recount skip", "error", err)
		}
	}
}

func (r *Recounter) observe(kind Kind, outcome string) {
	if r.recorder != nil {
		r.recorder.ObserveRecount(string(kind), outcome)
	}
}

func nonZero(ids []int64) []int64 {
	out := ids[:0:0]
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}
