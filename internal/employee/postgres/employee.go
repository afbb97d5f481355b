package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/employee-management/internal"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/employee-management/internal/employee"
)

// writableColumns excludes the id and created_at; tenure_days is written here
// because the lifecycle hook computes it before the save.
var writableColumns = []string{
	"company_id",
	"department_id",
	"status",
	"employee_name",
	"employee_email",
	"phone_number",
	"address",
	"designation",
	"hired_date",
	"tenure_days",
}

type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) WithTx(tx *gorm.DB) employee.Repository {
	return &EmployeeRepository{db: tx}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *employeeDatamodel.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	return r.first(r.db.WithContext(ctx), id)
}

func (r *EmployeeRepository) GetForUpdate(ctx context.Context, id int64) (*employeeDatamodel.Employee, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *EmployeeRepository) first(db *gorm.DB, id int64) (*employeeDatamodel.Employee, error) {
	var e employeeDatamodel.Employee
	if err := db.Where("id = ?", id).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}

func (r *EmployeeRepository) scoped(ctx context.Context, filter employee.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&employeeDatamodel.Employee{})
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	return q
}

func (r *EmployeeRepository) List(ctx context.Context, filter employee.Filter, limit, offset int) ([]*employeeDatamodel.Employee, int64, error) {
	var (
		employees []*employeeDatamodel.Employee
		total     int64
	)

	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}
	if err := r.scoped(ctx, filter).Order("id").Limit(limit).Offset(offset).Find(&employees).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return employees, total, nil
}

func (r *EmployeeRepository) Save(ctx context.Context, e *employeeDatamodel.Employee, columns ...string) error {
	if len(columns) == 0 {
		columns = writableColumns
	}
	res := r.db.WithContext(ctx).Model(e).Select(columns).Updates(e)
	if res.Error != nil {
		return fmt.Errorf("failed to save employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&employeeDatamodel.Employee{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete employee: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrEmployeeNotFound
	}
	return nil
}
