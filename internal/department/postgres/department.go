package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-management/internal"
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/employee-management/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.Repository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) WithTx(tx *gorm.DB) department.Repository {
	return &DepartmentRepository{db: tx}
}

func (r *DepartmentRepository) Create(ctx context.Context, d *departmentDatamodel.Department) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) scoped(ctx context.Context, filter department.Filter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&departmentDatamodel.Department{})
	if filter.CompanyID != nil {
		q = q.Where("company_id = ?", *filter.CompanyID)
	}
	return q
}

func (r *DepartmentRepository) List(ctx context.Context, filter department.Filter, limit, offset int) ([]*departmentDatamodel.Department, int64, error) {
	var (
		departments []*departmentDatamodel.Department
		total       int64
	)

	if err := r.scoped(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count departments: %w", err)
	}
	if err := r.scoped(ctx, filter).Order("id").Limit(limit).Offset(offset).Find(&departments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, total, nil
}

func (r *DepartmentRepository) ListAll(ctx context.Context, filter department.Filter) ([]*departmentDatamodel.Department, error) {
	var departments []*departmentDatamodel.Department
	if err := r.scoped(ctx, filter).Order("id").Find(&departments).Error; err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, d *departmentDatamodel.Department) error {
	res := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("id = ?", d.ID).
		Updates(map[string]interface{}{"name": d.Name, "company_id": d.CompanyID})
	if res.Error != nil {
		return fmt.Errorf("failed to update department: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrDepartmentNotFound
	}
	return nil
}

func (r *DepartmentRepository) CountEmployees(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&employeeDatamodel.Employee{}).
		Where("department_id = ?", id).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count department employees: %w", err)
	}
	return n, nil
}

func (r *DepartmentRepository) DeleteCascade(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("department_id = ?", id).Delete(&employeeDatamodel.Employee{}).Error; err != nil {
		return fmt.Errorf("failed to delete department employees: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&departmentDatamodel.Department{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete department: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrDepartmentNotFound
	}
	return nil
}
