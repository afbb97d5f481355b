package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/company"
	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.Repository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) WithTx(tx *gorm.DB) company.Repository {
	return &CompanyRepository{db: tx}
}

func (r *CompanyRepository) Create(ctx context.Context, c *companyDatamodel.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]*companyDatamodel.Company, int64, error) {
	var (
		companies []*companyDatamodel.Company
		total     int64
	)

	if err := r.db.WithContext(ctx).Model(&companyDatamodel.Company{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}
	if err := r.db.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&companies).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, total, nil
}

func (r *CompanyRepository) ListAll(ctx context.Context) ([]*companyDatamodel.Company, error) {
	var companies []*companyDatamodel.Company
	if err := r.db.WithContext(ctx).Order("id").Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// UpdateName writes only the name column so a stale read can never clobber
// the counters.
func (r *CompanyRepository) UpdateName(ctx context.Context, id int64, name string) error {
	res := r.db.WithContext(ctx).
		Model(&companyDatamodel.Company{}).
		Where("id = ?", id).
		Update("name", name)
	if res.Error != nil {
		return fmt.Errorf("failed to update company: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) DeleteCascade(ctx context.Context, id int64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("company_id = ?", id).Delete(&employeeDatamodel.Employee{}).Error; err != nil {
		return fmt.Errorf("failed to delete company employees: %w", err)
	}
	if err := db.Where("company_id = ?", id).Delete(&departmentDatamodel.Department{}).Error; err != nil {
		return fmt.Errorf("failed to delete company departments: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&companyDatamodel.Company{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete company: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return internal.ErrCompanyNotFound
	}
	return nil
}
