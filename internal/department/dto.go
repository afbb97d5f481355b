package department

import (
	"github.com/frahmantamala/employee-management/internal/core/common/validation"
)

const msgCompanyLocked = "A department with employees cannot be moved to another company."

type CreateDepartmentDTO struct {
	Name    string `json:"name"`
	Company int64  `json:"company"`
}

func (d CreateDepartmentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("company", d.Company).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateDepartmentDTO is a partial update; nil fields are left unchanged.
type UpdateDepartmentDTO struct {
	Name    *string `json:"name"`
	Company *int64  `json:"company"`
}

func (d UpdateDepartmentDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", d.Name).Required().MaxLength(255)
	}
	if d.Company != nil {
		v.Field("company", *d.Company).Required()
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
