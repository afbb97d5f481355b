package company

import (
	"github.com/frahmantamala/employee-management/internal/core/common/validation"
)

type CreateCompanyDTO struct {
	Name string `json:"name"`
}

func (d CreateCompanyDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateCompanyDTO is a partial update; nil fields are left unchanged.
type UpdateCompanyDTO struct {
	Name *string `json:"name"`
}

func (d UpdateCompanyDTO) Validate() error {
	if d.Name == nil {
		return nil
	}
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(255)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
