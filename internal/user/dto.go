package user

import (
	"github.com/frahmantamala/employee-management/internal/core/common/validation"
)

// CreateUserDTO is the input of the user create command.
type CreateUserDTO struct {
	Email    string
	Name     string
	Password string
	Role     string
	IsStaff  bool
}

func (d CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", d.Email).Required().MaxLength(254).Email()
	v.Field("name", d.Name).Required().MaxLength(255)
	v.Field("password", d.Password).Required()
	v.Field("role", d.Role).OneOf(RoleNames()...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}
