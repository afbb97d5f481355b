package employee

import (
	"regexp"
	"strings"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/core/common/validation"
)

const (
	msgInvalidPhone      = "Enter a valid value."
	msgDepartmentCompany = "The department must belong to the specified company."
	msgStatusRequired    = "Status is required"
	msgStatusMissing     = "Status field is required"
	msgStatusFailed      = "Failed to update employee status"
)

var phonePattern = regexp.MustCompile(`^\+?1?\d{8,15}$`)

// CreateEmployeeDTO is the body of POST /api/employees/create/.
type CreateEmployeeDTO struct {
	Company       int64   `json:"company"`
	Department    int64   `json:"department"`
	Status        string  `json:"status"`
	EmployeeName  *string `json:"employee_name"`
	EmployeeEmail *string `json:"employee_email"`
	PhoneNumber   string  `json:"phone_number"`
	Address       string  `json:"address"`
	Designation   string  `json:"designation"`
	HiredDate     *string `json:"hired_date"`
}

func (d CreateEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("company", d.Company).Required()
	v.Field("department", d.Department).Required()
	v.Field("status", d.Status).OneOf(StatusNames()...)
	v.Field("employee_name", d.EmployeeName).MaxLength(255)
	v.Field("employee_email", d.EmployeeEmail).MaxLength(255).Email()
	v.Field("phone_number", d.PhoneNumber).Required().MaxLength(17).Matches(phonePattern, msgInvalidPhone)
	v.Field("address", d.Address).Required()
	v.Field("designation", d.Designation).Required().MaxLength(255)
	v.Field("hired_date", d.HiredDate).Date()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (d CreateEmployeeDTO) toEntity() *Employee {
	e := &Employee{
		Company:       d.Company,
		Department:    d.Department,
		Status:        Status(d.Status),
		EmployeeName:  d.EmployeeName,
		EmployeeEmail: d.EmployeeEmail,
		PhoneNumber:   d.PhoneNumber,
		Address:       d.Address,
		Designation:   d.Designation,
	}
	if e.Status == "" {
		e.Status = StatusApplicationReceived
	}
	if d.HiredDate != nil && *d.HiredDate != "" {
		if t, err := validation.ParseDate(*d.HiredDate); err == nil {
			e.HiredDate = &t
		}
	}
	return e
}

// UpdateEmployeeDTO is a partial update; nil fields are left unchanged.
type UpdateEmployeeDTO struct {
	Company       *int64  `json:"company"`
	Department    *int64  `json:"department"`
	Status        *string `json:"status"`
	EmployeeName  *string `json:"employee_name"`
	EmployeeEmail *string `json:"employee_email"`
	PhoneNumber   *string `json:"phone_number"`
	Address       *string `json:"address"`
	Designation   *string `json:"designation"`
	HiredDate     *string `json:"hired_date"`
}

func (d UpdateEmployeeDTO) Validate() error {
	v := validation.NewValidator()
	if d.Company != nil {
		v.Field("company", *d.Company).Required()
	}
	if d.Department != nil {
		v.Field("department", *d.Department).Required()
	}
	if d.Status != nil {
		v.Field("status", *d.Status).Required().OneOf(StatusNames()...)
	}
	v.Field("employee_name", d.EmployeeName).MaxLength(255)
	v.Field("employee_email", d.EmployeeEmail).MaxLength(255).Email()
	if d.PhoneNumber != nil {
		v.Field("phone_number", d.PhoneNumber).Required().MaxLength(17).Matches(phonePattern, msgInvalidPhone)
	}
	if d.Address != nil {
		v.Field("address", d.Address).Required()
	}
	if d.Designation != nil {
		v.Field("designation", d.Designation).Required().MaxLength(255)
	}
	v.Field("hired_date", d.HiredDate).Date()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// apply merges the supplied fields into e.
func (d UpdateEmployeeDTO) apply(e *Employee) {
	if d.Company != nil {
		e.Company = *d.Company
	}
	if d.Department != nil {
		e.Department = *d.Department
	}
	if d.Status != nil {
		e.Status = Status(*d.Status)
	}
	if d.EmployeeName != nil {
		e.EmployeeName = d.EmployeeName
	}
	if d.EmployeeEmail != nil {
		e.EmployeeEmail = d.EmployeeEmail
	}
	if d.PhoneNumber != nil {
		e.PhoneNumber = *d.PhoneNumber
	}
	if d.Address != nil {
		e.Address = *d.Address
	}
	if d.Designation != nil {
		e.Designation = *d.Designation
	}
	if d.HiredDate != nil {
		if *d.HiredDate == "" {
			e.HiredDate = nil
		} else if t, err := validation.ParseDate(*d.HiredDate); err == nil {
			e.HiredDate = &t
		}
	}
}

// UpdateStatusDTO is the body of POST /api/employees/status/{id}/.
type UpdateStatusDTO struct {
	Status *string `json:"status"`
}

func (d UpdateStatusDTO) Validate() error {
	if d.Status == nil || strings.TrimSpace(*d.Status) == "" {
		err := internal.NewValidationFieldError("status", msgStatusRequired, internal.ErrCodeRequired)
		err.Message = msgStatusMissing
		return err
	}

	v := validation.NewValidator()
	v.Field("status", *d.Status).OneOf(StatusNames()...)
	if err := v.Validate(); err != nil {
		err.Message = msgStatusFailed
		return err
	}
	return nil
}
