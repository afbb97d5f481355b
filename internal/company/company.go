package company

import (
	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
)

// Company is the API view of a company row. Both counters are maintained by
// the counter engine and are read-only here.
type Company struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	DepartmentCount int64  `json:"department_count"`
	EmployeeCount   int64  `json:"employee_count"`
}

func FromDataModel(c *companyDatamodel.Company) *Company {
	return &Company{
		ID:              c.ID,
		Name:            c.Name,
		DepartmentCount: c.DepartmentCount,
		EmployeeCount:   c.EmployeeCount,
	}
}

func FromDataModels(rows []*companyDatamodel.Company) []*Company {
	out := make([]*Company, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
