package department

import (
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
)

type Department struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	EmployeeCount int64  `json:"employee_count"`
	Company       int64  `json:"company"`
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:            d.ID,
		Name:          d.Name,
		EmployeeCount: d.EmployeeCount,
		Company:       d.CompanyID,
	}
}

func FromDataModels(rows []*departmentDatamodel.Department) []*Department {
	out := make([]*Department, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}

// Filter narrows department listings.
type Filter struct {
	CompanyID *int64
}
