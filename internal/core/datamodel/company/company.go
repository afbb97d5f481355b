package company

import "time"

// Company rows own the two derived counters; they are written only by the
// counter engine.
type Company struct {
	ID              int64     `gorm:"primaryKey"`
	Name            string    `gorm:"column:name;size:255;not null"`
	DepartmentCount int64     `gorm:"column:department_count;not null;default:0"`
	EmployeeCount   int64     `gorm:"column:employee_count;not null;default:0"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Company) TableName() string {
	return "companies"
}
