package department

import "time"

type Department struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;size:255;not null"`
	CompanyID     int64     `gorm:"column:company_id;not null;index"`
	EmployeeCount int64     `gorm:"column:employee_count;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Department) TableName() string {
	return "departments"
}
