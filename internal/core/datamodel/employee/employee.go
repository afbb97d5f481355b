package employee

import "time"

type Employee struct {
	ID            int64      `gorm:"primaryKey"`
	CompanyID     int64      `gorm:"column:company_id;not null;index"`
	DepartmentID  int64      `gorm:"column:department_id;not null;index"`
	Status        string     `gorm:"column:status;size:50;not null;default:application_received;index"`
	EmployeeName  *string    `gorm:"column:employee_name;size:255"`
	EmployeeEmail *string    `gorm:"column:employee_email;size:255"`
	PhoneNumber   string     `gorm:"column:phone_number;size:17;not null"`
	Address       string     `gorm:"column:address;type:text;not null"`
	Designation   string     `gorm:"column:designation;size:255;not null"`
	HiredDate     *time.Time `gorm:"column:hired_date;type:date"`
	TenureDays    int64      `gorm:"column:tenure_days;not null;default:0"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}
