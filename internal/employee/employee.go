package employee

import (
	"encoding/json"
	"time"

	"github.com/frahmantamala/employee-management/internal/core/common/validation"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
)

type Status string

const (
	StatusApplicationReceived Status = "application_received"
	StatusInterviewScheduled  Status = "interview_scheduled"
	StatusHired               Status = "hired"
	StatusNotAccepted         Status = "not_accepted"
)

var Statuses = []Status{
	StatusApplicationReceived,
	StatusInterviewScheduled,
	StatusHired,
	StatusNotAccepted,
}

var statusLabels = map[Status]string{
	StatusApplicationReceived: "Application Received",
	StatusInterviewScheduled:  "Interview Scheduled",
	StatusHired:               "Hired",
	StatusNotAccepted:         "Not Accepted Yet",
}

func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s Status) Label() string {
	return statusLabels[s]
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.Valid()
}

func StatusNames() []string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return names
}

type Employee struct {
	ID            int64      `json:"id"`
	Status        Status     `json:"status"`
	EmployeeName  *string    `json:"employee_name"`
	EmployeeEmail *string    `json:"employee_email"`
	PhoneNumber   string     `json:"phone_number"`
	Address       string     `json:"address"`
	Designation   string     `json:"designation"`
	HiredDate     *time.Time `json:"hired_date"`
	TenureDays    int64      `json:"tenure_days"`
	Company       int64      `json:"company"`
	Department    int64      `json:"department"`
}

// MarshalJSON renders hired_date as a calendar date.
func (e Employee) MarshalJSON() ([]byte, error) {
	type alias Employee
	var hired *string
	if e.HiredDate != nil {
		s := e.HiredDate.Format(validation.DateLayout)
		hired = &s
	}
	return json.Marshal(struct {
		alias
		HiredDate *string `json:"hired_date"`
	}{alias: alias(e), HiredDate: hired})
}

// ApplyLifecycle runs before every save. A hire without a date is stamped
// with today, and tenure is recomputed from the hire date. An existing
// hired_date is never overwritten, even when the status later leaves hired.
// It returns the columns it changed.
func (e *Employee) ApplyLifecycle(today time.Time) []string {
	today = dateOf(today)

	var changed []string
	if e.Status == StatusHired && e.HiredDate == nil {
		e.HiredDate = &today
		changed = append(changed, "hired_date")
	}

	var tenure int64
	if e.HiredDate != nil {
		tenure = daysBetween(dateOf(*e.HiredDate), today)
	}
	if tenure != e.TenureDays {
		e.TenureDays = tenure
		changed = append(changed, "tenure_days")
	}
	return changed
}

// daysBetween counts whole calendar days from a to b, both UTC midnights.
func daysBetween(a, b time.Time) int64 {
	return (b.Unix() - a.Unix()) / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

// dateOf drops the clock part of t, keeping its calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ToDataModel(e *Employee) *employeeDatamodel.Employee {
	return &employeeDatamodel.Employee{
		ID:            e.ID,
		CompanyID:     e.Company,
		DepartmentID:  e.Department,
		Status:        string(e.Status),
		EmployeeName:  e.EmployeeName,
		EmployeeEmail: e.EmployeeEmail,
		PhoneNumber:   e.PhoneNumber,
		Address:       e.Address,
		Designation:   e.Designation,
		HiredDate:     e.HiredDate,
		TenureDays:    e.TenureDays,
	}
}

func FromDataModel(row *employeeDatamodel.Employee) *Employee {
	e := &Employee{
		ID:            row.ID,
		Status:        Status(row.Status),
		EmployeeName:  row.EmployeeName,
		EmployeeEmail: row.EmployeeEmail,
		PhoneNumber:   row.PhoneNumber,
		Address:       row.Address,
		Designation:   row.Designation,
		TenureDays:    row.TenureDays,
		Company:       row.CompanyID,
		Department:    row.DepartmentID,
	}
	if row.HiredDate != nil {
		d := dateOf(*row.HiredDate)
		e.HiredDate = &d
	}
	return e
}

func FromDataModels(rows []*employeeDatamodel.Employee) []*Employee {
	out := make([]*Employee, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}

type Filter struct {
	Status *Status
}
