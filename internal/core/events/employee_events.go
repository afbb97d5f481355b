package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeEmployeeHired         = "employee.hired"
	EventTypeCounterRecountSkipped = "counter.recount_skipped"
)

type EmployeeHiredEvent struct {
	BaseEvent
	EmployeeID int64     `json:"employee_id"`
	CompanyID  int64     `json:"company_id"`
	HiredDate  time.Time `json:"hired_date"`
}

func NewEmployeeHiredEvent(employeeID, companyID int64, hiredDate time.Time) *EmployeeHiredEvent {
	return &EmployeeHiredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEmployeeHired,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"employee_id": employeeID,
				"company_id":  companyID,
				"hired_date":  hiredDate.Format("2006-01-02"),
			},
		},
		EmployeeID: employeeID,
		CompanyID:  companyID,
		HiredDate:  hiredDate,
	}
}

// RecountSkippedEvent reports a counter that was left stale because its
// recount could not be applied.
type RecountSkippedEvent struct {
	BaseEvent
	Target   string `json:"target"`
	TargetID int64  `json:"target_id"`
	Reason   string `json:"reason"`
}

func NewRecountSkippedEvent(target string, targetID int64, reason string, cause error) *RecountSkippedEvent {
	data := map[string]interface{}{
		"target":    target,
		"target_id": targetID,
		"reason":    reason,
	}
	if cause != nil {
		data["error"] = cause.Error()
	}
	return &RecountSkippedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeCounterRecountSkipped,
			Timestamp: time.Now(),
			Data:      data,
		},
		Target:   target,
		TargetID: targetID,
		Reason:   reason,
	}
}
