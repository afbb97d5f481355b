package cmd

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/employee-management/internal/core/events"
)

// registerEventHandlers attaches the in-process subscribers. Both are
// log sinks; a skipped recount is repaired by `counters reconcile`.
func registerEventHandlers(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.EventTypeEmployeeHired, func(ctx context.Context, event events.Event) error {
		hired, ok := event.(*events.EmployeeHiredEvent)
		if !ok {
			lg.Warn("unexpected payload for employee.hired", "event_id", event.EventID())
			return nil
		}
		lg.Info("employee hired",
			"event_id", hired.EventID(),
			"employee_id", hired.EmployeeID,
			"company_id", hired.CompanyID,
			"hired_date", hired.HiredDate.Format("2006-01-02"))
		return nil
	})

	bus.Subscribe(events.EventTypeCounterRecountSkipped, func(ctx context.Context, event events.Event) error {
		skipped, ok := event.(*events.RecountSkippedEvent)
		if !ok {
			lg.Warn("unexpected payload for counter.recount_skipped", "event_id", event.EventID())
			return nil
		}
		lg.Warn("counter left stale until the next reconcile",
			"event_id", skipped.EventID(),
			"target", skipped.Target,
			"target_id", skipped.TargetID,
			"reason", skipped.Reason,
			"payload", skipped.Payload())
		return nil
	})
}
