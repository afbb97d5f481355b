package counter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
)

// DriftRecorder receives reconciliation observations.
type DriftRecorder interface {
	ObserveDrift(target string)
	ObserveReconcile(seconds float64)
}

// Drift is a stored counter that did not match its live count.
type Drift struct {
	Target
	Field  string
	Stored int64
	Live   int64
}

type Report struct {
	Companies   int
	Departments int
	Drifted     []Drift
	Skipped     []Skip
	Failed      map[int64]error
}

type reconcileJob struct {
	companyID int64
}

type reconcileWorker struct {
	id         int
	workerPool chan chan reconcileJob
	jobChannel chan reconcileJob
	logger     *slog.Logger
}

func newReconcileWorker(id int, workerPool chan chan reconcileJob, logger *slog.Logger) *reconcileWorker {
	return &reconcileWorker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan reconcileJob),
		logger:     logger,
	}
}

func (w *reconcileWorker) start(ctx context.Context, wg *sync.WaitGroup, process func(reconcileJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("worker reconciling company", "worker_id", w.id, "company_id", job.companyID)
				process(job)
			case <-ctx.Done():
				w.logger.Debug("worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// Reconciler recounts every company and department, one company per
// transaction, spread over a pool of workers.
type Reconciler struct {
	db        *gorm.DB
	recounter *Recounter
	recorder  DriftRecorder
	logger    *slog.Logger
	workers   int
}

func NewReconciler(db *gorm.DB, recounter *Recounter, recorder DriftRecorder, logger *slog.Logger, workers int) *Reconciler {
	if workers <= 0 {
		workers = 4
	}
	return &Reconciler{
		db:        db,
		recounter: recounter,
		recorder:  recorder,
		logger:    logger,
		workers:   workers,
	}
}

func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	started := time.Now()

	var companyIDs []int64
	if err := r.db.WithContext(ctx).Model(&companyDatamodel.Company{}).Order("id").Pluck("id", &companyIDs).Error; err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	report := &Report{Failed: make(map[int64]error)}
	var mu sync.Mutex

	process := func(job reconcileJob) {
		res, err := r.reconcileCompany(ctx, job.companyID)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed[job.companyID] = err
			r.logger.Error("company reconciliation failed", "company_id", job.companyID, "error", err)
			return
		}
		report.Companies++
		report.Departments += res.departments
		report.Drifted = append(report.Drifted, res.drifted...)
		report.Skipped = append(report.Skipped, res.skipped...)
		r.recounter.PublishSkips(ctx, Outcome{Skipped: res.skipped})
	}

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	workerPool := make(chan chan reconcileJob, r.workers)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		newReconcileWorker(i, workerPool, r.logger).start(poolCtx, &wg, process)
	}

dispatch:
	for _, id := range companyIDs {
		select {
		case jobChannel := <-workerPool:
			select {
			case jobChannel <- reconcileJob{companyID: id}:
			case <-ctx.Done():
				break dispatch
			}
		case <-ctx.Done():
			break dispatch
		}
	}

	// every worker re-registers once it is idle
	for i := 0; i < r.workers && ctx.Err() == nil; i++ {
		select {
		case <-workerPool:
		case <-ctx.Done():
		}
	}
	cancel()
	wg.Wait()

	if r.recorder != nil {
		r.recorder.ObserveReconcile(time.Since(started).Seconds())
	}

	r.logger.Info("counter reconciliation finished",
		"companies", report.Companies,
		"departments", report.Departments,
		"drifted", len(report.Drifted),
		"skipped", len(report.Skipped),
		"failed", len(report.Failed),
		"duration", time.Since(started))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

type companyResult struct {
	departments int
	drifted     []Drift
	skipped     []Skip
}

func (r *Reconciler) reconcileCompany(ctx context.Context, companyID int64) (companyResult, error) {
	var res companyResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res = companyResult{}

		var departmentIDs []int64
		if err := tx.Model(&departmentDatamodel.Department{}).Where("company_id = ?", companyID).Order("id").Pluck("id", &departmentIDs).Error; err != nil {
			return fmt.Errorf("list departments: %w", err)
		}

		parents := NewParents().AddCompany(companyID)
		for _, id := range departmentIDs {
			parents.DepartmentIDs = appendUnique(parents.DepartmentIDs, id)
		}

		locked, err := r.recounter.LockParents(ctx, tx, parents)
		if err != nil {
			return err
		}
		if !locked.HasCompany(companyID) {
			// deleted since the id list was read
			return nil
		}

		before, err := snapshot(tx, companyID)
		if err != nil {
			return err
		}

		outcome := r.recounter.AfterEmployeeWrite(ctx, tx, parents)
		res.skipped = outcome.Skipped

		after, err := snapshot(tx, companyID)
		if err != nil {
			return err
		}

		res.departments = len(after.departments)
		res.drifted = diff(before, after)
		for _, d := range res.drifted {
			if r.recorder != nil {
				r.recorder.ObserveDrift(string(d.Kind))
			}
			r.logger.Info("counter drift repaired",
				"target", string(d.Kind),
				"target_id", d.ID,
				"field", d.Field,
				"stored", d.Stored,
				"live", d.Live)
		}
		return nil
	})

	return res, err
}

type counterSnapshot struct {
	company     companyDatamodel.Company
	departments map[int64]int64
}

func snapshot(tx *gorm.DB, companyID int64) (counterSnapshot, error) {
	snap := counterSnapshot{departments: make(map[int64]int64)}
	if err := tx.First(&snap.company, companyID).Error; err != nil {
		return snap, fmt.Errorf("read company %d: %w", companyID, err)
	}

	var departments []departmentDatamodel.Department
	if err := tx.Where("company_id = ?", companyID).Find(&departments).Error; err != nil {
		return snap, fmt.Errorf("read departments of company %d: %w", companyID, err)
	}
	for _, d := range departments {
		snap.departments[d.ID] = d.EmployeeCount
	}
	return snap, nil
}

func diff(before, after counterSnapshot) []Drift {
	var drifted []Drift
	companyTarget := Target{Kind: KindCompany, ID: after.company.ID}
	if before.company.EmployeeCount != after.company.EmployeeCount {
		drifted = append(drifted, Drift{Target: companyTarget, Field: "employee_count", Stored: before.company.EmployeeCount, Live: after.company.EmployeeCount})
	}
	if before.company.DepartmentCount != after.company.DepartmentCount {
		drifted = append(drifted, Drift{Target: companyTarget, Field: "department_count", Stored: before.company.DepartmentCount, Live: after.company.DepartmentCount})
	}
	for id, live := range after.departments {
		if stored := before.departments[id]; stored != live {
			drifted = append(drifted, Drift{Target: Target{Kind: KindDepartment, ID: id}, Field: "employee_count", Stored: stored, Live: live})
		}
	}
	return drifted
}
