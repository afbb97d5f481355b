package counter_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/department"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/core/testdb"
	"github.com/frahmantamala/employee-management/internal/counter"
)

func TestCounter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Counter Suite")
}

type recordingRecorder struct {
	mu      sync.Mutex
	counts  map[string]int
	drifted map[string]int
	runs    int
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{counts: map[string]int{}, drifted: map[string]int{}}
}

func (r *recordingRecorder) ObserveRecount(target, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[target+"/"+outcome]++
}

func (r *recordingRecorder) ObserveDrift(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drifted[target]++
}

func (r *recordingRecorder) ObserveReconcile(seconds float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustCreate(db *gorm.DB, value interface{}) {
	ExpectWithOffset(1, db.Create(value).Error).NotTo(HaveOccurred())
}

func reload[T any](db *gorm.DB, id int64) T {
	var row T
	ExpectWithOffset(1, db.First(&row, id).Error).NotTo(HaveOccurred())
	return row
}

var _ = Describe("Recounter", func() {
	var (
		db        *gorm.DB
		recorder  *recordingRecorder
		publisher *recordingPublisher
		recounter *counter.Recounter
		ctx       context.Context

		acme *companyDatamodel.Company
		eng  *departmentDatamodel.Department
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		recorder = newRecordingRecorder()
		publisher = &recordingPublisher{}
		recounter = counter.NewRecounter(discardLogger(), recorder, publisher)

		acme = &companyDatamodel.Company{Name: "Acme"}
		mustCreate(db, acme)
		eng = &departmentDatamodel.Department{Name: "Eng", CompanyID: acme.ID}
		mustCreate(db, eng)
	})

	addEmployee := func(companyID, departmentID int64) *employeeDatamodel.Employee {
		e := &employeeDatamodel.Employee{
			CompanyID:    companyID,
			DepartmentID: departmentID,
			Status:       "application_received",
			PhoneNumber:  "+12345678901",
			Address:      "1 Main St",
			Designation:  "Engineer",
		}
		mustCreate(db, e)
		return e
	}

	Describe("AfterEmployeeWrite", func() {
		It("derives every counter from live rows", func() {
			addEmployee(acme.ID, eng.ID)
			addEmployee(acme.ID, eng.ID)

			out := recounter.AfterEmployeeWrite(ctx, db, counter.NewParents().AddEmployee(acme.ID, eng.ID))
			Expect(out.Clean()).To(BeTrue())
			Expect(out.Applied).To(ConsistOf(
				counter.Target{Kind: counter.KindDepartment, ID: eng.ID},
				counter.Target{Kind: counter.KindCompany, ID: acme.ID},
			))

			Expect(reload[departmentDatamodel.Department](db, eng.ID).EmployeeCount).To(Equal(int64(2)))
			company := reload[companyDatamodel.Company](db, acme.ID)
			Expect(company.EmployeeCount).To(Equal(int64(2)))
			Expect(company.DepartmentCount).To(Equal(int64(1)))
			Expect(recorder.counts).To(HaveKeyWithValue("company/applied", 1))
		})

		It("is idempotent", func() {
			addEmployee(acme.ID, eng.ID)
			parents := counter.NewParents().AddEmployee(acme.ID, eng.ID)

			recounter.AfterEmployeeWrite(ctx, db, parents)
			first := reload[companyDatamodel.Company](db, acme.ID)
			recounter.AfterEmployeeWrite(ctx, db, parents)
			second := reload[companyDatamodel.Company](db, acme.ID)

			Expect(second.EmployeeCount).To(Equal(first.EmployeeCount))
			Expect(second.DepartmentCount).To(Equal(first.DepartmentCount))
		})

		It("counts down to zero after a delete", func() {
			e := addEmployee(acme.ID, eng.ID)
			recounter.AfterEmployeeWrite(ctx, db, counter.NewParents().AddEmployee(acme.ID, eng.ID))

			Expect(db.Delete(&employeeDatamodel.Employee{}, e.ID).Error).NotTo(HaveOccurred())
			recounter.AfterEmployeeWrite(ctx, db, counter.NewParents().AddEmployee(acme.ID, eng.ID))

			Expect(reload[departmentDatamodel.Department](db, eng.ID).EmployeeCount).To(BeZero())
			company := reload[companyDatamodel.Company](db, acme.ID)
			Expect(company.EmployeeCount).To(BeZero())
			Expect(company.DepartmentCount).To(Equal(int64(1)))
		})

		It("reports a missing parent as a skip, not an error", func() {
			out := recounter.AfterEmployeeWrite(ctx, db, counter.NewParents().AddEmployee(acme.ID, 9999))

			Expect(out.Clean()).To(BeFalse())
			Expect(out.Skipped).To(HaveLen(1))
			Expect(out.Skipped[0].Target).To(Equal(counter.Target{Kind: counter.KindDepartment, ID: 9999}))
			Expect(out.Skipped[0].Reason).To(Equal(counter.ReasonMissingParent))
			Expect(out.Applied).To(ConsistOf(counter.Target{Kind: counter.KindCompany, ID: acme.ID}))

			Expect(recorder.counts).To(HaveKeyWithValue("department/skipped", 1))
			Expect(publisher.events).To(BeEmpty())

			recounter.PublishSkips(ctx, out)
			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeCounterRecountSkipped))
		})

		It("leaves skips unpublished when the surrounding transaction rolls back", func() {
			rollback := errors.New("rollback")
			err := db.Transaction(func(tx *gorm.DB) error {
				out := recounter.AfterEmployeeWrite(ctx, tx, counter.NewParents().AddEmployee(acme.ID, 9999))
				Expect(out.Skipped).To(HaveLen(1))
				return rollback
			})
			Expect(err).To(MatchError(rollback))
			Expect(publisher.events).To(BeEmpty())
		})

		It("rolls back only the failed recount and keeps the primary write", func() {
			err := db.Transaction(func(tx *gorm.DB) error {
				e := &employeeDatamodel.Employee{
					CompanyID: acme.ID, DepartmentID: eng.ID, Status: "hired",
					PhoneNumber: "+12345678901", Address: "x", Designation: "y",
				}
				if err := tx.Create(e).Error; err != nil {
					return err
				}
				if err := tx.Migrator().DropTable(&departmentDatamodel.Department{}); err != nil {
					return err
				}

				out := recounter.AfterEmployeeWrite(ctx, tx, counter.NewParents().AddEmployee(acme.ID, eng.ID))
				Expect(out.Applied).To(BeEmpty())
				Expect(out.Skipped).To(HaveLen(2))
				for _, s := range out.Skipped {
					Expect(s.Reason).To(Equal(counter.ReasonError))
					Expect(s.Err).To(HaveOccurred())
				}
				return nil
			})
			Expect(err).NotTo(HaveOccurred())

			var count int64
			Expect(db.Model(&employeeDatamodel.Employee{}).Count(&count).Error).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))
		})
	})

	Describe("AfterDepartmentWrite", func() {
		It("recounts only department_count", func() {
			addEmployee(acme.ID, eng.ID)
			mustCreate(db, &departmentDatamodel.Department{Name: "Ops", CompanyID: acme.ID})

			out := recounter.AfterDepartmentWrite(ctx, db, acme.ID, acme.ID)
			Expect(out.Applied).To(HaveLen(1))

			company := reload[companyDatamodel.Company](db, acme.ID)
			Expect(company.DepartmentCount).To(Equal(int64(2)))
			Expect(company.EmployeeCount).To(BeZero())
		})
	})

	Describe("AfterDepartmentDelete", func() {
		It("recounts both company counters", func() {
			addEmployee(acme.ID, eng.ID)
			recounter.AfterEmployeeWrite(ctx, db, counter.NewParents().AddEmployee(acme.ID, eng.ID))

			Expect(db.Where("department_id = ?", eng.ID).Delete(&employeeDatamodel.Employee{}).Error).NotTo(HaveOccurred())
			Expect(db.Delete(&departmentDatamodel.Department{}, eng.ID).Error).NotTo(HaveOccurred())

			out := recounter.AfterDepartmentDelete(ctx, db, acme.ID)
			Expect(out.Clean()).To(BeTrue())

			company := reload[companyDatamodel.Company](db, acme.ID)
			Expect(company.DepartmentCount).To(BeZero())
			Expect(company.EmployeeCount).To(BeZero())
		})
	})

	Describe("LockParents", func() {
		It("reports existing rows and department ownership", func() {
			other := &companyDatamodel.Company{Name: "Other"}
			mustCreate(db, other)

			p := counter.NewParents().AddEmployee(other.ID, eng.ID).AddEmployee(acme.ID, 4242)
			locked, err := recounter.LockParents(ctx, db, p)
			Expect(err).NotTo(HaveOccurred())

			Expect(locked.HasCompany(acme.ID)).To(BeTrue())
			Expect(locked.HasCompany(other.ID)).To(BeTrue())
			Expect(locked.HasDepartment(eng.ID)).To(BeTrue())
			Expect(locked.HasDepartment(4242)).To(BeFalse())

			owner, ok := locked.CompanyOf(eng.ID)
			Expect(ok).To(BeTrue())
			Expect(owner).To(Equal(acme.ID))
		})
	})

	Describe("Reconciler", func() {
		It("repairs drifted counters across companies", func() {
			addEmployee(acme.ID, eng.ID)
			addEmployee(acme.ID, eng.ID)

			globex := &companyDatamodel.Company{Name: "Globex"}
			mustCreate(db, globex)
			sales := &departmentDatamodel.Department{Name: "Sales", CompanyID: globex.ID}
			mustCreate(db, sales)
			addEmployee(globex.ID, sales.ID)

			Expect(db.Model(&companyDatamodel.Company{}).Where("id = ?", acme.ID).
				UpdateColumn("employee_count", 17).Error).NotTo(HaveOccurred())

			reconciler := counter.NewReconciler(db, recounter, recorder, discardLogger(), 3)
			report, err := reconciler.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Companies).To(Equal(2))
			Expect(report.Departments).To(Equal(2))
			Expect(report.Failed).To(BeEmpty())
			Expect(report.Drifted).To(ContainElement(counter.Drift{
				Target: counter.Target{Kind: counter.KindCompany, ID: acme.ID},
				Field:  "employee_count",
				Stored: 17,
				Live:   2,
			}))

			Expect(reload[companyDatamodel.Company](db, acme.ID).EmployeeCount).To(Equal(int64(2)))
			Expect(reload[companyDatamodel.Company](db, globex.ID).DepartmentCount).To(Equal(int64(1)))
			Expect(reload[departmentDatamodel.Department](db, sales.ID).EmployeeCount).To(Equal(int64(1)))
			Expect(recorder.runs).To(Equal(1))
		})

		It("finds nothing to repair on a second run", func() {
			addEmployee(acme.ID, eng.ID)
			reconciler := counter.NewReconciler(db, recounter, recorder, discardLogger(), 2)

			_, err := reconciler.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			report, err := reconciler.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Drifted).To(BeEmpty())
		})
	})
})
