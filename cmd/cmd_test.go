package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/internal"
	companyDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/company"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	userDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/user"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/core/testdb"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

const testConfig = `
http_server:
  port: 9090
database:
  source: postgres://localhost:5432/employees?sslmode=disable
security:
  access_token_secret: access-secret-access-secret-access-secret
  refresh_token_secret: refresh-secret-refresh-secret-refresh-secret
pagination:
  default_page_size: 20
`

var _ = Describe("loadConfig", func() {
	It("reads config.yml and fills defaults", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(testConfig), 0o600)).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Server.ReadTimeout).To(Equal(15 * time.Second))
		Expect(cfg.Pagination.DefaultPageSize).To(Equal(20))
		Expect(cfg.Pagination.MaxPageSize).To(Equal(100))
		Expect(cfg.Security.AccessTokenDuration).To(Equal(5 * time.Minute))
		Expect(cfg.Observability.Metrics.Path).To(Equal("/metrics"))
	})

	It("rejects a config without signing secrets", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte("database:\n  source: postgres://x\n"), 0o600)).To(Succeed())

		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("access token secret")))
	})
})

var _ = Describe("seed", func() {
	It("creates accounts and companies with consistent counters, and is repeatable", func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus := events.NewEventBus(lg)
		cfg := &internal.Config{Security: internal.SecurityConfig{
			AccessTokenSecret:  "access-secret-access-secret-access-secret",
			RefreshTokenSecret: "refresh-secret-refresh-secret-refresh-secret",
			BCryptCost:         4,
		}}
		svc := newServices(cfg, db, sqlDB, bus, nil, lg)
		ctx := context.Background()

		var out bytes.Buffer
		Expect(seed(ctx, db, svc, false, &out)).To(Succeed())
		bus.Wait()

		var users int64
		Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(Succeed())
		Expect(users).To(Equal(int64(3)))

		var acme companyDatamodel.Company
		Expect(db.Where("name = ?", "Acme").First(&acme).Error).To(Succeed())
		Expect(acme.DepartmentCount).To(Equal(int64(2)))
		Expect(acme.EmployeeCount).To(Equal(int64(3)))

		var hired []employeeDatamodel.Employee
		Expect(db.Where("status = ?", "hired").Find(&hired).Error).To(Succeed())
		Expect(hired).To(HaveLen(2))
		for _, e := range hired {
			Expect(e.HiredDate).NotTo(BeNil())
		}

		out.Reset()
		Expect(seed(ctx, db, svc, false, &out)).To(Succeed())
		Expect(out.String()).To(ContainSubstring("already exists"))
		Expect(out.String()).To(ContainSubstring("run with --clear"))

		Expect(seed(ctx, db, svc, true, &out)).To(Succeed())
		bus.Wait()
		var companies int64
		Expect(db.Model(&companyDatamodel.Company{}).Count(&companies).Error).To(Succeed())
		Expect(companies).To(Equal(int64(2)))
	})
})

var _ = Describe("registerEventHandlers", func() {
	It("logs hires and skipped recounts", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, nil))
		bus := events.NewEventBus(lg)
		registerEventHandlers(bus, lg)

		ctx := context.Background()
		Expect(bus.PublishSync(ctx, events.NewEmployeeHiredEvent(7, 3, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewRecountSkippedEvent("department", 9, "missing_parent", nil))).To(Succeed())

		Expect(buf.String()).To(ContainSubstring(`"hired_date":"2024-05-01"`))
		Expect(buf.String()).To(ContainSubstring(`"reason":"missing_parent"`))
	})
})
