package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/auth"
	authPostgres "github.com/frahmantamala/employee-management/internal/auth/postgres"
	"github.com/frahmantamala/employee-management/internal/company"
	companyPostgres "github.com/frahmantamala/employee-management/internal/company/postgres"
	"github.com/frahmantamala/employee-management/internal/core/events"
	"github.com/frahmantamala/employee-management/internal/core/testdb"
	"github.com/frahmantamala/employee-management/internal/counter"
	"github.com/frahmantamala/employee-management/internal/dashboard"
	dashboardPostgres "github.com/frahmantamala/employee-management/internal/dashboard/postgres"
	"github.com/frahmantamala/employee-management/internal/department"
	departmentPostgres "github.com/frahmantamala/employee-management/internal/department/postgres"
	"github.com/frahmantamala/employee-management/internal/employee"
	employeePostgres "github.com/frahmantamala/employee-management/internal/employee/postgres"
	"github.com/frahmantamala/employee-management/internal/metrics"
	"github.com/frahmantamala/employee-management/internal/transport/rest"
	"github.com/frahmantamala/employee-management/internal/user"
	userPostgres "github.com/frahmantamala/employee-management/internal/user/postgres"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "REST Router Suite")
}

type envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    json.RawMessage        `json:"data"`
	Errors  map[string]interface{} `json:"errors"`
}

var _ = Describe("Router", func() {
	var (
		router *chi.Mux
		users  *user.Service
		ctx    context.Context
	)

	BeforeEach(func() {
		db, err := testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		m := metrics.New()
		bus := events.NewEventBus(lg)
		recounter := counter.NewRecounter(lg, m, bus)

		cfg := &internal.Config{
			Pagination: internal.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
			Observability: internal.ObservabilityConfig{
				Metrics: internal.MetricsConfig{Enabled: true, Path: "/metrics"},
			},
		}

		users = user.NewService(userPostgres.NewUserRepository(db), bcrypt.MinCost, lg)
		authService := auth.NewService(
			authPostgres.NewAuthRepository(db),
			auth.NewJWTTokenGenerator(strings.Repeat("a", 32), strings.Repeat("r", 32), 5*time.Minute, time.Hour),
			lg,
		)

		companies := company.NewService(db, companyPostgres.NewCompanyRepository(db), recounter, lg)
		departments := department.NewService(db, departmentPostgres.NewDepartmentRepository(db), recounter, lg)
		employees := employee.NewService(db, employeePostgres.NewEmployeeRepository(db), recounter, bus, lg)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, cfg, rest.Handlers{
			Health:     rest.NewHealthHandler(sqlDB),
			Auth:       auth.NewHandler(authService),
			RBAC:       auth.NewRBACAuthorization(lg),
			User:       user.NewHandler(users, cfg.Pagination),
			Company:    company.NewHandler(companies, cfg.Pagination),
			Department: department.NewHandler(departments, cfg.Pagination),
			Employee:   employee.NewHandler(employees, cfg.Pagination),
			Dashboard:  dashboard.NewHandler(dashboard.NewService(dashboardPostgres.NewDashboardRepository(sqlx.NewDb(sqlDB, "sqlite3")), lg)),
			Metrics:    m,
		}, lg)
	})

	do := func(method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, "http://example.com"+path, reader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		var env envelope
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
		return rec, env
	}

	login := func(email, role string) string {
		_, err := users.Create(ctx, user.CreateUserDTO{Email: email, Name: "Someone", Password: "pw", Role: role})
		Expect(err).NotTo(HaveOccurred())

		rec, env := do(http.MethodPost, "/api/auth/token/", "", `{"email":"`+email+`","password":"pw"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var tokens auth.AuthTokens
		Expect(json.Unmarshal(env.Data, &tokens)).To(Succeed())
		Expect(tokens.Refresh).NotTo(BeEmpty())
		return tokens.Access
	}

	It("answers liveness and readiness without a token", func() {
		rec, _ := do(http.MethodGet, "/api/ping", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec, _ = do(http.MethodGet, "/api/health", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"postgres"`))
	})

	It("serves the OpenAPI document and metrics", func() {
		rec, _ := do(http.MethodGet, "/openapi.yml", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))

		do(http.MethodGet, "/api/ping", "", "")
		rec, _ = do(http.MethodGet, "/metrics", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("employee_management_http_requests_total"))
	})

	It("rejects management calls without credentials", func() {
		rec, env := do(http.MethodGet, "/api/companies/", "", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(env.Message).To(Equal("Authentication credentials were not provided."))
	})

	It("rejects a malformed token", func() {
		rec, env := do(http.MethodGet, "/api/companies/", "not-a-jwt", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(env.Message).To(Equal("Given token not valid for any token type"))
	})

	It("forbids the employee role", func() {
		token := login("staff@example.com", "employee")
		rec, env := do(http.MethodGet, "/api/companies/", token, "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(env.Message).To(Equal("You do not have permission to perform this action."))
	})

	It("keeps user accounts admin only", func() {
		token := login("boss@example.com", "manager")
		rec, _ := do(http.MethodGet, "/api/user-accounts/", token, "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))

		token = login("root@example.com", "admin")
		rec, env := do(http.MethodGet, "/api/user-accounts/", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(env.Message).To(Equal("User accounts retrieved successfully"))
	})

	It("lets a manager build a company and see the counters", func() {
		token := login("boss@example.com", "manager")

		rec, env := do(http.MethodPost, "/api/companies/create/", token, `{"name":"Acme"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var acme company.Company
		Expect(json.Unmarshal(env.Data, &acme)).To(Succeed())

		rec, env = do(http.MethodPost, "/api/departments/create/", token, `{"name":"Eng","company":`+itoa(acme.ID)+`}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var eng department.Department
		Expect(json.Unmarshal(env.Data, &eng)).To(Succeed())

		rec, _ = do(http.MethodPost, "/api/employees/create/", token, `{
			"company": `+itoa(acme.ID)+`,
			"department": `+itoa(eng.ID)+`,
			"phone_number": "+12345678901",
			"address": "1 Main St",
			"designation": "Engineer"
		}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec, env = do(http.MethodGet, "/api/companies/"+itoa(acme.ID)+"/", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(env.Data, &acme)).To(Succeed())
		Expect(acme.EmployeeCount).To(Equal(int64(1)))
		Expect(acme.DepartmentCount).To(Equal(int64(1)))

		rec, env = do(http.MethodGet, "/api/dashboard/", token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var totals dashboard.Totals
		Expect(json.Unmarshal(env.Data, &totals)).To(Succeed())
		Expect(totals).To(Equal(dashboard.Totals{TotalCompanies: 1, TotalDepartments: 1, TotalEmployees: 1}))
	})

	It("answers unknown routes with a 404 envelope", func() {
		rec, env := do(http.MethodGet, "/api/nope/", "", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(env.Success).To(BeFalse())
	})
})

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
