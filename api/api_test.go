package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/api"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var _ = Describe("OpenAPI document", func() {
	It("loads and validates", func() {
		doc, err := api.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Info.Title).To(Equal("Employee Management API"))
	})

	It("documents every management route", func() {
		doc, err := api.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())

		for _, path := range []string{
			"/api/auth/token/",
			"/api/auth/token/refresh/",
			"/api/companies/",
			"/api/companies/all/",
			"/api/companies/{id}/",
			"/api/departments/update/{id}/",
			"/api/employees/hired/",
			"/api/employees/status/{id}/",
			"/api/dashboard/",
			"/api/user-accounts/",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), path)
		}
	})

	It("constrains status to the closed enum", func() {
		doc, err := api.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())

		status := doc.Components.Schemas["EmployeeStatus"].Value
		Expect(status.Enum).To(ConsistOf("application_received", "interview_scheduled", "hired", "not_accepted"))
	})

	It("serves the raw YAML", func() {
		rec := httptest.NewRecorder()
		api.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/yaml"))
		Expect(rec.Body.Bytes()).To(Equal(api.Document()))
	})
})
