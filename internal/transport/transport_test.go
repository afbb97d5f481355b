package transport_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/transport"
)

func TestTransport(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Transport Suite")
}

func decodeEnvelope(rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body
}

var _ = Describe("BaseHandler", func() {
	var h *transport.BaseHandler

	BeforeEach(func() {
		h = transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("envelope", func() {
		It("writes success envelopes", func() {
			rec := httptest.NewRecorder()
			h.WriteSuccess(rec, http.StatusCreated, "Employee created successfully", map[string]int{"id": 1})

			Expect(rec.Code).To(Equal(http.StatusCreated))
			body := decodeEnvelope(rec)
			Expect(body["success"]).To(BeTrue())
			Expect(body["message"]).To(Equal("Employee created successfully"))
			Expect(body["data"]).To(HaveKeyWithValue("id", 1.0))
			Expect(body).To(HaveKeyWithValue("errors", BeNil()))
		})

		It("renders validation errors keyed by field with the caller's message", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/employees/create/", nil)
			err := internal.NewValidationFieldError("department", "The department must belong to the specified company.", internal.ErrCodeCompanyMismatch)

			h.WriteAppError(rec, req, err, "Failed to create employee")

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			body := decodeEnvelope(rec)
			Expect(body["success"]).To(BeFalse())
			Expect(body["message"]).To(Equal("Failed to create employee"))
			Expect(body["errors"]).To(HaveKeyWithValue("department",
				ConsistOf("The department must belong to the specified company.")))
		})

		It("keeps the not-found message", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/employees/9/", nil)
			h.WriteAppError(rec, req, internal.ErrEmployeeNotFound, "Failed to update employee")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(decodeEnvelope(rec)["message"]).To(Equal("Employee not found"))
		})

		It("hides unexpected errors behind a 500", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
			h.WriteAppError(rec, req, errors.New("connection reset"), "")

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			body := decodeEnvelope(rec)
			Expect(body["message"]).To(Equal("Internal server error"))
			Expect(rec.Body.String()).NotTo(ContainSubstring("connection reset"))
		})
	})

	Describe("DecodeJSON", func() {
		It("rejects malformed bodies with a validation error", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))
			var dst map[string]interface{}

			err := h.DecodeJSON(rec, req, &dst)
			Expect(internal.HasCode(err, internal.ErrCodeValidationFailed)).To(BeTrue())
		})
	})

	Describe("pagination", func() {
		It("defaults to page 1 with the configured size", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/companies/", nil)
			pr, err := h.ParsePageRequest(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(pr).To(Equal(transport.PageRequest{Page: 1, PageSize: 10}))
		})

		It("caps page_size at the max and ignores junk", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/companies/?page_size=500", nil)
			pr, _ := h.ParsePageRequest(req)
			Expect(pr.PageSize).To(Equal(100))

			req = httptest.NewRequest(http.MethodGet, "/api/companies/?page_size=abc", nil)
			pr, _ = h.ParsePageRequest(req)
			Expect(pr.PageSize).To(Equal(10))
		})

		It("rejects a malformed page", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/companies/?page=0", nil)
			_, err := h.ParsePageRequest(req)
			Expect(internal.HasCode(err, internal.ErrCodeInvalidPage)).To(BeTrue())
		})

		It("rejects a page whose offset would overflow", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/companies/?page=9223372036854775807", nil)
			_, err := h.ParsePageRequest(req)
			Expect(internal.HasCode(err, internal.ErrCodeInvalidPage)).To(BeTrue())
		})

		It("rejects a huge page without multiplying it out", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/employees/", nil)
			_, err := transport.NewPage(req, transport.PageRequest{Page: math.MaxInt, PageSize: 10}, 25, []int{})
			Expect(internal.HasCode(err, internal.ErrCodeInvalidPage)).To(BeTrue())
		})

		It("links to neighbouring pages with absolute URLs", func() {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/api/employees/?page=2&page_size=10", nil)
			page, err := transport.NewPage(req, transport.PageRequest{Page: 2, PageSize: 10}, 25, []int{})
			Expect(err).NotTo(HaveOccurred())

			Expect(page.Count).To(Equal(int64(25)))
			Expect(*page.Next).To(Equal("http://example.com/api/employees/?page=3&page_size=10"))
			Expect(*page.Previous).To(Equal("http://example.com/api/employees/?page_size=10"))
		})

		It("returns null links on a single page", func() {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/api/employees/", nil)
			page, err := transport.NewPage(req, transport.PageRequest{Page: 1, PageSize: 10}, 0, []int{})
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Next).To(BeNil())
			Expect(page.Previous).To(BeNil())
		})

		It("rejects pages past the end", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/employees/?page=4", nil)
			_, err := transport.NewPage(req, transport.PageRequest{Page: 4, PageSize: 10}, 25, []int{})
			Expect(internal.HasCode(err, internal.ErrCodeInvalidPage)).To(BeTrue())
		})
	})
})
