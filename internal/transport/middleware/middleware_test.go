package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

var _ = Describe("RecoveryMiddleware", func() {
	It("answers a panic with a 500 envelope", func() {
		h := RecoveryMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") }))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/companies/", nil))

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["success"]).To(BeFalse())
		Expect(body["message"]).To(Equal("Internal server error"))
	})
})

var _ = Describe("RequestID", func() {
	It("echoes an incoming trace id", func() {
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-123")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		Expect(rec.Header().Get(TraceHeader)).To(Equal("trace-123"))
	})

	It("mints a trace id when absent", func() {
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(rec.Header().Get(TraceHeader)).To(HaveLen(36))
	})
})

var _ = Describe("LoggingMiddleware", func() {
	It("filters credentials from logged bodies and keeps the request body readable", func() {
		var buf bytes.Buffer
		lg := slog.New(slog.NewJSONHandler(&buf, nil))

		var seen string
		h := LoggingMiddleware(lg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			seen = string(b)
			w.WriteHeader(http.StatusOK)
		}))

		payload := `{"email":"a@b.co","password":"hunter2"}`
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth/token/", strings.NewReader(payload)))

		Expect(seen).To(Equal(payload))
		Expect(buf.String()).NotTo(ContainSubstring("hunter2"))
		Expect(buf.String()).To(ContainSubstring("a@b.co"))
	})

	It("masks nested sensitive keys", func() {
		out := filterSensitiveJSON(map[string]interface{}{
			"data": map[string]interface{}{"access": "jwt", "name": "Jane"},
		})
		Expect(out).To(HaveKeyWithValue("data", HaveKeyWithValue("access", "[FILTERED]")))
		Expect(out).To(HaveKeyWithValue("data", HaveKeyWithValue("name", "Jane")))
	})
})

var _ = Describe("Metrics", func() {
	It("labels requests by route pattern", func() {
		requests := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests_total"}, []string{"method", "route", "status"})
		latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "latency"}, []string{"method", "route"})

		r := chi.NewRouter()
		r.Use(Metrics(requests, latency))
		r.Get("/api/employees/{id}/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/employees/42/", nil))

		Expect(testutil.ToFloat64(requests.WithLabelValues("GET", "/api/employees/{id}/", "404"))).To(Equal(1.0))
	})
})

var _ = Describe("RateLimitByIP", func() {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	hit := func(h http.Handler, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/token/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	It("throttles a client past its burst without touching others", func() {
		h := RateLimitByIP(0.001, 2)(ok)

		Expect(hit(h, "10.0.0.1:1234")).To(Equal(http.StatusOK))
		Expect(hit(h, "10.0.0.1:1235")).To(Equal(http.StatusOK))
		Expect(hit(h, "10.0.0.1:1236")).To(Equal(http.StatusTooManyRequests))
		Expect(hit(h, "10.0.0.2:1234")).To(Equal(http.StatusOK))
	})

	It("is a no-op when disabled", func() {
		h := RateLimitByIP(0, 0)(ok)
		for i := 0; i < 5; i++ {
			Expect(hit(h, "10.0.0.1:1234")).To(Equal(http.StatusOK))
		}
	})
})
