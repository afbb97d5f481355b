package internal_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/internal"
)

func TestInternal(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Internal Suite")
}

var _ = Describe("Config", func() {
	var cfg *internal.Config

	BeforeEach(func() {
		cfg = &internal.Config{
			Server: internal.ServerConfig{ReadHeaderTimeout: 5 * time.Second, ReadTimeout: 15 * time.Second},
			Database: internal.DatabaseConfig{
				Source:          "postgres://localhost/employees",
				MaxOpenConns:    10,
				MaxIdleConns:    5,
				ConnMaxLifetime: 30 * time.Minute,
				ConnMaxIdleTime: 5 * time.Minute,
			},
			Security: internal.SecurityConfig{
				AccessTokenSecret:    "access-secret-access-secret-access-secret",
				RefreshTokenSecret:   "refresh-secret-refresh-secret-refresh-secret",
				AccessTokenDuration:  5 * time.Minute,
				RefreshTokenDuration: 24 * time.Hour,
				BCryptCost:           12,
			},
			Pagination: internal.PaginationConfig{DefaultPageSize: 10, MaxPageSize: 100},
			Observability: internal.ObservabilityConfig{
				Metrics: internal.MetricsConfig{Enabled: true, Path: "/metrics"},
				Logging: internal.LoggingConfig{Level: "info", Format: "json"},
			},
		}
	})

	It("accepts a complete config", func() {
		Expect(cfg.Validate()).To(Succeed())
	})

	It("requires distinct signing secrets", func() {
		cfg.Security.RefreshTokenSecret = cfg.Security.AccessTokenSecret
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("must differ")))
	})

	It("reports struct tag violations by field", func() {
		cfg.Security.BCryptCost = 4
		cfg.Observability.Logging.Format = "xml"

		err := cfg.Validate()
		Expect(err).To(MatchError(ContainSubstring("Config.Security.BCryptCost")))
		Expect(err).To(MatchError(ContainSubstring("Config.Observability.Logging.Format")))
	})

	It("keeps the default page size within the max", func() {
		cfg.Pagination.MaxPageSize = 5
		Expect(cfg.Validate()).To(MatchError(ContainSubstring("max_page_size")))
	})

	It("loads from the environment", func() {
		GinkgoT().Setenv("DATABASE_URL", "postgres://db/employees")
		GinkgoT().Setenv("JWT_ACCESS_SECRET", "access-secret-access-secret-access-secret")
		GinkgoT().Setenv("JWT_REFRESH_SECRET", "refresh-secret-refresh-secret-refresh-secret")
		GinkgoT().Setenv("PAGE_SIZE", "25")

		loaded, err := internal.LoadConfigFromEnv()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Pagination.DefaultPageSize).To(Equal(25))
		Expect(loaded.Server.LoginBurst).To(Equal(10))
	})
})
