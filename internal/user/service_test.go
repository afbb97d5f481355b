package user_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/core/testdb"
	"github.com/frahmantamala/employee-management/internal/user"
	userPostgres "github.com/frahmantamala/employee-management/internal/user/postgres"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

var _ = Describe("User Service", func() {
	var (
		db      *gorm.DB
		service *user.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		service = user.NewService(userPostgres.NewUserRepository(db), bcrypt.MinCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("Create", func() {
		It("normalizes the email domain and hashes the password", func() {
			u, err := service.Create(ctx, user.CreateUserDTO{
				Email:    "  Jane.Doe@Example.COM ",
				Name:     "Jane",
				Password: "s3cret",
				Role:     "manager",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(u.ID).NotTo(BeZero())
			Expect(u.Email).To(Equal("Jane.Doe@example.com"))
			Expect(u.Role).To(Equal(user.RoleManager))
			Expect(u.IsActive).To(BeTrue())
			Expect(bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret"))).To(Succeed())
		})

		It("defaults the role to employee", func() {
			u, err := service.Create(ctx, user.CreateUserDTO{Email: "e@example.com", Name: "E", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(user.RoleEmployee))
		})

		It("rejects invalid input field by field", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{Email: "nope", Role: "owner"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.FieldErrors()).To(And(
				HaveKey("email"), HaveKey("name"), HaveKey("password"), HaveKey("role"),
			))
		})

		It("rejects a duplicate email", func() {
			_, err := service.Create(ctx, user.CreateUserDTO{Email: "dup@example.com", Name: "A", Password: "pw"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, user.CreateUserDTO{Email: "dup@EXAMPLE.com", Name: "B", Password: "pw"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.FieldErrors()).To(HaveKeyWithValue("email", ConsistOf("user with this email already exists.")))
		})

		It("creates superusers as staff admins", func() {
			u, err := service.CreateSuperuser(ctx, "root@example.com", "Root", "pw")
			Expect(err).NotTo(HaveOccurred())
			Expect(u.IsAdmin()).To(BeTrue())
			Expect(u.IsStaff).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		It("lists accounts without exposing password hashes", func() {
			for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
				_, err := service.Create(ctx, user.CreateUserDTO{Email: email, Name: "X", Password: "pw"})
				Expect(err).NotTo(HaveOccurred())
			}

			h := user.NewHandler(service, internal.PaginationConfig{DefaultPageSize: 2, MaxPageSize: 10})
			rec := httptest.NewRecorder()
			h.ListAccounts(rec, httptest.NewRequest(http.MethodGet, "http://example.com/api/user-accounts/", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).NotTo(ContainSubstring("password"))

			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
				Data    struct {
					Count   int64       `json:"count"`
					Next    *string     `json:"next"`
					Results []user.User `json:"results"`
				} `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Message).To(Equal("User accounts retrieved successfully"))
			Expect(body.Data.Count).To(Equal(int64(3)))
			Expect(body.Data.Results).To(HaveLen(2))
			Expect(body.Data.Next).NotTo(BeNil())
		})
	})
})
