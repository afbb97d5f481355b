package user

import (
	"errors"
	"strings"
	"time"

	userDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/user"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// CanManage reports whether the role may use the management API.
func (r Role) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}

func RoleNames() []string {
	names := make([]string, len(Roles))
	for i, r := range Roles {
		names[i] = string(r)
	}
	return names
}

type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	DateJoined   time.Time  `json:"date_joined"`
	LastLogin    *time.Time `json:"last_login"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

var ErrNotFound = errors.New("user not found")

// NormalizeEmail lowercases the domain part and trims surrounding space. The
// local part is kept as typed.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		DateJoined:   u.DateJoined,
		LastLogin:    u.LastLogin,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         Role(u.Role),
		IsActive:     u.IsActive,
		IsStaff:      u.IsStaff,
		DateJoined:   u.DateJoined,
		LastLogin:    u.LastLogin,
	}
}
