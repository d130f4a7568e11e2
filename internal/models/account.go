package models

import "time"

// AccountRole represents the available roles for the RBAC system.
type AccountRole string

const (
	RoleAdmin   AccountRole = "ADMIN"
	RoleStaff   AccountRole = "STAFF"
	RoleStudent AccountRole = "STUDENT"
)

// ValidRole reports whether the provided role is one of the recognized values.
func ValidRole(role AccountRole) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	default:
		return false
	}
}

// Account represents any application identity stored in the accounts table.
// Department names a complaint category for STAFF and an academic department
// for STUDENT; it is empty for ADMIN.
type Account struct {
	ID           string      `db:"id" json:"id"`
	Email        string      `db:"email" json:"email"`
	PasswordHash string      `db:"password_hash" json:"-"`
	FullName     string      `db:"full_name" json:"full_name"`
	Role         AccountRole `db:"role" json:"role"`
	Department   string      `db:"department" json:"department,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// AccountFilter captures filtering criteria for listing accounts.
type AccountFilter struct {
	Role      *AccountRole
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
