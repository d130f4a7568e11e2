package models

import "time"

// ComplaintStatus enumerates the complaint lifecycle labels. All transitions
// are permitted in both directions; there is no terminal state.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

// ValidStatus reports whether the value is one of the enumerated statuses.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	default:
		return false
	}
}

// Complaint is the central mutable entity. The author reference is always
// stored; anonymity is applied when serializing for staff and admin readers.
type Complaint struct {
	ID          string          `db:"id" json:"id"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Status      ComplaintStatus `db:"status" json:"status"`
	IsAnonymous bool            `db:"is_anonymous" json:"is_anonymous"`
	StudentID   string          `db:"student_id" json:"student_id"`
	CategoryID  string          `db:"category_id" json:"category_id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ComplaintDetail joins a complaint with its author and category names for
// list rendering.
type ComplaintDetail struct {
	Complaint
	AuthorName   string `db:"author_name" json:"author_name"`
	CategoryName string `db:"category_name" json:"category_name"`
}

// ComplaintView is the serialized form returned to clients. AuthorName is
// masked for anonymous complaints when the reader is not the author.
type ComplaintView struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Status       ComplaintStatus `json:"status"`
	IsAnonymous  bool            `json:"is_anonymous"`
	AuthorName   string          `json:"author_name"`
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	CreatedAt    time.Time       `json:"created_at"`
}

// CreateComplaintRequest is the student-facing lodge payload. Status is not
// accepted from clients; new complaints always start Pending.
type CreateComplaintRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	CategoryID  string `json:"category_id" validate:"required"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// UpdateStatusRequest carries a staff status change.
type UpdateStatusRequest struct {
	Status ComplaintStatus `json:"status" validate:"required"`
}

// AssignCategoryRequest carries an admin category reassignment.
type AssignCategoryRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
}

// ComplaintStats aggregates ledger counts for the admin dashboard.
type ComplaintStats struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	ByCategory  map[string]int `json:"by_category"`
	GeneratedAt time.Time      `json:"generated_at"`
}

// StatusCount is a per-status aggregation row.
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// CategoryCount is a per-category aggregation row.
type CategoryCount struct {
	Name  string `db:"name"`
	Count int    `db:"count"`
}
