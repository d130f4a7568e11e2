package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniconnect/uniconnect-api/internal/models"
)

const complaintDetailColumns = `cp.id, cp.title, cp.description, cp.status, cp.is_anonymous, cp.student_id, cp.category_id, cp.created_at, cp.updated_at, a.full_name AS author_name, cn.name AS category_name`

const complaintDetailFrom = `FROM complaints cp JOIN accounts a ON a.id = cp.student_id JOIN category_names cn ON cn.category_id = cp.category_id`

// ComplaintRepository provides database access to the complaint ledger.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates a new instance of ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a complaint row. Status and timestamps are set by the caller.
func (r *ComplaintRepository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = now
	}
	complaint.UpdatedAt = now

	const query = `INSERT INTO complaints (id, title, description, status, is_anonymous, student_id, category_id, created_at, updated_at) VALUES (:id, :title, :description, :status, :is_anonymous, :student_id, :category_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, complaint); err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

// FindByID returns one complaint joined with author and category names.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.ComplaintDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE cp.id = $1 LIMIT 1`, complaintDetailColumns, complaintDetailFrom)
	var detail models.ComplaintDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint by id: %w", err)
	}
	return &detail, nil
}

// ListByStudent returns all complaints authored by the student, newest first.
func (r *ComplaintRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ComplaintDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE cp.student_id = $1 ORDER BY cp.created_at DESC`, complaintDetailColumns, complaintDetailFrom)
	var complaints []models.ComplaintDetail
	if err := r.db.SelectContext(ctx, &complaints, query, studentID); err != nil {
		return nil, fmt.Errorf("list complaints by student: %w", err)
	}
	return complaints, nil
}

// ListByCategoryName returns all complaints whose category name equals the
// given department, newest first.
func (r *ComplaintRepository) ListByCategoryName(ctx context.Context, department string) ([]models.ComplaintDetail, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE cn.name = $1 ORDER BY cp.created_at DESC`, complaintDetailColumns, complaintDetailFrom)
	var complaints []models.ComplaintDetail
	if err := r.db.SelectContext(ctx, &complaints, query, department); err != nil {
		return nil, fmt.Errorf("list complaints by category name: %w", err)
	}
	return complaints, nil
}

// ListFiltered returns ledger rows matching optional status and category
// filters; used by the export pipeline.
func (r *ComplaintRepository) ListFiltered(ctx context.Context, status *models.ComplaintStatus, categoryID *string) ([]models.ComplaintDetail, error) {
	var conditions []string
	var args []interface{}

	if status != nil {
		conditions = append(conditions, fmt.Sprintf("cp.status = $%d", len(args)+1))
		args = append(args, *status)
	}
	if categoryID != nil && *categoryID != "" {
		conditions = append(conditions, fmt.Sprintf("cp.category_id = $%d", len(args)+1))
		args = append(args, *categoryID)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY cp.created_at DESC`, complaintDetailColumns, complaintDetailFrom, where)
	var complaints []models.ComplaintDetail
	if err := r.db.SelectContext(ctx, &complaints, query, args...); err != nil {
		return nil, fmt.Errorf("list filtered complaints: %w", err)
	}
	return complaints, nil
}

// UpdateStatus overwrites the status unconditionally. Last writer wins; there
// is no version check.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	const query = `UPDATE complaints SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update complaint status: %w", err)
	}
	return nil
}

// UpdateCategory reassigns the complaint to a new category.
func (r *ComplaintRepository) UpdateCategory(ctx context.Context, id string, categoryID string) error {
	const query = `UPDATE complaints SET category_id = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, categoryID, time.Now().UTC()); err != nil {
		return fmt.Errorf("update complaint category: %w", err)
	}
	return nil
}

// CountByStatus aggregates ledger rows per status label.
func (r *ComplaintRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM complaints GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count complaints by status: %w", err)
	}
	return counts, nil
}

// CountByCategory aggregates ledger rows per category name.
func (r *ComplaintRepository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	const query = `SELECT cn.name, COUNT(*) AS count FROM complaints cp JOIN category_names cn ON cn.category_id = cp.category_id GROUP BY cn.name`
	var counts []models.CategoryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count complaints by category: %w", err)
	}
	return counts, nil
}

// CountAll returns the total number of complaints.
func (r *ComplaintRepository) CountAll(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM complaints`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count complaints: %w", err)
	}
	return total, nil
}
