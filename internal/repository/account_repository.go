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

// AccountRepository provides database access for the polymorphic identity
// table shared by admins, staff, and students.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository creates a new instance of AccountRepository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByEmail returns an account by email address.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	const query = `SELECT id, email, password_hash, full_name, role, department, created_at, updated_at FROM accounts WHERE email = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return &account, nil
}

// FindByID returns an account by identifier.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	const query = `SELECT id, email, password_hash, full_name, role, department, created_at, updated_at FROM accounts WHERE id = $1 LIMIT 1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return &account, nil
}

// Create inserts a new account and returns the stored record.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	const query = `INSERT INTO accounts (id, email, password_hash, full_name, role, department, created_at, updated_at) VALUES (:id, :email, :password_hash, :full_name, :role, :department, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, account); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// List returns accounts based on filters with total count.
func (r *AccountRepository) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	baseQuery := `FROM accounts WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(full_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]bool{
		"email":      true,
		"created_at": true,
		"updated_at": true,
		"full_name":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, email, password_hash, full_name, role, department, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", baseQuery, sortBy, sortOrder, pageSize, offset)

	var accounts []models.Account
	if err := r.db.SelectContext(ctx, &accounts, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	return accounts, total, nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *AccountRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, account_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent) VALUES (:id, :account_id, :token, :expires_at, :created_at, :revoked, :revoked_at, :ip_address, :user_agent)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns a refresh token by token string.
func (r *AccountRepository) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, account_id, token, expires_at, created_at, revoked, revoked_at, ip_address, user_agent FROM refresh_tokens WHERE token = $1 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeRefreshToken marks a token as revoked.
func (r *AccountRepository) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, revokedAt); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAccountRefreshTokens revokes all refresh tokens for an account.
func (r *AccountRepository) RevokeAccountRefreshTokens(ctx context.Context, accountID string) error {
	const query = `UPDATE refresh_tokens SET revoked = TRUE, revoked_at = $2 WHERE account_id = $1 AND revoked = FALSE`
	if _, err := r.db.ExecContext(ctx, query, accountID, time.Now().UTC()); err != nil {
		return fmt.Errorf("revoke account refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *AccountRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, account_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at) VALUES (:id, :account_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
