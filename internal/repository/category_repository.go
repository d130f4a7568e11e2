package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniconnect/uniconnect-api/internal/models"
)

// CategoryRepository reads the category registry. The registry is immutable
// via the API surface; Create exists for operator seeding only.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns all named categories as {id, name} pairs in insertion order.
func (r *CategoryRepository) List(ctx context.Context) ([]models.CategoryView, error) {
	const query = `SELECT c.id, cn.name FROM categories c JOIN category_names cn ON cn.category_id = c.id ORDER BY c.created_at ASC, c.id ASC`
	var categories []models.CategoryView
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Exists reports whether a named category with the given id is registered.
func (r *CategoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	const query = `SELECT COUNT(*) FROM categories c JOIN category_names cn ON cn.category_id = c.id WHERE c.id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return false, fmt.Errorf("check category exists: %w", err)
	}
	return count > 0, nil
}

// NameOf resolves the display name for a category id.
func (r *CategoryRepository) NameOf(ctx context.Context, id string) (string, error) {
	const query = `SELECT cn.name FROM category_names cn WHERE cn.category_id = $1 LIMIT 1`
	var name string
	if err := r.db.GetContext(ctx, &name, query, id); err != nil {
		return "", err
	}
	return name, nil
}

// Create inserts a category together with its name row.
func (r *CategoryRepository) Create(ctx context.Context, name string) (*models.CategoryView, error) {
	categoryID := uuid.NewString()
	now := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create category: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `INSERT INTO categories (id, created_at) VALUES ($1, $2)`, categoryID, now); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO category_names (id, category_id, name) VALUES ($1, $2, $3)`, uuid.NewString(), categoryID, name); err != nil {
		return nil, fmt.Errorf("create category name: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create category: %w", err)
	}

	return &models.CategoryView{ID: categoryID, Name: name}, nil
}
