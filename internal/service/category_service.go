package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

type categoryRepository interface {
	List(ctx context.Context) ([]models.CategoryView, error)
	Exists(ctx context.Context, id string) (bool, error)
	NameOf(ctx context.Context, id string) (string, error)
	Create(ctx context.Context, name string) (*models.CategoryView, error)
}

// CategoryService serves the public category registry.
type CategoryService struct {
	repo      categoryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService constructs a CategoryService instance.
func NewCategoryService(repo categoryRepository, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CategoryService{repo: repo, validator: validate, logger: logger}
}

// List returns all categories with their display names.
func (s *CategoryService) List(ctx context.Context) ([]models.CategoryView, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}
	if categories == nil {
		categories = []models.CategoryView{}
	}
	return categories, nil
}

// Create registers a new category name.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.CategoryView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "category name is required")
	}
	view, err := s.repo.Create(ctx, name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}
	return view, nil
}
