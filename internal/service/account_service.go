package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

type accountListRepository interface {
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error)
}

// AccountService provides administrative account queries.
type AccountService struct {
	repo      accountListRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAccountService constructs an AccountService instance.
func NewAccountService(repo accountListRepository, validate *validator.Validate, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AccountService{repo: repo, validator: validate, logger: logger}
}

// List returns accounts matching the filter with pagination metadata.
func (s *AccountService) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, *models.Pagination, error) {
	if filter.Role != nil && !models.ValidRole(*filter.Role) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown role filter")
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	accounts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accounts")
	}

	pagination := &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}
	return accounts, pagination, nil
}
