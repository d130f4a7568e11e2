package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

type mockAccountListRepo struct {
	accounts []models.Account
	total    int
	filter   models.AccountFilter
}

func (m *mockAccountListRepo) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, int, error) {
	m.filter = filter
	return m.accounts, m.total, nil
}

func TestAccountServiceListDefaults(t *testing.T) {
	repo := &mockAccountListRepo{
		accounts: []models.Account{{ID: "1", FullName: "Ayesha", Role: models.RoleStudent}},
		total:    42,
	}
	svc := NewAccountService(repo, nil, zap.NewNop())

	accounts, pagination, err := svc.List(context.Background(), models.AccountFilter{})
	require.NoError(t, err)
	assert.Len(t, accounts, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 42, pagination.TotalCount)
	assert.Equal(t, 20, repo.filter.PageSize)
}

func TestAccountServiceListClampsPageSize(t *testing.T) {
	repo := &mockAccountListRepo{}
	svc := NewAccountService(repo, nil, zap.NewNop())

	_, _, err := svc.List(context.Background(), models.AccountFilter{Page: 3, PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, 3, repo.filter.Page)
	assert.Equal(t, 20, repo.filter.PageSize)
}

func TestAccountServiceListRejectsUnknownRole(t *testing.T) {
	svc := NewAccountService(&mockAccountListRepo{}, nil, zap.NewNop())

	role := models.AccountRole("SUPERUSER")
	_, _, err := svc.List(context.Background(), models.AccountFilter{Role: &role})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
