package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("cat-1", "Hostel").
		AddRow("cat-2", "Mess")
	mock.ExpectQuery("SELECT c.id, cn.name FROM categories c JOIN category_names cn").
		WillReturnRows(rows)

	categories, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Hostel", categories[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectQuery("SELECT COUNT(.+) FROM categories c JOIN category_names cn").
		WithArgs("cat-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "cat-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryNameOf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT cn.name FROM category_names cn WHERE cn.category_id = $1 LIMIT 1")).
		WithArgs("cat-2").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Mess"))

	name, err := repo.NameOf(context.Background(), "cat-2")
	require.NoError(t, err)
	assert.Equal(t, "Mess", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCategoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO categories").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO category_names").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	view, err := repo.Create(context.Background(), "Transport")
	require.NoError(t, err)
	assert.Equal(t, "Transport", view.Name)
	assert.NotEmpty(t, view.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
