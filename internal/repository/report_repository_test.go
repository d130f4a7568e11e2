package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/uniconnect/uniconnect-api/internal/models"
)

func reportJobColumns() []string {
	return []string{"id", "type", "params", "status", "progress", "result_url", "created_by", "created_at", "finished_at", "error_message"}
}

func TestReportRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs")).
		WithArgs(sqlmock.AnyArg(), "complaints", sqlmock.AnyArg(), "QUEUED", 0, nil, "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	job := &models.ReportJob{
		Type:      models.ReportTypeComplaints,
		Params:    models.ReportJobParams{Format: models.ReportFormatCSV},
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))

	rows := sqlmock.NewRows(reportJobColumns()).
		AddRow(job.ID, "complaints", `{"format":"csv","extras":{}}`, "QUEUED", 0, nil, "admin-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, type, params, status, progress, result_url, created_by, created_at, finished_at, error_message")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, fetched.ID)
	require.Equal(t, models.ReportFormatCSV, fetched.Params.Format)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	status := models.ReportStatusFinished
	progress := 100
	result := "/api/export/token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, progress = $2, result_url = $3, finished_at = $4 WHERE id = $5")).
		WithArgs(status, progress, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:     &status,
		Progress:   &progress,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows(reportJobColumns()).
		AddRow("job-1", "complaints", `{"format":"pdf","extras":{}}`, "QUEUED", 0, nil, "admin-1", time.Now(), nil, nil)
	mock.ExpectQuery("FROM report_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT").
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	cutoff := time.Now().Add(-24 * time.Hour)
	finishedAt := cutoff.Add(-time.Hour)
	url := "/api/export/token"
	rows := sqlmock.NewRows(reportJobColumns()).
		AddRow("job-2", "complaints", `{"format":"csv","extras":{}}`, "FINISHED", 100, url, "admin-1", finishedAt.Add(-time.Minute), finishedAt, nil)
	mock.ExpectQuery("FROM report_jobs WHERE status = 'FINISHED' AND finished_at <").
		WithArgs(cutoff, 100).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), cutoff, 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NotNil(t, jobs[0].ResultURL)
	require.NoError(t, mock.ExpectationsWereMet())
}
