package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/repository"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/jobs"
	"github.com/uniconnect/uniconnect-api/pkg/storage"
)

type mockReportStore struct {
	jobs map[string]*models.ReportJob
}

func newMockReportStore() *mockReportStore {
	return &mockReportStore{jobs: make(map[string]*models.ReportJob)}
}

func (m *mockReportStore) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.CreatedAt = time.Now().UTC()
	copied := *job
	m.jobs[job.ID] = &copied
	return nil
}

func (m *mockReportStore) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (m *mockReportStore) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *mockReportStore) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var out []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *mockReportStore) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type mockDispatcher struct {
	enqueued   []jobs.Job
	enqueueErr error
}

func (m *mockDispatcher) Enqueue(job jobs.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.enqueued = append(m.enqueued, job)
	return nil
}

type mockExporter struct {
	result *ExportResult
	err    error
	calls  int
}

func (m *mockExporter) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestReportServiceCreateJob(t *testing.T) {
	store := newMockReportStore()
	queue := &mockDispatcher{}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	resp, err := svc.CreateJob(context.Background(), models.ReportRequest{Format: models.ReportFormatCSV}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)

	stored := store.jobs[resp.ID]
	require.NotNil(t, stored)
	assert.Equal(t, models.ReportTypeComplaints, stored.Type)
	assert.Equal(t, "admin-1", stored.CreatedBy)
}

func TestReportServiceCreateJobBadFormat(t *testing.T) {
	svc := NewReportService(newMockReportStore(), &mockDispatcher{}, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), models.ReportRequest{Format: "xlsx"}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceCreateJobEnqueueFailure(t *testing.T) {
	store := newMockReportStore()
	queue := &mockDispatcher{enqueueErr: errors.New("queue closed")}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), models.ReportRequest{Format: models.ReportFormatCSV}, "admin-1")
	require.Error(t, err)

	// The persisted job is marked failed rather than left queued forever.
	require.Len(t, store.jobs, 1)
	for _, job := range store.jobs {
		assert.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestReportServiceGetStatusNotFound(t *testing.T) {
	svc := NewReportService(newMockReportStore(), &mockDispatcher{}, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.GetStatus(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReportServiceRecoverPendingJobs(t *testing.T) {
	store := newMockReportStore()
	queue := &mockDispatcher{}
	svc := NewReportService(store, queue, nil, zap.NewNop(), ReportServiceConfig{})

	require.NoError(t, store.Create(context.Background(), &models.ReportJob{Status: models.ReportStatusQueued, Type: models.ReportTypeComplaints}))
	require.NoError(t, store.Create(context.Background(), &models.ReportJob{Status: models.ReportStatusFinished, Type: models.ReportTypeComplaints}))

	svc.RecoverPendingJobs(context.Background())
	assert.Len(t, queue.enqueued, 1)
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{
		Type:   models.ReportTypeComplaints,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	require.NoError(t, store.Create(context.Background(), job))

	exporter := &mockExporter{result: &ExportResult{URL: "/api/export/tok", RelativePath: "file.csv"}}
	worker := NewReportWorker(store, exporter, 3, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 1})
	require.NoError(t, err)

	updated := store.jobs[job.ID]
	assert.Equal(t, models.ReportStatusFinished, updated.Status)
	assert.Equal(t, 100, updated.Progress)
	require.NotNil(t, updated.ResultURL)
	assert.Equal(t, "/api/export/tok", *updated.ResultURL)
	require.NotNil(t, updated.FinishedAt)
}

func TestReportWorkerHandleRetriesThenFails(t *testing.T) {
	store := newMockReportStore()
	job := &models.ReportJob{
		Type:   models.ReportTypeComplaints,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	require.NoError(t, store.Create(context.Background(), job))

	exporter := &mockExporter{err: errors.New("render failed")}
	worker := NewReportWorker(store, exporter, 2, zap.NewNop())

	// Below the retry ceiling the job goes back in the queue.
	err := worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 1})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusQueued, store.jobs[job.ID].Status)

	// At the ceiling it is marked failed with the error recorded.
	err = worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 2})
	require.Error(t, err)
	failed := store.jobs[job.ID]
	assert.Equal(t, models.ReportStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "render failed", *failed.ErrorMessage)
}

type exportListRepo struct {
	details []models.ComplaintDetail
}

func (m *exportListRepo) ListFiltered(ctx context.Context, status *models.ComplaintStatus, categoryID *string) ([]models.ComplaintDetail, error) {
	return m.details, nil
}

func newTestExportService(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	repo := &exportListRepo{details: []models.ComplaintDetail{
		{
			Complaint:    models.Complaint{ID: "c1", Title: "Broken fan", Status: models.StatusPending, StudentID: "ayesha", IsAnonymous: true},
			AuthorName:   "Ayesha",
			CategoryName: "Hostel",
		},
	}}
	return NewExportService(repo, store, signer, ExportConfig{APIPrefix: "/api"}, zap.NewNop(), nil, nil)
}

func TestReportServiceResolveDownload(t *testing.T) {
	exporter := newTestExportService(t)
	store := newMockReportStore()
	svc := NewReportService(store, &mockDispatcher{}, exporter, zap.NewNop(), ReportServiceConfig{})

	job := &models.ReportJob{
		Type:   models.ReportTypeComplaints,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	require.NoError(t, store.Create(context.Background(), job))

	result, err := exporter.Generate(context.Background(), store.jobs[job.ID])
	require.NoError(t, err)

	finished := models.ReportStatusFinished
	progress := 100
	require.NoError(t, store.Update(context.Background(), job.ID, repository.UpdateReportJobParams{
		Status:    &finished,
		Progress:  &progress,
		ResultURL: &result.URL,
	}))

	download, err := svc.ResolveDownload(context.Background(), result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ReportFormatCSV, download.Format)
	assert.NotEmpty(t, download.Filename)
}

func TestReportServiceResolveDownloadBadToken(t *testing.T) {
	exporter := newTestExportService(t)
	svc := NewReportService(newMockReportStore(), &mockDispatcher{}, exporter, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.ResolveDownload(context.Background(), "garbage")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceResolveDownloadNotReady(t *testing.T) {
	exporter := newTestExportService(t)
	store := newMockReportStore()
	svc := NewReportService(store, &mockDispatcher{}, exporter, zap.NewNop(), ReportServiceConfig{})

	job := &models.ReportJob{
		Type:   models.ReportTypeComplaints,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	require.NoError(t, store.Create(context.Background(), job))

	result, err := exporter.Generate(context.Background(), store.jobs[job.ID])
	require.NoError(t, err)
	require.NoError(t, store.Update(context.Background(), job.ID, repository.UpdateReportJobParams{ResultURL: &result.URL}))

	_, err = svc.ResolveDownload(context.Background(), result.Token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
