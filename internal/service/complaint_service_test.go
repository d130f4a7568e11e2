package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

type mockComplaintRepo struct {
	complaints map[string]*models.ComplaintDetail

	updateStatusCalls   int
	updateCategoryCalls int
}

func newMockComplaintRepo() *mockComplaintRepo {
	return &mockComplaintRepo{complaints: make(map[string]*models.ComplaintDetail)}
}

func (m *mockComplaintRepo) add(detail *models.ComplaintDetail) {
	copied := *detail
	m.complaints[detail.ID] = &copied
}

func (m *mockComplaintRepo) Create(ctx context.Context, complaint *models.Complaint) error {
	m.complaints[complaint.ID] = &models.ComplaintDetail{Complaint: *complaint}
	return nil
}

func (m *mockComplaintRepo) FindByID(ctx context.Context, id string) (*models.ComplaintDetail, error) {
	detail, ok := m.complaints[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *detail
	return &copied, nil
}

func (m *mockComplaintRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ComplaintDetail, error) {
	var out []models.ComplaintDetail
	for _, detail := range m.complaints {
		if detail.StudentID == studentID {
			out = append(out, *detail)
		}
	}
	return out, nil
}

func (m *mockComplaintRepo) ListByCategoryName(ctx context.Context, department string) ([]models.ComplaintDetail, error) {
	var out []models.ComplaintDetail
	for _, detail := range m.complaints {
		if detail.CategoryName == department {
			out = append(out, *detail)
		}
	}
	return out, nil
}

func (m *mockComplaintRepo) ListFiltered(ctx context.Context, status *models.ComplaintStatus, categoryID *string) ([]models.ComplaintDetail, error) {
	var out []models.ComplaintDetail
	for _, detail := range m.complaints {
		if status != nil && detail.Status != *status {
			continue
		}
		if categoryID != nil && detail.CategoryID != *categoryID {
			continue
		}
		out = append(out, *detail)
	}
	return out, nil
}

func (m *mockComplaintRepo) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	m.updateStatusCalls++
	detail, ok := m.complaints[id]
	if !ok {
		return sql.ErrNoRows
	}
	detail.Status = status
	return nil
}

func (m *mockComplaintRepo) UpdateCategory(ctx context.Context, id string, categoryID string) error {
	m.updateCategoryCalls++
	detail, ok := m.complaints[id]
	if !ok {
		return sql.ErrNoRows
	}
	detail.CategoryID = categoryID
	return nil
}

type mockCategoryLookup struct {
	names map[string]string
}

func (m *mockCategoryLookup) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.names[id]
	return ok, nil
}

func (m *mockCategoryLookup) NameOf(ctx context.Context, id string) (string, error) {
	name, ok := m.names[id]
	if !ok {
		return "", sql.ErrNoRows
	}
	return name, nil
}

type mockAuditRecorder struct {
	logs []*models.AuditLog
}

func (m *mockAuditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func newComplaintService(repo *mockComplaintRepo, categories *mockCategoryLookup, audit *mockAuditRecorder) *ComplaintService {
	return NewComplaintService(repo, categories, audit, nil, validator.New(), zap.NewNop())
}

func hostelCategories() *mockCategoryLookup {
	return &mockCategoryLookup{names: map[string]string{
		"cat-hostel": "Hostel",
		"cat-mess":   "Mess",
	}}
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{AccountID: id, Role: models.RoleStudent}
}

func staffClaims(id, department string) *models.JWTClaims {
	return &models.JWTClaims{AccountID: id, Role: models.RoleStaff, Department: department}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{AccountID: "admin-1", Role: models.RoleAdmin}
}

func TestComplaintCreateForcesPending(t *testing.T) {
	repo := newMockComplaintRepo()
	audit := &mockAuditRecorder{}
	svc := newComplaintService(repo, hostelCategories(), audit)

	view, err := svc.Create(context.Background(), studentClaims("ayesha"), models.CreateComplaintRequest{
		Title:       "Broken fan",
		Description: "The ceiling fan in room 12 does not work.",
		CategoryID:  "cat-hostel",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.NotEmpty(t, view.ID)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionComplaintCreate, audit.logs[0].Action)
}

func TestComplaintCreateUnknownCategory(t *testing.T) {
	repo := newMockComplaintRepo()
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	_, err := svc.Create(context.Background(), studentClaims("ayesha"), models.CreateComplaintRequest{
		Title:       "Broken fan",
		Description: "It does not work.",
		CategoryID:  "cat-missing",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.complaints)
}

func TestComplaintListMineIsScopedToAuthor(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Title: "Mine", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel"},
		AuthorName:   "Ayesha",
		CategoryName: "Hostel",
	})
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c2", Title: "Someone else's", Status: models.StatusPending, StudentID: "rafique", CategoryID: "cat-mess"},
		AuthorName:   "Rafique",
		CategoryName: "Mess",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	views, err := svc.ListMine(context.Background(), studentClaims("ayesha"))
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "c1", views[0].ID)
}

func TestComplaintListAssignedMatchesDepartment(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c2", Status: models.StatusPending, StudentID: "rafique", CategoryID: "cat-mess"},
		CategoryName: "Mess",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	views, err := svc.ListAssigned(context.Background(), staffClaims("amjad", "Hostel"))
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "c1", views[0].ID)
}

func TestComplaintListAssignedEmptyDepartment(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	views, err := svc.ListAssigned(context.Background(), staffClaims("amjad", ""))
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestComplaintUpdateStatusOutsideDepartment(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	_, err := svc.UpdateStatus(context.Background(), staffClaims("mess-staff", "Mess"), "c1", models.UpdateStatusRequest{
		Status: models.StatusResolved,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	// A rejected request leaves the complaint untouched.
	assert.Zero(t, repo.updateStatusCalls)
	assert.Equal(t, models.StatusPending, repo.complaints["c1"].Status)
}

func TestComplaintUpdateStatusByDepartmentStaff(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	audit := &mockAuditRecorder{}
	svc := newComplaintService(repo, hostelCategories(), audit)

	view, err := svc.UpdateStatus(context.Background(), staffClaims("amjad", "Hostel"), "c1", models.UpdateStatusRequest{
		Status: models.StatusResolved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, view.Status)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionStatusChange, audit.logs[0].Action)
}

func TestComplaintUpdateStatusRequiresMatchingDepartment(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	// A caller without a matching department (admins have none) is rejected
	// and the stored status stays Pending.
	_, err := svc.UpdateStatus(context.Background(), adminClaims(), "c1", models.UpdateStatusRequest{
		Status: models.StatusResolved,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.updateStatusCalls)
	assert.Equal(t, models.StatusPending, repo.complaints["c1"].Status)
}

func TestComplaintUpdateStatusReopenBySameDepartment(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusResolved, StudentID: "ayesha", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	// Any transition is allowed, including reopening a resolved complaint.
	view, err := svc.UpdateStatus(context.Background(), staffClaims("amjad", "Hostel"), "c1", models.UpdateStatusRequest{
		Status: models.StatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, view.Status)
}

func TestComplaintUpdateStatusUnknownValue(t *testing.T) {
	repo := newMockComplaintRepo()
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	_, err := svc.UpdateStatus(context.Background(), staffClaims("amjad", "Hostel"), "c1", models.UpdateStatusRequest{
		Status: "Escalated",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestComplaintUpdateStatusNotFound(t *testing.T) {
	repo := newMockComplaintRepo()
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	_, err := svc.UpdateStatus(context.Background(), staffClaims("amjad", "Hostel"), "missing", models.UpdateStatusRequest{
		Status: models.StatusResolved,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestComplaintReassignChangesRouting(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "rafique", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	_, err := svc.ReassignCategory(context.Background(), adminClaims(), "c1", models.AssignCategoryRequest{
		CategoryID: "cat-mess",
	})
	require.NoError(t, err)
	assert.Equal(t, "cat-mess", repo.complaints["c1"].CategoryID)
}

func TestComplaintReassignUnknownCategory(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "rafique", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	_, err := svc.ReassignCategory(context.Background(), adminClaims(), "c1", models.AssignCategoryRequest{
		CategoryID: "cat-missing",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Zero(t, repo.updateCategoryCalls)
}

func TestComplaintAnonymousMasking(t *testing.T) {
	detail := models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel", IsAnonymous: true},
		AuthorName:   "Ayesha",
		CategoryName: "Hostel",
	}

	// The author still sees their own name.
	own := buildView(detail, "ayesha")
	assert.Equal(t, "Ayesha", own.AuthorName)

	// Everyone else sees the placeholder.
	other := buildView(detail, "admin-1")
	assert.Equal(t, anonymousAuthor, other.AuthorName)

	// Non-anonymous complaints are never masked.
	detail.IsAnonymous = false
	assert.Equal(t, "Ayesha", buildView(detail, "admin-1").AuthorName)
}

func TestComplaintListAllStatusFilter(t *testing.T) {
	repo := newMockComplaintRepo()
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c1", Status: models.StatusPending, StudentID: "ayesha", CategoryID: "cat-hostel"},
		CategoryName: "Hostel",
	})
	repo.add(&models.ComplaintDetail{
		Complaint:    models.Complaint{ID: "c2", Status: models.StatusResolved, StudentID: "rafique", CategoryID: "cat-mess"},
		CategoryName: "Mess",
	})
	svc := newComplaintService(repo, hostelCategories(), &mockAuditRecorder{})

	status := models.StatusResolved
	views, err := svc.ListAll(context.Background(), adminClaims(), &status, nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "c2", views[0].ID)

	bad := models.ComplaintStatus("Closed")
	_, err = svc.ListAll(context.Background(), adminClaims(), &bad, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
