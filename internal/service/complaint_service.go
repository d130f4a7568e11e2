package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	appErrors "github.com/uniconnect/uniconnect-api/pkg/errors"
)

// anonymousAuthor replaces the author name when a complaint is anonymous and
// the reader is not the author.
const anonymousAuthor = "Anonymous"

// statsCachePattern matches every cached statistics entry.
const statsCachePattern = "stats:*"

type complaintRepository interface {
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.ComplaintDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ComplaintDetail, error)
	ListByCategoryName(ctx context.Context, department string) ([]models.ComplaintDetail, error)
	ListFiltered(ctx context.Context, status *models.ComplaintStatus, categoryID *string) ([]models.ComplaintDetail, error)
	UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) error
	UpdateCategory(ctx context.Context, id string, categoryID string) error
}

type complaintCategoryRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	NameOf(ctx context.Context, id string) (string, error)
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ComplaintService implements the complaint ledger use cases.
type ComplaintService struct {
	repo       complaintRepository
	categories complaintCategoryRepository
	audit      auditRecorder
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewComplaintService constructs a ComplaintService instance.
func NewComplaintService(repo complaintRepository, categories complaintCategoryRepository, audit auditRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ComplaintService{
		repo:       repo,
		categories: categories,
		audit:      audit,
		cache:      cache,
		validator:  validate,
		logger:     logger,
	}
}

// Create lodges a new complaint for the authenticated student. The status is
// always Pending regardless of anything the client sends.
func (s *ComplaintService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateComplaintRequest) (*models.ComplaintView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid complaint payload")
	}

	exists, err := s.categories.Exists(ctx, req.CategoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up category")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
	}

	complaint := &models.Complaint{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusPending,
		IsAnonymous: req.IsAnonymous,
		StudentID:   claims.AccountID,
		CategoryID:  req.CategoryID,
	}

	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create complaint")
	}

	s.recordAudit(ctx, claims.AccountID, models.AuditActionComplaintCreate, complaint.ID, []byte(fmt.Sprintf(`{"category_id":%q}`, complaint.CategoryID)))
	s.invalidateStats(ctx)

	detail, err := s.repo.FindByID(ctx, complaint.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load created complaint")
	}

	view := buildView(*detail, claims.AccountID)
	return &view, nil
}

// ListMine returns the authenticated student's own complaints. The author is
// never masked for the author themselves.
func (s *ComplaintService) ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.ComplaintView, error) {
	details, err := s.repo.ListByStudent(ctx, claims.AccountID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return buildViews(details, claims.AccountID), nil
}

// ListAssigned returns complaints whose category name matches the staff
// member's department.
func (s *ComplaintService) ListAssigned(ctx context.Context, claims *models.JWTClaims) ([]models.ComplaintView, error) {
	if claims.Department == "" {
		return []models.ComplaintView{}, nil
	}
	details, err := s.repo.ListByCategoryName(ctx, claims.Department)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assigned complaints")
	}
	return buildViews(details, claims.AccountID), nil
}

// ListAll returns every complaint, optionally filtered by status and category.
func (s *ComplaintService) ListAll(ctx context.Context, claims *models.JWTClaims, status *models.ComplaintStatus, categoryID *string) ([]models.ComplaintView, error) {
	if status != nil && !models.ValidStatus(*status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}
	details, err := s.repo.ListFiltered(ctx, status, categoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list complaints")
	}
	return buildViews(details, claims.AccountID), nil
}

// UpdateStatus transitions a complaint to the requested status. Staff may only
// touch complaints whose category name matches their department; the
// authorization check runs before any write so a rejected request leaves the
// stored status untouched. Any valid status may replace any other.
func (s *ComplaintService) UpdateStatus(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateStatusRequest) (*models.ComplaintView, error) {
	if !models.ValidStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown status value")
	}

	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	if detail.CategoryName != claims.Department {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "complaint is outside your department")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update status")
	}

	s.recordAudit(ctx, claims.AccountID, models.AuditActionStatusChange, id, []byte(fmt.Sprintf(`{"from":%q,"to":%q}`, detail.Status, req.Status)))
	s.invalidateStats(ctx)

	detail.Status = req.Status
	view := buildView(*detail, claims.AccountID)
	return &view, nil
}

// ReassignCategory moves a complaint to a different category. Reassignment
// immediately changes which staff department sees the complaint.
func (s *ComplaintService) ReassignCategory(ctx context.Context, claims *models.JWTClaims, id string, req models.AssignCategoryRequest) (*models.ComplaintView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	detail, err := s.findDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	name, err := s.categories.NameOf(ctx, req.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown category")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up category")
	}

	if err := s.repo.UpdateCategory(ctx, id, req.CategoryID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign complaint")
	}

	s.recordAudit(ctx, claims.AccountID, models.AuditActionReassign, id, []byte(fmt.Sprintf(`{"from":%q,"to":%q}`, detail.CategoryID, req.CategoryID)))
	s.invalidateStats(ctx)

	detail.CategoryID = req.CategoryID
	detail.CategoryName = name
	view := buildView(*detail, claims.AccountID)
	return &view, nil
}

func (s *ComplaintService) findDetail(ctx context.Context, id string) (*models.ComplaintDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load complaint")
	}
	return detail, nil
}

func (s *ComplaintService) recordAudit(ctx context.Context, accountID, action, resourceID string, newValues []byte) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		AccountID:  &accountID,
		Action:     action,
		Resource:   "complaint",
		ResourceID: &resourceID,
		NewValues:  newValues,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *ComplaintService) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateByPattern(ctx, statsCachePattern); err != nil {
		s.logger.Warn("failed to invalidate stats cache", zap.Error(err))
	}
}

func buildViews(details []models.ComplaintDetail, readerID string) []models.ComplaintView {
	views := make([]models.ComplaintView, 0, len(details))
	for _, detail := range details {
		views = append(views, buildView(detail, readerID))
	}
	return views
}

func buildView(detail models.ComplaintDetail, readerID string) models.ComplaintView {
	author := detail.AuthorName
	if detail.IsAnonymous && detail.StudentID != readerID {
		author = anonymousAuthor
	}
	return models.ComplaintView{
		ID:           detail.ID,
		Title:        detail.Title,
		Description:  detail.Description,
		Status:       detail.Status,
		IsAnonymous:  detail.IsAnonymous,
		AuthorName:   author,
		CategoryID:   detail.CategoryID,
		CategoryName: detail.CategoryName,
		CreatedAt:    detail.CreatedAt,
	}
}
