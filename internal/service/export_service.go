package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/pkg/export"
	"github.com/uniconnect/uniconnect-api/pkg/storage"
)

type exportComplaintRepository interface {
	ListFiltered(ctx context.Context, status *models.ComplaintStatus, categoryID *string) ([]models.ComplaintDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds complaint datasets and persists rendered files.
type ExportService struct {
	complaints exportComplaintRepository
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(complaints exportComplaintRepository, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		complaints: complaints,
		storage:    store,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset for a job and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", strings.ToLower(string(job.Type)), timestamp, job.Params.Format)
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeComplaints:
		return s.buildComplaintDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

// buildComplaintDataset exports the full ledger. Anonymous complaints keep
// their mask in exports; the stored author never leaves the database here.
func (s *ExportService) buildComplaintDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	rows, err := s.complaints.ListFiltered(ctx, params.Status, params.CategoryID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		author := row.AuthorName
		if row.IsAnonymous {
			author = anonymousAuthor
		}
		dataRows = append(dataRows, map[string]string{
			"ID":         row.ID,
			"Title":      row.Title,
			"Status":     string(row.Status),
			"Category":   row.CategoryName,
			"Author":     author,
			"Anonymous":  fmt.Sprintf("%t", row.IsAnonymous),
			"Created At": row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"ID", "Title", "Status", "Category", "Author", "Anonymous", "Created At"},
		Rows:    dataRows,
	}
	return dataset, "Complaint Report", nil
}
