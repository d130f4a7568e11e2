package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniconnect/uniconnect-api/internal/models"
)

func TestExportServiceGenerateCSVMasksAnonymousAuthors(t *testing.T) {
	exporter := newTestExportService(t)

	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeComplaints,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/export/"))
	assert.Equal(t, models.ReportFormatCSV, result.Format)

	file, err := exporter.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	raw, err := io.ReadAll(file)
	require.NoError(t, err)
	body := string(raw)

	// Exports go to arbitrary readers, so anonymous rows never carry a name.
	assert.Contains(t, body, "Anonymous")
	assert.NotContains(t, body, "Ayesha")
	assert.Contains(t, body, "Broken fan")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	exporter := newTestExportService(t)

	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeComplaints,
		Params: models.ReportJobParams{Format: models.ReportFormatPDF},
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))
}

func TestExportServiceParseTokenRoundTrip(t *testing.T) {
	exporter := newTestExportService(t)

	job := &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportTypeComplaints,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	result, err := exporter.Generate(context.Background(), job)
	require.NoError(t, err)

	jobID, relPath, _, err := exporter.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-3", jobID)
	assert.Equal(t, result.RelativePath, relPath)

	_, _, _, err = exporter.ParseToken(result.Token+"x", false)
	require.Error(t, err)
}
