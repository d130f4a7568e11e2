package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRender(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"ID", "Title", "Status"},
		Rows: []map[string]string{
			{"ID": "c1", "Title": "Broken fan", "Status": "Pending"},
			{"ID": "c2", "Title": "Stale food, again", "Status": "Resolved"},
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Title,Status", lines[0])
	assert.Equal(t, "c1,Broken fan,Pending", lines[1])
	// Values containing commas are quoted.
	assert.Equal(t, `c2,"Stale food, again",Resolved`, lines[2])
}

func TestCSVRenderMissingColumnLeftEmpty(t *testing.T) {
	exporter := NewCSVExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"ID", "Title"},
		Rows:    []map[string]string{{"ID": "c1"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(out), "c1,\n")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	exporter := NewPDFExporter()

	out, err := exporter.Render(Dataset{
		Headers: []string{"ID", "Title"},
		Rows:    []map[string]string{{"ID": "c1", "Title": "Broken fan"}},
	}, "Complaint Report")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
