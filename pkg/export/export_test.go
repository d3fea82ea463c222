package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Paysheet 2024-05",
		Headers: []string{"Employee", "Net"},
		Rows: []map[string]string{
			{"Employee": "Alice", "Net": "1100.00"},
			{"Employee": "Bob, Jr.", "Net": "900.00"},
		},
		Footer: []string{"Total: 2000.00"},
	}
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatCSV, f)

	f, ok = ParseFormat(" PDF ")
	assert.True(t, ok)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, ok = ParseFormat("xlsx")
	assert.False(t, ok)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Employee,Net\nAlice,1100.00\n\"Bob, Jr.\",900.00\nTotal: 2000.00,\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{Title: "empty"})
	assert.Error(t, err)
}
