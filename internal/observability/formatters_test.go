package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintMigrationStatus(t *testing.T) {
	tests := []struct {
		name   string
		status MigrationStatus
		want   string
	}{
		{"up to date", MigrationStatus{Provider: "postgres", Table: "gomigrate_candidates", Current: 1, Latest: 1}, "up to date"},
		{"pending", MigrationStatus{Provider: "postgres", Current: 0, Latest: 1}, "1 migration(s) pending"},
		{"dirty", MigrationStatus{Provider: "libpq", Current: 1, Latest: 1, Dirty: true}, "DIRTY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewPrinter(&buf).PrintMigrationStatus(tt.status)
			output := buf.String()

			assert.Contains(t, output, "SCHEMA MIGRATIONS")
			assert.Contains(t, output, tt.status.Provider)
			assert.Contains(t, output, tt.want)
		})
	}
}

func TestPrintSettings(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSettings("SETTINGS", map[string]string{
		"server.port":           "8080",
		"database.postgres_url": "postgres://u:secret@db/candidates",
		"database.provider":     "postgres",
	}, "database.postgres_url")
	output := buf.String()

	assert.Contains(t, output, "SETTINGS")
	assert.Contains(t, output, "8080")
	assert.NotContains(t, output, "secret")
	assert.Contains(t, output, "********")
	assert.Less(t, strings.Index(output, "database.postgres_url"), strings.Index(output, "server.port"))
}

func TestPrintSettings_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSettings("SETTINGS", nil)
	assert.Empty(t, buf.String())
}

func TestPrintBox_TruncatesLongLines(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).printBox("T", strings.Repeat("x", 200))
	assert.Contains(t, buf.String(), "...")
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
