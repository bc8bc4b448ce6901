package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "report-2025_v1.docx", SanitizeFileName("report-2025_v1.docx"))
	assert.Equal(t, "my_report__final_.docx", SanitizeFileName("my report (final).docx"))
}

func TestFileNameWithoutExt(t *testing.T) {
	assert.Equal(t, "report", FileNameWithoutExt("/data/documents/report.docx"))
	assert.Equal(t, "archive.tar", FileNameWithoutExt("archive.tar.gz"))
	assert.Equal(t, "noext", FileNameWithoutExt("noext"))
}

func TestTimestampedFileName(t *testing.T) {
	name := TimestampedFileName("report.docx")
	assert.Regexp(t, regexp.MustCompile(`^report_\d{10}\.docx$`), name)
}

func TestCopyFileWithTimestamp(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.docx")
	require.NoError(t, os.WriteFile(source, []byte("content"), 0644))

	uploadDir := filepath.Join(dir, "uploads")
	destPath, err := CopyFileWithTimestamp(source, uploadDir)

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`source_\d{10}\.docx$`), destPath)

	copied, err := os.ReadFile(destPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), copied)
}
