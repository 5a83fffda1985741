package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

func TestGenerateOutputFileName(t *testing.T) {
	assert.Equal(t, "FRSC_Reports_2024-01-15", GenerateOutputFileName("FRSC_Reports_{date}", fixedNow, nil))
	assert.Equal(t, "R_20240115_143022_doc", GenerateOutputFileName("R_{timestamp}_{kind}", fixedNow, map[string]string{"kind": "doc"}))

	withID := GenerateOutputFileName("R_{uuid}", fixedNow, nil)
	assert.Len(t, withID, len("R_")+36)
}

func TestWriteOutputFileNumbersCollisions(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "out"), "")

	first, err := fm.WriteOutputFile("FRSC_Reports_2024-01-15.doc", []byte("one"))
	require.NoError(t, err)
	second, err := fm.WriteOutputFile("FRSC_Reports_2024-01-15.doc", []byte("two"))
	require.NoError(t, err)

	assert.Equal(t, "FRSC_Reports_2024-01-15.doc", filepath.Base(first))
	assert.Equal(t, "FRSC_Reports_2024-01-15 (1).doc", filepath.Base(second))

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(fm.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestArchiveOutputFileUsesDateSubdirs(t *testing.T) {
	dir := t.TempDir()
	fm := NewFileManager(filepath.Join(dir, "out"), filepath.Join(dir, "archive"))
	fm.UseTimestampSubdirs = true
	fm.Now = func() time.Time { return fixedNow }

	path, err := fm.WriteOutputFile("a.xls", []byte("x"))
	require.NoError(t, err)

	archived, err := fm.ArchiveOutputFile(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive", "2024", "01", "15", "a.xls"), archived)
	assert.True(t, FileExists(path))
	assert.True(t, FileExists(archived))
}

func TestArchiveDisabledReturnsInput(t *testing.T) {
	fm := NewFileManager(t.TempDir(), "")
	got, err := fm.ArchiveOutputFile("/tmp/whatever.doc")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/whatever.doc", got)
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	summary := ExportSummary{
		StartTime: fixedNow,
		EndTime:   fixedNow.Add(2 * time.Second),
		StartDate: "2024-01-01",
		Reports:   3,
		Offenders: 4,
		Rows:      5,
		Columns:   []string{"dateOfEntry", "route"},
		Files:     []ExportedFileInfo{{Format: "doc", OutputFile: "a.doc", Bytes: 10}},
		FailedFiles: []FailedFileInfo{
			{Format: "xlsx", ErrorMessage: "disk full"},
		},
	}

	path, err := WriteSummaryLog(summary, dir)
	require.NoError(t, err)
	assert.Equal(t, "export_summary_20240115_143024.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Date Range:     from 2024-01-01")
	assert.Contains(t, text, "Reports:        3")
	assert.Contains(t, text, "Columns:        dateOfEntry, route")
	assert.Contains(t, text, "Output:       a.doc")
	assert.Contains(t, text, "Error:  disk full")
}
