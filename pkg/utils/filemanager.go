// =============================================================================
// FRSC Operations E-Dashboard - File Manager Utility
// =============================================================================
//
// This module provides the file handling used by exports:
//   - Output and archive directory management
//   - Date-stamped output file naming
//   - Collision-free output paths
//   - Export summary logs
//
// ARCHIVAL STRATEGY:
//   - Export files are written to the output directory
//   - When archiving is enabled, each export file is also copied to the
//     archive directory, optionally into YYYY/MM/DD subdirectories
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for exports.
type FileManager struct {
	// OutputDir is the directory where export files are placed.
	OutputDir string

	// ArchiveDir is the directory for archived export files. Empty disables
	// archiving.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/FRSC_Reports_2024-01-15.doc
	UseTimestampSubdirs bool

	// Now is the clock used for naming. Defaults to time.Now.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, archiveDir string) *FileManager {
	return &FileManager{
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		Now:        time.Now,
	}
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	dirs := []string{fm.OutputDir}
	if fm.ArchiveDir != "" {
		dirs = append(dirs, fm.ArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// UniquePath returns a path in the output directory for fileName that does
// not exist yet. Taken names get a " (n)" suffix before the extension, the
// way browsers name repeated downloads.
func (fm *FileManager) UniquePath(fileName string) string {
	path := filepath.Join(fm.OutputDir, fileName)
	if !FileExists(path) {
		return path
	}

	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(fm.OutputDir, fmt.Sprintf("%s (%d)%s", base, n, ext))
		if !FileExists(candidate) {
			return candidate
		}
	}
}

// WriteOutputFile writes data to a new file in the output directory.
//
// PARAMETERS:
//   - fileName: The desired file name. A numbered variant is used if taken.
//   - data: The file content.
//
// RETURNS:
//   - The path of the written file.
//   - An error if writing fails. No partial file is left behind.
func (fm *FileManager) WriteOutputFile(fileName string, data []byte) (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}

	path := fm.UniquePath(fileName)

	tmp, err := os.CreateTemp(fm.OutputDir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close %s: %w", fileName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move %s into place: %w", fileName, err)
	}

	return path, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveOutputFile copies an output file to the archive directory.
//
// PARAMETERS:
//   - filePath: The path to the file to archive.
//
// RETURNS:
//   - The path to the archived file, or filePath when archiving is disabled.
//   - An error if archival fails.
//
// NOTE: Output files are copied, not moved, so they remain in the output directory.
func (fm *FileManager) ArchiveOutputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := copyFile(filePath, archivePath); err != nil {
		return "", fmt.Errorf("failed to copy file to archive: %w", err)
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.now()
		subDir := filepath.Join(
			fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
		)
		return filepath.Join(subDir, fileName)
	}

	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands the placeholders of a file name format.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Date (YYYY-MM-DD)
//               {time}      - Time (HHMMSS)
//   - now: The instant used for the date and time placeholders.
//   - params: Additional placeholder values, keyed without braces.
//
// RETURNS:
//   - The generated file name. No extension is added.
//
// EXAMPLE:
//   format: "FRSC_Reports_{date}"
//   output: "FRSC_Reports_2024-01-15"
func GenerateOutputFileName(format string, now time.Time, params map[string]string) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("2006-01-02"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// =============================================================================
// EXPORT SUMMARY
// =============================================================================

// ExportSummary contains summary information about an export run.
type ExportSummary struct {
	StartTime   time.Time
	EndTime     time.Time
	StartDate   string
	EndDate     string
	Reports     int
	Offenders   int
	Rows        int
	Columns     []string
	Files       []ExportedFileInfo
	FailedFiles []FailedFileInfo
}

// ExportedFileInfo describes one written export file.
type ExportedFileInfo struct {
	Format      string
	OutputFile  string
	ArchivePath string
	Bytes       int
}

// FailedFileInfo describes an export format that could not be written.
type FailedFileInfo struct {
	Format       string
	ErrorMessage string
}

// WriteSummaryLog writes an export summary to a log file.
//
// PARAMETERS:
//   - summary: The export summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ExportSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("export_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	dateRange := describeRange(summary.StartDate, summary.EndDate)
	duration := summary.EndTime.Sub(summary.StartTime)
	header := fmt.Sprintf("FRSC Operations E-Dashboard - Export Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Date Range:     %s\n\n"+
		"Statistics:\n"+
		"  Reports:        %d\n"+
		"  Offenders:      %d\n"+
		"  Rows:           %d\n"+
		"  Columns:        %s\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		dateRange,
		summary.Reports,
		summary.Offenders,
		summary.Rows,
		strings.Join(summary.Columns, ", "))
	writer.WriteString(header)

	if len(summary.Files) > 0 {
		writer.WriteString("Exported Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.Files {
			writer.WriteString(fmt.Sprintf("  Format:       %s\n", f.Format))
			writer.WriteString(fmt.Sprintf("  Output:       %s\n", f.OutputFile))
			if f.ArchivePath != "" {
				writer.WriteString(fmt.Sprintf("  Archive:      %s\n", f.ArchivePath))
			}
			writer.WriteString(fmt.Sprintf("  Size:         %d bytes\n\n", f.Bytes))
		}
	}

	if len(summary.FailedFiles) > 0 {
		writer.WriteString("Failed Exports:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFiles {
			writer.WriteString(fmt.Sprintf("  Format: %s\n", ff.Format))
			writer.WriteString(fmt.Sprintf("  Error:  %s\n\n", ff.ErrorMessage))
		}
	}

	footer := "================================================================================\n" +
		"End of Summary\n"
	writer.WriteString(footer)

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

func describeRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return "all dates"
	case start == "":
		return "up to " + end
	case end == "":
		return "from " + start
	default:
		return start + " to " + end
	}
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
