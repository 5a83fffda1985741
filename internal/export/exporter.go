// =============================================================================
// FRSC Operations E-Dashboard - Exporter
// =============================================================================
//
// The exporter renders reports in one of the supported formats and writes the
// result to the output directory.
//
// FORMATS:
//   doc   - HTML document, UTF-8 byte-order mark, opened by word processors
//   xls   - quoted delimited text, opened by spreadsheet applications
//   xlsx  - native workbook with a header row
//
// FILE NAMES:
//   <file name format>.<ext>, FRSC_Reports_{date} by default, with {date} in
//   UTC like the browser dashboard's downloads.
//
// An empty report list is not exported: ErrNoReports is returned and nothing
// is written.
//
// =============================================================================

package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frsc-ops/edashboard/internal/types"
	"github.com/frsc-ops/edashboard/pkg/utils"
)

// ErrNoReports is returned when there is nothing to export.
var ErrNoReports = errors.New("no reports to export")

// BOM is the UTF-8 byte-order mark prefixed to document exports.
const BOM = "\ufeff"

// DefaultFileNameFormat names export files.
const DefaultFileNameFormat = "FRSC_Reports_{date}"

// Format is an export file format.
type Format string

const (
	FormatDoc  Format = "doc"
	FormatXLS  Format = "xls"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported format.
var Formats = []Format{FormatDoc, FormatXLS, FormatXLSX}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// ParseColumns builds a column mask from a comma-separated field list. An
// empty list selects every field.
func ParseColumns(list string) (types.ExportColumns, error) {
	if strings.TrimSpace(list) == "" {
		return types.DefaultColumns(), nil
	}
	cols := types.NoColumns()
	for _, name := range strings.Split(list, ",") {
		f := types.ReportField(strings.TrimSpace(name))
		if f == "" {
			continue
		}
		if !f.Valid() {
			return nil, fmt.Errorf("unknown export column %q", name)
		}
		cols[f] = true
	}
	return cols, nil
}

// Extension returns the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatDoc:
		return "application/msword;charset=utf-8"
	case FormatXLS:
		return "text/csv;charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Render produces the file content of reports in format.
func Render(format Format, reports []types.Report, columns types.ExportColumns, offences OffenceCodes) ([]byte, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	switch format {
	case FormatDoc:
		return []byte(BOM + Document(reports, columns, offences)), nil
	case FormatXLS:
		return []byte(CSV(reports, columns, offences)), nil
	case FormatXLSX:
		return Workbook(reports, columns, offences)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// =============================================================================
// EXPORTER
// =============================================================================

// Result describes one written export file.
type Result struct {
	Format Format
	Path   string
	Bytes  int
	Rows   int
}

// Exporter writes export files.
type Exporter struct {
	files      *utils.FileManager
	nameFormat string
	log        *zap.Logger
	now        func() time.Time
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithClock sets the clock that dates export file names.
func WithClock(now func() time.Time) ExporterOption {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// NewExporter creates an exporter writing through files. An empty nameFormat
// selects DefaultFileNameFormat and a nil logger disables logging.
func NewExporter(files *utils.FileManager, nameFormat string, log *zap.Logger, opts ...ExporterOption) *Exporter {
	if nameFormat == "" {
		nameFormat = DefaultFileNameFormat
	}
	if log == nil {
		log = zap.NewNop()
	}
	e := &Exporter{files: files, nameFormat: nameFormat, log: log, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileName returns the file name an export in format would get now.
func (e *Exporter) FileName(format Format) string {
	return utils.GenerateOutputFileName(e.nameFormat, e.now().UTC(), nil) + format.Extension()
}

// Export renders and writes one export file.
//
// PARAMETERS:
//   - format: The file format.
//   - reports: The reports to export, already filtered.
//   - columns: The column mask.
//   - offences: Offence name to code mapping.
//
// RETURNS:
//   - A description of the written file.
//   - ErrNoReports when reports is empty, or a rendering/writing error.
func (e *Exporter) Export(format Format, reports []types.Report, columns types.ExportColumns, offences OffenceCodes) (Result, error) {
	data, err := Render(format, reports, columns, offences)
	if err != nil {
		return Result{}, err
	}

	path, err := e.files.WriteOutputFile(e.FileName(format), data)
	if err != nil {
		return Result{}, err
	}

	result := Result{Format: format, Path: path, Bytes: len(data), Rows: len(Expand(reports))}
	e.log.Info("Export written",
		zap.String("format", string(format)),
		zap.String("path", path),
		zap.Int("reports", len(reports)),
		zap.Int("rows", result.Rows),
		zap.Int("bytes", result.Bytes))
	return result, nil
}
