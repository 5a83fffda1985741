// =============================================================================
// FRSC Operations E-Dashboard - Export Command
// =============================================================================
//
// This file defines the 'export' command, which writes the stored reports to
// export files without starting the server.
//
// COMMAND USAGE:
//   edash export [flags]
//
// FLAGS:
//   --format   : doc, xls, xlsx or all (default xls)
//   --from     : First date of entry to include (YYYY-MM-DD)
//   --to       : Last date of entry to include (YYYY-MM-DD)
//   --columns  : Comma-separated field list (default: every field)
//   --out      : Output directory (overrides output_dir)
//   --archive  : Also copy each file into this directory, by date
//
// EXPORT PIPELINE:
//   1. Load the reports from the store
//   2. Filter by date of entry
//   3. Render and write each requested format concurrently
//   4. Archive the written files
//   5. Write the summary report
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/frsc-ops/edashboard/internal/catalog"
	"github.com/frsc-ops/edashboard/internal/export"
	"github.com/frsc-ops/edashboard/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	exportFormat  string
	exportFrom    string
	exportTo      string
	exportColumns string
	exportOut     string
	exportArchive string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored reports to files",
	Long: `The export command reads the submitted reports from the configured store,
keeps those whose date of entry falls within --from and --to, and writes
them in the requested formats:

  doc   - HTML document with one block per report
  xls   - quoted delimited text, one row per offender or currency detail
  xlsx  - workbook with a header row

A summary of the run is written next to the export files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatXLS), "Export format: doc, xls, xlsx or all")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First date of entry to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last date of entry to include (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportColumns, "columns", "", "Comma-separated columns to export (default: all)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (overrides output_dir)")
	exportCmd.Flags().StringVar(&exportArchive, "archive", "", "Archive directory for copies of the export files")
}

// =============================================================================
// MAIN EXPORT FUNCTION
// =============================================================================

func runExport(ctx context.Context) error {
	startTime := time.Now()

	formats, err := parseFormats(exportFormat)
	if err != nil {
		return err
	}
	columns, err := export.ParseColumns(exportColumns)
	if err != nil {
		return err
	}
	cat, err := catalog.Load(mainConfig.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	// =========================================================================
	// STEP 1: LOAD AND FILTER REPORTS
	// =========================================================================

	kv, adapter, err := openStore()
	if err != nil {
		return err
	}
	defer kv.Close()

	reports := export.FilterByDate(adapter.LoadReports(ctx), exportFrom, exportTo)
	if len(reports) == 0 {
		fmt.Println("No reports to export.")
		return nil
	}
	fmt.Printf("Exporting %d report(s)...\n", len(reports))

	// =========================================================================
	// STEP 2: WRITE EACH FORMAT
	// =========================================================================

	outputDir := mainConfig.OutputDir
	if exportOut != "" {
		outputDir = exportOut
	}
	files := utils.NewFileManager(outputDir, exportArchive)
	files.UseTimestampSubdirs = true
	exporter := export.NewExporter(files, mainConfig.FileNameFormat, logger.Named("export"))
	offences := export.OffenceCodes(cat.OffenceCodes())

	results := make([]export.Result, len(formats))
	failures := make([]error, len(formats))
	var g errgroup.Group
	for i, format := range formats {
		g.Go(func() error {
			results[i], failures[i] = exporter.Export(format, reports, columns, offences)
			return nil
		})
	}
	g.Wait()

	// =========================================================================
	// STEP 3: ARCHIVE AND SUMMARIZE
	// =========================================================================

	summary := utils.ExportSummary{
		StartTime: startTime,
		StartDate: exportFrom,
		EndDate:   exportTo,
		Reports:   len(reports),
		Rows:      len(export.Expand(reports)),
	}
	for _, r := range reports {
		summary.Offenders += len(r.FormData.Offenders)
	}
	for _, f := range columns.Selected() {
		summary.Columns = append(summary.Columns, string(f))
	}

	for i, format := range formats {
		if failures[i] != nil {
			summary.FailedFiles = append(summary.FailedFiles, utils.FailedFileInfo{
				Format:       string(format),
				ErrorMessage: failures[i].Error(),
			})
			fmt.Printf("  ✗ %s: %v\n", format, failures[i])
			continue
		}

		info := utils.ExportedFileInfo{
			Format:     string(format),
			OutputFile: results[i].Path,
			Bytes:      results[i].Bytes,
		}
		if exportArchive != "" {
			archived, err := files.ArchiveOutputFile(results[i].Path)
			if err != nil {
				logger.Warn("Archive failed", zap.String("path", results[i].Path), zap.Error(err))
			} else {
				info.ArchivePath = archived
			}
		}
		summary.Files = append(summary.Files, info)
		fmt.Printf("  ✓ %s -> %s\n", format, results[i].Path)
	}

	summary.EndTime = time.Now()
	summaryPath, err := utils.WriteSummaryLog(summary, outputDir)
	if err != nil {
		logger.Warn("Could not write export summary", zap.Error(err))
	} else {
		fmt.Printf("Summary written to %s\n", summaryPath)
	}

	if len(summary.FailedFiles) > 0 {
		return errors.New("one or more exports failed")
	}
	return nil
}

// parseFormats expands the --format flag.
func parseFormats(value string) ([]export.Format, error) {
	if strings.EqualFold(strings.TrimSpace(value), "all") {
		return append([]export.Format(nil), export.Formats...), nil
	}
	var formats []export.Format
	for _, part := range strings.Split(value, ",") {
		f, err := export.ParseFormat(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}
