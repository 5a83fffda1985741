// =============================================================================
// FRSC Operations E-Dashboard - Document Writer
// =============================================================================
//
// This module renders reports as a self-contained HTML document that word
// processors open as a .doc file.
//
// DOCUMENT STRUCTURE:
//
//   <h1>FRSC Operations Report</h1>
//   <div class="report-container">          <!-- one per report -->
//     <table class="report-table">
//       <tr class="section-header">Report Details (ID: 1700000000000)</tr>
//       <tr>Date of Entry | 2024-05-01</tr>  <!-- selected report fields -->
//       <tr class="section-header">Offender #1 Details</tr>  <!-- only if >1 -->
//       <tr>Offender Name | John Doe</tr>    <!-- selected offender fields -->
//       <tr>Currency Offered Details:</tr>   <!-- bribe offenders only -->
//       <tr><ul><li>Type: NGN | Amount: 5000 | Number: AB12</li></ul></tr>
//     </table>
//   </div>
//
// Every interpolated value is HTML-escaped.
//
// =============================================================================

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/frsc-ops/edashboard/internal/types"
)

// DocumentTitle is the heading and <title> of document exports.
const DocumentTitle = "FRSC Operations Report"

const documentStyle = `body { font-family: Arial, sans-serif; margin: 40px; color: #333; }
h1 { text-align: center; color: #000; border-bottom: 2px solid #000; padding-bottom: 10px; }
.report-container { page-break-inside: avoid; margin-bottom: 25px; }
.report-table { width: 100%; border-collapse: collapse; border: 1px solid #ccc; }
td { padding: 8px 12px; border: 1px solid #ddd; text-align: left; vertical-align: top; }
td:first-child:not(.sub-header) { font-weight: bold; width: 30%; background-color: #f9f9f9; }
.section-header td { background-color: #e2e8f0; font-weight: bold; font-size: 1.1em; color: #2d3748; }
.sub-header { font-weight: bold; background-color: #f7fafc; }`

// reportHeaderFields are the report-level rows, in document order.
var reportHeaderFields = []types.ReportField{
	types.FieldDateOfEntry,
	types.FieldRoute,
	types.FieldTeamLeader,
	types.FieldTeamLeaderPin,
}

// offenderFields are the offender rows, in document order. The document
// labels the name row differently from the column label.
var offenderFields = []struct {
	field types.ReportField
	label string
}{
	{types.FieldFullName, "Offender Name"},
	{types.FieldTicket, types.FieldTicket.Label()},
	{types.FieldVehicleNumberPlate, types.FieldVehicleNumberPlate.Label()},
	{types.FieldVehicleColor, types.FieldVehicleColor.Label()},
	{types.FieldVehicleMake, types.FieldVehicleMake.Label()},
	{types.FieldVehicleType, types.FieldVehicleType.Label()},
	{types.FieldVehicleCategory, types.FieldVehicleCategory.Label()},
	{types.FieldOffence, types.FieldOffence.Label()},
	{types.FieldActionTaken, types.FieldActionTaken.Label()},
}

// =============================================================================
// DOCUMENT GENERATION
// =============================================================================

// Document renders reports as an HTML document.
//
// PARAMETERS:
//   - reports: The reports, rendered in the given order.
//   - columns: The column mask. Deselected fields produce no row.
//   - offences: Offence name to code mapping.
//
// RETURNS:
//   - The document markup, without a byte-order mark.
func Document(reports []types.Report, columns types.ExportColumns, offences OffenceCodes) string {
	var buffer bytes.Buffer

	buffer.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	buffer.WriteString("<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&buffer, "<title>%s</title>\n", DocumentTitle)
	fmt.Fprintf(&buffer, "<style>\n%s\n</style>\n", documentStyle)
	buffer.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&buffer, "<h1>%s</h1>\n", DocumentTitle)

	for i := range reports {
		writeReport(&buffer, &reports[i], columns, offences)
	}

	buffer.WriteString("</body>\n</html>\n")
	return buffer.String()
}

// writeReport writes the container of one report.
func writeReport(buffer *bytes.Buffer, report *types.Report, columns types.ExportColumns, offences OffenceCodes) {
	buffer.WriteString("<div class=\"report-container\">\n<table class=\"report-table\">\n")
	writeSectionHeader(buffer, fmt.Sprintf("Report Details (ID: %d)", report.ID))

	row := Row{Report: report}
	for _, f := range reportHeaderFields {
		if columns[f] {
			writeRow(buffer, f.Label(), row.Value(f, offences))
		}
	}

	multiple := len(report.FormData.Offenders) > 1
	for i := range report.FormData.Offenders {
		offender := &report.FormData.Offenders[i]
		if multiple {
			writeSectionHeader(buffer, fmt.Sprintf("Offender #%d Details", i+1))
		}
		writeOffender(buffer, report, offender, columns, offences)
	}

	buffer.WriteString("</table>\n</div>\n")
}

// writeOffender writes the rows of one offender.
func writeOffender(buffer *bytes.Buffer, report *types.Report, offender *types.OffenderInfo, columns types.ExportColumns, offences OffenceCodes) {
	row := Row{Report: report, Offender: offender}
	for _, of := range offenderFields {
		if !columns[of.field] {
			continue
		}
		value := row.Value(of.field, offences)
		if of.field == types.FieldOffence {
			value = offences.Join(offender.Offence, ", ")
		}
		writeRow(buffer, of.label, value)
	}

	if !offender.HasTriggeringOffence() || len(offender.CurrencyDetails) == 0 {
		return
	}

	buffer.WriteString("<tr><td class=\"sub-header\" colspan=\"2\">Currency Offered Details:</td></tr>\n")
	buffer.WriteString("<tr><td colspan=\"2\"><ul style=\"margin: 0; padding-left: 20px;\">")
	for i := range offender.CurrencyDetails {
		buffer.WriteString("<li>")
		buffer.WriteString(html.EscapeString(currencyLine(&offender.CurrencyDetails[i], columns)))
		buffer.WriteString("</li>")
	}
	buffer.WriteString("</ul></td></tr>\n")
}

// currencyLine renders the selected parts of a currency detail.
func currencyLine(d *types.CurrencyDetail, columns types.ExportColumns) string {
	var parts []string
	if columns[types.FieldCurrencyType] {
		parts = append(parts, "Type: "+d.CurrencyType)
	}
	if columns[types.FieldAmountOffered] {
		parts = append(parts, "Amount: "+d.AmountOffered)
	}
	if columns[types.FieldCurrencyNumber] {
		parts = append(parts, "Number: "+d.CurrencyNumber)
	}
	return strings.Join(parts, " | ")
}

func writeSectionHeader(buffer *bytes.Buffer, title string) {
	fmt.Fprintf(buffer, "<tr class=\"section-header\"><td colspan=\"2\">%s</td></tr>\n", html.EscapeString(title))
}

func writeRow(buffer *bytes.Buffer, label, value string) {
	fmt.Fprintf(buffer, "<tr><td>%s</td><td>%s</td></tr>\n", html.EscapeString(label), html.EscapeString(value))
}
