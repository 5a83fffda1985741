// =============================================================================
// FRSC Operations E-Dashboard - Export Transformer
// =============================================================================
//
// This module turns submitted reports into export rows. It is pure: the same
// reports, column mask and offence codes always produce the same output.
//
// ROW EXPANSION:
//   Each offender yields one row per currency detail when the triggering
//   offence is selected and details exist, and exactly one row otherwise.
//   Report-level values repeat on every row of the report.
//
//   Report 1 ─┬─ Offender A (no bribe)             -> 1 row
//             └─ Offender B (bribe, 2 details)     -> 2 rows
//
// VALUE RENDERING:
//   offence       - catalog codes joined by the caller's separator; names
//                   without a code are emitted as-is
//   actionTaken   - display text (impoundment -> Impoundment, ...)
//   currency*     - empty unless the row comes from a currency detail
//
// =============================================================================

package export

import (
	"sort"
	"strings"

	"github.com/frsc-ops/edashboard/internal/types"
)

// OffenceCodes maps offence names to codes.
type OffenceCodes map[string]string

// Code returns the code of name, or name when it has none.
func (c OffenceCodes) Code(name string) string {
	if code, ok := c[name]; ok && code != "" {
		return code
	}
	return name
}

// Join renders an offence set as codes joined by sep.
func (c OffenceCodes) Join(names []string, sep string) string {
	codes := make([]string, len(names))
	for i, n := range names {
		codes[i] = c.Code(n)
	}
	return strings.Join(codes, sep)
}

// =============================================================================
// FILTERING AND ORDERING
// =============================================================================

// FilterByDate keeps the reports whose DateOfEntry lies within [start, end].
// Dates compare as strings, which orders ISO dates correctly. An empty bound
// is open. The input order is preserved.
func FilterByDate(reports []types.Report, start, end string) []types.Report {
	out := make([]types.Report, 0, len(reports))
	for _, r := range reports {
		if start != "" && r.DateOfEntry < start {
			continue
		}
		if end != "" && r.DateOfEntry > end {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SortBySubmission returns a copy of reports ordered by submission time,
// oldest first.
func SortBySubmission(reports []types.Report) []types.Report {
	out := append([]types.Report(nil), reports...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmissionTimestamp < out[j].SubmissionTimestamp
	})
	return out
}

// =============================================================================
// ROW EXPANSION
// =============================================================================

// Row is one flattened export line: a report, one of its offenders and at
// most one currency detail.
type Row struct {
	Report   *types.Report
	Offender *types.OffenderInfo
	Currency *types.CurrencyDetail
}

// Expand flattens reports into rows.
func Expand(reports []types.Report) []Row {
	var rows []Row
	for i := range reports {
		report := &reports[i]
		for j := range report.FormData.Offenders {
			offender := &report.FormData.Offenders[j]
			if offender.HasTriggeringOffence() && len(offender.CurrencyDetails) > 0 {
				for k := range offender.CurrencyDetails {
					rows = append(rows, Row{Report: report, Offender: offender, Currency: &offender.CurrencyDetails[k]})
				}
				continue
			}
			rows = append(rows, Row{Report: report, Offender: offender})
		}
	}
	return rows
}

// Value renders one field of the row.
func (r Row) Value(field types.ReportField, offences OffenceCodes) string {
	switch field {
	case types.FieldDateOfEntry:
		return r.Report.DateOfEntry
	case types.FieldRoute:
		return r.Report.Route
	case types.FieldTeamLeader:
		return r.Report.TeamLeader
	case types.FieldTeamLeaderPin:
		return r.Report.TeamLeaderPin
	case types.FieldOffence:
		if r.Offender == nil {
			return ""
		}
		return offences.Join(r.Offender.Offence, "; ")
	case types.FieldActionTaken:
		if r.Offender == nil {
			return ""
		}
		return types.ActionTakenDisplay(r.Offender.ActionTaken)
	case types.FieldCurrencyType, types.FieldAmountOffered, types.FieldCurrencyNumber:
		if r.Currency == nil {
			return ""
		}
		v, _ := r.Currency.Field(string(field))
		return v
	}
	if r.Offender == nil {
		return ""
	}
	v, _ := r.Offender.Field(string(field))
	return v
}

// Rows returns the selected column values of every expanded row. Columns
// follow types.ReportFields order.
func Rows(reports []types.Report, columns types.ExportColumns, offences OffenceCodes) [][]string {
	fields := columns.Selected()
	expanded := Expand(reports)

	out := make([][]string, len(expanded))
	for i, row := range expanded {
		values := make([]string, len(fields))
		for j, f := range fields {
			values[j] = row.Value(f, offences)
		}
		out[i] = values
	}
	return out
}
