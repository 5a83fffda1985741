package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"

	"github.com/frsc-ops/edashboard/internal/types"
	"github.com/frsc-ops/edashboard/pkg/utils"
)

var testOffences = OffenceCodes{
	types.TriggeringOffence: "ACS",
	"SEAT BELT VIOLATION":   "SUV",
	"SPEED LIMIT VIOLATION": "SLV",
}

func plainOffender(name string) types.OffenderInfo {
	return types.OffenderInfo{
		FullName:           name,
		Ticket:             "T-" + name,
		VehicleNumberPlate: "ABC-123",
		VehicleColor:       "Red",
		VehicleMake:        "Toyota",
		VehicleType:        "Sedan",
		VehicleCategory:    "Car",
		Offence:            []string{"SEAT BELT VIOLATION", "SPEED LIMIT VIOLATION"},
		ActionTaken:        "confiscation",
		CurrencyDetails:    []types.CurrencyDetail{},
	}
}

func bribeOffender(name string, details ...types.CurrencyDetail) types.OffenderInfo {
	o := plainOffender(name)
	o.Offence = []string{types.TriggeringOffence}
	o.ActionTaken = "impoundment"
	o.CurrencyDetails = details
	return o
}

func report(id int64, date string, offenders ...types.OffenderInfo) types.Report {
	return types.Report{
		ID:                  id,
		SubmissionTimestamp: id,
		TeamLeader:          "RC OS ODEKUNLE",
		TeamLeaderPin:       "C-07287",
		DateOfEntry:         date,
		Route:               "OS - ILESA",
		FormData:            types.FormData{Offenders: offenders},
	}
}

func TestFilterByDateIsInclusive(t *testing.T) {
	reports := []types.Report{
		report(1, "2024-01-01", plainOffender("a")),
		report(2, "2024-01-05", plainOffender("b")),
		report(3, "2024-01-10", plainOffender("c")),
	}

	ids := func(rs []types.Report) []int64 {
		var out []int64
		for _, r := range rs {
			out = append(out, r.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 2, 3}, ids(FilterByDate(reports, "", "")))
	assert.Equal(t, []int64{2}, ids(FilterByDate(reports, "2024-01-05", "2024-01-05")))
	assert.Equal(t, []int64{2, 3}, ids(FilterByDate(reports, "2024-01-05", "")))
	assert.Equal(t, []int64{1, 2}, ids(FilterByDate(reports, "", "2024-01-05")))
	assert.Empty(t, FilterByDate(reports, "2024-02-01", ""))
}

func TestSortBySubmission(t *testing.T) {
	reports := []types.Report{report(3, "d"), report(1, "d"), report(2, "d")}

	sorted := SortBySubmission(reports)

	assert.Equal(t, int64(1), sorted[0].ID)
	assert.Equal(t, int64(3), sorted[2].ID)
	assert.Equal(t, int64(3), reports[0].ID)
}

func TestRowCountIsSumOfMaxOneAndDetails(t *testing.T) {
	reports := []types.Report{
		report(1, "2024-01-01",
			plainOffender("a"),
			bribeOffender("b",
				types.CurrencyDetail{ID: 1, CurrencyType: "NGN"},
				types.CurrencyDetail{ID: 2, CurrencyType: "USD"},
				types.CurrencyDetail{ID: 3, CurrencyType: "EUR"}),
		),
		report(2, "2024-01-02", bribeOffender("c")),
	}

	rows := Rows(reports, types.DefaultColumns(), testOffences)

	assert.Len(t, rows, 1+3+1)
}

func TestBribeOffenderRowsDifferOnlyInCurrencyColumns(t *testing.T) {
	reports := []types.Report{report(1, "2024-01-01", bribeOffender("a",
		types.CurrencyDetail{ID: 1, CurrencyType: "NGN", AmountOffered: "5000", CurrencyNumber: "AB12"},
		types.CurrencyDetail{ID: 2, CurrencyType: "USD", AmountOffered: "20", CurrencyNumber: "CD34"},
	))}

	rows := Rows(reports, types.DefaultColumns(), testOffences)
	require.Len(t, rows, 2)

	for i, f := range types.ReportFields {
		if f.IsCurrencyField() {
			assert.NotEqual(t, rows[0][i], rows[1][i], f)
			continue
		}
		assert.Equal(t, rows[0][i], rows[1][i], f)
	}
}

func TestCSVFormatting(t *testing.T) {
	o := plainOffender(`Ade "Bigman" Olu`)
	reports := []types.Report{report(1, "2024-01-01", o)}
	cols := types.NoColumns()
	cols[types.FieldDateOfEntry] = true
	cols[types.FieldFullName] = true
	cols[types.FieldOffence] = true
	cols[types.FieldActionTaken] = true
	cols[types.FieldCurrencyType] = true

	got := CSV(reports, cols, testOffences)

	assert.Equal(t, `"2024-01-01","Ade ""Bigman"" Olu","SUV; SLV","Confiscation NDL",""`, got)
}

func TestCSVJoinsRowsWithNewlineAndNoHeader(t *testing.T) {
	reports := []types.Report{
		report(1, "2024-01-01", plainOffender("a")),
		report(2, "2024-01-02", plainOffender("b")),
	}
	cols := types.NoColumns()
	cols[types.FieldTicket] = true

	assert.Equal(t, "\"T-a\"\n\"T-b\"", CSV(reports, cols, testOffences))
}

func TestUnknownOffenceNamesPassThrough(t *testing.T) {
	o := plainOffender("a")
	o.Offence = []string{"NEW LOCAL OFFENCE"}
	cols := types.NoColumns()
	cols[types.FieldOffence] = true

	assert.Equal(t, `"NEW LOCAL OFFENCE"`, CSV([]types.Report{report(1, "d", o)}, cols, testOffences))
}

func TestDocumentSingleOffender(t *testing.T) {
	reports := []types.Report{report(42, "2024-01-01", bribeOffender("a",
		types.CurrencyDetail{ID: 1, CurrencyType: "NGN", AmountOffered: "5000", CurrencyNumber: "AB12"},
	))}

	doc := Document(reports, types.DefaultColumns(), testOffences)

	assert.Contains(t, doc, "<title>FRSC Operations Report</title>")
	assert.Contains(t, doc, "Report Details (ID: 42)")
	assert.Contains(t, doc, "<tr><td>Team Leader PIN</td><td>C-07287</td></tr>")
	assert.Contains(t, doc, "<tr><td>Offender Name</td><td>a</td></tr>")
	assert.Contains(t, doc, "<tr><td>Offence(s)</td><td>ACS</td></tr>")
	assert.Contains(t, doc, "<tr><td>Action Taken</td><td>Impoundment</td></tr>")
	assert.Contains(t, doc, "Currency Offered Details:")
	assert.Contains(t, doc, "<li>Type: NGN | Amount: 5000 | Number: AB12</li>")
	assert.NotContains(t, doc, "Offender #1 Details")
}

func TestDocumentMultipleOffendersAndColumnMask(t *testing.T) {
	reports := []types.Report{report(1, "2024-01-01",
		plainOffender("a"),
		bribeOffender("b", types.CurrencyDetail{ID: 1, CurrencyType: "NGN", AmountOffered: "5000", CurrencyNumber: "AB12"}),
	)}
	cols := types.DefaultColumns()
	cols[types.FieldRoute] = false
	cols[types.FieldAmountOffered] = false

	doc := Document(reports, cols, testOffences)

	assert.Contains(t, doc, "Offender #1 Details")
	assert.Contains(t, doc, "Offender #2 Details")
	assert.Contains(t, doc, "<tr><td>Offence(s)</td><td>SUV, SLV</td></tr>")
	assert.Contains(t, doc, "<li>Type: NGN | Number: AB12</li>")
	assert.NotContains(t, doc, "<td>Route</td>")
	assert.Equal(t, 1, strings.Count(doc, "Currency Offered Details:"))
}

func TestDocumentEscapesValues(t *testing.T) {
	o := plainOffender("<script>alert(1)</script>")
	doc := Document([]types.Report{report(1, "d", o)}, types.DefaultColumns(), testOffences)

	assert.NotContains(t, doc, "<script>")
	assert.Contains(t, doc, "&lt;script&gt;")
}

func TestWorkbookHasHeaderAndRows(t *testing.T) {
	reports := []types.Report{report(1, "2024-01-01", plainOffender("a"), plainOffender("b"))}
	cols := types.NoColumns()
	cols[types.FieldDateOfEntry] = true
	cols[types.FieldFullName] = true

	data, err := Workbook(reports, cols, testOffences)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(WorkbookSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date of Entry", "Full Name"},
		{"2024-01-01", "a"},
		{"2024-01-01", "b"},
	}, rows)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func newTestExporter(t *testing.T) (*Exporter, string) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := NewExporter(utils.NewFileManager(dir, ""), "", zaptest.NewLogger(t),
		WithClock(func() time.Time { return time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC) }))
	return e, dir
}

func TestExporterWritesDatedFiles(t *testing.T) {
	e, dir := newTestExporter(t)
	reports := []types.Report{report(1, "2024-01-01", plainOffender("a"))}

	doc, err := e.Export(FormatDoc, reports, types.DefaultColumns(), testOffences)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "FRSC_Reports_2024-03-09.doc"), doc.Path)

	data, err := os.ReadFile(doc.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), BOM+"<!DOCTYPE html>"))

	xls, err := e.Export(FormatXLS, reports, types.DefaultColumns(), testOffences)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "FRSC_Reports_2024-03-09.xls"), xls.Path)
	assert.Equal(t, 1, xls.Rows)

	data, err = os.ReadFile(xls.Path)
	require.NoError(t, err)
	assert.Equal(t, CSV(reports, types.DefaultColumns(), testOffences), string(data))
}

func TestExporterEmptyListWritesNothing(t *testing.T) {
	e, dir := newTestExporter(t)

	for _, f := range Formats {
		_, err := e.Export(f, nil, types.DefaultColumns(), testOffences)
		assert.True(t, errors.Is(err, ErrNoReports), f)
	}

	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestParseColumns(t *testing.T) {
	cols, err := ParseColumns("")
	require.NoError(t, err)
	assert.Equal(t, types.DefaultColumns(), cols)

	cols, err = ParseColumns(" route, ticket ,")
	require.NoError(t, err)
	assert.Equal(t, []types.ReportField{types.FieldRoute, types.FieldTicket}, cols.Selected())

	_, err = ParseColumns("route,shoeSize")
	assert.EqualError(t, err, `unknown export column "shoeSize"`)
}
