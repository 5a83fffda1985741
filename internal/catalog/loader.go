// =============================================================================
// FRSC Operations E-Dashboard - Catalog Loader
// =============================================================================
//
// Catalog files replace the built-in reference lists. Three formats are
// supported, selected by file extension:
//
//   YAML (.yaml/.yml):
//     team_leaders: [{name: "RC OS ODEKUNLE", pin: "C-07287"}]
//     routes:       ["OS - SEKONA"]
//     offences:     [{code: "SUV", name: "SEAT BELT VIOLATION"}]
//     currencies:   ["NGN"]
//
//   CSV (.csv), one entry per row after a header row:
//     kind,name,value
//     team_leader,RC OS ODEKUNLE,C-07287
//     route,OS - SEKONA,
//     offence,SEAT BELT VIOLATION,SUV
//     currency,NGN,
//
//   XLSX (.xlsx), one sheet per list, first row is a header:
//     TeamLeaders: Name | PIN
//     Routes:      Route
//     Offences:    Code | Name
//     Currencies:  Currency
//
// LIST REPLACEMENT:
//   A list present in the file replaces the built-in list entirely. Lists the
//   file does not mention keep their built-in entries. Duplicate keys inside a
//   file are rejected exactly like interactive additions.
//
// =============================================================================

package catalog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/frsc-ops/edashboard/internal/types"
)

// XLSX sheet names.
const (
	SheetTeamLeaders = "TeamLeaders"
	SheetRoutes      = "Routes"
	SheetOffences    = "Offences"
	SheetCurrencies  = "Currencies"
)

// catalogFile is the decoded content of a catalog file. A nil slice means the
// list was not present in the file.
type catalogFile struct {
	TeamLeaders []types.TeamLeader `yaml:"team_leaders"`
	Routes      []string           `yaml:"routes"`
	Offences    []types.Offence    `yaml:"offences"`
	Currencies  []string           `yaml:"currencies"`
}

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// Load reads a catalog file and returns the resulting catalog.
//
// PARAMETERS:
//   - path: A .yaml, .yml, .csv or .xlsx catalog file. An empty path returns
//     the built-in catalog.
//
// RETURNS:
//   - The catalog.
//   - An error if the file cannot be read, parsed, or contains duplicates.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	var c *Catalog
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", readErr)
		}
		c, err = ParseYAML(data)
	case ".csv":
		c, err = ParseCSV(bufio.NewReader(file))
	case ".xlsx":
		c, err = ParseXLSX(file)
	default:
		return nil, fmt.Errorf("unsupported catalog file type: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// ParseYAML builds a catalog from YAML data.
func ParseYAML(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return f.build()
}

// ParseCSV builds a catalog from kind,name,value rows.
func ParseCSV(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	var f catalogFile
	// Row 1 is the header.
	for i, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}
		kind := strings.ToLower(cell(row, 0))
		name, value := cell(row, 1), cell(row, 2)

		switch kind {
		case "team_leader", "teamleader":
			f.TeamLeaders = append(f.TeamLeaders, types.TeamLeader{Name: name, Pin: value})
		case "route":
			f.Routes = append(f.Routes, name)
		case "offence":
			f.Offences = append(f.Offences, types.Offence{Code: value, Name: name})
		case "currency":
			f.Currencies = append(f.Currencies, name)
		default:
			return nil, fmt.Errorf("row %d: unknown kind %q", i+2, kind)
		}
	}
	return f.build()
}

// ParseXLSX builds a catalog from a workbook with one sheet per list.
func ParseXLSX(r io.Reader) (*Catalog, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	var f catalogFile
	for _, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		if len(rows) > 0 {
			rows = rows[1:]
		}

		switch {
		case strings.EqualFold(sheet, SheetTeamLeaders):
			f.TeamLeaders = []types.TeamLeader{}
			for _, row := range rows {
				if !isRowEmpty(row) {
					f.TeamLeaders = append(f.TeamLeaders, types.TeamLeader{Name: cell(row, 0), Pin: cell(row, 1)})
				}
			}
		case strings.EqualFold(sheet, SheetRoutes):
			f.Routes = []string{}
			for _, row := range rows {
				if !isRowEmpty(row) {
					f.Routes = append(f.Routes, cell(row, 0))
				}
			}
		case strings.EqualFold(sheet, SheetOffences):
			f.Offences = []types.Offence{}
			for _, row := range rows {
				if !isRowEmpty(row) {
					f.Offences = append(f.Offences, types.Offence{Code: cell(row, 0), Name: cell(row, 1)})
				}
			}
		case strings.EqualFold(sheet, SheetCurrencies):
			f.Currencies = []string{}
			for _, row := range rows {
				if !isRowEmpty(row) {
					f.Currencies = append(f.Currencies, cell(row, 0))
				}
			}
		}
	}
	return f.build()
}

// build applies the file's lists over the built-in catalog, rejecting
// duplicates through the regular Add* paths.
func (f *catalogFile) build() (*Catalog, error) {
	c := Default()

	if f.TeamLeaders != nil {
		c.TeamLeaders = []types.TeamLeader{}
		for _, l := range f.TeamLeaders {
			if _, err := c.AddTeamLeader(l.Name, l.Pin); err != nil {
				return nil, fmt.Errorf("team leader %q: %w", l.Name, err)
			}
		}
	}
	if f.Routes != nil {
		c.Routes = []string{}
		for _, r := range f.Routes {
			if _, err := c.AddRoute(r); err != nil {
				return nil, fmt.Errorf("route %q: %w", r, err)
			}
		}
	}
	if f.Offences != nil {
		c.Offences = []types.Offence{}
		for _, o := range f.Offences {
			if _, err := c.AddOffence(o.Code, o.Name); err != nil {
				return nil, fmt.Errorf("offence %q: %w", o.Name, err)
			}
		}
	}
	if f.Currencies != nil {
		c.Currencies = []string{}
		for _, cur := range f.Currencies {
			if _, err := c.AddCurrency(cur); err != nil {
				return nil, fmt.Errorf("currency %q: %w", cur, err)
			}
		}
	}

	return c, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// cell safely returns the trimmed value at index i.
func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// isRowEmpty checks if all cells in a row are empty.
func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
