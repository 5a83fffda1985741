// =============================================================================
// FRSC Operations E-Dashboard - Shared Types
// =============================================================================
//
// This package contains the domain types shared by every other module. They
// live here to avoid import cycles. Types defined here are used by:
//   - form       (draft editing and submission)
//   - validation (field-keyed error reporting)
//   - storage    (draft and report persistence)
//   - export     (document, delimited-text and workbook output)
//
// JSON field names intentionally match the stored blobs of the browser
// dashboard so existing drafts and report collections load unchanged.
//
// =============================================================================

package types

// TriggeringOffence is the offence whose selection mandates currency-detail
// capture on an offender.
const TriggeringOffence = "ATTEMPTING TO CORRUPT MARSHAL"

// =============================================================================
// FORM TYPES
// =============================================================================

// CurrencyDetail describes one bribe offered by an offender.
// It is owned by exactly one OffenderInfo.
type CurrencyDetail struct {
	// ID is unique among the details of the owning offender.
	ID int64 `json:"id"`

	CurrencyType   string `json:"currencyType"`
	AmountOffered  string `json:"amountOffered"`
	CurrencyNumber string `json:"currencyNumber"`
}

// OffenderInfo is one violation record within a report.
//
// INVARIANT:
//   CurrencyDetails is non-empty if and only if Offence contains
//   TriggeringOffence. The form package enforces this on every offence
//   mutation.
type OffenderInfo struct {
	FullName           string `json:"fullName"`
	Ticket             string `json:"ticket"`
	VehicleNumberPlate string `json:"vehicleNumberPlate"`
	VehicleColor       string `json:"vehicleColor"`
	VehicleMake        string `json:"vehicleMake"`
	VehicleType        string `json:"vehicleType"`
	VehicleCategory    string `json:"vehicleCategory"`

	// Offence holds offence names. Duplicates are impossible by construction.
	Offence []string `json:"offence"`

	ActionTaken string `json:"actionTaken"`

	CurrencyDetails []CurrencyDetail `json:"currencyDetails"`
}

// HasTriggeringOffence reports whether the offender's offence set contains
// the currency-triggering offence.
func (o OffenderInfo) HasTriggeringOffence() bool {
	return o.HasOffence(TriggeringOffence)
}

// HasOffence reports whether name is in the offender's offence set.
func (o OffenderInfo) HasOffence(name string) bool {
	for _, n := range o.Offence {
		if n == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the offender.
func (o OffenderInfo) Clone() OffenderInfo {
	c := o
	c.Offence = append([]string{}, o.Offence...)
	c.CurrencyDetails = append([]CurrencyDetail{}, o.CurrencyDetails...)
	return c
}

// FormData is the editable body of a report: an ordered, non-empty list of
// offenders.
type FormData struct {
	Offenders []OffenderInfo `json:"offenders"`
}

// Clone returns a deep copy of the form data.
func (f FormData) Clone() FormData {
	offenders := make([]OffenderInfo, len(f.Offenders))
	for i, o := range f.Offenders {
		offenders[i] = o.Clone()
	}
	return FormData{Offenders: offenders}
}

// NewOffender returns a blank offender record.
func NewOffender() OffenderInfo {
	return OffenderInfo{
		Offence:         []string{},
		CurrencyDetails: []CurrencyDetail{},
	}
}

// NewFormData returns form data holding a single blank offender.
func NewFormData() FormData {
	return FormData{Offenders: []OffenderInfo{NewOffender()}}
}

// =============================================================================
// CATALOG TYPES
// =============================================================================

// TeamLeader is keyed by Name.
type TeamLeader struct {
	Name string `json:"name" yaml:"name"`
	Pin  string `json:"pin" yaml:"pin"`
}

// Offence is keyed by both Code and Name.
type Offence struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// =============================================================================
// REPORT
// =============================================================================

// Report is one finalized submission. It is never mutated after creation and
// owns a deep copy of the form data captured at submission time.
type Report struct {
	ID                  int64    `json:"id"`
	SubmissionTimestamp int64    `json:"submissionTimestamp"`
	TeamLeader          string   `json:"teamLeader"`
	TeamLeaderPin       string   `json:"teamLeaderPin"`
	DateOfEntry         string   `json:"dateOfEntry"`
	Route               string   `json:"route"`
	FormData            FormData `json:"formData"`
}

// =============================================================================
// EXPORT COLUMNS
// =============================================================================

// ReportField names one exportable column.
type ReportField string

const (
	FieldDateOfEntry        ReportField = "dateOfEntry"
	FieldRoute              ReportField = "route"
	FieldTeamLeader         ReportField = "teamLeader"
	FieldTeamLeaderPin      ReportField = "teamLeaderPin"
	FieldFullName           ReportField = "fullName"
	FieldTicket             ReportField = "ticket"
	FieldOffence            ReportField = "offence"
	FieldActionTaken        ReportField = "actionTaken"
	FieldCurrencyType       ReportField = "currencyType"
	FieldAmountOffered      ReportField = "amountOffered"
	FieldCurrencyNumber     ReportField = "currencyNumber"
	FieldVehicleNumberPlate ReportField = "vehicleNumberPlate"
	FieldVehicleColor       ReportField = "vehicleColor"
	FieldVehicleMake        ReportField = "vehicleMake"
	FieldVehicleType        ReportField = "vehicleType"
	FieldVehicleCategory    ReportField = "vehicleCategory"
)

// ReportFields lists every exportable field in catalog order. Delimited-text
// and workbook exports emit columns in this order.
var ReportFields = []ReportField{
	FieldDateOfEntry,
	FieldRoute,
	FieldTeamLeader,
	FieldTeamLeaderPin,
	FieldFullName,
	FieldTicket,
	FieldOffence,
	FieldActionTaken,
	FieldCurrencyType,
	FieldAmountOffered,
	FieldCurrencyNumber,
	FieldVehicleNumberPlate,
	FieldVehicleColor,
	FieldVehicleMake,
	FieldVehicleType,
	FieldVehicleCategory,
}

var fieldLabels = map[ReportField]string{
	FieldDateOfEntry:        "Date of Entry",
	FieldRoute:              "Route",
	FieldTeamLeader:         "Team Leader",
	FieldTeamLeaderPin:      "Team Leader PIN",
	FieldFullName:           "Full Name",
	FieldTicket:             "Ticket Number",
	FieldOffence:            "Offence(s)",
	FieldActionTaken:        "Action Taken",
	FieldCurrencyType:       "Currency Type",
	FieldAmountOffered:      "Amount Offered",
	FieldCurrencyNumber:     "Currency Number",
	FieldVehicleNumberPlate: "Vehicle Number Plate",
	FieldVehicleColor:       "Vehicle Color",
	FieldVehicleMake:        "Vehicle Make",
	FieldVehicleType:        "Vehicle Type",
	FieldVehicleCategory:    "Vehicle Category",
}

// Label returns the human-readable column label.
func (f ReportField) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Valid reports whether f is a known export field.
func (f ReportField) Valid() bool {
	_, ok := fieldLabels[f]
	return ok
}

// IsCurrencyField reports whether f is one of the three currency-detail columns.
func (f ReportField) IsCurrencyField() bool {
	return f == FieldCurrencyType || f == FieldAmountOffered || f == FieldCurrencyNumber
}

// ExportColumns is the column-selection mask. Only fields mapped to true are
// exported.
type ExportColumns map[ReportField]bool

// DefaultColumns returns a mask selecting every field.
func DefaultColumns() ExportColumns {
	cols := make(ExportColumns, len(ReportFields))
	for _, f := range ReportFields {
		cols[f] = true
	}
	return cols
}

// NoColumns returns a mask deselecting every field.
func NoColumns() ExportColumns {
	cols := make(ExportColumns, len(ReportFields))
	for _, f := range ReportFields {
		cols[f] = false
	}
	return cols
}

// Selected returns the selected fields in catalog order.
func (c ExportColumns) Selected() []ReportField {
	var out []ReportField
	for _, f := range ReportFields {
		if c[f] {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// ACTION TAKEN
// =============================================================================

var actionTakenDisplay = map[string]string{
	"impoundment":   "Impoundment",
	"confiscation":  "Confiscation NDL",
	"confiscation1": "Confiscation VEH PAPER",
}

// ActionTakenDisplay maps a stored action-taken value to its display text.
// Unknown values pass through unchanged.
func ActionTakenDisplay(value string) string {
	if d, ok := actionTakenDisplay[value]; ok {
		return d
	}
	return value
}

// ActionTakenOptions returns the stored values accepted for actionTaken.
func ActionTakenOptions() []string {
	return []string{"impoundment", "confiscation", "confiscation1"}
}

// VehicleCategories is the advisory list offered for vehicleCategory.
var VehicleCategories = []string{
	"Motorcycle", "Pickup", "Bus", "Car", "Jeep", "Truck", "Articulated", "Tanker",
}

// =============================================================================
// OFFENDER SCALAR FIELDS
// =============================================================================

// OffenderScalarFields lists the free-text offender fields in form order.
// Every one of them is required at submission.
var OffenderScalarFields = []string{
	"fullName",
	"ticket",
	"vehicleNumberPlate",
	"vehicleColor",
	"vehicleMake",
	"vehicleType",
	"vehicleCategory",
	"actionTaken",
}

// Field returns the value of a scalar field by its JSON name.
func (o *OffenderInfo) Field(name string) (string, bool) {
	switch name {
	case "fullName":
		return o.FullName, true
	case "ticket":
		return o.Ticket, true
	case "vehicleNumberPlate":
		return o.VehicleNumberPlate, true
	case "vehicleColor":
		return o.VehicleColor, true
	case "vehicleMake":
		return o.VehicleMake, true
	case "vehicleType":
		return o.VehicleType, true
	case "vehicleCategory":
		return o.VehicleCategory, true
	case "actionTaken":
		return o.ActionTaken, true
	}
	return "", false
}

// SetField replaces a scalar field by its JSON name. It reports false for
// unknown or non-scalar fields.
func (o *OffenderInfo) SetField(name, value string) bool {
	switch name {
	case "fullName":
		o.FullName = value
	case "ticket":
		o.Ticket = value
	case "vehicleNumberPlate":
		o.VehicleNumberPlate = value
	case "vehicleColor":
		o.VehicleColor = value
	case "vehicleMake":
		o.VehicleMake = value
	case "vehicleType":
		o.VehicleType = value
	case "vehicleCategory":
		o.VehicleCategory = value
	case "actionTaken":
		o.ActionTaken = value
	default:
		return false
	}
	return true
}

// CurrencyDetailFields lists the editable currency-detail fields.
var CurrencyDetailFields = []string{"currencyType", "amountOffered", "currencyNumber"}

// Field returns a currency-detail field by its JSON name.
func (d *CurrencyDetail) Field(name string) (string, bool) {
	switch name {
	case "currencyType":
		return d.CurrencyType, true
	case "amountOffered":
		return d.AmountOffered, true
	case "currencyNumber":
		return d.CurrencyNumber, true
	}
	return "", false
}

// SetField replaces a currency-detail field by its JSON name.
func (d *CurrencyDetail) SetField(name, value string) bool {
	switch name {
	case "currencyType":
		d.CurrencyType = value
	case "amountOffered":
		d.AmountOffered = value
	case "currencyNumber":
		d.CurrencyNumber = value
	default:
		return false
	}
	return true
}
