// =============================================================================
// FRSC Operations E-Dashboard - Form State Manager
// =============================================================================
//
// The manager owns the draft being edited: the report header selections and
// the ordered list of offenders. Every mutation goes through a method on
// Manager so the following invariants hold after each call:
//
//   1. There is always at least one offender.
//   2. An offender's currency-detail list is non-empty exactly when its
//      offence set contains the triggering offence.
//   3. An offender's offence set contains no duplicates.
//   4. Currency-detail ids are strictly increasing within the process.
//
// Out-of-range indices and unknown field names are ignored; the methods report
// whether anything changed.
//
// Manager is not safe for concurrent use. Callers serialize access.
//
// =============================================================================

package form

import (
	"strings"
	"time"

	"github.com/frsc-ops/edashboard/internal/types"
	"github.com/frsc-ops/edashboard/internal/validation"
)

// Header holds the report-level selections. They survive a submission.
type Header struct {
	DateOfEntry string `json:"dateOfEntry"`
	TeamLeader  string `json:"teamLeader"`
	Route       string `json:"route"`
}

// PinLookup resolves a team leader name to its PIN. Unknown names resolve to
// the empty string.
type PinLookup func(teamLeader string) string

// Manager is the draft reducer.
type Manager struct {
	header Header
	data   types.FormData
	errs   validation.Errors
	ids    *idSource
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock replaces the clock used for ids and submission timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.ids.now = now
	}
}

// NewManager returns a manager holding one blank offender.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		data: types.NewFormData(),
		errs: validation.Errors{},
		ids:  &idSource{now: time.Now},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// =============================================================================
// READ ACCESS
// =============================================================================

// Header returns the current header selections.
func (m *Manager) Header() Header {
	return m.header
}

// Snapshot returns a deep copy of the form data.
func (m *Manager) Snapshot() types.FormData {
	return m.data.Clone()
}

// OffenderCount returns the number of offenders.
func (m *Manager) OffenderCount() int {
	return len(m.data.Offenders)
}

// CurrencyDetailCount returns the number of currency details of an offender,
// or -1 when index is out of range.
func (m *Manager) CurrencyDetailCount(index int) int {
	o := m.offender(index)
	if o == nil {
		return -1
	}
	return len(o.CurrencyDetails)
}

// Errors returns a copy of the errors from the last validation, minus those
// cleared by later edits.
func (m *Manager) Errors() validation.Errors {
	out := make(validation.Errors, len(m.errs))
	for k, v := range m.errs {
		out[k] = v
	}
	return out
}

// ObserveID makes sure later ids are greater than id. It is used to continue
// numbering above reports loaded from storage.
func (m *Manager) ObserveID(id int64) {
	m.ids.observe(id)
}

// =============================================================================
// HEADER MUTATIONS
// =============================================================================

// SetDateOfEntry sets the report date (YYYY-MM-DD).
func (m *Manager) SetDateOfEntry(value string) {
	m.header.DateOfEntry = value
	m.errs.Clear(validation.KeyDateOfEntry)
}

// SetTeamLeader selects the team leader by name.
func (m *Manager) SetTeamLeader(name string) {
	m.header.TeamLeader = name
	m.errs.Clear(validation.KeyTeamLeader)
}

// SetRoute selects the route.
func (m *Manager) SetRoute(route string) {
	m.header.Route = route
	m.errs.Clear(validation.KeyRoute)
}

// =============================================================================
// OFFENDER MUTATIONS
// =============================================================================

// UpdateOffenderField replaces one scalar field of an offender.
//
// PARAMETERS:
//   - index: Offender position.
//   - field: JSON name of a scalar field (see types.OffenderScalarFields).
//   - value: New value.
//
// RETURNS:
//   - false when index is out of range or field is not a scalar field.
func (m *Manager) UpdateOffenderField(index int, field, value string) bool {
	o := m.offender(index)
	if o == nil || !o.SetField(field, value) {
		return false
	}
	m.errs.Clear(validation.OffenderKey(index, field))
	return true
}

// SetOffenceSelected adds or removes an offence from an offender's set and
// then reconciles the currency-detail list.
func (m *Manager) SetOffenceSelected(index int, name string, selected bool) bool {
	o := m.offender(index)
	if o == nil || name == "" {
		return false
	}

	has := o.HasOffence(name)
	switch {
	case selected && !has:
		o.Offence = append(o.Offence, name)
	case !selected && has:
		kept := make([]string, 0, len(o.Offence)-1)
		for _, n := range o.Offence {
			if n != name {
				kept = append(kept, n)
			}
		}
		o.Offence = kept
	default:
		return false
	}

	m.reconcileCurrencyDetails(o)
	m.errs.Clear(validation.OffenderKey(index, "offence"))
	return true
}

// AddOffender appends a blank offender.
func (m *Manager) AddOffender() int {
	m.data.Offenders = append(m.data.Offenders, types.NewOffender())
	return len(m.data.Offenders) - 1
}

// RemoveOffender deletes the offender at index. The last remaining offender
// cannot be removed.
func (m *Manager) RemoveOffender(index int) bool {
	if len(m.data.Offenders) <= 1 || m.offender(index) == nil {
		return false
	}
	m.data.Offenders = append(m.data.Offenders[:index], m.data.Offenders[index+1:]...)
	// Offender-scoped keys are positional and no longer line up.
	m.errs = validation.Errors{}
	return true
}

// =============================================================================
// CURRENCY DETAIL MUTATIONS
// =============================================================================

// AddCurrencyDetail appends a blank detail. It is a no-op unless the
// offender has the triggering offence selected.
func (m *Manager) AddCurrencyDetail(offenderIndex int) (int64, bool) {
	o := m.offender(offenderIndex)
	if o == nil || !o.HasTriggeringOffence() {
		return 0, false
	}
	d := m.blankDetail()
	o.CurrencyDetails = append(o.CurrencyDetails, d)
	return d.ID, true
}

// RemoveCurrencyDetail removes the detail with detailID. Removing the only
// detail of an offender that still has the triggering offence replaces it
// with a fresh blank detail.
func (m *Manager) RemoveCurrencyDetail(offenderIndex int, detailID int64) bool {
	o := m.offender(offenderIndex)
	if o == nil {
		return false
	}

	kept := make([]types.CurrencyDetail, 0, len(o.CurrencyDetails))
	for _, d := range o.CurrencyDetails {
		if d.ID != detailID {
			kept = append(kept, d)
		}
	}
	if len(kept) == len(o.CurrencyDetails) {
		return false
	}
	o.CurrencyDetails = kept

	m.reconcileCurrencyDetails(o)
	m.clearCurrencyErrors(offenderIndex)
	return true
}

// UpdateCurrencyDetail replaces one field of the detail at detailIndex.
func (m *Manager) UpdateCurrencyDetail(offenderIndex, detailIndex int, field, value string) bool {
	o := m.offender(offenderIndex)
	if o == nil || detailIndex < 0 || detailIndex >= len(o.CurrencyDetails) {
		return false
	}
	if !o.CurrencyDetails[detailIndex].SetField(field, value) {
		return false
	}
	m.errs.Clear(validation.CurrencyKey(offenderIndex, detailIndex, field))
	return true
}

// =============================================================================
// VALIDATION AND SUBMISSION
// =============================================================================

// Validate checks the current state and remembers the result.
func (m *Manager) Validate() validation.Errors {
	m.errs = validation.Validate(m.header.DateOfEntry, m.header.TeamLeader, m.header.Route, m.data.Offenders)
	return m.Errors()
}

// Submit finalizes the draft into a report.
//
// PARAMETERS:
//   - pins: Resolves the selected team leader's PIN. May be nil.
//
// RETURNS:
//   - The new report on success. The offenders are reset to a single blank
//     offender; header selections are kept.
//   - validation.Errors when the draft is incomplete. State is unchanged.
func (m *Manager) Submit(pins PinLookup) (types.Report, error) {
	if errs := m.Validate(); len(errs) > 0 {
		return types.Report{}, errs
	}

	now := m.ids.now()
	pin := ""
	if pins != nil {
		pin = pins(m.header.TeamLeader)
	}

	report := types.Report{
		ID:                  m.ids.next(),
		SubmissionTimestamp: now.UnixMilli(),
		TeamLeader:          m.header.TeamLeader,
		TeamLeaderPin:       pin,
		DateOfEntry:         m.header.DateOfEntry,
		Route:               m.header.Route,
		FormData:            m.data.Clone(),
	}

	m.data = types.NewFormData()
	m.errs = validation.Errors{}
	return report, nil
}

// Reset discards the offenders and keeps the header.
func (m *Manager) Reset() {
	m.data = types.NewFormData()
	m.errs = validation.Errors{}
}

// Restore replaces the offenders with a previously saved draft. The draft is
// normalized: missing slices are created, duplicate offences are dropped, the
// currency invariant is re-established and at least one offender exists.
func (m *Manager) Restore(data types.FormData) {
	restored := data.Clone()
	if len(restored.Offenders) == 0 {
		restored = types.NewFormData()
	}

	for i := range restored.Offenders {
		o := &restored.Offenders[i]
		o.Offence = dedupe(o.Offence)
		if o.CurrencyDetails == nil {
			o.CurrencyDetails = []types.CurrencyDetail{}
		}
		for _, d := range o.CurrencyDetails {
			m.ids.observe(d.ID)
		}
		m.reconcileCurrencyDetails(o)
	}

	m.data = restored
	m.errs = validation.Errors{}
}

// =============================================================================
// INTERNAL HELPERS
// =============================================================================

// reconcileCurrencyDetails is the single transition that keeps the currency
// list in step with the offence set.
func (m *Manager) reconcileCurrencyDetails(o *types.OffenderInfo) {
	if !o.HasTriggeringOffence() {
		o.CurrencyDetails = []types.CurrencyDetail{}
		return
	}
	if len(o.CurrencyDetails) == 0 {
		o.CurrencyDetails = []types.CurrencyDetail{m.blankDetail()}
	}
}

func (m *Manager) blankDetail() types.CurrencyDetail {
	return types.CurrencyDetail{ID: m.ids.next()}
}

func (m *Manager) offender(index int) *types.OffenderInfo {
	if index < 0 || index >= len(m.data.Offenders) {
		return nil
	}
	return &m.data.Offenders[index]
}

// clearCurrencyErrors drops every currency error of one offender; detail
// positions shift after a removal.
func (m *Manager) clearCurrencyErrors(offenderIndex int) {
	prefix := validation.OffenderKey(offenderIndex, "currency")
	for k := range m.errs {
		if strings.HasPrefix(k, prefix) {
			delete(m.errs, k)
		}
	}
}

func dedupe(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
