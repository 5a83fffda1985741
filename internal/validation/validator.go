// =============================================================================
// FRSC Operations E-Dashboard - Validation Engine
// =============================================================================
//
// This module validates a report snapshot before submission. Errors are
// collected, not returned on first failure, and keyed by the form field they
// belong to so a client can render each message next to its input.
//
// FIELD KEYS:
//   dateOfEntry                              - report date
//   selectedTeamLeader                       - team leader selection
//   selectedRoute                            - route selection
//   offender-{i}-{field}                     - scalar offender field or "offence"
//   offender-{i}-currencyDetails             - missing currency detail list
//   offender-{i}-currency-{j}-{field}        - currency detail field
//
// RULES:
//   1. Date of entry, team leader and route are required.
//   2. Every scalar offender field is required (whitespace-only is empty).
//   3. At least one offence must be selected.
//   4. When the triggering offence is selected, at least one currency detail
//      must exist and each of its three fields is required.
//
// =============================================================================

package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frsc-ops/edashboard/internal/types"
)

// Header field keys.
const (
	KeyDateOfEntry = "dateOfEntry"
	KeyTeamLeader  = "selectedTeamLeader"
	KeyRoute       = "selectedRoute"
)

// Messages.
const (
	MessageRequired         = "This field is required"
	MessageCurrencyRequired = "At least one currency detail is required"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// Errors maps a field key to a human-readable message. An empty map means the
// snapshot is submittable.
type Errors map[string]string

// Error implements the error interface.
func (e Errors) Error() string {
	keys := e.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e[k])
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e), strings.Join(parts, "; "))
}

// Keys returns the error keys in sorted order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clear removes the error for key, if any.
func (e Errors) Clear(key string) {
	delete(e, key)
}

// OffenderKey returns the key of an offender-level field.
func OffenderKey(index int, field string) string {
	return fmt.Sprintf("offender-%d-%s", index, field)
}

// CurrencyKey returns the key of a currency-detail field.
func CurrencyKey(offenderIndex, detailIndex int, field string) string {
	return fmt.Sprintf("offender-%d-currency-%d-%s", offenderIndex, detailIndex, field)
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks a report snapshot.
//
// PARAMETERS:
//   - dateOfEntry, teamLeader, route: The report header selections.
//   - offenders: The offender records of the draft.
//
// RETURNS:
//   - The collected errors. The map is empty, never nil, when the snapshot is
//     submittable.
func Validate(dateOfEntry, teamLeader, route string, offenders []types.OffenderInfo) Errors {
	errs := Errors{}

	// =========================================================================
	// HEADER VALIDATION
	// =========================================================================

	if isBlank(dateOfEntry) {
		errs[KeyDateOfEntry] = MessageRequired
	}
	if isBlank(teamLeader) {
		errs[KeyTeamLeader] = MessageRequired
	}
	if isBlank(route) {
		errs[KeyRoute] = MessageRequired
	}

	// =========================================================================
	// OFFENDER VALIDATION
	// =========================================================================

	for i := range offenders {
		validateOffender(errs, i, &offenders[i])
	}

	return errs
}

// validateOffender adds the errors of one offender record to errs.
func validateOffender(errs Errors, index int, offender *types.OffenderInfo) {
	for _, field := range types.OffenderScalarFields {
		value, _ := offender.Field(field)
		if isBlank(value) {
			errs[OffenderKey(index, field)] = MessageRequired
		}
	}

	if len(offender.Offence) == 0 {
		errs[OffenderKey(index, "offence")] = MessageRequired
	}

	if !offender.HasTriggeringOffence() {
		return
	}

	// An empty list cannot arise through the form reducer, but a restored
	// draft may carry one; it must still block submission visibly.
	if len(offender.CurrencyDetails) == 0 {
		errs[OffenderKey(index, "currencyDetails")] = MessageCurrencyRequired
		return
	}

	for j := range offender.CurrencyDetails {
		detail := &offender.CurrencyDetails[j]
		for _, field := range types.CurrencyDetailFields {
			value, _ := detail.Field(field)
			if isBlank(value) {
				errs[CurrencyKey(index, j, field)] = MessageRequired
			}
		}
	}
}

// isBlank reports whether a value is empty after trimming whitespace.
func isBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}
