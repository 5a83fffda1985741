// =============================================================================
// FRSC Operations E-Dashboard - Catalog Module
// =============================================================================
//
// The catalog holds the selectable reference lists of the dashboard:
//   - Team leaders (keyed by name, carrying a PIN)
//   - Routes
//   - Offences (keyed by both code and name)
//   - Currency types
//
// Additions that collide with an existing key are rejected with a
// DuplicateKeyError and leave the catalog untouched.
//
// =============================================================================

package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/frsc-ops/edashboard/internal/types"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrEmptyKey is returned when an addition is missing its key fields.
var ErrEmptyKey = errors.New("catalog: name and key fields are required")

// Kinds of catalog entries, used in DuplicateKeyError.
const (
	KindTeamLeader = "team leader"
	KindRoute      = "route"
	KindOffence    = "offence"
	KindCurrency   = "currency type"
)

// DuplicateKeyError reports an addition whose key already exists.
type DuplicateKeyError struct {
	// Kind is the catalog list the addition targeted.
	Kind string

	// Field names the colliding key ("name", "code").
	Field string

	// Key is the colliding value.
	Key string
}

// Error implements the error interface. The message is the user-facing notice.
func (e *DuplicateKeyError) Error() string {
	switch {
	case e.Kind == KindOffence && e.Field == "code":
		return "An offence with this code already exists."
	case e.Kind == KindOffence:
		return "An offence with this name already exists."
	case e.Kind == KindTeamLeader:
		return "A team leader with this name already exists."
	case e.Kind == KindRoute:
		return "This route already exists."
	case e.Kind == KindCurrency:
		return "This currency type already exists."
	default:
		return fmt.Sprintf("duplicate %s %s %q", e.Kind, e.Field, e.Key)
	}
}

// MissingFieldsError reports an addition with blank required fields. It
// matches ErrEmptyKey with errors.Is.
type MissingFieldsError struct {
	Kind string
}

// Error implements the error interface. The message is the user-facing notice.
func (e *MissingFieldsError) Error() string {
	switch e.Kind {
	case KindTeamLeader:
		return "Please provide both a name and a PIN for the new team leader."
	case KindRoute:
		return "Please provide a name for the new route."
	case KindOffence:
		return "Please provide both a code and a name for the new offence."
	case KindCurrency:
		return "Please provide a name for the new currency type."
	default:
		return ErrEmptyKey.Error()
	}
}

// Is makes errors.Is(err, ErrEmptyKey) true.
func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrEmptyKey
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the set of reference lists. The zero value is an empty catalog.
type Catalog struct {
	TeamLeaders []types.TeamLeader `json:"teamLeaders"`
	Routes      []string           `json:"routes"`
	Offences    []types.Offence    `json:"offences"`
	Currencies  []string           `json:"currencies"`
}

// Default returns the catalog seeded with the built-in lists.
func Default() *Catalog {
	return &Catalog{
		TeamLeaders: append([]types.TeamLeader{}, seedTeamLeaders...),
		Routes:      append([]string{}, seedRoutes...),
		Offences:    append([]types.Offence{}, seedOffences...),
		Currencies:  append([]string{}, seedCurrencies...),
	}
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return &Catalog{
		TeamLeaders: append([]types.TeamLeader{}, c.TeamLeaders...),
		Routes:      append([]string{}, c.Routes...),
		Offences:    append([]types.Offence{}, c.Offences...),
		Currencies:  append([]string{}, c.Currencies...),
	}
}

// AddTeamLeader appends a team leader. Name and PIN are trimmed and required.
func (c *Catalog) AddTeamLeader(name, pin string) (types.TeamLeader, error) {
	leader := types.TeamLeader{Name: strings.TrimSpace(name), Pin: strings.TrimSpace(pin)}
	if leader.Name == "" || leader.Pin == "" {
		return types.TeamLeader{}, &MissingFieldsError{Kind: KindTeamLeader}
	}
	if _, ok := c.TeamLeader(leader.Name); ok {
		return types.TeamLeader{}, &DuplicateKeyError{Kind: KindTeamLeader, Field: "name", Key: leader.Name}
	}
	c.TeamLeaders = append(c.TeamLeaders, leader)
	return leader, nil
}

// AddRoute appends a route.
func (c *Catalog) AddRoute(route string) (string, error) {
	route = strings.TrimSpace(route)
	if route == "" {
		return "", &MissingFieldsError{Kind: KindRoute}
	}
	if c.HasRoute(route) {
		return "", &DuplicateKeyError{Kind: KindRoute, Field: "name", Key: route}
	}
	c.Routes = append(c.Routes, route)
	return route, nil
}

// AddOffence appends an offence. The code is upper-cased; both code and name
// must be unique.
func (c *Catalog) AddOffence(code, name string) (types.Offence, error) {
	offence := types.Offence{
		Code: strings.ToUpper(strings.TrimSpace(code)),
		Name: strings.TrimSpace(name),
	}
	if offence.Code == "" || offence.Name == "" {
		return types.Offence{}, &MissingFieldsError{Kind: KindOffence}
	}
	for _, o := range c.Offences {
		if o.Name == offence.Name {
			return types.Offence{}, &DuplicateKeyError{Kind: KindOffence, Field: "name", Key: offence.Name}
		}
	}
	for _, o := range c.Offences {
		if o.Code == offence.Code {
			return types.Offence{}, &DuplicateKeyError{Kind: KindOffence, Field: "code", Key: offence.Code}
		}
	}
	c.Offences = append(c.Offences, offence)
	return offence, nil
}

// AddCurrency appends an upper-cased currency type.
func (c *Catalog) AddCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return "", &MissingFieldsError{Kind: KindCurrency}
	}
	for _, existing := range c.Currencies {
		if existing == currency {
			return "", &DuplicateKeyError{Kind: KindCurrency, Field: "name", Key: currency}
		}
	}
	c.Currencies = append(c.Currencies, currency)
	return currency, nil
}

// TeamLeader looks up a team leader by name.
func (c *Catalog) TeamLeader(name string) (types.TeamLeader, bool) {
	for _, l := range c.TeamLeaders {
		if l.Name == name {
			return l, true
		}
	}
	return types.TeamLeader{}, false
}

// PinFor returns the PIN of the named team leader, or "" when unknown.
func (c *Catalog) PinFor(name string) string {
	l, _ := c.TeamLeader(name)
	return l.Pin
}

// HasRoute reports whether route exists.
func (c *Catalog) HasRoute(route string) bool {
	for _, r := range c.Routes {
		if r == route {
			return true
		}
	}
	return false
}

// OffenceCodes builds the offence name to code lookup used by exports.
func (c *Catalog) OffenceCodes() map[string]string {
	codes := make(map[string]string, len(c.Offences))
	for _, o := range c.Offences {
		codes[o.Name] = o.Code
	}
	return codes
}
