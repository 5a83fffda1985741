// =============================================================================
// FRSC Operations E-Dashboard - Dashboard Service
// =============================================================================
//
// The dashboard ties the form, the catalog, the persisted draft and the
// report list into one workspace. It is the equivalent of one open browser
// profile: one draft, one report list and one set of catalogs.
//
// SYNC STATUS:
//   idle   -> saving -> saved | error     (SaveDraft)
//   saved  -> idle                        (any form edit)
//   *      -> idle                        (successful Submit)
//
// NOTICES:
//   One-time messages for the user, such as a failed online save. They are
//   returned once by State and then dropped. Rejected catalog additions are
//   reported through the returned error instead.
//
// All methods are safe for concurrent use.
//
// =============================================================================

package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/frsc-ops/edashboard/internal/catalog"
	"github.com/frsc-ops/edashboard/internal/export"
	"github.com/frsc-ops/edashboard/internal/form"
	"github.com/frsc-ops/edashboard/internal/storage"
	"github.com/frsc-ops/edashboard/internal/types"
	"github.com/frsc-ops/edashboard/internal/validation"
)

// SyncStatus is the draft persistence indicator.
type SyncStatus string

const (
	SyncIdle   SyncStatus = "idle"
	SyncSaving SyncStatus = "saving"
	SyncSaved  SyncStatus = "saved"
	SyncError  SyncStatus = "error"
)

// NoticeOnlineSaveFailed is recorded when a deferred report save fails.
const NoticeOnlineSaveFailed = "There was an issue saving the report online. It is available for this session only."

// Edit errors.
var (
	ErrOffenderNotFound       = errors.New("offender not found")
	ErrCurrencyDetailNotFound = errors.New("currency detail not found")
	ErrUnknownField           = errors.New("unknown field")
	ErrLastOffender           = errors.New("at least one offender is required")
	ErrCurrencyNotAllowed     = errors.New("currency details require the offence " + types.TriggeringOffence)
)

// Options configures a Dashboard.
type Options struct {
	// Adapter persists the draft and the reports. Required.
	Adapter *storage.Adapter

	// Catalog holds the reference lists. Defaults to catalog.Default().
	Catalog *catalog.Catalog

	// Exporter names export files. Defaults to an exporter writing nowhere
	// and dating its file names with Now.
	Exporter *export.Exporter

	Logger *zap.Logger

	// Now is the clock for ids, timestamps and the default entry date.
	Now func() time.Time
}

// State is a snapshot of the workspace for clients.
type State struct {
	Header     form.Header       `json:"header"`
	FormData   types.FormData    `json:"formData"`
	Errors     validation.Errors `json:"errors"`
	SyncStatus SyncStatus        `json:"syncStatus"`
	Notices    []string          `json:"notices"`
	PinPreview string            `json:"teamLeaderPin"`
}

// Dashboard is the application service.
type Dashboard struct {
	mu sync.Mutex

	form     *form.Manager
	catalog  *catalog.Catalog
	adapter  *storage.Adapter
	exporter *export.Exporter
	log      *zap.Logger

	reports []types.Report
	status  SyncStatus
	notices []string
	pending sync.WaitGroup
}

// New loads the stored draft and reports and returns the dashboard.
func New(ctx context.Context, opts Options) (*Dashboard, error) {
	if opts.Adapter == nil {
		return nil, errors.New("dashboard: adapter is required")
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Exporter == nil {
		opts.Exporter = export.NewExporter(nil, "", opts.Logger, export.WithClock(opts.Now))
	}

	d := &Dashboard{
		form:     form.NewManager(form.WithClock(opts.Now)),
		catalog:  opts.Catalog,
		adapter:  opts.Adapter,
		exporter: opts.Exporter,
		log:      opts.Logger,
		status:   SyncIdle,
	}
	d.form.SetDateOfEntry(opts.Now().UTC().Format("2006-01-02"))

	if draft := d.adapter.LoadDraft(ctx); draft != nil {
		d.form.Restore(*draft)
		d.status = SyncSaved
		d.log.Info("Draft restored", zap.Int("offenders", len(draft.Offenders)))
	}

	d.reports = d.adapter.LoadReports(ctx)
	for _, r := range d.reports {
		d.form.ObserveID(r.ID)
	}
	d.log.Info("Dashboard ready", zap.Int("reports", len(d.reports)))

	return d, nil
}

// =============================================================================
// STATE
// =============================================================================

// State returns the workspace snapshot and drains pending notices.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	notices := d.notices
	d.notices = nil
	if notices == nil {
		notices = []string{}
	}

	header := d.form.Header()
	return State{
		Header:     header,
		FormData:   d.form.Snapshot(),
		Errors:     d.form.Errors(),
		SyncStatus: d.status,
		Notices:    notices,
		PinPreview: d.catalog.PinFor(header.TeamLeader),
	}
}

// SyncStatus returns the draft persistence indicator.
func (d *Dashboard) SyncStatus() SyncStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

// Catalog returns a copy of the reference lists.
func (d *Dashboard) Catalog() *catalog.Catalog {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.Clone()
}

func (d *Dashboard) addNotice(msg string) {
	d.notices = append(d.notices, msg)
}

// resetSyncStatus marks a saved draft as stale after an edit.
func (d *Dashboard) resetSyncStatus() {
	if d.status == SyncSaved {
		d.status = SyncIdle
	}
}

// =============================================================================
// FORM EDITING
// =============================================================================

// SetDateOfEntry sets the report date.
func (d *Dashboard) SetDateOfEntry(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetSyncStatus()
	d.form.SetDateOfEntry(value)
}

// SetTeamLeader selects the team leader.
func (d *Dashboard) SetTeamLeader(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetSyncStatus()
	d.form.SetTeamLeader(name)
}

// SetRoute selects the route.
func (d *Dashboard) SetRoute(route string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetSyncStatus()
	d.form.SetRoute(route)
}

// UpdateOffenderField replaces a scalar offender field.
func (d *Dashboard) UpdateOffenderField(index int, field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOffender(index); err != nil {
		return err
	}
	d.resetSyncStatus()
	if !d.form.UpdateOffenderField(index, field, value) {
		return ErrUnknownField
	}
	return nil
}

// SetOffenceSelected toggles an offence on an offender.
func (d *Dashboard) SetOffenceSelected(index int, name string, selected bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOffender(index); err != nil {
		return err
	}
	d.resetSyncStatus()
	d.form.SetOffenceSelected(index, name, selected)
	return nil
}

// AddOffender appends a blank offender and returns its index.
func (d *Dashboard) AddOffender() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resetSyncStatus()
	return d.form.AddOffender()
}

// RemoveOffender removes an offender. The last one cannot be removed.
func (d *Dashboard) RemoveOffender(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOffender(index); err != nil {
		return err
	}
	d.resetSyncStatus()
	if !d.form.RemoveOffender(index) {
		return ErrLastOffender
	}
	return nil
}

// AddCurrencyDetail appends a blank currency detail and returns its id.
func (d *Dashboard) AddCurrencyDetail(index int) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOffender(index); err != nil {
		return 0, err
	}
	d.resetSyncStatus()
	id, ok := d.form.AddCurrencyDetail(index)
	if !ok {
		return 0, ErrCurrencyNotAllowed
	}
	return id, nil
}

// RemoveCurrencyDetail removes the currency detail with id.
func (d *Dashboard) RemoveCurrencyDetail(index int, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOffender(index); err != nil {
		return err
	}
	d.resetSyncStatus()
	if !d.form.RemoveCurrencyDetail(index, id) {
		return ErrCurrencyDetailNotFound
	}
	return nil
}

// UpdateCurrencyDetail replaces one field of a currency detail.
func (d *Dashboard) UpdateCurrencyDetail(index, detail int, field, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkOffender(index); err != nil {
		return err
	}
	if detail < 0 || detail >= d.form.CurrencyDetailCount(index) {
		return ErrCurrencyDetailNotFound
	}
	d.resetSyncStatus()
	if !d.form.UpdateCurrencyDetail(index, detail, field, value) {
		return ErrUnknownField
	}
	return nil
}

// Validate runs validation and records the errors in the state.
func (d *Dashboard) Validate() validation.Errors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.form.Validate()
}

func (d *Dashboard) checkOffender(index int) error {
	if index < 0 || index >= d.form.OffenderCount() {
		return ErrOffenderNotFound
	}
	return nil
}
