// =============================================================================
// FRSC Operations E-Dashboard - Persistence Adapter
// =============================================================================
//
// The adapter maps the dashboard's two persisted values onto a KV store:
//
//   frsc-form-draft         - the FormData being edited
//   frsc-submitted-reports  - the array of submitted reports
//
// READ FAILURES:
//   A missing or malformed blob is treated as absent. Read errors are logged
//   and never returned to the caller.
//
// WRITE FAILURES:
//   Draft writes return a *PersistenceWriteError. Report writes happen on a
//   deferred Task after the configured latency and resolve with the error.
//
// =============================================================================

package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/frsc-ops/edashboard/internal/types"
)

// Fixed storage keys.
const (
	DraftKey   = "frsc-form-draft"
	ReportsKey = "frsc-submitted-reports"
)

// DefaultLatency is the simulated network delay of SaveReportOnline.
const DefaultLatency = time.Second

// PersistenceWriteError reports that the store rejected a write.
type PersistenceWriteError struct {
	Key string
	Err error
}

func (e *PersistenceWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Key, e.Err)
}

func (e *PersistenceWriteError) Unwrap() error {
	return e.Err
}

// Adapter persists drafts and reports.
type Adapter struct {
	kv      KV
	log     *zap.Logger
	latency time.Duration

	// reportsMu serializes the load-append-write of report saves.
	reportsMu sync.Mutex
	pending   sync.WaitGroup
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithLogger sets the logger used for read failures and save outcomes.
func WithLogger(log *zap.Logger) AdapterOption {
	return func(a *Adapter) {
		if log != nil {
			a.log = log
		}
	}
}

// WithLatency sets the delay before a deferred report save writes.
func WithLatency(d time.Duration) AdapterOption {
	return func(a *Adapter) {
		a.latency = d
	}
}

// NewAdapter wraps kv.
func NewAdapter(kv KV, opts ...AdapterOption) *Adapter {
	a := &Adapter{kv: kv, log: zap.NewNop(), latency: DefaultLatency}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// =============================================================================
// DRAFT MANAGEMENT
// =============================================================================

// SaveDraft stores data under the draft key.
func (a *Adapter) SaveDraft(ctx context.Context, data types.FormData) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return &PersistenceWriteError{Key: DraftKey, Err: err}
	}
	if err := a.kv.Set(ctx, DraftKey, string(blob)); err != nil {
		a.log.Error("Could not save draft", zap.Error(err))
		return &PersistenceWriteError{Key: DraftKey, Err: err}
	}
	a.log.Debug("Draft saved", zap.Int("bytes", len(blob)))
	return nil
}

// LoadDraft returns the stored draft, or nil when none is stored or the
// stored value cannot be decoded.
func (a *Adapter) LoadDraft(ctx context.Context) *types.FormData {
	blob, ok, err := a.kv.Get(ctx, DraftKey)
	if err != nil {
		a.log.Warn("Could not load draft", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	var data types.FormData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		a.log.Warn("Could not decode draft", zap.Error(err))
		return nil
	}
	return &data
}

// ClearDraft removes the stored draft.
func (a *Adapter) ClearDraft(ctx context.Context) error {
	if err := a.kv.Delete(ctx, DraftKey); err != nil {
		return &PersistenceWriteError{Key: DraftKey, Err: err}
	}
	return nil
}

// =============================================================================
// REPORT STORAGE
// =============================================================================

// LoadReports returns the stored reports in stored order. A missing or
// malformed collection yields an empty list.
func (a *Adapter) LoadReports(ctx context.Context) []types.Report {
	blob, ok, err := a.kv.Get(ctx, ReportsKey)
	if err != nil {
		a.log.Warn("Could not load reports", zap.Error(err))
		return []types.Report{}
	}
	if !ok {
		return []types.Report{}
	}
	var reports []types.Report
	if err := json.Unmarshal([]byte(blob), &reports); err != nil {
		a.log.Warn("Could not decode reports", zap.Error(err))
		return []types.Report{}
	}
	if reports == nil {
		reports = []types.Report{}
	}
	return reports
}

// SaveReportOnline starts a deferred save of report. After the configured
// latency the stored collection is loaded, report is appended and the
// collection is written back. The returned Task resolves with the write
// result. The save cannot be cancelled.
func (a *Adapter) SaveReportOnline(report types.Report) *Task {
	task := newTask()
	a.pending.Add(1)

	go func() {
		defer a.pending.Done()

		timer := time.NewTimer(a.latency)
		<-timer.C

		err := a.appendReport(report)
		if err != nil {
			a.log.Error("Failed to save report online", zap.Int64("report_id", report.ID), zap.Error(err))
		} else {
			a.log.Info("Report saved online", zap.Int64("report_id", report.ID))
		}
		task.resolve(err)
	}()

	return task
}

// Flush blocks until every deferred save has resolved.
func (a *Adapter) Flush() {
	a.pending.Wait()
}

func (a *Adapter) appendReport(report types.Report) error {
	a.reportsMu.Lock()
	defer a.reportsMu.Unlock()

	ctx := context.Background()
	reports := append(a.LoadReports(ctx), report)

	blob, err := json.Marshal(reports)
	if err != nil {
		return &PersistenceWriteError{Key: ReportsKey, Err: err}
	}
	if err := a.kv.Set(ctx, ReportsKey, string(blob)); err != nil {
		return &PersistenceWriteError{Key: ReportsKey, Err: err}
	}
	return nil
}
