package dashboard

import (
	"context"

	"go.uber.org/zap"

	"github.com/frsc-ops/edashboard/internal/export"
	"github.com/frsc-ops/edashboard/internal/storage"
	"github.com/frsc-ops/edashboard/internal/types"
)

// =============================================================================
// DRAFT AND SUBMISSION
// =============================================================================

// SaveDraft persists the current offenders.
func (d *Dashboard) SaveDraft(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.status = SyncSaving
	if err := d.adapter.SaveDraft(ctx, d.form.Snapshot()); err != nil {
		d.status = SyncError
		return err
	}
	d.status = SyncSaved
	return nil
}

// Submit validates the draft and, when complete, finalizes it into a report.
//
// RETURNS:
//   - The new report. It is already part of Reports; the stored draft is
//     cleared and a deferred online save is running.
//   - validation.Errors when the draft is incomplete.
func (d *Dashboard) Submit(ctx context.Context) (types.Report, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	report, err := d.form.Submit(d.catalog.PinFor)
	if err != nil {
		return types.Report{}, err
	}

	d.reports = append(d.reports, report)
	if err := d.adapter.ClearDraft(ctx); err != nil {
		d.log.Warn("Could not clear draft", zap.Error(err))
	}
	d.status = SyncIdle

	d.log.Info("Report submitted",
		zap.Int64("report_id", report.ID),
		zap.String("route", report.Route),
		zap.Int("offenders", len(report.FormData.Offenders)))

	d.watchOnlineSave(d.adapter.SaveReportOnline(report))
	return report, nil
}

// watchOnlineSave records a notice if the deferred save fails.
func (d *Dashboard) watchOnlineSave(task *storage.Task) {
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		<-task.Done()
		if task.Err() == nil {
			return
		}
		d.mu.Lock()
		d.addNotice(NoticeOnlineSaveFailed)
		d.mu.Unlock()
	}()
}

// Flush waits for every deferred online save to resolve.
func (d *Dashboard) Flush() {
	d.adapter.Flush()
	d.pending.Wait()
}

// =============================================================================
// CATALOG ADDITIONS
// =============================================================================

// AddRoute adds a route and selects it.
func (d *Dashboard) AddRoute(route string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	added, err := d.catalog.AddRoute(route)
	if err != nil {
		return "", err
	}
	d.form.SetRoute(added)
	return added, nil
}

// AddTeamLeader adds a team leader and selects it.
func (d *Dashboard) AddTeamLeader(name, pin string) (types.TeamLeader, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	leader, err := d.catalog.AddTeamLeader(name, pin)
	if err != nil {
		return types.TeamLeader{}, err
	}
	d.form.SetTeamLeader(leader.Name)
	return leader, nil
}

// AddOffence adds an offence and selects it on the last offender.
func (d *Dashboard) AddOffence(code, name string) (types.Offence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	offence, err := d.catalog.AddOffence(code, name)
	if err != nil {
		return types.Offence{}, err
	}
	d.resetSyncStatus()
	d.form.SetOffenceSelected(d.form.OffenderCount()-1, offence.Name, true)
	return offence, nil
}

// AddCurrency adds a currency type.
func (d *Dashboard) AddCurrency(currency string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.catalog.AddCurrency(currency)
}

// =============================================================================
// REPORTS AND EXPORT
// =============================================================================

// Reports returns the reports dated within [start, end], oldest submission
// first. Empty bounds are open.
func (d *Dashboard) Reports(start, end string) []types.Report {
	d.mu.Lock()
	defer d.mu.Unlock()
	return export.SortBySubmission(export.FilterByDate(d.reports, start, end))
}

// Export renders the reports dated within [start, end] in format.
//
// RETURNS:
//   - The download file name and content.
//   - export.ErrNoReports when no report falls within the range.
func (d *Dashboard) Export(format export.Format, start, end string, columns types.ExportColumns) (string, []byte, error) {
	d.mu.Lock()
	reports := export.FilterByDate(d.reports, start, end)
	offences := export.OffenceCodes(d.catalog.OffenceCodes())
	d.mu.Unlock()

	data, err := export.Render(format, reports, columns, offences)
	if err != nil {
		return "", nil, err
	}
	return d.exporter.FileName(format), data, nil
}
