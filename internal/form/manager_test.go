package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frsc-ops/edashboard/internal/types"
	"github.com/frsc-ops/edashboard/internal/validation"
)

// fixedClock returns the same instant on every call so id monotonicity comes
// from idSource alone.
func fixedClock() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

func newTestManager() *Manager {
	return NewManager(WithClock(fixedClock))
}

func assertCurrencyInvariant(t *testing.T, data types.FormData) {
	t.Helper()
	for i, o := range data.Offenders {
		assert.Equal(t, o.HasTriggeringOffence(), len(o.CurrencyDetails) > 0, "offender %d", i)
	}
}

func fillOffender(t *testing.T, m *Manager, index int) {
	t.Helper()
	for _, f := range types.OffenderScalarFields {
		require.True(t, m.UpdateOffenderField(index, f, "x-"+f))
	}
	require.True(t, m.SetOffenceSelected(index, "SEAT BELT VIOLATION", true))
}

func TestNewManagerHasOneBlankOffender(t *testing.T) {
	m := newTestManager()

	snap := m.Snapshot()
	require.Len(t, snap.Offenders, 1)
	assert.Equal(t, types.NewOffender(), snap.Offenders[0])
}

func TestTriggeringOffenceSeedsAndClearsCurrencyDetails(t *testing.T) {
	m := newTestManager()

	require.True(t, m.SetOffenceSelected(0, types.TriggeringOffence, true))
	snap := m.Snapshot()
	require.Len(t, snap.Offenders[0].CurrencyDetails, 1)
	assert.Equal(t, types.CurrencyDetail{ID: fixedClock().UnixMilli()}, snap.Offenders[0].CurrencyDetails[0])

	require.True(t, m.SetOffenceSelected(0, "SEAT BELT VIOLATION", true))
	_, ok := m.AddCurrencyDetail(0)
	require.True(t, ok)
	assert.Len(t, m.Snapshot().Offenders[0].CurrencyDetails, 2)

	require.True(t, m.SetOffenceSelected(0, types.TriggeringOffence, false))
	snap = m.Snapshot()
	assert.Empty(t, snap.Offenders[0].CurrencyDetails)
	assert.Equal(t, []string{"SEAT BELT VIOLATION"}, snap.Offenders[0].Offence)
}

func TestSelectingOffenceTwiceIsNoOp(t *testing.T) {
	m := newTestManager()

	require.True(t, m.SetOffenceSelected(0, "SEAT BELT VIOLATION", true))
	assert.False(t, m.SetOffenceSelected(0, "SEAT BELT VIOLATION", true))
	assert.False(t, m.SetOffenceSelected(0, "DRIVING WITHOUT LICENSE", false))
	assert.Equal(t, []string{"SEAT BELT VIOLATION"}, m.Snapshot().Offenders[0].Offence)
}

func TestCurrencyInvariantHoldsAcrossMutations(t *testing.T) {
	m := newTestManager()
	steps := []func(){
		func() { m.SetOffenceSelected(0, types.TriggeringOffence, true) },
		func() { m.AddCurrencyDetail(0) },
		func() { m.AddOffender() },
		func() { m.AddCurrencyDetail(1) },
		func() { m.SetOffenceSelected(1, types.TriggeringOffence, true) },
		func() {
			for _, d := range m.Snapshot().Offenders[0].CurrencyDetails {
				m.RemoveCurrencyDetail(0, d.ID)
			}
		},
		func() { m.SetOffenceSelected(0, types.TriggeringOffence, false) },
		func() { m.RemoveOffender(0) },
	}

	for _, step := range steps {
		step()
		assertCurrencyInvariant(t, m.Snapshot())
		assert.NotEmpty(t, m.Snapshot().Offenders)
	}
}

func TestAddCurrencyDetailRequiresTriggeringOffence(t *testing.T) {
	m := newTestManager()

	_, ok := m.AddCurrencyDetail(0)
	assert.False(t, ok)
	assert.Empty(t, m.Snapshot().Offenders[0].CurrencyDetails)
}

func TestRemovingLastCurrencyDetailReseeds(t *testing.T) {
	m := newTestManager()
	require.True(t, m.SetOffenceSelected(0, types.TriggeringOffence, true))
	first := m.Snapshot().Offenders[0].CurrencyDetails[0]
	require.True(t, m.UpdateCurrencyDetail(0, 0, "currencyType", "NGN"))

	require.True(t, m.RemoveCurrencyDetail(0, first.ID))

	details := m.Snapshot().Offenders[0].CurrencyDetails
	require.Len(t, details, 1)
	assert.Greater(t, details[0].ID, first.ID)
	assert.Equal(t, "", details[0].CurrencyType)
	assert.False(t, m.RemoveCurrencyDetail(0, first.ID))
}

func TestCurrencyIDsAreStrictlyIncreasing(t *testing.T) {
	m := newTestManager()
	require.True(t, m.SetOffenceSelected(0, types.TriggeringOffence, true))

	var last int64
	for _, d := range m.Snapshot().Offenders[0].CurrencyDetails {
		last = d.ID
	}
	for i := 0; i < 5; i++ {
		id, ok := m.AddCurrencyDetail(0)
		require.True(t, ok)
		assert.Greater(t, id, last)
		last = id
	}
}

func TestOffendersNeverDropBelowOne(t *testing.T) {
	m := newTestManager()

	assert.False(t, m.RemoveOffender(0))
	assert.Equal(t, 1, m.AddOffender())
	assert.False(t, m.RemoveOffender(5))
	assert.True(t, m.RemoveOffender(1))
	assert.False(t, m.RemoveOffender(0))
	assert.Len(t, m.Snapshot().Offenders, 1)
}

func TestUpdateOffenderFieldRejectsUnknownField(t *testing.T) {
	m := newTestManager()

	assert.False(t, m.UpdateOffenderField(0, "offence", "x"))
	assert.False(t, m.UpdateOffenderField(0, "nickname", "x"))
	assert.False(t, m.UpdateOffenderField(3, "fullName", "x"))
	assert.True(t, m.UpdateOffenderField(0, "fullName", "Ada"))
	assert.Equal(t, "Ada", m.Snapshot().Offenders[0].FullName)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	m := newTestManager()
	require.True(t, m.SetOffenceSelected(0, types.TriggeringOffence, true))

	snap := m.Snapshot()
	snap.Offenders[0].Offence[0] = "CHANGED"
	snap.Offenders[0].CurrencyDetails[0].CurrencyType = "CHANGED"

	fresh := m.Snapshot()
	assert.Equal(t, types.TriggeringOffence, fresh.Offenders[0].Offence[0])
	assert.Equal(t, "", fresh.Offenders[0].CurrencyDetails[0].CurrencyType)
}

func TestEditClearsFieldError(t *testing.T) {
	m := newTestManager()
	errs := m.Validate()
	require.Contains(t, errs, validation.KeyRoute)
	require.Contains(t, errs, "offender-0-fullName")

	m.SetRoute("OS - ILESA")
	m.UpdateOffenderField(0, "fullName", "Ada")

	remaining := m.Errors()
	assert.NotContains(t, remaining, validation.KeyRoute)
	assert.NotContains(t, remaining, "offender-0-fullName")
	assert.Contains(t, remaining, "offender-0-ticket")
}

func TestSubmitFailsWithErrorsAndKeepsState(t *testing.T) {
	m := newTestManager()
	m.UpdateOffenderField(0, "fullName", "Ada")
	before := m.Snapshot()

	_, err := m.Submit(nil)

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, m.Validate(), verrs)
	assert.Equal(t, before, m.Snapshot())
}

func TestSubmitBuildsReportAndResetsOffenders(t *testing.T) {
	m := newTestManager()
	m.SetDateOfEntry("2024-05-01")
	m.SetTeamLeader("RC OS ODEKUNLE")
	m.SetRoute("OS - ILESA")
	fillOffender(t, m, 0)
	m.AddOffender()
	fillOffender(t, m, 1)
	require.True(t, m.SetOffenceSelected(1, types.TriggeringOffence, true))
	for _, f := range types.CurrencyDetailFields {
		require.True(t, m.UpdateCurrencyDetail(1, 0, f, "v"))
	}
	draft := m.Snapshot()

	require.Empty(t, m.Validate())
	report, err := m.Submit(func(name string) string {
		if name == "RC OS ODEKUNLE" {
			return "C-07287"
		}
		return ""
	})
	require.NoError(t, err)

	assert.Equal(t, "C-07287", report.TeamLeaderPin)
	assert.Equal(t, "2024-05-01", report.DateOfEntry)
	assert.Equal(t, "OS - ILESA", report.Route)
	assert.Equal(t, fixedClock().UnixMilli(), report.SubmissionTimestamp)
	assert.Equal(t, draft, report.FormData)

	assert.Equal(t, types.NewFormData(), m.Snapshot())
	assert.Equal(t, Header{DateOfEntry: "2024-05-01", TeamLeader: "RC OS ODEKUNLE", Route: "OS - ILESA"}, m.Header())

	// The report owns its copy.
	m.UpdateOffenderField(0, "fullName", "Other")
	assert.Equal(t, "x-fullName", report.FormData.Offenders[0].FullName)
}

func TestReportIDsIncreaseAboveObservedIDs(t *testing.T) {
	m := newTestManager()
	m.ObserveID(fixedClock().UnixMilli() + 10)
	m.SetDateOfEntry("2024-05-01")
	m.SetTeamLeader("L")
	m.SetRoute("R")
	fillOffender(t, m, 0)

	report, err := m.Submit(nil)
	require.NoError(t, err)
	assert.Equal(t, fixedClock().UnixMilli()+11, report.ID)
}

func TestRestoreNormalizesDraft(t *testing.T) {
	m := newTestManager()

	m.Restore(types.FormData{Offenders: []types.OffenderInfo{
		{FullName: "A", Offence: []string{"X", "X", types.TriggeringOffence}},
		{FullName: "B", Offence: []string{"Y"}, CurrencyDetails: []types.CurrencyDetail{{ID: 9_000_000_000_000}}},
	}})

	snap := m.Snapshot()
	require.Len(t, snap.Offenders, 2)
	assert.Equal(t, []string{"X", types.TriggeringOffence}, snap.Offenders[0].Offence)
	require.Len(t, snap.Offenders[0].CurrencyDetails, 1)
	assert.Empty(t, snap.Offenders[1].CurrencyDetails)
	assertCurrencyInvariant(t, snap)

	id, ok := m.AddCurrencyDetail(0)
	require.True(t, ok)
	assert.Greater(t, id, int64(9_000_000_000_000))
}

func TestRestoreEmptyDraftKeepsOneOffender(t *testing.T) {
	m := newTestManager()
	m.Restore(types.FormData{})
	assert.Equal(t, types.NewFormData(), m.Snapshot())
}
