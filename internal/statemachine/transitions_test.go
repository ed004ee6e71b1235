package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunyo/docflow/internal/models"
)

func doc(status models.DocumentStatus, required bool) models.ApplicantDocument {
	return models.ApplicantDocument{
		Name:       "passport",
		Status:     status,
		IsRequired: required,
	}
}

func TestPlanSameStatusIsNoOp(t *testing.T) {
	for _, status := range []models.DocumentStatus{
		models.DocNotSubmitted,
		models.DocSubmitted,
		models.DocAdminChecked,
		models.DocAccepted,
		models.DocRejected,
		models.DocNotApplicable,
	} {
		eff, err := Plan(doc(status, true), doc(status, true), true)
		require.NoError(t, err)
		assert.True(t, eff.IsZero(), "redelivered %s must not change counters", status)
	}
}

func TestPlanSubmissionEdges(t *testing.T) {
	tests := []struct {
		name       string
		from, to   models.DocumentStatus
		required   bool
		adminCheck bool
		want       Effects
	}{
		{
			name: "first submission with admin check",
			from: models.DocNotSubmitted, to: models.DocSubmitted,
			required: true, adminCheck: true,
			want: Effects{FormAdminCheckDocs: +1},
		},
		{
			name: "first submission without admin check",
			from: models.DocNotSubmitted, to: models.DocSubmitted,
			required: true, adminCheck: false,
			want: Effects{},
		},
		{
			name: "admin check passes required doc",
			from: models.DocSubmitted, to: models.DocAdminChecked,
			required: true, adminCheck: true,
			want: Effects{FormAdminCheckDocs: -1, AdminAcceptedDocs: +1, DashboardActions: +1},
		},
		{
			name: "admin check passes optional doc",
			from: models.DocSubmitted, to: models.DocAdminChecked,
			required: false, adminCheck: true,
			want: Effects{FormAdminCheckDocs: -1, UnCheckedOptionalDocs: +1, DashboardActions: +1},
		},
		{
			name: "acceptance of required doc stitches",
			from: models.DocAdminChecked, to: models.DocAccepted,
			required: true, adminCheck: true,
			want: Effects{AcceptedDocs: +1, DashboardActions: -1, Stitch: true},
		},
		{
			name: "acceptance of optional doc",
			from: models.DocAdminChecked, to: models.DocAccepted,
			required: false, adminCheck: true,
			want: Effects{UnCheckedOptionalDocs: -1, DashboardActions: -1, Stitch: true},
		},
		{
			name: "rejection before admin check",
			from: models.DocSubmitted, to: models.DocRejected,
			required: true, adminCheck: true,
			want: Effects{FormAdminCheckDocs: -1},
		},
		{
			name: "rejection after admin check notifies applicant",
			from: models.DocAdminChecked, to: models.DocRejected,
			required: true, adminCheck: true,
			want: Effects{AdminAcceptedDocs: -1, DashboardActions: -1, NotifyRejection: true},
		},
		{
			name: "rejection of optional doc after admin check",
			from: models.DocAdminChecked, to: models.DocRejected,
			required: false, adminCheck: true,
			want: Effects{UnCheckedOptionalDocs: -1, DashboardActions: -1, NotifyRejection: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eff, err := Plan(doc(tt.from, tt.required), doc(tt.to, tt.required), tt.adminCheck)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eff)
		})
	}
}

func TestPlanResubmissionAdvancesGeneration(t *testing.T) {
	prev := doc(models.DocRejected, true)
	prev.SubmissionCount = 1

	next := doc(models.DocSubmitted, true)
	next.SubmissionCount = 2

	eff, err := Plan(prev, next, true)
	require.NoError(t, err)
	assert.True(t, eff.Resubmission)
	assert.Equal(t, +1, eff.FormAdminCheckDocs)

	// A resubmission that did not bump the generation is rejected outright:
	// stitching would otherwise mix stale pages into the new document.
	next.SubmissionCount = 1
	_, err = Plan(prev, next, true)
	assert.Error(t, err)
}

func TestPlanNotApplicableToggle(t *testing.T) {
	eff, err := Plan(doc(models.DocNotSubmitted, true), doc(models.DocNotApplicable, true), true)
	require.NoError(t, err)
	assert.Equal(t, Effects{TotalDocs: -1}, eff)

	eff, err = Plan(doc(models.DocNotApplicable, true), doc(models.DocNotSubmitted, true), true)
	require.NoError(t, err)
	assert.Equal(t, Effects{TotalDocs: +1}, eff)

	// Optional docs are never part of totalDocs, so waiving one must not
	// move the counter in either direction.
	eff, err = Plan(doc(models.DocNotSubmitted, false), doc(models.DocNotApplicable, false), true)
	require.NoError(t, err)
	assert.True(t, eff.IsZero())

	eff, err = Plan(doc(models.DocNotApplicable, false), doc(models.DocNotSubmitted, false), true)
	require.NoError(t, err)
	assert.True(t, eff.IsZero())
}

// Waiving an optional doc must leave the recomputed applicant counters
// untouched, so the toggle and the reconciler agree.
func TestPlanNotApplicableOptionalMatchesRecompute(t *testing.T) {
	required := doc(models.DocAccepted, true)
	optional := doc(models.DocNotSubmitted, false)

	before := RecomputeApplicantCounters([]models.ApplicantDocument{required, optional})

	waived := optional
	waived.Status = models.DocNotApplicable
	eff, err := Plan(optional, waived, true)
	require.NoError(t, err)
	assert.Zero(t, eff.TotalDocs)

	after := RecomputeApplicantCounters([]models.ApplicantDocument{required, waived})
	assert.Equal(t, before.TotalDocs, after.TotalDocs)
}

func TestPlanUnknownEdge(t *testing.T) {
	_, err := Plan(doc(models.DocAccepted, true), doc(models.DocSubmitted, true), true)
	assert.ErrorIs(t, err, ErrNoEdge)

	_, err = Plan(doc(models.DocNotSubmitted, true), doc(models.DocAccepted, true), true)
	assert.ErrorIs(t, err, ErrNoEdge)
}

// The full happy path through the lifecycle nets out to the expected final
// counter state for a single required document.
func TestPlanLifecycleSequence(t *testing.T) {
	path := []models.DocumentStatus{
		models.DocNotSubmitted,
		models.DocSubmitted,
		models.DocAdminChecked,
		models.DocAccepted,
	}

	var total Effects
	for i := 1; i < len(path); i++ {
		prev := doc(path[i-1], true)
		next := doc(path[i], true)
		eff, err := Plan(prev, next, true)
		require.NoError(t, err)
		total.FormAdminCheckDocs += eff.FormAdminCheckDocs
		total.AdminAcceptedDocs += eff.AdminAcceptedDocs
		total.AcceptedDocs += eff.AcceptedDocs
		total.UnCheckedOptionalDocs += eff.UnCheckedOptionalDocs
		total.DashboardActions += eff.DashboardActions
	}

	assert.Equal(t, 0, total.FormAdminCheckDocs, "review queue must drain")
	assert.Equal(t, 0, total.DashboardActions, "pending actions must drain")
	assert.Equal(t, 1, total.AdminAcceptedDocs)
	assert.Equal(t, 1, total.AcceptedDocs)
	assert.Equal(t, 0, total.UnCheckedOptionalDocs)
}

func TestCountersConsistent(t *testing.T) {
	assert.True(t, CountersConsistent(models.Applicant{TotalDocs: 3, AdminAcceptedDocs: 2, AcceptedDocs: 1}))
	assert.True(t, CountersConsistent(models.Applicant{}))
	assert.False(t, CountersConsistent(models.Applicant{TotalDocs: 1, AdminAcceptedDocs: 2}))
	assert.False(t, CountersConsistent(models.Applicant{TotalDocs: 2, AdminAcceptedDocs: 1, AcceptedDocs: 2}))
	assert.False(t, CountersConsistent(models.Applicant{TotalDocs: -1}))
}
