package services

import (
	"context"
	"testing"

	"cloud.google.com/go/firestore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunyo/docflow/internal/models"
)

func TestSimplifyDeliveryStatus(t *testing.T) {
	for _, status := range []string{"sent", "queued", "scheduled", "delivered"} {
		assert.Equal(t, models.DeliveryDelivered, SimplifyDeliveryStatus(status), status)
	}
	for _, status := range []string{"rejected", "invalid", "bounced", ""} {
		assert.Equal(t, models.DeliveryNotDelivered, SimplifyDeliveryStatus(status), status)
	}
}

func TestSeedApplicants(t *testing.T) {
	dashboard := models.Dashboard{
		Docs: map[string]models.DashboardDoc{
			"passport":      {IsRequired: true},
			"nbi-clearance": {IsRequired: true},
			"diploma":       {IsRequired: false},
		},
		NewApplicants: []models.ApplicantItem{
			{Email: "a@example.ph", Name: &models.PersonName{First: "Ana", Last: "Reyes"}},
			{Email: "b@example.ph"},
		},
	}

	seeds := SeedApplicants(dashboard, "d1")
	require.Len(t, seeds, 2)
	for _, seed := range seeds {
		assert.Equal(t, models.ApplicantNotSubmitted, seed.Status)
		assert.Equal(t, 2, seed.TotalDocs, "optional docs are not part of the required total")
		assert.Equal(t, 0, seed.AdminAcceptedDocs)
		assert.Equal(t, 0, seed.AcceptedDocs)
		assert.Equal(t, "d1", seed.Dashboard.ID)
	}
	assert.Equal(t, "a@example.ph", seeds[0].Email)
	assert.Equal(t, "Ana", seeds[0].Name.First)
}

func TestSeedApplicantsEmptyQueue(t *testing.T) {
	seeds := SeedApplicants(models.Dashboard{}, "d1")
	assert.Empty(t, seeds)
}

func TestParseIntakeMeta(t *testing.T) {
	meta, err := parseIntakeMeta(map[string]string{
		"companyId":       "c1",
		"dashboardId":     "d1",
		"applicantId":     "a1",
		"docId":           "doc1",
		"formId":          "f1",
		"format":          "pdf",
		"submissionCount": "2",
		"angle":           "90",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", meta.CompanyID)
	assert.Equal(t, models.FormatPDF, meta.Format)
	assert.Equal(t, 2, meta.SubmissionCount)
	assert.Equal(t, 90, meta.Angle)
}

func TestParseIntakeMetaMissingIDs(t *testing.T) {
	_, err := parseIntakeMeta(map[string]string{"companyId": "c1"})
	assert.Error(t, err)
}

func TestParseIntakeMetaBadNumbers(t *testing.T) {
	base := map[string]string{"companyId": "c1", "dashboardId": "d1", "applicantId": "a1"}

	bad := map[string]string{}
	for k, v := range base {
		bad[k] = v
	}
	bad["submissionCount"] = "two"
	_, err := parseIntakeMeta(bad)
	assert.Error(t, err)
}

func TestPreviousStatusUpdate(t *testing.T) {
	waived := models.ApplicantDocument{Status: models.DocNotApplicable}
	submitted := models.ApplicantDocument{Status: models.DocSubmitted}

	update, ok := previousStatusUpdate(submitted, waived)
	require.True(t, ok)
	assert.Equal(t, "previousStatus", update.Path)
	assert.Equal(t, models.DocSubmitted, update.Value)

	update, ok = previousStatusUpdate(waived, submitted)
	require.True(t, ok)
	assert.Equal(t, "previousStatus", update.Path)
	assert.Equal(t, firestore.Delete, update.Value)

	_, ok = previousStatusUpdate(submitted, models.ApplicantDocument{Status: models.DocAdminChecked})
	assert.False(t, ok)
}

func TestApplicantNameChanged(t *testing.T) {
	ana := &models.PersonName{First: "Ana", Last: "Reyes"}

	assert.False(t, applicantNameChanged(nil, nil))
	assert.False(t, applicantNameChanged(ana, &models.PersonName{First: "Ana", Last: "Reyes"}))
	assert.True(t, applicantNameChanged(nil, ana))
	assert.True(t, applicantNameChanged(ana, nil))
	assert.True(t, applicantNameChanged(ana, &models.PersonName{First: "Ana", Last: "Cruz"}))
	assert.True(t, applicantNameChanged(ana, &models.PersonName{First: "Ana", Middle: "B", Last: "Reyes"}))
}

func TestReviewArchivePath(t *testing.T) {
	meta := intakeMeta{CompanyID: "c1", DashboardID: "d1", ApplicantID: "a1"}

	assert.Equal(t,
		"companies/c1/dashboards/d1/accepted/a1/passport.pdf",
		reviewArchivePath("accepted", meta, "passport.pdf"))
	assert.Equal(t,
		"companies/c1/dashboards/d1/rejected/a1/passport.pdf",
		reviewArchivePath("rejected", meta, "passport.pdf"))
}

func TestProcessStatusUpdateIgnoresNonVerdicts(t *testing.T) {
	f := &FileIntakeFunction{}

	// No verdict in the metadata means the update is not a review outcome.
	err := f.ProcessStatusUpdate(context.Background(), models.StorageObjectEvent{
		Name:     "companies/c1/dashboards/d1/docs/a1/passport.pdf",
		Metadata: map[string]string{"companyId": "c1"},
	})
	assert.NoError(t, err)

	// A verdict without routing metadata is logged and skipped.
	err = f.ProcessStatusUpdate(context.Background(), models.StorageObjectEvent{
		Name:     "companies/c1/dashboards/d1/docs/a1/passport.pdf",
		Metadata: map[string]string{"status": "accepted"},
	})
	assert.NoError(t, err)
}

func TestFormAndInviteLinks(t *testing.T) {
	assert.Equal(t, "https://hunyo.design/applicant/forms/f1", formLink("https://hunyo.design", "f1"))
	assert.Equal(t, "https://hunyo.design/invites/i1", inviteLink("https://hunyo.design", "i1"))
}
