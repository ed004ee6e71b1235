package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hunyo/docflow/internal/models"
)

func rdoc(status models.DocumentStatus, required bool) models.ApplicantDocument {
	return models.ApplicantDocument{Status: status, IsRequired: required}
}

func TestRecomputeApplicantCounters(t *testing.T) {
	docs := []models.ApplicantDocument{
		rdoc(models.DocAccepted, true),
		rdoc(models.DocAdminChecked, true),
		rdoc(models.DocSubmitted, true),
		rdoc(models.DocNotApplicable, true),
		rdoc(models.DocAdminChecked, false),
		rdoc(models.DocAccepted, false),
	}

	c := RecomputeApplicantCounters(docs)
	assert.Equal(t, ApplicantCounters{
		TotalDocs:             3,
		AdminAcceptedDocs:     2,
		AcceptedDocs:          1,
		UnCheckedOptionalDocs: 1,
	}, c)
}

func TestApplicantCountersDiff(t *testing.T) {
	c := ApplicantCounters{TotalDocs: 2, AdminAcceptedDocs: 1, AcceptedDocs: 1}

	clean := models.Applicant{TotalDocs: 2, AdminAcceptedDocs: 1, AcceptedDocs: 1}
	assert.Nil(t, c.Diff(clean))

	drifted := models.Applicant{TotalDocs: 2, AdminAcceptedDocs: 3, AcceptedDocs: 1}
	assert.Equal(t, map[string]int{"adminAcceptedDocs": 1}, c.Diff(drifted))
}

func TestRecomputeDashboardCounters(t *testing.T) {
	applicants := []models.Applicant{
		{Status: models.ApplicantNotSubmitted},
		{Status: models.ApplicantIncomplete},
		{Status: models.ApplicantComplete},
		{Status: models.ApplicantComplete, IsDeleted: true},
	}
	docs := []models.ApplicantDocument{
		rdoc(models.DocAdminChecked, true),
		rdoc(models.DocAccepted, true),
	}

	c := RecomputeDashboardCounters(applicants, docs)
	assert.Equal(t, DashboardCounters{
		ApplicantsCount:           3,
		IncompleteApplicantsCount: 2,
		CompleteApplicantsCount:   1,
		ActionsCount:              1,
	}, c)
}

func TestDashboardCountersDiff(t *testing.T) {
	c := DashboardCounters{ApplicantsCount: 3, IncompleteApplicantsCount: 2, CompleteApplicantsCount: 1}

	clean := models.Dashboard{ApplicantsCount: 3, IncompleteApplicantsCount: 2, CompleteApplicantsCount: 1}
	assert.Nil(t, c.Diff(clean))

	drifted := models.Dashboard{ApplicantsCount: 3, IncompleteApplicantsCount: 1, CompleteApplicantsCount: 1, ActionsCount: 5}
	assert.Equal(t, map[string]int{
		"incompleteApplicantsCount": 2,
		"actionsCount":              0,
	}, c.Diff(drifted))
}
