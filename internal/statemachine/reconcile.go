package statemachine

import "github.com/hunyo/docflow/internal/models"

// ApplicantCounters is the canonical counter set recomputed from the
// applicant's document records.
type ApplicantCounters struct {
	TotalDocs             int
	AdminAcceptedDocs     int
	AcceptedDocs          int
	UnCheckedOptionalDocs int
}

// RecomputeApplicantCounters derives the counters from scratch. Incremental
// updates drift when a handler dies mid-flight; this is the ground truth the
// reconciler corrects against.
func RecomputeApplicantCounters(docs []models.ApplicantDocument) ApplicantCounters {
	var c ApplicantCounters
	for _, doc := range docs {
		if doc.Status == models.DocNotApplicable {
			continue
		}
		if doc.IsRequired {
			c.TotalDocs++
			switch doc.Status {
			case models.DocAdminChecked:
				c.AdminAcceptedDocs++
			case models.DocAccepted:
				c.AdminAcceptedDocs++
				c.AcceptedDocs++
			}
			continue
		}
		if doc.Status == models.DocAdminChecked {
			c.UnCheckedOptionalDocs++
		}
	}
	return c
}

// Diff reports the per-field corrections needed to move from stored to
// canonical. A nil map means the stored counters are already right.
func (c ApplicantCounters) Diff(a models.Applicant) map[string]int {
	diff := map[string]int{}
	if a.TotalDocs != c.TotalDocs {
		diff["totalDocs"] = c.TotalDocs
	}
	if a.AdminAcceptedDocs != c.AdminAcceptedDocs {
		diff["adminAcceptedDocs"] = c.AdminAcceptedDocs
	}
	if a.AcceptedDocs != c.AcceptedDocs {
		diff["acceptedDocs"] = c.AcceptedDocs
	}
	if a.UnCheckedOptionalDocs != c.UnCheckedOptionalDocs {
		diff["unCheckedOptionalDocs"] = c.UnCheckedOptionalDocs
	}
	if len(diff) == 0 {
		return nil
	}
	return diff
}

// DashboardCounters is the canonical aggregate set recomputed from the
// dashboard's applicants and documents.
type DashboardCounters struct {
	ApplicantsCount           int
	IncompleteApplicantsCount int
	CompleteApplicantsCount   int
	ActionsCount              int
}

// RecomputeDashboardCounters derives the dashboard aggregates. ActionsCount
// counts documents sitting in admin-checked, the only state that represents
// pending reviewer work.
func RecomputeDashboardCounters(applicants []models.Applicant, docs []models.ApplicantDocument) DashboardCounters {
	var c DashboardCounters
	for _, a := range applicants {
		if a.IsDeleted {
			continue
		}
		c.ApplicantsCount++
		switch a.Status {
		case models.ApplicantIncomplete, models.ApplicantNotSubmitted:
			c.IncompleteApplicantsCount++
		case models.ApplicantComplete:
			c.CompleteApplicantsCount++
		}
	}
	for _, doc := range docs {
		if doc.Status == models.DocAdminChecked {
			c.ActionsCount++
		}
	}
	return c
}

// Diff reports per-field corrections against the stored dashboard.
func (c DashboardCounters) Diff(d models.Dashboard) map[string]int {
	diff := map[string]int{}
	if d.ApplicantsCount != c.ApplicantsCount {
		diff["applicantsCount"] = c.ApplicantsCount
	}
	if d.IncompleteApplicantsCount != c.IncompleteApplicantsCount {
		diff["incompleteApplicantsCount"] = c.IncompleteApplicantsCount
	}
	if d.CompleteApplicantsCount != c.CompleteApplicantsCount {
		diff["completeApplicantsCount"] = c.CompleteApplicantsCount
	}
	if d.ActionsCount != c.ActionsCount {
		diff["actionsCount"] = c.ActionsCount
	}
	if len(diff) == 0 {
		return nil
	}
	return diff
}
