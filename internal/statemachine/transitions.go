// Package statemachine computes the counter and side-effect plan for document
// and applicant status transitions. It is deliberately free of I/O: handlers
// feed it the before/after snapshots plus the company's adminCheck option and
// apply the returned deltas as atomic relative increments.
package statemachine

import (
	"errors"
	"fmt"

	"github.com/hunyo/docflow/internal/models"
)

// ErrNoEdge marks a status pair with no listed transition. Handlers treat it
// as a no-op: no counters change, only the in-progress flag is cleared.
var ErrNoEdge = errors.New("no transition edge between statuses")

// Effects is the set of writes a single document transition requires. All
// integer fields are relative deltas to be applied with atomic increments.
type Effects struct {
	// FormAdminCheckDocs adjusts Form.adminCheckDocs.
	FormAdminCheckDocs int

	// Applicant counter deltas.
	TotalDocs             int
	AdminAcceptedDocs     int
	AcceptedDocs          int
	UnCheckedOptionalDocs int

	// DashboardActions adjusts Dashboard.actionsCount.
	DashboardActions int

	// Stitch requests the PDF stitcher for this document's current
	// submission generation.
	Stitch bool

	// NotifyRejection requests a rejection notification to the applicant.
	NotifyRejection bool

	// Resubmission is set on the rejected→submitted edge; the writer must
	// have bumped submissionCount and the rejection payload is cleared.
	Resubmission bool
}

// IsZero reports whether the transition requires no writes at all.
func (e Effects) IsZero() bool {
	return e == Effects{}
}

// Plan computes the effects of the status change between prev and next.
// A transition where the status did not change is a no-op, so an at-least-once
// redelivery of the same change never double-applies counter effects.
func Plan(prev, next models.ApplicantDocument, adminCheck bool) (Effects, error) {
	from, to := prev.Status, next.Status
	if from == to {
		return Effects{}, nil
	}

	// The not-applicable toggle is orthogonal to the review lifecycle: it
	// only moves totalDocs, in either direction. Optional docs never count
	// toward totalDocs, so the toggle only moves it for required docs.
	if to == models.DocNotApplicable {
		if next.IsRequired {
			return Effects{TotalDocs: -1}, nil
		}
		return Effects{}, nil
	}
	if from == models.DocNotApplicable {
		if next.IsRequired {
			return Effects{TotalDocs: +1}, nil
		}
		return Effects{}, nil
	}

	var eff Effects
	switch {
	case to == models.DocSubmitted && (from == models.DocNotSubmitted || from == models.DocRejected):
		if adminCheck {
			eff.FormAdminCheckDocs = +1
		}
		if from == models.DocRejected {
			if next.SubmissionCount != prev.SubmissionCount+1 {
				return Effects{}, fmt.Errorf(
					"resubmission of %q must advance submissionCount from %d, got %d",
					next.Name, prev.SubmissionCount, next.SubmissionCount)
			}
			eff.Resubmission = true
		}

	case from == models.DocSubmitted && to == models.DocAdminChecked:
		if adminCheck {
			eff.FormAdminCheckDocs = -1
		}
		if next.IsRequired {
			eff.AdminAcceptedDocs = +1
		} else {
			eff.UnCheckedOptionalDocs = +1
		}
		eff.DashboardActions = +1

	case from == models.DocAdminChecked && to == models.DocAccepted:
		if next.IsRequired {
			eff.AcceptedDocs = +1
		} else {
			eff.UnCheckedOptionalDocs = -1
		}
		eff.DashboardActions = -1
		eff.Stitch = true

	case from == models.DocSubmitted && to == models.DocRejected:
		if adminCheck {
			eff.FormAdminCheckDocs = -1
		}

	case from == models.DocAdminChecked && to == models.DocRejected:
		if next.IsRequired {
			eff.AdminAcceptedDocs = -1
		} else {
			eff.UnCheckedOptionalDocs = -1
		}
		eff.DashboardActions = -1
		eff.NotifyRejection = true

	default:
		return Effects{}, fmt.Errorf("%w: %s -> %s", ErrNoEdge, from, to)
	}

	return eff, nil
}

// CountersConsistent reports whether the applicant's denormalized counters
// satisfy acceptedDocs <= adminAcceptedDocs <= totalDocs with nothing
// negative.
func CountersConsistent(a models.Applicant) bool {
	if a.AcceptedDocs < 0 || a.AdminAcceptedDocs < 0 || a.TotalDocs < 0 || a.UnCheckedOptionalDocs < 0 {
		return false
	}
	return a.AcceptedDocs <= a.AdminAcceptedDocs && a.AdminAcceptedDocs <= a.TotalDocs
}
