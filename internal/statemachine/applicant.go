package statemachine

import "github.com/hunyo/docflow/internal/models"

// RegressionPolicy decides whether an applicant who reached complete can fall
// back to incomplete when an accepted document is later rejected or more
// documents are added. The source system never regressed; the policy makes
// that an explicit choice instead of an accident.
type RegressionPolicy int

const (
	ForwardOnly RegressionPolicy = iota
	AllowRegression
)

// Progress is the applicant-level status change derived from a counter
// update, plus the dashboard counter deltas it implies.
type Progress struct {
	Changed   bool
	NewStatus models.ApplicantStatus

	IncompleteApplicants int
	CompleteApplicants   int
}

// ApplicantProgress recomputes the applicant's derived status from the
// before/after counter snapshots. Transitions are edge-triggered: they fire
// only when the counters cross the threshold, so replaying an update that
// already crossed it is a no-op.
func ApplicantProgress(prev, next models.Applicant, policy RegressionPolicy) Progress {
	switch {
	case becameIncomplete(prev, next):
		return Progress{
			Changed:              true,
			NewStatus:            models.ApplicantIncomplete,
			IncompleteApplicants: +1,
		}
	case becameComplete(prev, next):
		return Progress{
			Changed:              true,
			NewStatus:            models.ApplicantComplete,
			CompleteApplicants:   +1,
			IncompleteApplicants: -1,
		}
	case policy == AllowRegression && regressed(prev, next):
		return Progress{
			Changed:              true,
			NewStatus:            models.ApplicantIncomplete,
			CompleteApplicants:   -1,
			IncompleteApplicants: +1,
		}
	}
	return Progress{}
}

func becameIncomplete(prev, next models.Applicant) bool {
	return next.Status == models.ApplicantNotSubmitted &&
		next.AdminAcceptedDocs > 0 &&
		prev.AdminAcceptedDocs == 0
}

func becameComplete(prev, next models.Applicant) bool {
	return next.Status == models.ApplicantIncomplete &&
		next.TotalDocs == next.AcceptedDocs &&
		prev.AcceptedDocs < prev.TotalDocs
}

func regressed(prev, next models.Applicant) bool {
	return next.Status == models.ApplicantComplete &&
		next.AcceptedDocs < next.TotalDocs &&
		prev.AcceptedDocs >= prev.TotalDocs
}
