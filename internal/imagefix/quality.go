package imagefix

// Scores are the quality metrics returned by the image-analysis provider,
// each in [0,1].
type Scores struct {
	Brightness float64 `json:"brightness"`
	Sharpness  float64 `json:"sharpness"`
	Contrast   float64 `json:"contrast"`
}

// Acceptance thresholds for an uploaded scan.
const (
	MinBrightness = 0.3
	MinSharpness  = 0.9
	MinContrast   = 0.75

	// MaxResubmissions is the generation after which low-quality uploads
	// are force-accepted so the applicant is never blocked indefinitely.
	MaxResubmissions = 3
)

// AcceptQuality reports whether a scan passes the quality gate. A submission
// past the resubmission limit passes regardless of its scores.
func AcceptQuality(s Scores, submissionCount int) bool {
	if submissionCount > MaxResubmissions {
		return true
	}
	return s.Brightness > MinBrightness && s.Sharpness > MinSharpness && s.Contrast > MinContrast
}
