// Package storagepath maps record ids to canonical object-storage paths.
// Every component that touches the bucket goes through these functions; the
// mapping is pure string concatenation with no error conditions.
package storagepath

import "strings"

func join(ids ...string) string {
	return strings.Join(ids, "/")
}

// Logo returns the path for a company logo upload.
func Logo(logoName string) string {
	return join("logos", logoName)
}

// TemporaryDoc is the intake location applicants upload raw files to.
func TemporaryDoc(docName string) string {
	return join("temporary-docs", docName)
}

// NewSample is the staging location for freshly uploaded dashboard samples.
func NewSample(companyID, dashboardID, sampleName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "new-samples", sampleName)
}

// Sample is the served location of a processed dashboard sample.
func Sample(companyID, dashboardID, sampleName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "samples", sampleName)
}

// Original is the as-uploaded page image for an applicant.
func Original(companyID, dashboardID, applicantID, docName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "originals", applicantID, docName)
}

// Fixed is the adjusted page output of the image fix pipeline.
func Fixed(companyID, dashboardID, applicantID, docName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "fixed", applicantID, docName)
}

// Accepted is the destination a page is copied to on acceptance.
func Accepted(companyID, dashboardID, applicantID, docName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "accepted", applicantID, docName)
}

// Rejected is the destination a page is copied to on rejection.
func Rejected(companyID, dashboardID, applicantID, docName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "rejected", applicantID, docName)
}

// Final is the stitched multi-page PDF for a completed document.
func Final(companyID, dashboardID, applicantID, docName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "final", applicantID, docName)
}

// Replaced holds superseded files from earlier submission generations.
func Replaced(companyID, dashboardID, applicantID, docName string) string {
	return join("companies", companyID, "dashboards", dashboardID, "replaced", applicantID, docName)
}
