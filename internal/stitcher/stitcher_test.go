package stitcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hunyo/docflow/internal/models"
)

func page(name string, number, generation int, format string) models.ApplicantPage {
	return models.ApplicantPage{
		CompanyID:       "c1",
		DashboardID:     "d1",
		ApplicantID:     "a1",
		Name:            name,
		PageNumber:      number,
		SubmissionCount: generation,
		SubmittedFormat: format,
	}
}

func TestOrderedPagePathsSortsByPageNumber(t *testing.T) {
	pages := []models.ApplicantPage{
		page("p3", 3, 1, "image/jpeg"),
		page("p1", 1, 1, "image/jpeg"),
		page("p2", 2, 1, "image/jpeg"),
	}

	paths := OrderedPagePaths(pages, 1)
	assert.Equal(t, []string{
		"companies/c1/dashboards/d1/fixed/a1/p1.pdf",
		"companies/c1/dashboards/d1/fixed/a1/p2.pdf",
		"companies/c1/dashboards/d1/fixed/a1/p3.pdf",
	}, paths)
}

// Pages from an earlier submission must never leak into a new stitch.
func TestOrderedPagePathsFiltersStaleGenerations(t *testing.T) {
	pages := []models.ApplicantPage{
		page("old1", 1, 1, "image/jpeg"),
		page("old2", 2, 1, "image/jpeg"),
		page("new1", 1, 2, "image/jpeg"),
	}

	paths := OrderedPagePaths(pages, 2)
	assert.Equal(t, []string{
		"companies/c1/dashboards/d1/fixed/a1/new1.pdf",
	}, paths)
}

// Direct PDF submissions skip the image pipeline, so their bytes live in
// originals rather than fixed.
func TestOrderedPagePathsChoosesFolderByFormat(t *testing.T) {
	pages := []models.ApplicantPage{
		page("scan", 1, 1, "image/jpeg"),
		page("upload", 2, 1, "application/pdf"),
	}

	paths := OrderedPagePaths(pages, 1)
	assert.Equal(t, []string{
		"companies/c1/dashboards/d1/fixed/a1/scan.pdf",
		"companies/c1/dashboards/d1/originals/a1/upload.pdf",
	}, paths)
}

func TestOrderedPagePathsEmpty(t *testing.T) {
	assert.Empty(t, OrderedPagePaths(nil, 1))
	assert.Empty(t, OrderedPagePaths([]models.ApplicantPage{page("p", 1, 1, "image/jpeg")}, 2))
}

func TestFinalName(t *testing.T) {
	assert.Equal(t, "passport.pdf", FinalName(models.ApplicantDocument{Name: "passport"}))
	assert.Equal(t, "Passport - Juan dela Cruz.pdf", FinalName(models.ApplicantDocument{
		Name:        "passport",
		UpdatedName: "Passport - Juan dela Cruz.pdf",
	}))
}
