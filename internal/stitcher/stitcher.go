// Package stitcher reassembles the accepted pages of one document submission
// into a single final PDF. Pages are matched by the document's current
// submission generation so resubmitted documents never pick up stale pages.
package stitcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"google.golang.org/api/iterator"

	"github.com/hunyo/docflow/internal/gcp"
	"github.com/hunyo/docflow/internal/models"
	"github.com/hunyo/docflow/internal/storagepath"
)

// Stitcher downloads each page's single-page PDF and merges them in page
// order. Any page failure aborts the whole stitch; no partial document is
// ever uploaded to the final path.
type Stitcher struct {
	refs   gcp.Refs
	bucket *storage.BucketHandle
}

func New(refs gcp.Refs, bucket *storage.BucketHandle) *Stitcher {
	return &Stitcher{refs: refs, bucket: bucket}
}

// Stitch merges the document's current-generation pages and uploads the
// result to the final path, named by updatedName if set else "{name}.pdf".
func (s *Stitcher) Stitch(ctx context.Context, docID string, doc models.ApplicantDocument) error {
	logCtx := slog.With("documentId", docID, "submissionCount", doc.SubmissionCount)

	pages, err := s.queryPages(ctx, docID, doc)
	if err != nil {
		return err
	}
	if len(pages) == 0 {
		return fmt.Errorf("no pages found for document %s at generation %d", docID, doc.SubmissionCount)
	}
	logCtx.Info("Stitching pages.", "pageCount", len(pages))

	tempDir, err := os.MkdirTemp("", "stitcher-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	paths := OrderedPagePaths(pages, doc.SubmissionCount)
	localFiles := make([]string, 0, len(paths))
	for i, object := range paths {
		localPath := filepath.Join(tempDir, fmt.Sprintf("%05d.pdf", i+1))
		if err := gcp.DownloadToFile(ctx, s.bucket, object, localPath); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		localFiles = append(localFiles, localPath)
	}

	mergedPath := filepath.Join(tempDir, "final.pdf")
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.MergeCreateFile(localFiles, mergedPath, false, conf); err != nil {
		return fmt.Errorf("failed to merge pages: %w", err)
	}

	finalObject := storagepath.Final(doc.CompanyID, doc.DashboardID, doc.ApplicantID, FinalName(doc))
	err = gcp.UploadFile(ctx, s.bucket, finalObject, mergedPath, gcp.ObjectMeta{
		ContentType:        "application/pdf",
		ContentDisposition: "attachment",
	})
	if err != nil {
		return err
	}
	logCtx.Info("Stitched document uploaded.", "object", finalObject)
	return nil
}

func (s *Stitcher) queryPages(ctx context.Context, docID string, doc models.ApplicantDocument) ([]models.ApplicantPage, error) {
	iter := s.refs.Pages(doc.CompanyID).
		Where("docId", "==", docID).
		Where("submissionCount", "==", doc.SubmissionCount).
		OrderBy("pageNumber", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	var pages []models.ApplicantPage
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query pages for document %s: %w", docID, err)
		}
		var page models.ApplicantPage
		if err := snap.DataTo(&page); err != nil {
			return nil, fmt.Errorf("failed to decode page %s: %w", snap.Ref.ID, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// OrderedPagePaths resolves the storage object for each page of the given
// generation, ascending by page number. Pages submitted as PDF are read from
// the originals folder; everything else uses the fixed single-page PDF
// produced by the image pipeline.
func OrderedPagePaths(pages []models.ApplicantPage, generation int) []string {
	current := make([]models.ApplicantPage, 0, len(pages))
	for _, p := range pages {
		if p.SubmissionCount == generation {
			current = append(current, p)
		}
	}
	sort.SliceStable(current, func(i, j int) bool {
		return current[i].PageNumber < current[j].PageNumber
	})

	paths := make([]string, 0, len(current))
	for _, p := range current {
		name := p.Name + ".pdf"
		if submittedAsPDF(p.SubmittedFormat) {
			paths = append(paths, storagepath.Original(p.CompanyID, p.DashboardID, p.ApplicantID, name))
		} else {
			paths = append(paths, storagepath.Fixed(p.CompanyID, p.DashboardID, p.ApplicantID, name))
		}
	}
	return paths
}

// FinalName is the object name of the stitched output.
func FinalName(doc models.ApplicantDocument) string {
	if doc.UpdatedName != "" {
		return doc.UpdatedName
	}
	return doc.Name + ".pdf"
}

func submittedAsPDF(format string) bool {
	return strings.Contains(strings.ToLower(format), "pdf")
}
