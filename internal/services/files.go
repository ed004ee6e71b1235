package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"cloud.google.com/go/firestore"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/hunyo/docflow/internal/gcp"
	"github.com/hunyo/docflow/internal/imagefix"
	"github.com/hunyo/docflow/internal/models"
	"github.com/hunyo/docflow/internal/providers"
	"github.com/hunyo/docflow/internal/storagepath"
)

// FileIntakeConfig carries the image-analysis credentials. Analysis is
// optional: without credentials uploads still flow, just unscored.
type FileIntakeConfig struct {
	SightengineUser   string
	SightengineSecret string
}

// FileIntakeFunction moves uploaded blobs through the folder lifecycle:
// temporary-docs intake into originals and fixed, sample promotion, page
// deletion cleanup, and admin-requested image re-fixes.
type FileIntakeFunction struct {
	clients  *Clients
	analyzer providers.ImageAnalyzer
}

func NewFileIntake(ctx context.Context) (*FileIntakeFunction, error) {
	clients, err := newClients(ctx, true)
	if err != nil {
		return nil, err
	}
	config := FileIntakeConfig{
		SightengineUser:   gcp.GetEnv("SIGHTENGINE_API_USER", ""),
		SightengineSecret: gcp.GetEnv("SIGHTENGINE_API_SECRET", ""),
	}
	f := &FileIntakeFunction{clients: clients}
	if config.SightengineUser != "" {
		f.analyzer = providers.NewSightengineClient(config.SightengineUser, config.SightengineSecret)
	}
	slog.Info("File intake handler initialized.", "analysisEnabled", f.analyzer != nil)
	return f, nil
}

// intakeMeta is the routing metadata the uploader attaches to each blob.
type intakeMeta struct {
	CompanyID       string
	DashboardID     string
	ApplicantID     string
	DocID           string
	FormID          string
	Format          models.Format
	SubmissionCount int
	Angle           int
}

func parseIntakeMeta(m map[string]string) (intakeMeta, error) {
	meta := intakeMeta{
		CompanyID:   m["companyId"],
		DashboardID: m["dashboardId"],
		ApplicantID: m["applicantId"],
		DocID:       m["docId"],
		FormID:      m["formId"],
		Format:      models.Format(m["format"]),
	}
	if meta.CompanyID == "" || meta.DashboardID == "" || meta.ApplicantID == "" {
		return intakeMeta{}, fmt.Errorf("incomplete routing metadata: %v", m)
	}
	if s := m["submissionCount"]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return intakeMeta{}, fmt.Errorf("invalid submissionCount %q: %w", s, err)
		}
		meta.SubmissionCount = n
	}
	if s := m["angle"]; s != "" {
		angle, err := strconv.Atoi(s)
		if err != nil {
			return intakeMeta{}, fmt.Errorf("invalid angle %q: %w", s, err)
		}
		meta.Angle = angle
	}
	return meta, nil
}

// ProcessObject routes a finalized storage object to its intake path.
// Objects outside the managed folders are ignored.
func (f *FileIntakeFunction) ProcessObject(ctx context.Context, e models.StorageObjectEvent) error {
	switch {
	case strings.Contains(e.Name, "temporary-docs/"):
		if strings.HasPrefix(e.ContentType, "image/") {
			return f.intakeImage(ctx, e)
		}
		if e.ContentType == "application/pdf" {
			return f.intakePDF(ctx, e)
		}
		slog.Info("Ignoring unsupported upload type.", "object", e.Name, "contentType", e.ContentType)
		return nil
	case strings.Contains(e.Name, "new-samples/"):
		return f.promoteSample(ctx, e)
	default:
		return nil
	}
}

// intakeImage resizes a fresh photo upload, scores it, and writes both the
// resized original and the auto-fixed applicant-facing copy.
func (f *FileIntakeFunction) intakeImage(ctx context.Context, e models.StorageObjectEvent) error {
	meta, err := parseIntakeMeta(e.Metadata)
	if err != nil {
		slog.Error("Upload missing routing metadata, leaving in place.", "object", e.Name, "error", err)
		return nil
	}
	fileName := path.Base(e.Name)
	logCtx := slog.With("object", e.Name, "companyId", meta.CompanyID, "applicantId", meta.ApplicantID)

	raw, err := gcp.DownloadBytes(ctx, f.clients.Bucket, e.Name)
	if err != nil {
		return fmt.Errorf("failed to download upload %s: %w", e.Name, err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", e.Name, err)
	}
	resized := imagefix.Resize(img)

	resizedJPEG, err := encodeJPEG(resized)
	if err != nil {
		return err
	}
	scores, scored := f.analyze(ctx, logCtx, resizedJPEG, e.Name)
	if scored {
		logCtx.Info("Image scored.",
			"brightness", scores.Brightness,
			"sharpness", scores.Sharpness,
			"contrast", scores.Contrast,
			"passes", imagefix.AcceptQuality(scores, meta.SubmissionCount),
		)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.writeOriginal(gctx, meta, fileName, resized, scores, scored)
	})
	g.Go(func() error {
		return f.writeFixed(gctx, meta, fileName, resized, scores, scored)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := gcp.DeleteObject(ctx, f.clients.Bucket, e.Name); err != nil {
		logCtx.Error("Failed to remove temporary upload.", "error", err)
	}
	logCtx.Info("Image intake complete.")
	return nil
}

// writeOriginal stores the resized photo, rotated only by the capture angle.
func (f *FileIntakeFunction) writeOriginal(ctx context.Context, meta intakeMeta, fileName string, resized image.Image, scores imagefix.Scores, scored bool) error {
	out := resized
	if meta.Angle != 0 {
		out = imagefix.Apply(out, imagefix.Adjustments{RotateRight: meta.Angle})
	}
	data, err := encodeJPEG(out)
	if err != nil {
		return err
	}
	object := storagepath.Original(meta.CompanyID, meta.DashboardID, meta.ApplicantID, fileName+".jpeg")
	return gcp.WriteObjectIfAbsent(ctx, f.clients.Bucket, object, data, gcp.ObjectMeta{
		ContentType:        "image/jpeg",
		ContentDisposition: fmt.Sprintf("inline; filename=%s-original.jpeg", fileName),
		Metadata:           scoreMetadata(scores, scored),
	})
}

// writeFixed applies the automatic cleanup pass and stores the applicant's
// requested format, jpeg or single-page pdf.
func (f *FileIntakeFunction) writeFixed(ctx context.Context, meta intakeMeta, fileName string, resized image.Image, scores imagefix.Scores, scored bool) error {
	brightness := imagefix.DefaultBrightness
	sharpness := 0.0 // default kernel
	fixed := imagefix.Apply(resized, imagefix.Adjustments{
		Brightness:  &brightness,
		Sharpness:   &sharpness,
		RotateRight: meta.Angle,
		Normalise:   true,
	})

	format := meta.Format
	if format == "" {
		format = models.FormatJPEG
	}
	object := storagepath.Fixed(meta.CompanyID, meta.DashboardID, meta.ApplicantID,
		fmt.Sprintf("%s.%s", fileName, format))
	objMeta := gcp.ObjectMeta{
		ContentDisposition: fmt.Sprintf("inline; filename=%s-fixed.%s", fileName, format),
		Metadata:           scoreMetadata(scores, scored),
	}

	var buf bytes.Buffer
	switch format {
	case models.FormatPDF:
		objMeta.ContentType = "application/pdf"
		if err := imagefix.ImagePDF(fixed, &buf); err != nil {
			return fmt.Errorf("failed to build fixed pdf: %w", err)
		}
	default:
		objMeta.ContentType = "image/jpeg"
		data, err := encodeJPEG(fixed)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return gcp.WriteObject(ctx, f.clients.Bucket, object, buf.Bytes(), objMeta)
}

// intakePDF moves a direct PDF upload into originals unchanged.
func (f *FileIntakeFunction) intakePDF(ctx context.Context, e models.StorageObjectEvent) error {
	meta, err := parseIntakeMeta(e.Metadata)
	if err != nil {
		slog.Error("Upload missing routing metadata, leaving in place.", "object", e.Name, "error", err)
		return nil
	}
	fileName := path.Base(e.Name)
	dst := storagepath.Original(meta.CompanyID, meta.DashboardID, meta.ApplicantID, fileName+".pdf")
	err = gcp.CopyObject(ctx, f.clients.Bucket, e.Name, dst, &gcp.ObjectMeta{
		ContentType:        "application/pdf",
		ContentDisposition: fmt.Sprintf("inline; filename=%s.pdf", fileName),
	})
	if err != nil {
		return fmt.Errorf("failed to move pdf upload %s: %w", e.Name, err)
	}
	if err := gcp.DeleteObject(ctx, f.clients.Bucket, e.Name); err != nil {
		slog.Error("Failed to remove temporary upload.", "object", e.Name, "error", err)
	}
	slog.Info("PDF intake complete.", "object", e.Name)
	return nil
}

// ProcessStatusUpdate reacts to an object metadata update carrying a review
// verdict: the reviewed file is archived under the accepted or rejected
// folder, renamed to the reviewer-assigned name. Metadata updates without a
// verdict are ignored.
func (f *FileIntakeFunction) ProcessStatusUpdate(ctx context.Context, e models.StorageObjectEvent) error {
	status := e.Metadata["status"]
	if status != "accepted" && status != "rejected" {
		return nil
	}
	meta, err := parseIntakeMeta(e.Metadata)
	if err != nil {
		slog.Error("Status update missing routing metadata, skipping.", "object", e.Name, "error", err)
		return nil
	}
	updatedName := e.Metadata["updatedName"]
	if updatedName == "" {
		updatedName = path.Base(e.Name)
	}

	dst := reviewArchivePath(status, meta, updatedName)
	err = gcp.CopyObject(ctx, f.clients.Bucket, e.Name, dst, &gcp.ObjectMeta{
		ContentType: e.ContentType,
	})
	if err != nil {
		return fmt.Errorf("failed to archive reviewed file %s: %w", e.Name, err)
	}
	slog.Info("Reviewed file archived.", "object", dst, "status", status)
	return nil
}

// reviewArchivePath resolves the archive destination for a review verdict.
func reviewArchivePath(status string, meta intakeMeta, docName string) string {
	if status == "accepted" {
		return storagepath.Accepted(meta.CompanyID, meta.DashboardID, meta.ApplicantID, docName)
	}
	return storagepath.Rejected(meta.CompanyID, meta.DashboardID, meta.ApplicantID, docName)
}

// promoteSample moves an uploaded sample from new-samples to samples,
// re-encoding images to jpeg on the way.
func (f *FileIntakeFunction) promoteSample(ctx context.Context, e models.StorageObjectEvent) error {
	fileName := path.Base(e.Name)
	dst := strings.Replace(e.Name, "new-samples", "samples", 1)

	switch {
	case strings.HasPrefix(e.ContentType, "image/"):
		raw, err := gcp.DownloadBytes(ctx, f.clients.Bucket, e.Name)
		if err != nil {
			return fmt.Errorf("failed to download sample %s: %w", e.Name, err)
		}
		img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
		if err != nil {
			return fmt.Errorf("failed to decode sample %s: %w", e.Name, err)
		}
		data, err := encodeJPEG(imagefix.Resize(img))
		if err != nil {
			return err
		}
		err = gcp.WriteObject(ctx, f.clients.Bucket, dst, data, gcp.ObjectMeta{
			ContentType:        "image/jpeg",
			ContentDisposition: fmt.Sprintf("inline; filename=%s.jpeg", fileName),
		})
		if err != nil {
			return fmt.Errorf("failed to store sample %s: %w", dst, err)
		}
	case e.ContentType == "application/pdf":
		err := gcp.CopyObject(ctx, f.clients.Bucket, e.Name, dst, &gcp.ObjectMeta{
			ContentType:        "application/pdf",
			ContentDisposition: fmt.Sprintf("inline; filename=%s.pdf", fileName),
		})
		if err != nil {
			return fmt.Errorf("failed to move sample %s: %w", e.Name, err)
		}
	default:
		slog.Info("Ignoring unsupported sample type.", "object", e.Name, "contentType", e.ContentType)
		return nil
	}

	if err := gcp.DeleteObject(ctx, f.clients.Bucket, e.Name); err != nil {
		slog.Error("Failed to remove staged sample.", "object", e.Name, "error", err)
	}
	slog.Info("Sample promoted.", "object", dst)
	return nil
}

// ProcessPage handles page deletions and admin-requested image re-fixes.
func (f *FileIntakeFunction) ProcessPage(ctx context.Context, e models.PageChangeEvent) error {
	if e.Deleted {
		return f.cleanupPage(ctx, e)
	}
	prev, next := e.Before, e.After
	if next.UpdatingFixedImage && !prev.UpdatingFixedImage && next.ImageProperties != nil {
		return f.refixPage(ctx, e)
	}
	return nil
}

// cleanupPage removes the page's stored renditions and shrinks the document
// page count.
func (f *FileIntakeFunction) cleanupPage(ctx context.Context, e models.PageChangeEvent) error {
	page := e.Before
	logCtx := slog.With("pageId", e.PageID, "docId", page.DocID)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return gcp.DeleteObject(gctx, f.clients.Bucket,
			storagepath.Original(page.CompanyID, page.DashboardID, page.ApplicantID, page.Name+".jpeg"))
	})
	g.Go(func() error {
		return gcp.DeleteObject(gctx, f.clients.Bucket,
			storagepath.Fixed(page.CompanyID, page.DashboardID, page.ApplicantID, page.Name+".pdf"))
	})
	if err := g.Wait(); err != nil {
		logCtx.Error("Failed to remove page objects.", "error", err)
	}

	_, err := f.clients.Refs.Document(page.CompanyID, page.DocID).Update(ctx, []firestore.Update{
		{Path: "totalPages", Value: firestore.Increment(-1)},
	})
	if err != nil {
		logCtx.Error("Failed to shrink document page count.", "error", err)
		return err
	}
	logCtx.Info("Deleted page cleaned up.")
	return nil
}

// refixPage rebuilds the fixed rendition of a page with the admin's
// adjustment parameters. The trigger flag is always reset.
func (f *FileIntakeFunction) refixPage(ctx context.Context, e models.PageChangeEvent) error {
	page := e.After
	logCtx := slog.With("pageId", e.PageID, "docId", page.DocID)

	defer func() {
		_, err := f.clients.Refs.Page(page.CompanyID, e.PageID).Update(ctx, []firestore.Update{
			{Path: "updatingFixedImage", Value: false},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		})
		if err != nil {
			logCtx.Error("Failed to reset fix flag.", "error", err)
		}
	}()

	adj, err := imagefix.ParseAdjustments(*page.ImageProperties)
	if err != nil {
		logCtx.Error("Rejecting invalid adjustment parameters.", "error", err)
		return nil
	}

	object := storagepath.Original(page.CompanyID, page.DashboardID, page.ApplicantID, page.Name+".jpeg")
	raw, err := gcp.DownloadBytes(ctx, f.clients.Bucket, object)
	if err != nil {
		return fmt.Errorf("failed to download original %s: %w", object, err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to decode original %s: %w", object, err)
	}

	fixed := imagefix.Apply(img, adj)
	var buf bytes.Buffer
	if err := imagefix.ImagePDF(fixed, &buf); err != nil {
		return fmt.Errorf("failed to build fixed pdf: %w", err)
	}

	dst := storagepath.Fixed(page.CompanyID, page.DashboardID, page.ApplicantID, page.Name+".pdf")
	err = gcp.WriteObject(ctx, f.clients.Bucket, dst, buf.Bytes(), gcp.ObjectMeta{
		ContentType:        "application/pdf",
		ContentDisposition: `inline; filename="fixed.pdf"`,
	})
	if err != nil {
		return fmt.Errorf("failed to store fixed page %s: %w", dst, err)
	}
	logCtx.Info("Page fixed rendition rebuilt.")
	return nil
}

func (f *FileIntakeFunction) analyze(ctx context.Context, logCtx *slog.Logger, image []byte, name string) (imagefix.Scores, bool) {
	if f.analyzer == nil {
		return imagefix.Scores{}, false
	}
	scores, err := f.analyzer.Analyze(ctx, image, name)
	if err != nil {
		logCtx.Error("Image analysis failed, continuing unscored.", "error", err)
		return imagefix.Scores{}, false
	}
	return scores, true
}

func scoreMetadata(scores imagefix.Scores, scored bool) map[string]string {
	if !scored {
		return nil
	}
	return map[string]string{
		"brightness": strconv.FormatFloat(scores.Brightness, 'f', -1, 64),
		"sharpness":  strconv.FormatFloat(scores.Sharpness, 'f', -1, 64),
		"contrast":   strconv.FormatFloat(scores.Contrast, 'f', -1, 64),
	}
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
