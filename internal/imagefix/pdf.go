package imagefix

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf/v2"
)

// FitToPage scales an image of imgW×imgH into a pageW×pageH page: width is
// pinned to the page width and height derived from the aspect ratio; if that
// overflows the page, height is pinned instead. Never crops, never exceeds
// the page bounds.
func FitToPage(imgW, imgH, pageW, pageH float64) (w, h float64) {
	ratio := imgH / imgW
	w = pageW
	h = w * ratio
	if h > pageH {
		h = pageH
		w = h / ratio
	}
	return w, h
}

// ImagePDF renders the raster onto a single A4 page, scaled to fit, and
// writes the PDF to out.
func ImagePDF(img image.Image, out io.Writer) error {
	var jpegBuf bytes.Buffer
	if err := imaging.Encode(&jpegBuf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("failed to encode page image: %w", err)
	}

	pdf := gofpdf.New("P", "pt", "A4", "")
	pageW, pageH := pdf.GetPageSize()

	bounds := img.Bounds()
	w, h := FitToPage(float64(bounds.Dx()), float64(bounds.Dy()), pageW, pageH)

	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "JPEG"}
	pdf.RegisterImageOptionsReader("page", opts, &jpegBuf)
	pdf.ImageOptions("page", 0, 0, w, h, false, opts, 0, "")

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("failed to write page PDF: %w", err)
	}
	return nil
}
