// Package imagefix applies the deterministic image transforms applicants and
// admins can request on an uploaded page, and renders the result onto a
// single A4 PDF page. Every step is independently skippable based on
// parameter presence and the whole pipeline is stateless per call.
package imagefix

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/hunyo/docflow/internal/models"
)

// IntakeWidth is the width every raw upload is resized to before any further
// processing.
const IntakeWidth = 1240

// DefaultBrightness is the lift applied to fresh uploads during intake.
const DefaultBrightness = 1.2

// Adjustments are the optional fix parameters. A nil pointer means no-op for
// that step; RotateRight must be one of 0, 90, 180, 270.
type Adjustments struct {
	Brightness  *float64
	Sharpness   *float64
	Contrast    *float64
	RotateRight int
	Normalise   bool
}

// ParseAdjustments converts the stored string-typed page properties into
// typed parameters.
func ParseAdjustments(p models.ImageProperties) (Adjustments, error) {
	var adj Adjustments
	parse := func(field, s string) (*float64, error) {
		if s == "" {
			return nil, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", field, s, err)
		}
		return &v, nil
	}
	var err error
	if adj.Brightness, err = parse("brightness", p.Brightness); err != nil {
		return Adjustments{}, err
	}
	if adj.Sharpness, err = parse("sharpness", p.Sharpness); err != nil {
		return Adjustments{}, err
	}
	if adj.Contrast, err = parse("contrast", p.Contrast); err != nil {
		return Adjustments{}, err
	}
	if p.RotateRight != "" {
		angle, err := strconv.Atoi(p.RotateRight)
		if err != nil {
			return Adjustments{}, fmt.Errorf("invalid rotateRight %q: %w", p.RotateRight, err)
		}
		switch angle {
		case 0, 90, 180, 270:
			adj.RotateRight = angle
		default:
			return Adjustments{}, fmt.Errorf("rotateRight must be 0, 90, 180 or 270, got %d", angle)
		}
	}
	adj.Normalise = p.Normalise
	return adj, nil
}

// ContrastOffset is the constant term of the linear contrast transform
// out = c*in + offset. Reproduced exactly to keep visual output identical.
func ContrastOffset(c float64) float64 {
	return -128*c + 128
}

// Apply runs the fix pipeline over img in its fixed order: brightness,
// sharpen, contrast, rotation, normalization.
func Apply(img image.Image, adj Adjustments) image.Image {
	out := img

	if adj.Brightness != nil {
		out = scaleChannels(out, *adj.Brightness, 0)
	}

	if adj.Sharpness != nil {
		amount := *adj.Sharpness
		if amount == 0 {
			amount = 1.0 // default kernel
		}
		out = imaging.Sharpen(out, amount)
	}

	if adj.Contrast != nil {
		c := *adj.Contrast
		out = scaleChannels(out, c, ContrastOffset(c))
	}

	switch adj.RotateRight {
	case 90:
		out = imaging.Rotate270(out) // imaging rotates counter-clockwise
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate90(out)
	}

	if adj.Normalise {
		out = normalize(out)
	}

	return out
}

// Resize scales the image to the intake width, preserving aspect ratio.
func Resize(img image.Image) image.Image {
	return imaging.Resize(img, IntakeWidth, 0, imaging.Lanczos)
}

// scaleChannels applies out = factor*in + offset per RGB channel, clamped.
func scaleChannels(img image.Image, factor, offset float64) image.Image {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clampU8(float64(c.R)*factor + offset),
			G: clampU8(float64(c.G)*factor + offset),
			B: clampU8(float64(c.B)*factor + offset),
			A: c.A,
		}
	})
}

// normalize stretches the intensity histogram to the full range.
func normalize(img image.Image) image.Image {
	src := imaging.Clone(img)
	lo, hi := uint8(255), uint8(0)
	for i := 0; i < len(src.Pix); i += 4 {
		for j := 0; j < 3; j++ {
			v := src.Pix[i+j]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	if lo == 0 && hi == 255 || lo >= hi {
		return src
	}
	scale := 255.0 / float64(hi-lo)
	return imaging.AdjustFunc(src, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clampU8(float64(int(c.R)-int(lo)) * scale),
			G: clampU8(float64(int(c.G)-int(lo)) * scale),
			B: clampU8(float64(int(c.B)-int(lo)) * scale),
			A: c.A,
		}
	})
}

func clampU8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
