package imagefix

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunyo/docflow/internal/models"
)

func gray(width, height int, level uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{level, level, level, 255})
		}
	}
	return img
}

func TestParseAdjustments(t *testing.T) {
	adj, err := ParseAdjustments(models.ImageProperties{
		Brightness:  "1.2",
		Contrast:    "1.5",
		Sharpness:   "2",
		RotateRight: "90",
		Normalise:   true,
	})
	require.NoError(t, err)
	require.NotNil(t, adj.Brightness)
	assert.Equal(t, 1.2, *adj.Brightness)
	require.NotNil(t, adj.Contrast)
	assert.Equal(t, 1.5, *adj.Contrast)
	require.NotNil(t, adj.Sharpness)
	assert.Equal(t, 2.0, *adj.Sharpness)
	assert.Equal(t, 90, adj.RotateRight)
	assert.True(t, adj.Normalise)
}

func TestParseAdjustmentsEmptyMeansNoOp(t *testing.T) {
	adj, err := ParseAdjustments(models.ImageProperties{})
	require.NoError(t, err)
	assert.Nil(t, adj.Brightness)
	assert.Nil(t, adj.Contrast)
	assert.Nil(t, adj.Sharpness)
	assert.Equal(t, 0, adj.RotateRight)
	assert.False(t, adj.Normalise)
}

func TestParseAdjustmentsRejectsBadValues(t *testing.T) {
	_, err := ParseAdjustments(models.ImageProperties{Brightness: "bright"})
	assert.Error(t, err)

	_, err = ParseAdjustments(models.ImageProperties{RotateRight: "45"})
	assert.Error(t, err)
}

func TestContrastOffset(t *testing.T) {
	assert.Equal(t, 0.0, ContrastOffset(1))
	assert.Equal(t, -64.0, ContrastOffset(1.5))
	assert.Equal(t, 128.0, ContrastOffset(0))
}

// Identity contrast (c=1, offset 0) must leave pixel values untouched.
func TestApplyIdentityContrast(t *testing.T) {
	c := 1.0
	out := Apply(gray(4, 4, 100), Adjustments{Contrast: &c})
	r, _, _, _ := out.At(2, 2).RGBA()
	assert.Equal(t, uint32(100), r>>8)
}

func TestApplyBrightnessScalesAndClamps(t *testing.T) {
	b := 2.0
	out := Apply(gray(4, 4, 100), Adjustments{Brightness: &b})
	r, _, _, _ := out.At(0, 0).RGBA()
	assert.Equal(t, uint32(200), r>>8)

	out = Apply(gray(4, 4, 200), Adjustments{Brightness: &b})
	r, _, _, _ = out.At(0, 0).RGBA()
	assert.Equal(t, uint32(255), r>>8, "overflow must clamp, not wrap")
}

func TestApplyRotationSwapsDimensions(t *testing.T) {
	out := Apply(gray(10, 20, 128), Adjustments{RotateRight: 90})
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())

	out = Apply(gray(10, 20, 128), Adjustments{RotateRight: 180})
	assert.Equal(t, 10, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())

	out = Apply(gray(10, 20, 128), Adjustments{RotateRight: 270})
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())
}

func TestApplyRotateRightIsClockwise(t *testing.T) {
	// Single white pixel in the top-left corner; after a 90° clockwise turn
	// it must sit in the top-right corner.
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})

	out := Apply(img, Adjustments{RotateRight: 90})
	r, _, _, _ := out.At(1, 0).RGBA()
	assert.Equal(t, uint32(255), r>>8)
}

func TestApplyNormalizeStretchesRange(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{100, 100, 100, 255})
	img.SetNRGBA(1, 0, color.NRGBA{150, 150, 150, 255})

	out := Apply(img, Adjustments{Normalise: true})
	lo, _, _, _ := out.At(0, 0).RGBA()
	hi, _, _, _ := out.At(1, 0).RGBA()
	assert.Equal(t, uint32(0), lo>>8)
	assert.Equal(t, uint32(255), hi>>8)
}

func TestResizeToIntakeWidth(t *testing.T) {
	out := Resize(gray(2480, 3508, 128))
	assert.Equal(t, IntakeWidth, out.Bounds().Dx())
	assert.Equal(t, 1754, out.Bounds().Dy(), "aspect ratio preserved")
}
