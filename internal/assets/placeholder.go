package assets

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"reelforge/internal/textutil"
)

const (
	placeholderTextBudget = 72
	placeholderLineWidth  = 24
	placeholderMaxLines   = 2
	// textScale enlarges the bitmap caption so it stays legible at the
	// full output resolution.
	textScale = 8
)

// GradientSynthesizer renders placeholder frames: a two-tone vertical
// gradient seeded from the caption text, with the caption drawn centered in
// a scaled bitmap font.
type GradientSynthesizer struct{}

// Render writes a PNG placeholder of the given dimensions to dest.
func (GradientSynthesizer) Render(text string, width, height int, dest string) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("placeholder: invalid dimensions %dx%d", width, height)
	}

	top, bottom := gradientColors(text)
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		blend := float64(y) / float64(height)
		row := lerpColor(top, bottom, blend)
		for x := 0; x < width; x++ {
			canvas.SetRGBA(x, y, row)
		}
	}

	caption := textutil.Truncate(text, placeholderTextBudget)
	lines := textutil.WrapLines(caption, placeholderLineWidth, placeholderMaxLines)
	if len(lines) > 0 {
		drawCaption(canvas, lines)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("placeholder: create %s: %w", dest, err)
	}
	if err := png.Encode(f, canvas); err != nil {
		f.Close()
		os.Remove(dest)
		return fmt.Errorf("placeholder: encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("placeholder: close %s: %w", dest, err)
	}
	return nil
}

// drawCaption renders lines in the basic 7x13 face onto a small layer, then
// scales that layer up and composites it over the center of the canvas.
func drawCaption(canvas *image.RGBA, lines []string) {
	face := basicfont.Face7x13
	lineHeight := face.Height + 2

	maxWidth := 0
	for _, line := range lines {
		if w := font.MeasureString(face, line).Ceil(); w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth == 0 {
		return
	}

	layer := image.NewRGBA(image.Rect(0, 0, maxWidth, lineHeight*len(lines)))
	drawer := font.Drawer{
		Dst:  layer,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		drawer.Dot = fixed.P((maxWidth-w)/2, face.Ascent+i*lineHeight)
		drawer.DrawString(line)
	}

	bounds := canvas.Bounds()
	scaledW := maxWidth * textScale
	scaledH := layer.Bounds().Dy() * textScale
	if scaledW > bounds.Dx() {
		scale := float64(bounds.Dx()) / float64(scaledW)
		scaledW = bounds.Dx()
		scaledH = int(float64(scaledH) * scale)
	}
	x0 := (bounds.Dx() - scaledW) / 2
	y0 := (bounds.Dy() - scaledH) / 2
	target := image.Rect(x0, y0, x0+scaledW, y0+scaledH)
	xdraw.ApproxBiLinear.Scale(canvas, target, layer, layer.Bounds(), xdraw.Over, nil)
}

// gradientColors derives a stable color pair from the caption so repeated
// runs for the same scene look identical.
func gradientColors(text string) (color.RGBA, color.RGBA) {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	top := color.RGBA{
		R: uint8(40 + seed%120),
		G: uint8(40 + (seed>>8)%120),
		B: uint8(80 + (seed>>16)%140),
		A: 255,
	}
	bottom := color.RGBA{
		R: top.R / 3,
		G: top.G / 3,
		B: top.B / 2,
		A: 255,
	}
	return top, bottom
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}
