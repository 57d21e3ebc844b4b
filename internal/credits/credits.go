// Package credits draws the translation credits onto the game's title
// screen image. Encrypted images (.rpgmvp, .png_) are handled in place.
package credits

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/vovakirdan/mzpatch/internal/registry"
)

// PassCredits is the registry ID of the credits overlay.
const PassCredits = "credits"

func init() {
	registry.Register(registry.Pass{ID: PassCredits, Title: "Title screen credits", MinVersion: 3, Order: 70})
}

// Corners accepted by Overlay.
const (
	BottomLeft  = "bottom_left"
	BottomRight = "bottom_right"
	TopLeft     = "top_left"
	TopRight    = "top_right"
)

// DefaultCorner is used when no corner is given.
const DefaultCorner = BottomLeft

const (
	padding = 4
	// Title images taller than this get the banner scaled up.
	scaleStep = 360
)

var (
	background = color.NRGBA{0, 0, 0, 160}
	foreground = color.NRGBA{255, 255, 255, 255}
)

// Banner renders text as a white-on-dark box at scale 1.
func Banner(text string) *image.RGBA {
	face := basicfont.Face7x13
	lines := strings.Split(strings.TrimSpace(text), "\n")

	w := 0
	for _, l := range lines {
		if lw := font.MeasureString(face, l).Ceil(); lw > w {
			w = lw
		}
	}
	lineH := face.Metrics().Height.Ceil()
	h := lineH * len(lines)

	img := image.NewRGBA(image.Rect(0, 0, w+2*padding, h+2*padding))
	xdraw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, xdraw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(foreground), Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	for i, l := range lines {
		d.Dot = fixed.P(padding, padding+ascent+i*lineH)
		d.DrawString(l)
	}
	return img
}

// Overlay returns a copy of img with the credits banner in the given corner.
func Overlay(img image.Image, text, corner string) (*image.RGBA, error) {
	if corner == "" {
		corner = DefaultCorner
	}

	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	xdraw.Draw(out, bounds, img, bounds.Min, xdraw.Src)

	banner := image.Image(Banner(text))
	if scale := bounds.Dy() / scaleStep; scale > 1 {
		b := banner.Bounds()
		scaled := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), banner, b, xdraw.Src, nil)
		banner = scaled
	}

	bb := banner.Bounds()
	var at image.Point
	switch corner {
	case BottomLeft:
		at = image.Pt(bounds.Min.X, bounds.Max.Y-bb.Dy())
	case BottomRight:
		at = image.Pt(bounds.Max.X-bb.Dx(), bounds.Max.Y-bb.Dy())
	case TopLeft:
		at = bounds.Min
	case TopRight:
		at = image.Pt(bounds.Max.X-bb.Dx(), bounds.Min.Y)
	default:
		return nil, fmt.Errorf("credits: unknown corner %q", corner)
	}

	xdraw.Draw(out, bb.Add(at), banner, bb.Min, xdraw.Over)
	return out, nil
}

// Apply draws the credits onto an encoded title image. encrypted selects
// the RPG Maker encrypted container; its header is kept as is.
func Apply(data []byte, encrypted bool, text, corner string) ([]byte, error) {
	var header []byte
	if encrypted {
		var err error
		header, data, err = Decrypt(data)
		if err != nil {
			return nil, err
		}
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("credits: decode image: %w", err)
	}
	out, err := Overlay(img, text, corner)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("credits: encode image: %w", err)
	}
	if encrypted {
		return Encrypt(buf.Bytes(), header), nil
	}
	return buf.Bytes(), nil
}

// IsEncrypted reports whether a title image path names an encrypted file.
func IsEncrypted(path string) bool {
	return !strings.HasSuffix(strings.ToLower(path), ".png")
}
