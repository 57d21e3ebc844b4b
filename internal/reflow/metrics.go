package reflow

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/width"

	"github.com/vovakirdan/mzpatch/internal/domain"
)

const (
	// DefaultWidth is the line budget used when a bundle sets none.
	DefaultWidth = 58
	// FaceReserve is the number of columns a face portrait takes.
	FaceReserve = 10
)

// Metrics measures the display width of a rune.
type Metrics interface {
	RuneWidth(r rune) int
}

// Monospace counts every rune as one column.
type Monospace struct{}

func (Monospace) RuneWidth(rune) int { return 1 }

// EastAsian counts wide and fullwidth runes as two columns.
type EastAsian struct{}

func (EastAsian) RuneWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// ForLocale picks the metrics for a BCP-47 tag. Japanese, Chinese and
// Korean use EastAsian; everything else, including unparsable tags, is
// Monospace.
func ForLocale(tag string) Metrics {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Monospace{}
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Monospace{}
	}
	base, _ := t.Base()
	switch base.String() {
	case "ja", "zh", "ko":
		return EastAsian{}
	}
	return Monospace{}
}

// Hints describe where a string is displayed.
type Hints struct {
	Face bool
}

// Budget returns the line budget for one string. With dynamic width off it
// is always WrapWidth; with it on, a face portrait takes FaceReserve columns.
func Budget(cfg *domain.Config, h Hints) int {
	w := DefaultWidth
	if cfg != nil && cfg.WrapWidth > 0 {
		w = cfg.WrapWidth
	}
	if cfg == nil || !cfg.DynamicWrapWidth {
		return w
	}
	if h.Face {
		w -= FaceReserve
	}
	if w < 1 {
		w = 1
	}
	return w
}
