package tui

import (
	"os"

	"golang.org/x/term"
)

// Interactive reports whether f is a terminal the views can draw on.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Size returns the size of the terminal behind f, or 80x24.
func Size(f *os.File) (width, height int) {
	w, h, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
