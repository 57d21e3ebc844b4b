// Package reflow re-wraps translated text to fit a game's message window.
//
// Line breaks already in the text are kept, and a line that fits is left
// byte for byte. Longer lines break at whitespace; the whitespace run a
// break replaces is dropped. RPG Maker escape sequences such as \C[2] or \.
// are kept whole and take no width.
package reflow

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineBreak joins wrapped lines.
const LineBreak = "\n"

var controlToken = regexp.MustCompile(`\\[A-Za-z]+(\[[^\]]*\])?|\\[{}$.|!><^\\]`)

type word struct {
	text  string
	width int
}

// Wrap splits text into lines no wider than budget. Each line of the input
// is wrapped on its own. A word wider than the budget is placed alone on its
// own line.
func Wrap(text string, budget int, m Metrics) []string {
	if m == nil {
		m = Monospace{}
	}
	if budget < 1 {
		budget = 1
	}
	if text == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, LineBreak) {
		lines = append(lines, wrapLine(para, budget, m)...)
	}
	return lines
}

// Reflow wraps text and joins the lines with LineBreak.
func Reflow(text string, budget int, m Metrics) string {
	return strings.Join(Wrap(text, budget, m), LineBreak)
}

// Width measures text, skipping control tokens and line breaks.
func Width(text string, m Metrics) int {
	if m == nil {
		m = Monospace{}
	}
	n := 0
	for _, t := range tokenize(text, m) {
		n += t.width
	}
	return n
}

func wrapLine(line string, budget int, m Metrics) []string {
	if Width(line, m) <= budget {
		return []string{line}
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0
	started := false
	var gap *token
	write := func(t *token) {
		cur.WriteString(t.text)
		curWidth += t.width
	}

	toks := tokenize(line, m)
	for i := range toks {
		t := &toks[i]
		if t.space {
			gap = t
			continue
		}
		gapWidth := 0
		if gap != nil {
			gapWidth = gap.width
		}
		switch {
		case !started:
			// Leading indentation stays with the first word.
			if gap != nil {
				write(gap)
			}
		case curWidth+gapWidth+t.width <= budget:
			if gap != nil {
				write(gap)
			}
		default:
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		write(t)
		started = true
		gap = nil
	}
	if !started {
		return []string{line}
	}
	if gap != nil && curWidth+gap.width <= budget {
		write(gap)
	}
	return append(lines, cur.String())
}

// token is a word or a whitespace run. Control tokens are part of words and
// are never broken, even when their bracketed argument contains spaces.
type token struct {
	text  string
	width int
	space bool
}

func tokenize(text string, m Metrics) []token {
	spans := controlToken.FindAllStringIndex(text, -1)

	var toks []token
	var cur strings.Builder
	width := 0
	space := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, token{text: cur.String(), width: width, space: space})
			cur.Reset()
			width = 0
		}
	}

	next := 0
	for i := 0; i < len(text); {
		if next < len(spans) && spans[next][0] == i {
			if space {
				flush()
				space = false
			}
			cur.WriteString(text[i:spans[next][1]])
			i = spans[next][1]
			next++
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		isSpace := unicode.IsSpace(r)
		if isSpace != space {
			flush()
			space = isSpace
		}
		cur.WriteRune(r)
		if r != '\n' {
			width += m.RuneWidth(r)
		}
		i += size
	}
	flush()
	return toks
}
