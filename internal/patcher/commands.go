package patcher

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
	"github.com/vovakirdan/mzpatch/internal/reflow"
)

// Event command codes.
const (
	codeShowText       = 101
	codeShowChoices    = 102
	codeVariables      = 122
	codeNameInput      = 303
	codeScript         = 355
	codePluginCommand  = 356
	codePluginCommandZ = 357
	codeText           = 401
	codeWhenChoice     = 402
	codeScrollText     = 405
	codeCommentMore    = 408
	codeScriptMore     = 655
)

// LinesPerMessage is how many text lines fit one message window.
const LinesPerMessage = 4

// MinNameInputLength is the smallest name-input length left in place.
const MinNameInputLength = 10

type command struct {
	obj    *jsondoc.Object
	code   int
	params []any
}

func asCommand(v any) (command, bool) {
	obj, ok := v.(*jsondoc.Object)
	if !ok {
		return command{}, false
	}
	raw, ok := obj.Get("code")
	if !ok {
		return command{}, false
	}
	num, ok := raw.(json.Number)
	if !ok {
		return command{}, false
	}
	code, err := strconv.Atoi(num.String())
	if err != nil {
		return command{}, false
	}
	pv, _ := obj.Get("parameters")
	params, _ := pv.([]any)
	return command{obj: obj, code: code, params: params}, true
}

func (c command) str(i int) (string, bool) {
	if i >= len(c.params) {
		return "", false
	}
	s, ok := c.params[i].(string)
	return s, ok
}

// cloneWith copies the command with parameter i replaced.
func (c command) cloneWith(i int, v any) *jsondoc.Object {
	cl := jsondoc.Clone(c.obj).(*jsondoc.Object)
	pv, _ := cl.Get("parameters")
	if params, ok := pv.([]any); ok && i < len(params) {
		params[i] = v
	}
	return cl
}

// commands patches one event command list. It returns the new list and
// whether anything changed. Command blocks may grow or shrink.
func (r *fileRun) commands(listPath domain.Path, list []any) ([]any, bool) {
	dict := r.p.Enabled(PassDictionary)
	out := make([]any, 0, len(list))
	changed := false

	var header *command
	face := false

	for i := 0; i < len(list); {
		c, ok := asCommand(list[i])
		if !ok {
			out = append(out, list[i])
			i++
			continue
		}
		at := join(listPath, strconv.Itoa(i))

		switch c.code {
		case codeShowText:
			face = false
			if s, ok := c.str(0); ok && s != "" {
				face = true
			}
			if s, ok := c.str(4); ok && dict {
				if tr, hit := r.translate(join(at, "parameters", "4"), s, false, reflow.Hints{}); hit {
					c.params[4] = tr
					changed = true
				}
			}
			h := c
			header = &h

		case codeText, codeScrollText:
			j := i
			for j < len(list) {
				next, ok := asCommand(list[j])
				if !ok || next.code != c.code {
					break
				}
				j++
			}
			block := list[i:j]
			if dict {
				var emitted []any
				var hit bool
				if c.code == codeText {
					emitted, hit = r.textBlock(at, block, header, face)
				} else {
					emitted, hit = r.scrollBlock(at, block)
				}
				if hit {
					out = append(out, emitted...)
					changed = true
					i = j
					continue
				}
			}
			out = append(out, block...)
			i = j
			continue

		case codeScript:
			j := i + 1
			for j < len(list) {
				next, ok := asCommand(list[j])
				if !ok || next.code != codeScriptMore {
					break
				}
				j++
			}
			if dict {
				if emitted, hit := r.scriptBlock(at, list[i:j]); hit {
					out = append(out, emitted)
					changed = true
					i = j
					continue
				}
			}
			out = append(out, list[i:j]...)
			i = j
			continue

		case codeShowChoices:
			if !dict || len(c.params) == 0 {
				break
			}
			choices, ok := c.params[0].([]any)
			if !ok {
				break
			}
			for k, ch := range choices {
				s, ok := ch.(string)
				if !ok {
					continue
				}
				if tr, hit := r.translate(join(at, "parameters", "0", strconv.Itoa(k)), s, false, reflow.Hints{}); hit {
					choices[k] = tr
					changed = true
				}
			}

		case codeWhenChoice:
			if s, ok := c.str(1); ok && dict {
				if tr, hit := r.translate(join(at, "parameters", "1"), s, false, reflow.Hints{}); hit {
					c.params[1] = tr
					changed = true
				}
			}

		case codeCommentMore:
			if s, ok := c.str(0); ok && dict {
				if tr, hit := r.translate(join(at, "parameters", "0"), s, true, reflow.Hints{}); hit {
					c.params[0] = tr
					changed = true
				}
			}

		case codeNameInput:
			if dict && r.raiseNameInput(at, c) {
				changed = true
			}

		case codeVariables:
			if r.p.Enabled(PassVariables) && r.variable(at, c) {
				changed = true
			}

		case codePluginCommand, codePluginCommandZ:
			if r.p.Enabled(PassParameters) && r.pluginCommand(at, c) {
				changed = true
			}
		}

		out = append(out, list[i])
		i++
	}

	return out, changed
}

// textBlock looks up a run of 401 lines as one key and re-emits the
// translation one line per command. The message header is repeated every
// LinesPerMessage lines so the window never overflows.
func (r *fileRun) textBlock(at domain.Path, block []any, header *command, face bool) ([]any, bool) {
	key := joinLines(block)
	field := join(at, "parameters", "0")

	tr, ok := r.lookup(field, key)
	if !ok {
		return nil, false
	}
	lines := r.wrapLines(tr, reflow.Hints{Face: face})
	if len(lines) == 0 {
		lines = []string{""}
	}
	joined := strings.Join(lines, reflow.LineBreak)
	if joined == key {
		return nil, false
	}
	r.record(field, key, joined)

	first, _ := asCommand(block[0])
	out := make([]any, 0, len(lines)+len(lines)/LinesPerMessage)
	for n, line := range lines {
		if n > 0 && n%LinesPerMessage == 0 && header != nil {
			out = append(out, jsondoc.Clone(header.obj))
		}
		out = append(out, first.cloneWith(0, line))
	}
	return out, true
}

// scrollBlock replaces a run of 405 lines. Scrolling text is not reflowed.
func (r *fileRun) scrollBlock(at domain.Path, block []any) ([]any, bool) {
	key := joinLines(block)
	field := join(at, "parameters", "0")

	tr, ok := r.lookup(field, key)
	if !ok || tr == key {
		return nil, false
	}
	r.record(field, key, tr)

	first, _ := asCommand(block[0])
	lines := strings.Split(tr, "\n")
	out := make([]any, 0, len(lines))
	for _, line := range lines {
		out = append(out, first.cloneWith(0, line))
	}
	return out, true
}

// scriptBlock joins a 355 and its 655 continuations. A hit collapses the
// block into a single 355 holding the whole translated script.
func (r *fileRun) scriptBlock(at domain.Path, block []any) (any, bool) {
	key := joinLines(block)
	field := join(at, "parameters", "0")

	tr, ok := r.lookup(field, key)
	if !ok || tr == key {
		return nil, false
	}
	r.record(field, key, tr)

	first, _ := asCommand(block[0])
	return first.cloneWith(0, tr), true
}

func (r *fileRun) raiseNameInput(at domain.Path, c command) bool {
	if len(c.params) < 2 {
		return false
	}
	num, ok := c.params[1].(json.Number)
	if !ok {
		return false
	}
	n, err := num.Int64()
	if err != nil || n >= MinNameInputLength {
		return false
	}
	field := join(at, "parameters", "1")
	if r.p.overrides.Exempt(domain.NewSelector(r.rel, field)) {
		return false
	}
	c.params[1] = json.Number(strconv.Itoa(MinNameInputLength))
	r.record(field, num.String(), strconv.Itoa(MinNameInputLength))
	return true
}

func joinLines(block []any) string {
	lines := make([]string, 0, len(block))
	for _, b := range block {
		c, _ := asCommand(b)
		s, _ := c.str(0)
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n")
}
