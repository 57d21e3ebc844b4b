package patcher

import (
	"strings"

	"github.com/vovakirdan/mzpatch/internal/coerce"
	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/paramroot"
	"github.com/vovakirdan/mzpatch/internal/reflow"
)

// pluginCommand patches a 356 (MV) or 357 (MZ) command against every
// matching ParameterToPatch.
func (r *fileRun) pluginCommand(at domain.Path, c command) bool {
	if c.code == codePluginCommandZ {
		return r.pluginCommandMZ(at, c)
	}
	return r.pluginCommandMV(at, c)
}

// MZ: [plugin, command, label, args]. The root is args.
func (r *fileRun) pluginCommandMZ(at domain.Path, c command) bool {
	if len(c.params) < 4 {
		return false
	}
	plugin, _ := c.str(0)
	function, _ := c.str(1)

	changed := false
	for _, ptp := range r.p.cfg.ParametersToPatch {
		if ptp.Plugin != plugin || ptp.Function != function {
			continue
		}
		root, err := paramroot.New(ptp.RootType, c.params[3], ptp.FieldDelimiter())
		if err != nil {
			r.skip(join(at, "parameters", "3"), err)
			continue
		}
		if r.applyParameters(join(at, "parameters", "3"), root, ptp) {
			c.params[3] = root.Value()
			changed = true
		}
	}
	return changed
}

// MV: a single command line "Function arg0 arg1". Field 0 is the function.
func (r *fileRun) pluginCommandMV(at domain.Path, c command) bool {
	line, ok := c.str(0)
	if !ok {
		return false
	}
	function, _, _ := strings.Cut(line, " ")

	changed := false
	for _, ptp := range r.p.cfg.ParametersToPatch {
		if ptp.Function != function {
			continue
		}
		root := paramroot.NewDelimited(line, ptp.FieldDelimiter())
		if r.applyParameters(join(at, "parameters", "0"), root, ptp) {
			line = root.Value().(string)
			c.params[0] = line
			changed = true
		}
	}
	return changed
}

// applyParameters resolves, translates, coerces and writes every path of
// ptp. With no paths, every string leaf of the root is translated.
func (r *fileRun) applyParameters(base domain.Path, root paramroot.Root, ptp domain.ParameterToPatch) bool {
	if len(ptp.ParameterPathsToPatch) == 0 {
		_, delimited := root.(*paramroot.Delimited)
		n := root.Rewrite(func(path domain.Path, s string) (string, bool) {
			return r.translate(join(base, path...), s, delimited, reflow.Hints{})
		})
		return n > 0
	}

	changed := false
	for _, pp := range ptp.ParameterPathsToPatch {
		field := join(base, pp.Path...)
		h, err := root.Resolve(pp.Path)
		if err != nil {
			r.skip(field, err)
			continue
		}

		text := coerce.Text(h.Value)
		tr, hit := r.lookup(field, text)
		if !hit {
			if pp.Type != domain.TypeStringArray || !r.anyElementHit(field, text, pp.Delimiter) {
				continue
			}
			tr = text
		}
		if hit && pp.Wrap {
			tr = r.reflow(tr, reflow.Hints{})
		}

		v, err := coerce.Value(tr, pp.Type, coerce.Options{
			Original:  h.Value,
			Delimiter: pp.Delimiter,
			Lookup:    func(s string) (string, bool) { return r.lookup(field, s) },
		})
		if err != nil {
			r.skip(field, err)
			continue
		}

		out := coerce.Text(v)
		if out == text {
			continue
		}
		if err := root.Write(h, v); err != nil {
			r.skip(field, err)
			continue
		}
		r.record(field, text, out)
		changed = true
	}
	return changed
}

// anyElementHit reports whether a string-array would translate at least one
// element, so untouched arrays are left byte-identical.
func (r *fileRun) anyElementHit(field domain.Path, text, delim string) bool {
	hit := false
	_, _ = coerce.Value(text, domain.TypeStringArray, coerce.Options{
		Delimiter: delim,
		Lookup: func(s string) (string, bool) {
			if tr, ok := r.lookup(field, s); ok && tr != s {
				hit = true
			}
			return s, false
		},
	})
	return hit
}
