package patcher

import (
	"fmt"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
	"github.com/vovakirdan/mzpatch/internal/reflow"
)

// PatchData rewrites one data/*.json file. rel is the game-relative path,
// used for selectors and field schema matching. Files the schema does not
// know, and files exempted as a whole, come back unchanged.
func (p *Patcher) PatchData(rel string, data []byte) (*Result, error) {
	run := p.newRun(rel)

	kind, ok := p.fields.KindFor(rel)
	if !ok || p.overrides.FileExempt(rel) {
		return run.result(data, false), nil
	}

	root, err := jsondoc.Decode(data)
	if err != nil {
		return nil, domain.E(domain.KindIO, "patcher: decode", rel, err)
	}

	changed := false
	if p.Enabled(PassDictionary) {
		for _, f := range kind.Fields {
			n := jsondoc.Walk(root, f.Pattern, func(path []string, v any) (any, bool) {
				s, ok := v.(string)
				if !ok {
					return nil, false
				}
				tr, hit := run.translate(path, s, f.Wrap, reflow.Hints{})
				return tr, hit
			})
			changed = changed || n > 0
		}
	}

	for _, pattern := range kind.Events {
		n := jsondoc.Walk(root, pattern, func(path []string, v any) (any, bool) {
			list, ok := v.([]any)
			if !ok {
				return nil, false
			}
			out, hit := run.commands(path, list)
			return out, hit
		})
		changed = changed || n > 0
	}

	if !changed {
		return run.result(data, false), nil
	}

	out, err := jsondoc.Encode(root)
	if err != nil {
		return nil, fmt.Errorf("patcher: encode %s: %w", rel, err)
	}
	return run.result(out, true), nil
}
