// Package gate checks a bundle's config.json against the schema versions the
// engine understands and turns it into a run plan.
package gate

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
	"golang.org/x/text/language"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/patcher"
	"github.com/vovakirdan/mzpatch/internal/reflow"
	"github.com/vovakirdan/mzpatch/internal/registry"
)

// Schema versions.
const (
	MinVersion = 1
	MaxVersion = 3
)

// Credits corners accepted by creditsLocation.
var CreditsLocations = []string{"bottom_left", "bottom_right", "top_left", "top_right"}

// Plan is a checked config and everything derived from it.
type Plan struct {
	// Config is a normalized copy; the caller's value is not modified.
	Config  *domain.Config
	Passes  []registry.Pass
	Plugins []patcher.PluginPlan
}

// PassIDs returns the IDs of the plan's passes in run order.
func (p *Plan) PassIDs() []string {
	ids := make([]string, 0, len(p.Passes))
	for _, ps := range p.Passes {
		ids = append(ids, ps.ID)
	}
	return ids
}

// Has reports whether the plan runs the pass id.
func (p *Plan) Has(id string) bool {
	return slices.Contains(p.PassIDs(), id)
}

// Check validates cfg and builds a Plan. Any error is fatal: no file may be
// written after a failed check.
func Check(cfg *domain.Config) (*Plan, error) {
	if cfg == nil {
		return nil, domain.Errorf(domain.KindInvalidConfig, "gate: check", "", "config is missing")
	}
	if cfg.Version > MaxVersion {
		return nil, domain.Errorf(domain.KindUnsupportedVersion, "gate: check", "version",
			"version %d is newer than %d", cfg.Version, MaxVersion)
	}

	c := normalize(*cfg)

	if c.Locale != "" {
		if _, err := language.Parse(c.Locale); err != nil {
			return nil, domain.E(domain.KindInvalidConfig, "gate: check", "locale", err)
		}
	}
	if c.CreditsLocation != "" && !slices.Contains(CreditsLocations, c.CreditsLocation) {
		return nil, domain.Errorf(domain.KindInvalidConfig, "gate: check", "creditsLocation",
			"unknown corner %q", c.CreditsLocation)
	}
	for i, ptp := range c.ParametersToPatch {
		if ptp.Function == "" {
			return nil, domain.Errorf(domain.KindInvalidConfig, "gate: check",
				fmt.Sprintf("parametersToPatch.%d", i), "function is empty")
		}
	}

	plugins, err := patcher.CompilePlugins(&c)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Config:  &c,
		Passes:  registry.ForVersion(c.Version),
		Plugins: plugins,
	}, nil
}

// normalize fills defaults and turns off every field the declared version
// does not have.
func normalize(c domain.Config) domain.Config {
	if c.Version < MinVersion {
		c.Version = MinVersion
	}
	if c.WrapWidth <= 0 {
		c.WrapWidth = reflow.DefaultWidth
	}

	if c.Version < 2 {
		c.VariablesToPatch = nil
		if len(c.PluginsToPatch) > 0 {
			plugins := make([]domain.PluginToPatch, len(c.PluginsToPatch))
			copy(plugins, c.PluginsToPatch)
			for i := range plugins {
				plugins[i].ParametersPatchScript = ""
			}
			c.PluginsToPatch = plugins
		}
	}
	if c.Version < 3 {
		c.DynamicWrapWidth = false
		c.Locale = ""
		c.CreditsLocation = ""
	}
	return c
}

// Probe reads the version of a raw config.json without decoding the rest,
// so an unsupported bundle is rejected before its body is parsed.
func Probe(raw []byte) (int, error) {
	if !gjson.ValidBytes(raw) {
		return 0, domain.Errorf(domain.KindInvalidConfig, "gate: probe", "config.json", "not valid JSON")
	}
	v := gjson.GetBytes(raw, "version")
	if !v.Exists() {
		return MinVersion, nil
	}
	if v.Type != gjson.Number {
		return 0, domain.Errorf(domain.KindInvalidConfig, "gate: probe", "version", "version is not a number")
	}
	n := int(v.Int())
	if n > MaxVersion {
		return n, domain.Errorf(domain.KindUnsupportedVersion, "gate: probe", "version",
			"version %d is newer than %d", n, MaxVersion)
	}
	return n, nil
}
