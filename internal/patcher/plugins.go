package patcher

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/jsondoc"
	"github.com/vovakirdan/mzpatch/internal/paramroot"
)

// Rule is a compiled PluginReplaceRule.
type Rule struct {
	Match   *regexp.Regexp
	Replace string
}

// PluginPlan is a compiled PluginToPatch.
type PluginPlan struct {
	Plugin string
	Rules  []Rule
	Script *Script
}

// SourcePath returns the plugin's path relative to the js directory.
func (pl PluginPlan) SourcePath() string {
	return "plugins/" + pl.Plugin + ".js"
}

// CompilePlugins compiles every replace rule and parses every parameters
// script of cfg. Any failure is fatal for the whole run.
func CompilePlugins(cfg *domain.Config) ([]PluginPlan, error) {
	plans := make([]PluginPlan, 0, len(cfg.PluginsToPatch))
	for i, ptp := range cfg.PluginsToPatch {
		where := fmt.Sprintf("pluginsToPatch.%d", i)
		if strings.TrimSpace(ptp.Plugin) == "" {
			return nil, domain.Errorf(domain.KindInvalidConfig, "patcher: compile", where, "plugin name is empty")
		}
		if strings.ContainsAny(ptp.Plugin, `/\`) || strings.Contains(ptp.Plugin, "..") {
			return nil, domain.Errorf(domain.KindInvalidConfig, "patcher: compile", where,
				"plugin name %q is not a file name", ptp.Plugin)
		}

		plan := PluginPlan{Plugin: ptp.Plugin}
		for j, rule := range ptp.ReplaceRules {
			re, err := regexp.Compile(rule.Match)
			if err != nil {
				return nil, domain.E(domain.KindRegexCompile, "patcher: compile",
					fmt.Sprintf("%s.replaceRules.%d", where, j), err)
			}
			plan.Rules = append(plan.Rules, Rule{Match: re, Replace: rule.Replace})
		}

		if ptp.ParametersPatchScript != "" {
			s, err := ParseScript(ptp.ParametersPatchScript)
			if err != nil {
				return nil, domain.E(domain.KindInvalidConfig, "patcher: compile",
					where+".parametersPatchScript", err)
			}
			if !s.Empty() {
				plan.Script = s
			}
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// PatchPluginSource applies plan's replace rules to a plugin's source.
// Line endings are normalized to LF first. A rule that matches nothing is
// logged and skipped.
func (p *Patcher) PatchPluginSource(rel string, plan PluginPlan, data []byte) (*Result, error) {
	run := p.newRun(rel)
	if !p.Enabled(PassPluginRules) || len(plan.Rules) == 0 || p.overrides.FileExempt(rel) {
		return run.result(data, false), nil
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	orig := text
	for i, rule := range plan.Rules {
		if !rule.Match.MatchString(text) {
			p.logger.Warn("replace rule matched nothing", "plugin", plan.Plugin, "rule", i, "match", rule.Match.String())
			continue
		}
		text = rule.Match.ReplaceAllString(text, rule.Replace)
		run.record(domain.Path{"replaceRules", strconv.Itoa(i)}, rule.Match.String(), rule.Replace)
	}

	if text == orig {
		return run.result(data, false), nil
	}
	return run.result([]byte(text), true), nil
}

// PatchPluginsJS runs every plan's parameters script against its entry in
// js/plugins.js. Only the patched parameters values change; every other
// byte of the file is kept.
func (p *Patcher) PatchPluginsJS(rel string, data []byte) (*Result, error) {
	run := p.newRun(rel)
	if !p.Enabled(PassPluginScript) || p.overrides.FileExempt(rel) {
		return run.result(data, false), nil
	}

	start := bytes.IndexByte(data, '[')
	end := bytes.LastIndexByte(data, ']')
	if start < 0 || end < start {
		return nil, domain.Errorf(domain.KindIO, "patcher: plugins.js", rel, "no plugin array found")
	}
	arr := append([]byte(nil), data[start:end+1]...)
	if !gjson.ValidBytes(arr) {
		return nil, domain.Errorf(domain.KindIO, "patcher: plugins.js", rel, "plugin array is not valid JSON")
	}

	changed := false
	for _, plan := range p.plugins {
		if plan.Script == nil {
			continue
		}

		idx := pluginIndex(arr, plan.Plugin)
		if idx < 0 {
			p.logger.Warn("plugin not listed in plugins.js", "plugin", plan.Plugin)
			continue
		}
		key := strconv.Itoa(idx) + ".parameters"
		raw := gjson.GetBytes(arr, key)
		if !raw.Exists() {
			continue
		}

		tree, err := jsondoc.Decode([]byte(raw.Raw))
		if err != nil {
			return nil, domain.E(domain.KindIO, "patcher: plugins.js", rel, err)
		}
		root := paramroot.NewStructured(tree)
		if !run.applyScript(domain.Path{plan.Plugin}, plan.Script, root) {
			continue
		}

		enc, err := jsondoc.Encode(root.Value())
		if err != nil {
			return nil, fmt.Errorf("patcher: encode %s parameters: %w", plan.Plugin, err)
		}
		arr, err = sjson.SetRawBytes(arr, key, enc)
		if err != nil {
			return nil, fmt.Errorf("patcher: splice %s parameters: %w", plan.Plugin, err)
		}
		changed = true
	}

	if !changed {
		return run.result(data, false), nil
	}

	out := make([]byte, 0, len(data)+len(arr))
	out = append(out, data[:start]...)
	out = append(out, arr...)
	out = append(out, data[end+1:]...)
	return run.result(out, true), nil
}

// pluginIndex returns the position of the entry named name, or -1.
func pluginIndex(arr []byte, name string) int {
	idx, i := -1, 0
	gjson.ParseBytes(arr).ForEach(func(_, v gjson.Result) bool {
		if v.Get("name").String() == name {
			idx = i
			return false
		}
		i++
		return true
	})
	return idx
}
