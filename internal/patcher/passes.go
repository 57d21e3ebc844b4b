package patcher

import "github.com/vovakirdan/mzpatch/internal/registry"

// Pass IDs handled by this package.
const (
	PassDictionary   = "dictionary"
	PassParameters   = "parameters"
	PassVariables    = "variables"
	PassPluginRules  = "plugin-rules"
	PassPluginScript = "plugin-script"
)

func init() {
	registry.Register(registry.Pass{ID: PassDictionary, Title: "Dictionary substitution", MinVersion: 1, Order: 10})
	registry.Register(registry.Pass{ID: PassParameters, Title: "Plugin command parameters", MinVersion: 1, Order: 20})
	registry.Register(registry.Pass{ID: PassVariables, Title: "Variable initializers", MinVersion: 2, Order: 30})
	registry.Register(registry.Pass{ID: PassPluginRules, Title: "Plugin source replace rules", MinVersion: 1, Order: 40})
	registry.Register(registry.Pass{ID: PassPluginScript, Title: "Plugin parameters script", MinVersion: 2, Order: 50})
}
