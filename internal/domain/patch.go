package domain

// Value types accepted by ParameterPathToPatch.Type.
const (
	TypeString      = "string"
	TypeNumber      = "number"
	TypeBoolean     = "boolean"
	TypeStringArray = "string-array"
)

// Root types accepted by ParameterToPatch.RootType.
const (
	RootObject     = "object"
	RootArray      = "array"
	RootStructured = "structured"
	RootString     = "string"
	RootDelimited  = "delimited"
)

// Dictionary maps source text to its translation.
// Lookups are exact: keys are compared byte for byte.
type Dictionary map[string]string

// Lookup returns the translation for text, if any.
func (d Dictionary) Lookup(text string) (string, bool) {
	if d == nil {
		return "", false
	}
	t, ok := d[text]
	return t, ok
}

// PatchInfo is a resolved patch bundle ready to be applied.
type PatchInfo struct {
	PatchPath     string     `json:"patchPath"`
	Dictionary    Dictionary `json:"dictionary"`
	Overrides     []string   `json:"overrides"`
	OverrideFiles []string   `json:"overrideFiles,omitempty"`
	Credits       string     `json:"credits,omitempty"`
	Config        *Config    `json:"config"`
}

// Config is the structural part of a patch bundle (config.json).
type Config struct {
	Version           int                `json:"version" jsonschema:"description=Schema generation of this file"`
	WrapWidth         int                `json:"wrapWidth,omitempty" jsonschema:"description=Glyph-width budget per line"`
	DynamicWrapWidth  bool               `json:"dynamicWrapWidth,omitempty"`
	Locale            string             `json:"locale,omitempty" jsonschema:"description=BCP-47 tag selecting the glyph-width table"`
	CreditsLocation   string             `json:"creditsLocation,omitempty" jsonschema:"enum=bottom_left,enum=bottom_right,enum=top_left,enum=top_right"`
	VariablesToPatch  []int              `json:"variablesToPatch,omitempty"`
	ParametersToPatch []ParameterToPatch `json:"parametersToPatch,omitempty"`
	PluginsToPatch    []PluginToPatch    `json:"pluginsToPatch,omitempty"`
}

// PatchesVariables reports whether any id in [start, end] is listed in
// VariablesToPatch.
func (c *Config) PatchesVariables(start, end int) bool {
	if end < start {
		end = start
	}
	for _, v := range c.VariablesToPatch {
		if v >= start && v <= end {
			return true
		}
	}
	return false
}

// ParameterToPatch targets the parameters of one plugin command.
type ParameterToPatch struct {
	Plugin                string                 `json:"plugin"`
	Function              string                 `json:"function"`
	RootType              string                 `json:"rootType"`
	Delimiter             *string                `json:"delimiter,omitempty"`
	ParameterPathsToPatch []ParameterPathToPatch `json:"parameterPathsToPatch,omitempty"`
}

// FieldDelimiter returns the delimiter of a delimited root. An absent
// delimiter means a single space; an explicit "" keeps the string whole.
func (p ParameterToPatch) FieldDelimiter() string {
	if p.Delimiter == nil {
		return " "
	}
	return *p.Delimiter
}

// ParameterPathToPatch selects one leaf under a parameter root.
type ParameterPathToPatch struct {
	Path      Path   `json:"path"`
	Type      string `json:"type,omitempty"`
	Wrap      bool   `json:"wrap,omitempty"`
	Delimiter string `json:"delimiter,omitempty"`
}

// PluginToPatch describes the rewrites applied to one plugin.
type PluginToPatch struct {
	Plugin                string              `json:"plugin"`
	ParametersPatchScript string              `json:"parametersPatchScript,omitempty"`
	ReplaceRules          []PluginReplaceRule `json:"replaceRules,omitempty"`
}

// PluginReplaceRule is a regex rewrite of a plugin's source text.
type PluginReplaceRule struct {
	Match   string `json:"match"`
	Replace string `json:"replace"`
}
