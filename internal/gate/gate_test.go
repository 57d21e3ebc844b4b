package gate

import (
	"errors"
	"testing"

	"github.com/vovakirdan/mzpatch/internal/domain"
	"github.com/vovakirdan/mzpatch/internal/patcher"
)

func TestCheckVersions(t *testing.T) {
	tests := []struct {
		name        string
		version     int
		wantVersion int
		wantPass    string
		noPass      string
	}{
		{"zero is v1", 0, 1, patcher.PassDictionary, patcher.PassVariables},
		{"v1", 1, 1, patcher.PassPluginRules, patcher.PassPluginScript},
		{"v2", 2, 2, patcher.PassVariables, ""},
		{"v3", 3, 3, patcher.PassPluginScript, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Check(&domain.Config{Version: tt.version})
			if err != nil {
				t.Fatalf("Check() failed: %v", err)
			}
			if plan.Config.Version != tt.wantVersion {
				t.Errorf("version = %d, want %d", plan.Config.Version, tt.wantVersion)
			}
			if !plan.Has(tt.wantPass) {
				t.Errorf("plan %v lacks %s", plan.PassIDs(), tt.wantPass)
			}
			if tt.noPass != "" && plan.Has(tt.noPass) {
				t.Errorf("plan %v has %s", plan.PassIDs(), tt.noPass)
			}
		})
	}
}

func TestCheckRejectsNewerVersion(t *testing.T) {
	_, err := Check(&domain.Config{Version: 4})
	if !errors.Is(err, domain.ErrUnsupportedVersion) {
		t.Fatalf("Check() error = %v, want unsupported version", err)
	}
	if !domain.IsFatal(err) {
		t.Error("unsupported version must be fatal")
	}
}

func TestCheckNormalizes(t *testing.T) {
	cfg := &domain.Config{
		Version:          1,
		DynamicWrapWidth: true,
		Locale:           "ja",
		CreditsLocation:  "top_left",
		VariablesToPatch: []int{1},
		PluginsToPatch: []domain.PluginToPatch{{
			Plugin:                "A",
			ParametersPatchScript: "translateAll: true\n",
		}},
	}
	plan, err := Check(cfg)
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	c := plan.Config
	if c.WrapWidth != 58 {
		t.Errorf("wrapWidth = %d, want 58", c.WrapWidth)
	}
	if c.DynamicWrapWidth || c.Locale != "" || c.CreditsLocation != "" {
		t.Errorf("v3 fields kept in a v1 config: %+v", c)
	}
	if c.VariablesToPatch != nil || c.PluginsToPatch[0].ParametersPatchScript != "" {
		t.Errorf("v2 fields kept in a v1 config: %+v", c)
	}
	if plan.Plugins[0].Script != nil {
		t.Error("script compiled for a v1 config")
	}
	if cfg.PluginsToPatch[0].ParametersPatchScript == "" || !cfg.DynamicWrapWidth {
		t.Error("Check() modified the caller's config")
	}
}

func TestCheckKeepsV3Fields(t *testing.T) {
	plan, err := Check(&domain.Config{Version: 3, WrapWidth: 40, DynamicWrapWidth: true, Locale: "ja-JP", CreditsLocation: "bottom_right"})
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	c := plan.Config
	if c.WrapWidth != 40 || !c.DynamicWrapWidth || c.Locale != "ja-JP" || c.CreditsLocation != "bottom_right" {
		t.Errorf("config = %+v", c)
	}
}

func TestCheckInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  *domain.Config
		want error
	}{
		{"nil", nil, domain.ErrInvalidConfig},
		{"bad regex", &domain.Config{Version: 1, PluginsToPatch: []domain.PluginToPatch{{
			Plugin: "A", ReplaceRules: []domain.PluginReplaceRule{{Match: "[a-"}},
		}}}, domain.ErrRegexCompile},
		{"bad corner", &domain.Config{Version: 3, CreditsLocation: "middle"}, domain.ErrInvalidConfig},
		{"bad locale", &domain.Config{Version: 3, Locale: "not a tag!"}, domain.ErrInvalidConfig},
		{"no function", &domain.Config{Version: 1, ParametersToPatch: []domain.ParameterToPatch{{Plugin: "A"}}}, domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Check(tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("Check() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr error
	}{
		{`{"version":2,"wrapWidth":50}`, 2, nil},
		{`{"wrapWidth":50}`, 1, nil},
		{`{"version":9}`, 9, domain.ErrUnsupportedVersion},
		{`{"version":"2"}`, 0, domain.ErrInvalidConfig},
		{`{"version":`, 0, domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		got, err := Probe([]byte(tt.raw))
		if tt.wantErr == nil && err != nil {
			t.Errorf("Probe(%s) failed: %v", tt.raw, err)
			continue
		}
		if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
			t.Errorf("Probe(%s) error = %v, want %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Probe(%s) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}
