package schema

import "testing"

func TestNormalizeWorkbenchConfigDefaults(t *testing.T) {
	cfg, err := NormalizeWorkbenchConfig(WorkbenchConfig{StateDir: t.TempDir()})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.DefaultGroup != DefaultGroupID {
		t.Fatalf("expected default group %q, got %q", DefaultGroupID, cfg.DefaultGroup)
	}
	if cfg.TitleMax != DefaultTitleMax {
		t.Fatalf("expected title max %d, got %d", DefaultTitleMax, cfg.TitleMax)
	}
	if cfg.TitleSuffix == "" {
		t.Fatalf("expected a title suffix default")
	}
	if cfg.DisablePreview {
		t.Fatalf("preview should be enabled by default")
	}
}

func TestNormalizeWorkbenchConfigRejectsShortTitleMax(t *testing.T) {
	_, err := NormalizeWorkbenchConfig(WorkbenchConfig{
		StateDir:    t.TempDir(),
		TitleMax:    2,
		TitleSuffix: "...",
	})
	if err == nil {
		t.Fatalf("expected error for title max shorter than suffix")
	}
}
