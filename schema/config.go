package schema

import (
	"errors"
	"os"
	"path/filepath"
)

// WorkbenchConfig defines defaults and limits for the workbench service.
type WorkbenchConfig struct {
	StateDir     string
	DefaultGroup GroupID
	// DisablePreview starts the workbench with the preview feature off.
	DisablePreview bool
	TitleMax       int
	TitleSuffix    string
}

// DefaultTitleMax is the default surface title length limit.
const DefaultTitleMax = 24

// DefaultTitleSuffix marks truncated surface titles.
const DefaultTitleSuffix = "~"

// DefaultGroupID is the main ordered layout group.
const DefaultGroupID = GroupID("main")

// NormalizeWorkbenchConfig applies defaults and validates the config.
func NormalizeWorkbenchConfig(cfg WorkbenchConfig) (WorkbenchConfig, error) {
	if cfg.StateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return WorkbenchConfig{}, err
		}
		cfg.StateDir = filepath.Join(home, ".workbench", "state")
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = DefaultGroupID
	}
	if cfg.TitleMax <= 0 {
		cfg.TitleMax = DefaultTitleMax
	}
	if cfg.TitleSuffix == "" {
		cfg.TitleSuffix = DefaultTitleSuffix
	}
	if cfg.TitleMax <= len(cfg.TitleSuffix) {
		return WorkbenchConfig{}, errors.New("title max must exceed suffix length")
	}
	return cfg, nil
}
