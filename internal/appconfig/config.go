package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/workbench/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int           `mapstructure:"config_version" yaml:"config_version"`
	StateDir      string        `mapstructure:"state_dir" yaml:"state_dir"`
	Layout        LayoutConfig  `mapstructure:"layout" yaml:"layout"`
	Preview       PreviewConfig `mapstructure:"preview" yaml:"preview"`
	Surface       SurfaceConfig `mapstructure:"surface" yaml:"surface"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// LayoutConfig configures the shell layout.
type LayoutConfig struct {
	DefaultGroup string `mapstructure:"default_group" yaml:"default_group"`
	Persist      bool   `mapstructure:"persist" yaml:"persist"`
}

// PreviewConfig controls the transient preview surface.
type PreviewConfig struct {
	Disabled bool `mapstructure:"disabled" yaml:"disabled"`
}

// SurfaceConfig controls surface presentation.
type SurfaceConfig struct {
	TitleMax    int    `mapstructure:"title_max" yaml:"title_max"`
	TitleSuffix string `mapstructure:"title_suffix" yaml:"title_suffix"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		StateDir:      filepath.Join(home, ".workbench", "state"),
		Layout: LayoutConfig{
			DefaultGroup: string(schema.DefaultGroupID),
			Persist:      true,
		},
		Preview: PreviewConfig{
			Disabled: false,
		},
		Surface: SurfaceConfig{
			TitleMax:    schema.DefaultTitleMax,
			TitleSuffix: schema.DefaultTitleSuffix,
		},
	}, nil
}

// DefaultConfigPath returns the standard config location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".workbench", "config.yaml"), nil
}

// Workbench converts the application config into workbench settings.
func (c Config) Workbench() schema.WorkbenchConfig {
	return schema.WorkbenchConfig{
		StateDir:       c.StateDir,
		DefaultGroup:   schema.GroupID(c.Layout.DefaultGroup),
		DisablePreview: c.Preview.Disabled,
		TitleMax:       c.Surface.TitleMax,
		TitleSuffix:    c.Surface.TitleSuffix,
	}
}
