package config

import (
	"fmt"
	"strings"

	"github.com/ZenLiuCN/sdutils"
	"github.com/ZenLiuCN/sdutils/hotswap"
	"github.com/spf13/viper"
)

// Config drives the sdutils command line.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (SDUTILS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Module  ModuleConfig  `mapstructure:"module"`
	Mount   MountConfig   `mapstructure:"mount"`
	HotSwap HotSwapConfig `mapstructure:"hotswap"`
}

type LoggingConfig struct {
	Debug bool `mapstructure:"debug"`
}

// ModuleConfig selects where the hot swap module comes from.
type ModuleConfig struct {
	// Name the module is acquired by
	Name string `mapstructure:"name" validate:"required"`

	// Source is memory for the in process module, object to link a go object file
	Source string `mapstructure:"source" validate:"required,oneof=memory object"`

	// Object file, only used when Source = "object"
	Object string `mapstructure:"object" validate:"required_if=Source object"`

	// Package path of the object file
	Package string `mapstructure:"package" validate:"required"`
}

type MountConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// HotSwapConfig configures the in process module.
type HotSwapConfig struct {
	Version       uint32   `mapstructure:"version"`
	MaxCallbacks  int      `mapstructure:"max_callbacks" validate:"min=1"`
	HiddenExports []string `mapstructure:"hidden_exports" validate:"dive,oneof=SDUtilsAddAttachHandler SDUtilsRemoveAttachHandler SDUtilsAddCleanUpHandlesHandler SDUtilsRemoveCleanUpHandlesHandler"`
}

// Load reads configPath (empty for none), environment variables and defaults, then validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SDUTILS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.debug", false)
	v.SetDefault("module.name", sdutils.ModuleName)
	v.SetDefault("module.source", "memory")
	v.SetDefault("module.object", "")
	v.SetDefault("module.package", sdutils.ModuleName)
	v.SetDefault("mount.path", sdutils.MountPath)
	v.SetDefault("hotswap.version", uint32(sdutils.VersionCallbacks))
	v.SetDefault("hotswap.max_callbacks", hotswap.DefaultMaxCallbacks)
	v.SetDefault("hotswap.hidden_exports", []string{})
}

// Options of the in process module.
func (c HotSwapConfig) Options() []hotswap.Option {
	return []hotswap.Option{
		hotswap.WithVersion(sdutils.Version(c.Version)),
		hotswap.WithMaxCallbacks(c.MaxCallbacks),
		hotswap.WithoutExports(c.HiddenExports...),
	}
}
