// Package config loads tseq settings from defaults, an optional tseq.yaml,
// TSEQ_* environment variables and command-line flags, in increasing order of
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName is the config file base name and config directory name.
	AppName = "tseq"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "TSEQ"
)

// Config holds the resolved settings.
type Config struct {
	Sources struct {
		Dir      string `mapstructure:"dir"`
		Reserved string `mapstructure:"reserved"`
	} `mapstructure:"sources"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"` // console, json
	} `mapstructure:"log"`

	Trace struct {
		File string `mapstructure:"file"`
	} `mapstructure:"trace"`

	Report struct {
		Format string `mapstructure:"format"` // text, md, json
	} `mapstructure:"report"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"dir":        "sources.dir",
	"reserved":   "sources.reserved",
	"log-level":  "log.level",
	"log-format": "log.format",
	"trace":      "trace.file",
	"report":     "report.format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources.dir", ".")
	v.SetDefault("sources.reserved", "test_functions")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("trace.file", "")
	v.SetDefault("report.format", "text")
}

func addSearchPaths(v *viper.Viper) {
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", AppName))
	}
}

// Load resolves the configuration. An explicit path must exist; otherwise a
// missing tseq.yaml is fine. Flags present in flags and named in FlagKeys
// override everything else when set.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		addSearchPaths(v)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Report.Format) {
	case "text", "md", "markdown", "json":
	default:
		return fmt.Errorf("report.format %q: want text, md or json", c.Report.Format)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format %q: want console or json", c.Log.Format)
	}
	return nil
}
