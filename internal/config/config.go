// Package config loads the batch generation configuration.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultPackage  = "endpoints"
	DefaultManifest = ".rulesgen/manifest.db"
	DefaultFileName = "rulesgen.yaml"
	EnvPrefix       = "RULESGEN"
)

// Config is the batch configuration.
type Config struct {
	// Package is the default Go package name for generated files.
	Package string `mapstructure:"package"`
	// Manifest is the SQLite manifest path; empty disables incremental runs.
	Manifest string `mapstructure:"manifest"`
	// Strict lints every document against the ruleset schema before parsing.
	Strict   bool      `mapstructure:"strict"`
	Services []Service `mapstructure:"services"`
}

// Service is one ruleset to generate.
type Service struct {
	Name       string `mapstructure:"name"`
	RuleSet    string `mapstructure:"ruleset"`
	Tests      string `mapstructure:"tests"`
	Package    string `mapstructure:"package"`
	Output     string `mapstructure:"output"`
	TestOutput string `mapstructure:"test_output"`
}

// Load reads the configuration file at path, applying defaults and
// RULESGEN_ environment overrides. Relative paths in the file are resolved
// against the file's directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("package", DefaultPackage)
	v.SetDefault("manifest", DefaultManifest)
	v.SetDefault("strict", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	base := filepath.Dir(path)
	cfg.Manifest = resolve(base, cfg.Manifest)
	for i := range cfg.Services {
		s := &cfg.Services[i]
		if s.Package == "" {
			s.Package = cfg.Package
		}
		if s.Output == "" {
			s.Output = filepath.Join(s.Name, "endpoints.go")
		}
		if s.TestOutput == "" && s.Tests != "" {
			s.TestOutput = strings.TrimSuffix(s.Output, ".go") + "_test.go"
		}
		s.RuleSet = resolve(base, s.RuleSet)
		s.Tests = resolve(base, s.Tests)
		s.Output = resolve(base, s.Output)
		s.TestOutput = resolve(base, s.TestOutput)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks service names and ruleset paths. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Services) == 0 {
		errs = append(errs, errors.New("no services configured"))
	}
	seen := make(map[string]bool, len(c.Services))
	for i, s := range c.Services {
		switch {
		case s.Name == "":
			errs = append(errs, fmt.Errorf("services[%d]: name is required", i))
		case seen[s.Name]:
			errs = append(errs, fmt.Errorf("services[%d]: duplicate name %q", i, s.Name))
		}
		seen[s.Name] = true
		if s.RuleSet == "" {
			errs = append(errs, fmt.Errorf("services[%d]: ruleset is required", i))
		}
	}
	return errors.Join(errs...)
}

// Service returns the named service.
func (c *Config) Service(name string) (Service, bool) {
	for _, s := range c.Services {
		if s.Name == name {
			return s, true
		}
	}
	return Service{}, false
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
