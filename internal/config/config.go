package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"projcat/internal/cerrors"
	"projcat/internal/paths"
	"projcat/internal/rules"
)

// Config represents the complete projcat configuration
type Config struct {
	Version     int           `json:"version" mapstructure:"version"`
	CatalogPath string        `json:"catalogPath" mapstructure:"catalogPath"`
	Scan        ScanConfig    `json:"scan" mapstructure:"scan"`
	Search      SearchConfig  `json:"search" mapstructure:"search"`
	Logging     LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScanConfig contains scan rule configuration
type ScanConfig struct {
	Roots      []string `json:"roots" mapstructure:"roots"`
	Indicators []string `json:"indicators" mapstructure:"indicators"`
	Exclusions []string `json:"exclusions" mapstructure:"exclusions"`
	MaxDepth   int      `json:"maxDepth" mapstructure:"maxDepth"`
}

// SearchConfig contains search behavior configuration
type SearchConfig struct {
	Limit int `json:"limit" mapstructure:"limit"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Scan: ScanConfig{
			Roots:      []string{"~"},
			Indicators: rules.DefaultIndicators(),
			Exclusions: rules.DefaultExclusions(),
			MaxDepth:   rules.DefaultMaxDepth,
		},
		Search: SearchConfig{
			Limit: 20,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <home>/config.json, falling back to
// defaults when no config file exists
func Load() (*Config, error) {
	home, err := paths.Home()
	if err != nil {
		return nil, cerrors.New(cerrors.ConfigInvalid, "cannot resolve home directory", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(home)

	if err := v.ReadInConfig(); err != nil {
		// If config doesn't exist, return default config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, cerrors.New(cerrors.ConfigInvalid, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, cerrors.New(cerrors.ConfigInvalid, "failed to parse config file", err)
	}

	return cfg, nil
}

// rulesFile is the shape of an external YAML rule set
type rulesFile struct {
	Indicators []string `yaml:"indicators"`
	Exclusions []string `yaml:"exclusions"`
	MaxDepth   *int     `yaml:"max_depth"`
}

// ApplyRulesFile overlays an external YAML rule set onto the scan
// configuration. Present keys replace the corresponding lists wholesale;
// absent keys keep their current values.
func (c *Config) ApplyRulesFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return cerrors.New(cerrors.ConfigInvalid, "cannot read rules file "+path, err)
	}

	var rf rulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return cerrors.New(cerrors.ConfigInvalid, "invalid rules file "+path, err)
	}

	if rf.Indicators != nil {
		c.Scan.Indicators = rf.Indicators
	}
	if rf.Exclusions != nil {
		c.Scan.Exclusions = rf.Exclusions
	}
	if rf.MaxDepth != nil {
		c.Scan.MaxDepth = *rf.MaxDepth
	}
	return nil
}

// Rules compiles the scan configuration into a rule set, validating all
// patterns in the process
func (c *Config) Rules() (*rules.Config, error) {
	return rules.NewConfig(c.Scan.Indicators, c.Scan.Exclusions, c.Scan.MaxDepth)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.Rules(); err != nil {
		return err
	}
	if c.Search.Limit < 0 {
		return cerrors.New(cerrors.ConfigInvalid, "search limit cannot be negative", nil)
	}
	return nil
}

// ResolveCatalogPath picks the catalog database location.
// Precedence: --db flag, PROJCAT_DB environment variable, config file,
// then the default under the projcat home.
func (c *Config) ResolveCatalogPath(flagValue string) (string, error) {
	if flagValue != "" {
		return paths.Canonicalize(flagValue)
	}
	if env := os.Getenv(paths.CatalogEnvVar); env != "" {
		return paths.Canonicalize(env)
	}
	if c.CatalogPath != "" {
		return paths.Canonicalize(c.CatalogPath)
	}
	return paths.DefaultCatalogPath()
}

// Save writes the configuration to <home>/config.json
func (c *Config) Save() error {
	home, err := paths.Home()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(home, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(home, "config.json"), data, 0644)
}
