package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/pytyper/internal/errors"
)

// Default limits and sizes.
const (
	DefaultStyle         = "verbose"
	DefaultMaxDepth      = 512
	DefaultCacheMaxItems = 256
	DefaultBatchWorkers  = 8
)

// MaxDepthLimit is the fixed nesting limit of the encoding/json decoder
// that validates input.
const MaxDepthLimit = 10000

// Styles lists the accepted output styles.
var Styles = []string{"verbose", "terse"}

// Config represents the complete configuration for pytyper
type Config struct {
	Style  string       `yaml:"style,omitempty" jsonschema:"enum=verbose,enum=terse" jsonschema_description:"Output style: verbose writes Field() wrappers, terse writes plain defaults"`
	Naming NamingConfig `yaml:"naming,omitempty"`
	Types  TypesConfig  `yaml:"types,omitempty"`
	Limits LimitsConfig `yaml:"limits,omitempty"`
	Input  InputConfig  `yaml:"input,omitempty"`
	Output OutputConfig `yaml:"output,omitempty"`
	Cache  CacheConfig  `yaml:"cache,omitempty"`
	Batch  BatchConfig  `yaml:"batch,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// NamingConfig controls class naming
type NamingConfig struct {
	PascalCaseClasses bool `yaml:"pascal_case_classes,omitempty" jsonschema_description:"Convert class names to PascalCase instead of only capitalizing the first letter"`
}

// TypesConfig controls type inference
type TypesConfig struct {
	DetectIntegers bool `yaml:"detect_integers,omitempty" jsonschema_description:"Emit int for number literals without a fraction or exponent"`
}

// LimitsConfig bounds the work done for a single document
type LimitsConfig struct {
	MaxDepth int `yaml:"max_depth,omitempty" jsonschema:"minimum=1,maximum=10000" jsonschema_description:"Deepest nesting accepted before failing"`
}

// InputConfig controls how input text is read
type InputConfig struct {
	Repair bool   `yaml:"repair,omitempty" jsonschema_description:"Try to repair malformed JSON before failing"`
	Select string `yaml:"select,omitempty" jsonschema_description:"jq path expression selecting the part of the document to convert"`
}

// OutputConfig controls output generation options
type OutputConfig struct {
	FileHeader string `yaml:"file_header,omitempty" jsonschema_description:"Text written as a comment block above the generated code"`
}

// CacheConfig sizes the conversion result cache
type CacheConfig struct {
	MaxItems int `yaml:"max_items,omitempty" jsonschema:"minimum=1" jsonschema_description:"Number of conversion results kept in memory"`
}

// BatchConfig controls batch conversion
type BatchConfig struct {
	Workers int `yaml:"workers,omitempty" jsonschema:"minimum=1" jsonschema_description:"Files converted in parallel"`
}

// LogConfig controls logging
type LogConfig struct {
	Level      string `yaml:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	File       string `yaml:"file,omitempty" jsonschema_description:"Log file path; empty logs to stderr"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
	MaxAgeDays int    `yaml:"max_age_days,omitempty"`
	Compress   bool   `yaml:"compress,omitempty"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Style: DefaultStyle,
		Limits: LimitsConfig{
			MaxDepth: DefaultMaxDepth,
		},
		Cache: CacheConfig{
			MaxItems: DefaultCacheMaxItems,
		},
		Batch: BatchConfig{
			Workers: DefaultBatchWorkers,
		},
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
			Compress:   true,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError(fmt.Sprintf("failed to read config file '%s'", path), err)
	}
	return ParseConfig(data)
}

// ParseConfig validates YAML config data against the config schema and
// applies it over the defaults.
func ParseConfig(data []byte) (*Config, error) {
	if err := ValidateYAML(data); err != nil {
		return nil, err
	}

	cfg := NewConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewConfigError("failed to parse config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".pytyper.yml", ".pytyper.yaml", "pytyper.yml", "pytyper.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// LoadEnvFile loads a .env file into the process environment if one exists.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return errors.NewConfigError("failed to load .env file", err)
	}
	return nil
}

// ApplyEnv overrides config values from PYTYPER_* environment variables.
func (c *Config) ApplyEnv() {
	c.Style = getEnvString("PYTYPER_STYLE", c.Style)
	c.Naming.PascalCaseClasses = getEnvBool("PYTYPER_PASCAL_CASE_CLASSES", c.Naming.PascalCaseClasses)
	c.Types.DetectIntegers = getEnvBool("PYTYPER_DETECT_INTEGERS", c.Types.DetectIntegers)
	c.Limits.MaxDepth = getEnvInt("PYTYPER_MAX_DEPTH", c.Limits.MaxDepth)
	c.Input.Repair = getEnvBool("PYTYPER_REPAIR", c.Input.Repair)
	c.Input.Select = getEnvString("PYTYPER_SELECT", c.Input.Select)
	c.Cache.MaxItems = getEnvInt("PYTYPER_CACHE_MAX_ITEMS", c.Cache.MaxItems)
	c.Batch.Workers = getEnvInt("PYTYPER_BATCH_WORKERS", c.Batch.Workers)
	c.Log.Level = getEnvString("PYTYPER_LOG_LEVEL", c.Log.Level)
	c.Log.File = getEnvString("PYTYPER_LOG_FILE", c.Log.File)
}

// Validate checks values the schema cannot express, and values set from
// the environment or flags after the file was validated.
func (c *Config) Validate() error {
	if !IsValidStyle(c.Style) {
		return errors.NewConfigError(fmt.Sprintf("unknown style '%s' (want one of %s)", c.Style, strings.Join(Styles, ", ")), errors.ErrInvalidStyle)
	}
	if c.Limits.MaxDepth < 1 || c.Limits.MaxDepth > MaxDepthLimit {
		return errors.NewConfigError(fmt.Sprintf("limits.max_depth must be between 1 and %d, got %d", MaxDepthLimit, c.Limits.MaxDepth), nil)
	}
	if c.Cache.MaxItems < 1 {
		return errors.NewConfigError(fmt.Sprintf("cache.max_items must be at least 1, got %d", c.Cache.MaxItems), nil)
	}
	if c.Batch.Workers < 1 {
		return errors.NewConfigError(fmt.Sprintf("batch.workers must be at least 1, got %d", c.Batch.Workers), nil)
	}
	return nil
}

// IsValidStyle reports whether s names an output style.
func IsValidStyle(s string) bool {
	for _, style := range Styles {
		if s == style {
			return true
		}
	}
	return false
}

// LoadConfigWithCLI loads config with CLI argument precedence: defaults,
// then the config file, then the environment, then non-empty CLI values.
func LoadConfigWithCLI(configPath, cliStyle string) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.ApplyEnv()

	if cliStyle != "" {
		cfg.Style = cliStyle
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
