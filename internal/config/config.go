package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/swantron/opmix/internal/opcount"
	"github.com/swantron/opmix/internal/verify"
	"github.com/swantron/opmix/internal/workload"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Output formats understood by the report package
var OutputFormats = []string{"text", "json", "markdown", "yaml"}

// Config holds all opmix settings
type Config struct {
	// Workload shape
	Size   int     `yaml:"size"`
	Rows   int     `yaml:"rows"`
	Passes int     `yaml:"passes"`
	Factor float32 `yaml:"factor"`

	// Tolerance gates the float deviation in verify; zero disables the gate
	Tolerance float64 `yaml:"tolerance"`
	// MaxMismatches caps reported mismatches per buffer
	MaxMismatches int `yaml:"max_mismatches"`

	// System attributes written at the root of the architecture document
	Technology string `yaml:"technology"`
	DataWidth  int    `yaml:"datawidth"`
	DeviceType string `yaml:"device_type"`
	ClockMHz   int    `yaml:"clock_mhz"`

	Output   string `yaml:"output"`    // text, json, markdown, yaml
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
}

// Default returns the configuration of the canonical workload
func Default() *Config {
	p := workload.DefaultParams()
	return &Config{
		Size:          p.Size,
		Rows:          p.Rows,
		Passes:        p.Passes,
		Factor:        p.Factor,
		MaxMismatches: verify.DefaultMaxMismatches,
		Technology:    "45nm",
		DataWidth:     32,
		DeviceType:    "lp",
		ClockMHz:      1000,
		Output:        "text",
		LogLevel:      "warn",
	}
}

// Load reads a YAML file over the defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Params returns the workload params described by the config
func (c *Config) Params() workload.Params {
	return workload.Params{
		Size:   c.Size,
		Rows:   c.Rows,
		Passes: c.Passes,
		Factor: c.Factor,
	}
}

// System returns the architecture root attributes
func (c *Config) System() opcount.SystemAttributes {
	return opcount.SystemAttributes{
		Technology: c.Technology,
		DataWidth:  c.DataWidth,
		DeviceType: c.DeviceType,
		ClockMHz:   c.ClockMHz,
	}
}

// Level parses LogLevel
func (c *Config) Level() (zapcore.Level, error) {
	return zapcore.ParseLevel(c.LogLevel)
}

// Validate checks every field
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("tolerance cannot be negative: %v", c.Tolerance)
	}
	if c.MaxMismatches < 0 {
		return fmt.Errorf("max_mismatches cannot be negative: %d", c.MaxMismatches)
	}
	if err := c.System().Validate(); err != nil {
		return err
	}
	if !validOutput(c.Output) {
		return fmt.Errorf("unsupported output format: %s (supported: %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

func validOutput(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}
