package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/swantron/opmix/internal/workload"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "opmix.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Params() != workload.DefaultParams() {
		t.Errorf("expected default params %+v, got %+v", workload.DefaultParams(), cfg.Params())
	}
	if cfg.Output != "text" {
		t.Errorf("expected Output=text, got %s", cfg.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `size: 1024
rows: 3
factor: 1.5
tolerance: 0.001
output: json
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Size != 1024 || cfg.Rows != 3 {
		t.Errorf("expected size=1024 rows=3, got size=%d rows=%d", cfg.Size, cfg.Rows)
	}
	// Unset fields keep their defaults
	if cfg.Passes != workload.DefaultPasses {
		t.Errorf("expected Passes=%d, got %d", workload.DefaultPasses, cfg.Passes)
	}
	if cfg.Factor != 1.5 {
		t.Errorf("expected Factor=1.5, got %v", cfg.Factor)
	}
	if cfg.Output != "json" {
		t.Errorf("expected Output=json, got %s", cfg.Output)
	}
	level, err := cfg.Level()
	if err != nil || level != zapcore.DebugLevel {
		t.Errorf("expected debug level, got %v (err %v)", level, err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "size: [not, a, number\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadInvalidParams(t *testing.T) {
	path := writeConfig(t, "size: 10\n")
	_, err := Load(path)
	if !errors.Is(err, workload.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative tolerance", func(c *Config) { c.Tolerance = -1 }},
		{"negative max mismatches", func(c *Config) { c.MaxMismatches = -1 }},
		{"unknown output", func(c *Config) { c.Output = "xml" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "chatty" }},
		{"bad rows", func(c *Config) { c.Rows = 0 }},
		{"empty technology", func(c *Config) { c.Technology = "" }},
		{"zero datawidth", func(c *Config) { c.DataWidth = 0 }},
		{"empty device type", func(c *Config) { c.DeviceType = "" }},
		{"negative clock", func(c *Config) { c.ClockMHz = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadSystemAttributes(t *testing.T) {
	path := writeConfig(t, `technology: 22nm
datawidth: 64
device_type: hp
clock_mhz: 2000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	sys := cfg.System()
	if sys.Technology != "22nm" || sys.DataWidth != 64 {
		t.Errorf("expected 22nm/64, got %s/%d", sys.Technology, sys.DataWidth)
	}
	if sys.DeviceType != "hp" || sys.ClockMHz != 2000 {
		t.Errorf("expected hp/2000, got %s/%d", sys.DeviceType, sys.ClockMHz)
	}
	// Workload shape keeps its defaults
	if cfg.Params() != workload.DefaultParams() {
		t.Errorf("expected default params, got %+v", cfg.Params())
	}
}
