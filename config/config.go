// Package config loads application configuration from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeycumines/go-uiloop/dispatch"
	"github.com/joeycumines/go-uiloop/internal/logx"
	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Log   LogConfig   `yaml:"log" toml:"log"`
	Diag  DiagConfig  `yaml:"diag" toml:"diag"`
	Input InputConfig `yaml:"input" toml:"input"`
	Loop  LoopConfig  `yaml:"loop" toml:"loop"`
}

// LogConfig selects the logging backend.
type LogConfig struct {
	Level   string `yaml:"level" toml:"level"`
	Backend string `yaml:"backend" toml:"backend"`
	Format  string `yaml:"format" toml:"format"`
	// File is appended to, stderr if empty.
	File string `yaml:"file" toml:"file"`
}

// LoopConfig configures the process and its loops.
type LoopConfig struct {
	// IdleTimeout applies to the render loop; negative never idles out.
	IdleTimeout     time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	JoinTimeout     time.Duration `yaml:"join_timeout" toml:"join_timeout"`
	FrameInterval   time.Duration `yaml:"frame_interval" toml:"frame_interval"`
	WorkConcurrency int           `yaml:"work_concurrency" toml:"work_concurrency"`
}

// InputConfig configures event dispatch.
type InputConfig struct {
	KeyTable       string  `yaml:"key_table" toml:"key_table"`
	ClickThreshold float64 `yaml:"click_threshold" toml:"click_threshold"`
	DeviceScale    float64 `yaml:"device_scale" toml:"device_scale"`
}

// DiagConfig configures the diagnostics server.
type DiagConfig struct {
	// Addr is the listen address, disabled if empty.
	Addr string `yaml:"addr" toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:   `info`,
			Backend: logx.BackendStumpy,
			Format:  logx.FormatJSON,
		},
		Loop: LoopConfig{
			IdleTimeout:     -1,
			JoinTimeout:     time.Second,
			FrameInterval:   16600 * time.Microsecond,
			WorkConcurrency: 4,
		},
		Input: InputConfig{
			KeyTable:       `linux`,
			ClickThreshold: dispatch.DefaultClickThreshold,
			DeviceScale:    1,
		},
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnv replaces ${VAR} references with environment values. Undefined
// variables are left as-is.
func expandEnv(b []byte) []byte {
	return envVarPattern.ReplaceAllFunc(b, func(match []byte) []byte {
		name := envVarPattern.FindSubmatch(match)[1]
		if v, ok := os.LookupEnv(string(name)); ok {
			return []byte(v)
		}
		return match
	})
}

// Load reads the file at path, decoding it by extension (.yaml, .yml or
// .toml) over the defaults, then validates the result. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := Default()
	data = expandEnv(data)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case `.yaml`, `.yml`:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case `.toml`:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) != 0 {
			return nil, fmt.Errorf("config: parse %s: unknown key %s", path, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("config: unsupported file type %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field, returning all problems found.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) { errs = append(errs, fmt.Errorf(format, args...)) }

	if _, err := logx.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %w", err)
	}
	if err := logx.CheckBackend(c.Log.Backend, c.Log.Format); err != nil {
		add("log.backend: %w", err)
	}

	if c.Loop.JoinTimeout <= 0 {
		add("loop.join_timeout must be positive")
	}
	if c.Loop.FrameInterval <= 0 {
		add("loop.frame_interval must be positive")
	}
	if c.Loop.WorkConcurrency <= 0 {
		add("loop.work_concurrency must be positive")
	}

	if c.Input.ClickThreshold < 0 || math.IsNaN(c.Input.ClickThreshold) || math.IsInf(c.Input.ClickThreshold, 0) {
		add("input.click_threshold must be a non-negative number")
	}
	if !(c.Input.DeviceScale > 0) || math.IsInf(c.Input.DeviceScale, 0) {
		add("input.device_scale must be positive")
	}
	if _, err := dispatch.KeyTableByName(c.Input.KeyTable); err != nil {
		add("input.key_table: %w", err)
	}

	if c.Diag.Addr != `` {
		if _, _, err := net.SplitHostPort(c.Diag.Addr); err != nil {
			add("diag.addr: %w", err)
		}
	}

	return errors.Join(errs...)
}
