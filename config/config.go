// Package config loads the supervisor configuration from YAML.
//
// The file lives at .pyhost/config.yaml in the working directory. A missing
// file yields the defaults; fields absent from the file keep their default
// values, and roles from the file are merged over the default roles.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Role names used by the desktop shell.
const (
	RoleServer   = "server"
	RoleExecutor = "executor"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var roleNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,62}$`)

// Config is the supervisor configuration.
type Config struct {
	// Interpreter is the executable used when a caller does not pass one.
	Interpreter string `yaml:"interpreter"`
	// WorkingDir is the default working directory for launches.
	WorkingDir string `yaml:"workingDir"`
	// LogDir is the log directory, relative to the working directory unless absolute.
	LogDir string `yaml:"logDir"`
	// Roles maps a role name to the module it runs.
	Roles map[string]Role `yaml:"roles"`
	// Env holds extra KEY=VALUE pairs for background and role launches.
	Env []string `yaml:"env"`
	// LaunchRateLimit caps anonymous background launches per second; 0 disables.
	LaunchRateLimit float64 `yaml:"launchRateLimit"`
	// LaunchBurst is the burst size for LaunchRateLimit.
	LaunchBurst    int           `yaml:"launchBurst"`
	CircuitBreaker BreakerConfig `yaml:"circuitBreaker"`
	Metrics        MetricsConfig `yaml:"metrics"`
	Notifications  bool          `yaml:"notifications"`
	LogLevel       string        `yaml:"logLevel"`
	LogFormat      string        `yaml:"logFormat"`
}

// Role describes a singleton service started with "-m <module>".
type Role struct {
	Module string `yaml:"module"`
}

// Args returns the interpreter arguments that start the role.
func (r Role) Args() []string {
	return []string{"-m", r.Module}
}

// BreakerConfig configures the per-role start circuit breaker.
type BreakerConfig struct {
	Enabled bool `yaml:"enabled"`
	// Failures is the number of consecutive failed starts that opens the breaker.
	Failures int `yaml:"failures"`
	// Timeout is how long the breaker stays open before allowing a trial start.
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Interpreter: "python",
		LogDir:      "log",
		Roles: map[string]Role{
			RoleServer:   {Module: "server"},
			RoleExecutor: {Module: "ss_executor"},
		},
		LaunchBurst: 5,
		CircuitBreaker: BreakerConfig{
			Failures: 3,
			Timeout:  30 * time.Second,
		},
		Metrics: MetricsConfig{
			Port: 9464,
		},
		LogLevel:  "info",
		LogFormat: LogFormatText,
	}
}

// DefaultPath returns the config file location for a working directory.
func DefaultPath(workDir string) string {
	return filepath.Join(workDir, ".pyhost", "config.yaml")
}

// Load reads the config file at path. A missing file returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the supervisor cannot use.
func (c *Config) Validate() error {
	var problems []string

	if c.Interpreter == "" {
		problems = append(problems, "interpreter must not be empty")
	}
	if c.LogDir == "" {
		problems = append(problems, "logDir must not be empty")
	} else if !filepath.IsAbs(c.LogDir) && strings.Contains(filepath.ToSlash(c.LogDir), "..") {
		problems = append(problems, "logDir must not leave the working directory")
	}
	for _, name := range c.RoleNames() {
		if !roleNamePattern.MatchString(name) {
			problems = append(problems, fmt.Sprintf("role %q: invalid name", name))
		}
		if c.Roles[name].Module == "" {
			problems = append(problems, fmt.Sprintf("role %q: module must not be empty", name))
		}
	}
	for _, kv := range c.Env {
		if i := strings.IndexByte(kv, '='); i < 1 {
			problems = append(problems, fmt.Sprintf("env entry %q must be KEY=VALUE", kv))
		}
	}
	if c.LaunchRateLimit < 0 {
		problems = append(problems, "launchRateLimit must not be negative")
	}
	if c.LaunchRateLimit > 0 && c.LaunchBurst < 1 {
		problems = append(problems, "launchBurst must be at least 1 when launchRateLimit is set")
	}
	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.Failures < 1 {
			problems = append(problems, "circuitBreaker.failures must be at least 1")
		}
		if c.CircuitBreaker.Timeout <= 0 {
			problems = append(problems, "circuitBreaker.timeout must be positive")
		}
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		problems = append(problems, fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("logFormat %q must be %q or %q", c.LogFormat, LogFormatText, LogFormatJSON))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// RoleNames returns the configured role names in sorted order.
func (c *Config) RoleNames() []string {
	names := make([]string, 0, len(c.Roles))
	for name := range c.Roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Role returns the role definition for name.
func (c *Config) Role(name string) (Role, bool) {
	r, ok := c.Roles[name]
	return r, ok
}
