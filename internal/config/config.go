// Package config provides YAML configuration loading with validation,
// environment variable substitution and environment overrides for the echo
// service.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	SOAP    SOAPConfig    `yaml:"soap" json:"soap"`
	CORS    CORSConfig    `yaml:"cors" json:"cors"`
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Admin   AdminConfig   `yaml:"admin" json:"admin"`

	// Warnings holds non-fatal config issues detected during loading.
	// Stored on the Config itself (not a package-level var) so it is
	// safe to call Load concurrently from the hot-reload goroutine.
	Warnings []string `yaml:"-" json:"-"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host" json:"host"`
	Port            int           `yaml:"port" json:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" json:"max_body_bytes"`
	TLS             TLSConfig     `yaml:"tls" json:"tls"`
}

// TLSConfig enables HTTPS when both files are set. The pair is reloaded
// whenever either file changes on disk.
type TLSConfig struct {
	CertFile string `yaml:"cert_file" json:"cert_file"`
	KeyFile  string `yaml:"key_file" json:"key_file"`
}

// Enabled reports whether the server should terminate TLS.
func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SOAPConfig holds SOAP contract settings.
type SOAPConfig struct {
	// PublicAddress is the base URL clients use to reach the service, e.g.
	// "https://echo.example.com". Empty means http://{host}:{port}.
	PublicAddress string `yaml:"public_address" json:"public_address"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
// Enabled defaults to true; set to false to disable metrics.
type MetricsConfig struct {
	Enabled *bool  `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

// IsEnabled returns whether metrics are enabled (defaults to true).
func (m MetricsConfig) IsEnabled() bool {
	if m.Enabled == nil {
		return true
	}
	return *m.Enabled
}

// LoggingConfig holds log level, format and output settings.
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`               // "debug", "info", "warn", "error"; default: "info"
	Format     string `yaml:"format" json:"format"`             // "json" or "text"; default: "json"
	Output     string `yaml:"output" json:"output"`             // "stdout", "stderr", or file path; default: "stdout"
	MaxSizeMB  int    `yaml:"max_size_mb" json:"max_size_mb"`   // max log file size before rotation; default: 100
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`   // number of rotated files to keep; default: 3
	MaxAgeDays int    `yaml:"max_age_days" json:"max_age_days"` // max days to retain rotated files; default: 30
}

// AdminConfig holds the runtime inspection endpoints under /admin. They are
// off by default and only answer clients inside Allowlist.
type AdminConfig struct {
	Enabled   bool     `yaml:"enabled" json:"enabled"`
	Allowlist []string `yaml:"allowlist" json:"allowlist"`
}

// IsFile reports whether logs go to a rotating file.
func (l LoggingConfig) IsFile() bool {
	return l.Output != "stdout" && l.Output != "stderr"
}

// ValidLogLevels are the accepted logging.level strings.
var ValidLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Environment variables that override the file.
const (
	EnvHost     = "HOST"
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
)

// ServiceAddress is the base URL advertised in the WSDL.
func (c *Config) ServiceAddress() string {
	if c.SOAP.PublicAddress != "" {
		return strings.TrimRight(c.SOAP.PublicAddress, "/")
	}
	if c.Server.TLS.Enabled() {
		return "https://" + c.Server.Addr()
	}
	return "http://" + c.Server.Addr()
}

var envVarRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns in s with the corresponding
// environment variable value.
func expandEnvVars(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		key := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return match
	})
}

// Load reads and parses a YAML configuration file. An empty path yields the
// defaults plus environment overrides.
// Warnings are stored on cfg.Warnings (goroutine-safe, no package-level state).
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes, applies environment
// overrides and defaults, and validates the result.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.Warnings = collectWarnings(&cfg)

	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvHost); ok && v != "" {
		cfg.Server.Host = v
	}
	if v, ok := os.LookupEnv(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvPort, v)
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 5080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1048576 // 1 MB
	}

	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Logging defaults
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Level == "warning" {
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 100
	}
	if cfg.Logging.MaxBackups == 0 {
		cfg.Logging.MaxBackups = 3
	}
	if cfg.Logging.MaxAgeDays == 0 {
		cfg.Logging.MaxAgeDays = 30
	}

	if cfg.Admin.Enabled && len(cfg.Admin.Allowlist) == 0 {
		cfg.Admin.Allowlist = []string{"127.0.0.1/32", "::1/128"}
	}
}

// reservedPaths are served by the service itself and cannot host metrics.
var reservedPaths = []string{"/", "/echo", "/health", "/ready", "/admin"}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}

	if (cfg.Server.TLS.CertFile == "") != (cfg.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls: cert_file and key_file must be set together")
	}

	if addr := cfg.SOAP.PublicAddress; addr != "" {
		u, err := url.Parse(addr)
		if err != nil {
			return fmt.Errorf("soap.public_address: invalid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("soap.public_address: scheme must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("soap.public_address: host is required")
		}
		if u.RawQuery != "" || u.Fragment != "" {
			return fmt.Errorf("soap.public_address must not carry a query or fragment")
		}
	}

	if !strings.HasPrefix(cfg.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", cfg.Metrics.Path)
	}
	for _, p := range reservedPaths {
		if cfg.Metrics.Path == p || (p != "/" && strings.HasPrefix(cfg.Metrics.Path, p+"/")) {
			return fmt.Errorf("metrics.path %q collides with a service route", cfg.Metrics.Path)
		}
	}

	// Logging validation
	if !ValidLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.IsFile() && cfg.Logging.MaxSizeMB < 1 {
		return fmt.Errorf("logging.max_size_mb must be positive when output is a file path")
	}

	for _, cidr := range cfg.Admin.Allowlist {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("admin.allowlist: invalid CIDR %q", cidr)
		}
	}

	return nil
}

func collectWarnings(cfg *Config) []string {
	var warnings []string
	if strings.Contains(cfg.SOAP.PublicAddress, "${") {
		warnings = append(warnings, "soap.public_address contains unresolved environment variable")
	}
	if cfg.SOAP.PublicAddress == "" {
		if ip := net.ParseIP(cfg.Server.Host); ip != nil && ip.IsUnspecified() {
			warnings = append(warnings, fmt.Sprintf(
				"soap.public_address is not set; the WSDL advertises %s, which clients cannot reach",
				cfg.ServiceAddress()))
		}
	}
	for _, o := range cfg.CORS.AllowedOrigins {
		if o == "*" && len(cfg.CORS.AllowedOrigins) > 1 {
			warnings = append(warnings, "cors.allowed_origins mixes \"*\" with explicit origins")
			break
		}
	}
	return warnings
}
