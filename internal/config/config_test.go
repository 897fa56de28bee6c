package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv blanks the override variables so the host environment cannot
// leak into a test. Empty values are ignored by the loader.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvHost, EnvPort, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoadFromBytes_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromBytes(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("expected default host 0.0.0.0, got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 5080 {
		t.Errorf("expected default port 5080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxBodyBytes != 1048576 {
		t.Errorf("expected default max_body_bytes 1048576, got %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown_timeout 10s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" || cfg.Logging.Output != "stdout" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !cfg.Metrics.IsEnabled() || cfg.Metrics.Path != "/metrics" {
		t.Errorf("unexpected metrics defaults: enabled=%v path=%q", cfg.Metrics.IsEnabled(), cfg.Metrics.Path)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "*" {
		t.Errorf("expected default CORS origin *, got %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.ServiceAddress() != "http://0.0.0.0:5080" {
		t.Errorf("expected default service address, got %q", cfg.ServiceAddress())
	}
}

func TestLoadFromBytes_FullConfig(t *testing.T) {
	clearEnv(t)
	yaml := []byte(`
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 10s
  write_timeout: 20s
  shutdown_timeout: 5s
  max_body_bytes: 2097152
soap:
  public_address: "https://echo.example.com/"
cors:
  allowed_origins: ["https://app.example.com"]
metrics:
  enabled: false
  path: /internal/metrics
logging:
  level: WARNING
  format: text
  output: /var/log/echoer.log
  max_size_mb: 10
`)
	cfg, err := LoadFromBytes(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("expected addr 127.0.0.1:9090, got %q", cfg.Server.Addr())
	}
	if cfg.Server.WriteTimeout != 20*time.Second {
		t.Errorf("expected write_timeout 20s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.ServiceAddress() != "https://echo.example.com" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.ServiceAddress())
	}
	if cfg.Metrics.IsEnabled() {
		t.Error("expected metrics disabled")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected WARNING normalized to warn, got %q", cfg.Logging.Level)
	}
	if !cfg.Logging.IsFile() {
		t.Error("expected file output")
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", cfg.Warnings)
	}
}

func TestLoadFromBytes_EnvOverrides(t *testing.T) {
	t.Setenv(EnvHost, "10.1.2.3")
	t.Setenv(EnvPort, "6000")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg, err := LoadFromBytes([]byte(`
server:
  host: 127.0.0.1
  port: 9090
logging:
  level: error
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "10.1.2.3" || cfg.Server.Port != 6000 {
		t.Errorf("expected env to override listener, got %s", cfg.Server.Addr())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected env log level debug, got %q", cfg.Logging.Level)
	}
	if cfg.ServiceAddress() != "http://10.1.2.3:6000" {
		t.Errorf("unexpected service address %q", cfg.ServiceAddress())
	}
}

func TestLoadFromBytes_InvalidPortEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPort, "eighty")

	_, err := LoadFromBytes(nil)
	if err == nil || !strings.Contains(err.Error(), "PORT must be an integer") {
		t.Errorf("expected PORT error, got %v", err)
	}
}

func TestLoadFromBytes_EnvVarSubstitution(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEST_ECHO_ADDRESS", "https://from-env.example.com")

	cfg, err := LoadFromBytes([]byte(`
soap:
  public_address: "${TEST_ECHO_ADDRESS}"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SOAP.PublicAddress != "https://from-env.example.com" {
		t.Errorf("expected env-substituted address, got %q", cfg.SOAP.PublicAddress)
	}
}

func TestLoadFromBytes_UnspecifiedHostWarning(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromBytes(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, w := range cfg.Warnings {
		if strings.Contains(w, "soap.public_address is not set") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unreachable-address warning, got %v", cfg.Warnings)
	}

	cfg, err = LoadFromBytes([]byte("server:\n  host: 127.0.0.1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("expected no warnings for a concrete host, got %v", cfg.Warnings)
	}
}

func TestLoadFromBytes_CORSWildcardMixWarning(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromBytes([]byte(`
server:
  host: 127.0.0.1
cors:
  allowed_origins: ["*", "https://a.example.com"]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "cors.allowed_origins") {
		t.Errorf("expected CORS warning, got %v", cfg.Warnings)
	}
}

func TestLoadFromBytes_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "invalid port",
			yaml:    "server:\n  port: 99999\n",
			wantErr: "server.port",
		},
		{
			name:    "negative port",
			yaml:    "server:\n  port: -1\n",
			wantErr: "server.port",
		},
		{
			name:    "negative body limit",
			yaml:    "server:\n  max_body_bytes: -5\n",
			wantErr: "server.max_body_bytes",
		},
		{
			name:    "negative timeout",
			yaml:    "server:\n  read_timeout: -1s\n",
			wantErr: "timeouts",
		},
		{
			name:    "public address scheme",
			yaml:    "soap:\n  public_address: \"ftp://echo.example.com\"\n",
			wantErr: "scheme must be http or https",
		},
		{
			name:    "public address without host",
			yaml:    "soap:\n  public_address: \"http://\"\n",
			wantErr: "host is required",
		},
		{
			name:    "public address with query",
			yaml:    "soap:\n  public_address: \"http://echo.example.com/?x=1\"\n",
			wantErr: "query or fragment",
		},
		{
			name:    "metrics path relative",
			yaml:    "metrics:\n  path: metrics\n",
			wantErr: "metrics.path must start with /",
		},
		{
			name:    "metrics path on echo routes",
			yaml:    "metrics:\n  path: /echo/metrics\n",
			wantErr: "collides",
		},
		{
			name:    "metrics path on health",
			yaml:    "metrics:\n  path: /health\n",
			wantErr: "collides",
		},
		{
			name:    "unknown log level",
			yaml:    "logging:\n  level: verbose\n",
			wantErr: "logging.level",
		},
		{
			name:    "unknown log format",
			yaml:    "logging:\n  format: xml\n",
			wantErr: "logging.format",
		},
		{
			name:    "file output without size",
			yaml:    "logging:\n  output: /tmp/x.log\n  max_size_mb: -1\n",
			wantErr: "logging.max_size_mb",
		},
		{
			name:    "tls cert without key",
			yaml:    "server:\n  tls:\n    cert_file: /tmp/cert.pem\n",
			wantErr: "must be set together",
		},
		{
			name:    "metrics path on admin",
			yaml:    "metrics:\n  path: /admin/metrics\n",
			wantErr: "collides",
		},
		{
			name:    "admin allowlist not a CIDR",
			yaml:    "admin:\n  enabled: true\n  allowlist: [\"10.0.0.1\"]\n",
			wantErr: "admin.allowlist",
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [",
			wantErr: "parsing config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadFromBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 5080 {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)
	content := `
server:
  port: 7070
soap:
  public_address: "http://localhost:7070"
`
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("expected 7070, got %d", cfg.Server.Port)
	}
	if cfg.ServiceAddress() != "http://localhost:7070" {
		t.Errorf("unexpected service address %q", cfg.ServiceAddress())
	}
}

func TestServerConfig_AddrIPv6(t *testing.T) {
	s := ServerConfig{Host: "::1", Port: 5080}
	if got := s.Addr(); got != "[::1]:5080" {
		t.Errorf("Addr() = %q, want [::1]:5080", got)
	}
}

func TestLoadFromBytes_TLSServiceAddress(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromBytes([]byte("server:\n  host: echo.local\n  port: 8443\n  tls:\n    cert_file: c.pem\n    key_file: k.pem\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Server.TLS.Enabled() {
		t.Fatal("expected TLS to be enabled")
	}
	if got := cfg.ServiceAddress(); got != "https://echo.local:8443" {
		t.Errorf("ServiceAddress() = %q", got)
	}
}

func TestLoadFromBytes_AdminDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromBytes([]byte("admin:\n  enabled: true\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Admin.Allowlist) != 2 || cfg.Admin.Allowlist[0] != "127.0.0.1/32" {
		t.Errorf("Allowlist = %v, want loopback defaults", cfg.Admin.Allowlist)
	}

	cfg, err = LoadFromBytes(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Admin.Enabled || len(cfg.Admin.Allowlist) != 0 {
		t.Errorf("admin should be disabled with no allowlist by default: %+v", cfg.Admin)
	}
}
