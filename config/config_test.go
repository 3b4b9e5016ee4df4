package config

import (
	"os"
	"path/filepath"
	"testing"
)

type testConfig struct {
	Auth struct {
		BaseURL string `mapstructure:"base_url"`
		Prefix  string `mapstructure:"prefix"`
		Session struct {
			Backend string `mapstructure:"backend"`
		} `mapstructure:"session"`
	} `mapstructure:"auth"`
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
auth:
  base_url: https://app.example.com
  prefix: /auth
  session:
    backend: redis
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	var cfg testConfig
	if err := Load(&cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Auth.BaseURL != "https://app.example.com" {
		t.Errorf("base_url = %q", cfg.Auth.BaseURL)
	}
	if cfg.Auth.Session.Backend != "redis" {
		t.Errorf("session.backend = %q", cfg.Auth.Session.Backend)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	if err := os.WriteFile(configPath, []byte("auth:\n  prefix: /auth\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("AUTH_PREFIX", "/login")

	var cfg testConfig
	if err := Load(&cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.Prefix != "/login" {
		t.Errorf("prefix = %q, want /login", cfg.Auth.Prefix)
	}
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")

	if err := os.WriteFile(envPath, []byte("AUTH_BASE_URL=https://env.example.com\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	var cfg testConfig
	if err := Load(&cfg, WithEnvFile(envPath)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.BaseURL != "https://env.example.com" {
		t.Errorf("base_url = %q", cfg.Auth.BaseURL)
	}
}

func TestLoadMissingFileSucceeds(t *testing.T) {
	var cfg testConfig
	if err := Load(&cfg, WithConfigFile("/nonexistent/path.yml")); err != nil {
		t.Fatalf("expected Load to succeed with missing file, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverFindsStandardLocations(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/config.yml": true,
		".env":                true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles(LoaderConfig{})
	if files.ConfigFile != "./config/config.yml" {
		t.Errorf("config file = %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("env file = %q", files.EnvFile)
	}
}

func TestResolverPrefersExplicitPaths(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"./config.yml": true}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles(LoaderConfig{ConfigFile: "/etc/authkit/config.yml"})
	if files.ConfigFile != "/etc/authkit/config.yml" {
		t.Errorf("config file = %q", files.ConfigFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	variants := envKeyVariants("AUTH_SESSION_SECURITY_KEY")

	want := map[string]bool{
		"auth_session_security_key": false,
		"auth.session.security.key": false,
		"auth.session_security_key": false,
		"auth.session.security_key": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("variant %q missing from %v", k, variants)
		}
	}
}
