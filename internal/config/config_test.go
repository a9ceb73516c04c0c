package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "server:\n  port: 9000\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Policy.MaxBytes != 10*1024*1024 {
		t.Fatalf("maxBytes default = %d", cfg.Policy.MaxBytes)
	}
	if len(cfg.Policy.AllowedFormats) != 3 {
		t.Fatalf("allowedFormats default = %v", cfg.Policy.AllowedFormats)
	}
	if cfg.Provider.Mode != "mock" {
		t.Fatalf("provider mode default = %q", cfg.Provider.Mode)
	}
	if cfg.ProviderTimeout() != 30*time.Second {
		t.Fatalf("timeout default = %s", cfg.ProviderTimeout())
	}
	if cfg.Server.RateLimit != 60 {
		t.Fatalf("rate limit default = %d", cfg.Server.RateLimit)
	}
}

func TestLoadFullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
server:
  port: 8080
  rateLimit: 10
policy:
  allowedFormats: [jpg]
  maxBytes: 1048576
provider:
  mode: openai
  model: gpt-4o
  timeoutSeconds: 10
minio:
  enabled: true
  endpoint: localhost:9000
  bucketName: previews
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider.Mode != "openai" || cfg.Provider.Model != "gpt-4o" {
		t.Fatalf("provider = %+v", cfg.Provider)
	}
	if cfg.Policy.MaxBytes != 1048576 || len(cfg.Policy.AllowedFormats) != 1 {
		t.Fatalf("policy = %+v", cfg.Policy)
	}
	if !cfg.Minio.Enabled || cfg.Minio.BucketName != "previews" {
		t.Fatalf("minio = %+v", cfg.Minio)
	}
}

func TestLoadRejectsUnknownProviderMode(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeConfig(t, "provider:\n  mode: quantum\n")); err == nil {
		t.Fatalf("expected error for unknown provider mode")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Server.Port != 8000 || cfg.Provider.Mode != "mock" {
		t.Fatalf("defaults = %+v", cfg)
	}
}
