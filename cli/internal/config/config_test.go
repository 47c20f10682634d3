package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Sections(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
marketplace:
  environment: ${MARKETPLACE_ENV:prod}
  max_retries: 1
credentials:
  aiMarketplaceApi:
    idToken: ${MARKETPLACE_ID_TOKEN}
server:
  addr: 127.0.0.1:9090
log:
  level: debug
telemetry:
  enabled: false
  service_name: marketplace-test
`)

	cfg, err := Load(path, fakeEnv(map[string]string{"MARKETPLACE_ID_TOKEN": "tok"}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Path != path {
		t.Errorf("expected path %s, got %s", path, cfg.Path)
	}
	if cfg.Marketplace["environment"] != "prod" || cfg.Marketplace["max_retries"] != 1 {
		t.Errorf("unexpected marketplace section %v", cfg.Marketplace)
	}
	if cfg.Credentials["aiMarketplaceApi"]["idToken"] != "tok" {
		t.Errorf("unexpected credentials %v", cfg.Credentials)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log config %+v", cfg.Log)
	}
	if cfg.Telemetry.ServiceName != "marketplace-test" || cfg.Telemetry.Endpoint != "localhost:4317" {
		t.Errorf("unexpected telemetry config %+v", cfg.Telemetry)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", fakeEnv(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("expected empty path, got %s", cfg.Path)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default level info, got %s", cfg.Log.Level)
	}
	if len(cfg.Credentials) != 0 {
		t.Errorf("expected no credentials, got %v", cfg.Credentials)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml"), fakeEnv(nil)); err == nil {
		t.Error("expected error for explicit missing file")
	}

	tests := map[string]string{
		"unset variable":   "credentials:\n  aiMarketplaceApi:\n    idToken: ${UNSET_TOKEN}\n",
		"invalid yaml":     "marketplace: [unclosed\n",
		"bad addr":         "server:\n  addr: not-an-address\n",
		"bad log level":    "log:\n  level: loud\n",
		"credential shape": "credentials:\n  aiMarketplaceApi: token\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), content)
			if _, err := Load(path, fakeEnv(nil)); err == nil {
				t.Errorf("expected error for %s", name)
			}
		})
	}
}

func TestSaveCredential(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeConfig(t, dir, "marketplace:\n  environment: ${MARKETPLACE_ENV:dev}\n")

	err := SaveCredential(DefaultFileName, "aiMarketplaceApi", map[string]any{
		"idToken":      "id",
		"accessToken":  "acc",
		"refreshToken": "ref",
	})
	if err != nil {
		t.Fatalf("SaveCredential failed: %v", err)
	}

	data, err := os.ReadFile(DefaultFileName)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	if !strings.Contains(string(data), "${MARKETPLACE_ENV:dev}") {
		t.Errorf("environment reference was not preserved:\n%s", data)
	}

	cfg, err := Load(DefaultFileName, fakeEnv(nil))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Credentials["aiMarketplaceApi"]["idToken"] != "id" {
		t.Errorf("credential not saved: %v", cfg.Credentials)
	}
	if cfg.Marketplace["environment"] != "dev" {
		t.Errorf("marketplace section lost: %v", cfg.Marketplace)
	}

	info, err := os.Stat(DefaultFileName)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}
}

func TestSaveCredential_OutsideWorkingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	err := SaveCredential("../escape.yaml", "aiMarketplaceApi", map[string]any{"idToken": "id"})
	if err == nil {
		t.Fatal("expected path traversal to be rejected")
	}
}
