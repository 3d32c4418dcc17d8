package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Load(missing, false, EnvMap{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputDir != "./data" {
		t.Errorf("InputDir = %q, want ./data", cfg.InputDir)
	}
	if cfg.OutputPath() != filepath.Join("data", "output", "processed_transactions.csv") {
		t.Errorf("OutputPath = %q", cfg.OutputPath())
	}
	if cfg.InputExtension != ".tsv" {
		t.Errorf("InputExtension = %q, want .tsv", cfg.InputExtension)
	}
	if !cfg.SimulationMode() {
		t.Error("simulation should default to true")
	}
	if cfg.RPC.Port != 8332 || cfg.RPC.Host != "127.0.0.1" {
		t.Errorf("RPC = %s:%d", cfg.RPC.Host, cfg.RPC.Port)
	}
	if cfg.RPC.Timeout != 10*time.Second {
		t.Errorf("RPC.Timeout = %s", cfg.RPC.Timeout)
	}
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")
	if _, err := Load(missing, true, EnvMap{}); err == nil {
		t.Fatal("expected error for explicit missing config file")
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := writeConfig(t, `
input_dir: /srv/exports
output_dir: /srv/out
output_filename: whales.csv
simulation: false
summary_log: true
rpc:
  host: node.internal
  port: 18332
  user: alice
  password: secret
  timeout: 3s
`)
	cfg, err := Load(path, true, EnvMap{})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputPath() != filepath.Join("/srv/out", "whales.csv") {
		t.Errorf("OutputPath = %q", cfg.OutputPath())
	}
	if cfg.SimulationMode() {
		t.Error("simulation should be false")
	}
	if !cfg.SummaryLog {
		t.Error("summary_log should be true")
	}
	if cfg.RPCURL() != "http://node.internal:18332/" {
		t.Errorf("RPCURL = %q", cfg.RPCURL())
	}
	if cfg.RPC.Timeout != 3*time.Second {
		t.Errorf("RPC.Timeout = %s", cfg.RPC.Timeout)
	}
	if got := cfg.Masked().RPC.Password; got != "********" {
		t.Errorf("masked password = %q", got)
	}
	if cfg.RPC.Password != "secret" {
		t.Error("Masked must not modify the original")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "input_dir: /from/file\nsimulation: true\n")
	env := EnvMap{
		"WHALEWATCH_INPUT_DIR":        "/from/env",
		"WHALEWATCH_SIMULATION":       "false",
		"WHALEWATCH_RPC_PORT":         "9000",
		"WHALEWATCH_RPC_PASSWORD":     "pw",
		"WHALEWATCH_OUTPUT_DIR":       "  ",
		"OTEL_EXPORTER_OTLP_ENDPOINT": "localhost:4318",
	}
	cfg, err := Load(path, true, env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.InputDir != "/from/env" {
		t.Errorf("InputDir = %q", cfg.InputDir)
	}
	if cfg.OutputDir != filepath.Join("/from/env", "output") {
		t.Errorf("blank env value should fall back to default, got %q", cfg.OutputDir)
	}
	if cfg.SimulationMode() {
		t.Error("env should disable simulation")
	}
	if cfg.RPC.Port != 9000 || cfg.RPC.Password != "pw" {
		t.Errorf("RPC = %+v", cfg.RPC)
	}
	if cfg.OtelEndpoint != "localhost:4318" {
		t.Errorf("OtelEndpoint = %q", cfg.OtelEndpoint)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  EnvMap
	}{
		{"bad yaml", "input_dir: [", nil},
		{"nested output filename", "output_filename: sub/out.csv", nil},
		{"port out of range", "rpc:\n  port: 70000", nil},
		{"unknown log level", "log_level: loud", nil},
		{"bad env bool", "", EnvMap{"WHALEWATCH_SIMULATION": "maybe"}},
		{"bad env port", "", EnvMap{"WHALEWATCH_RPC_PORT": "abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			if _, err := Load(path, true, tt.env); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}

	if err := os.WriteFile(path, []byte("WHALEWATCH_TEST_DOTENV=loaded\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WHALEWATCH_TEST_DOTENV", "")
	os.Unsetenv("WHALEWATCH_TEST_DOTENV")
	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("WHALEWATCH_TEST_DOTENV"); got != "loaded" {
		t.Errorf("WHALEWATCH_TEST_DOTENV = %q, want loaded", got)
	}
}

func TestEnsureOutputDir(t *testing.T) {
	cfg := Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "a", "b")
	if err := cfg.EnsureOutputDir(); err != nil {
		t.Fatalf("EnsureOutputDir: %v", err)
	}
	if info, err := os.Stat(cfg.OutputDir); err != nil || !info.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}
}
