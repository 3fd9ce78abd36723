package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "pnvram", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	writeConfigFile(t, `
nvram_file: /tmp/nvram.img
nvram_size: 8192
log_level: debug
log_format: json
server_address: 0.0.0.0:9090
`)

	cfg := LoadConfig()
	if cfg.NVRAMFile != "/tmp/nvram.img" {
		t.Fatalf("nvram_file: got %q", cfg.NVRAMFile)
	}
	if cfg.NVRAMSize == nil || *cfg.NVRAMSize != 8192 {
		t.Fatalf("nvram_size: got %v", cfg.NVRAMSize)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log settings: got %q %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ServerAddress != "0.0.0.0:9090" {
		t.Fatalf("server_address: got %q", cfg.ServerAddress)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := LoadConfig()
	if cfg != (Config{}) {
		t.Fatalf("missing file: got %+v want zero config", cfg)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	writeConfigFile(t, "nvram_file: [not a string\n")

	cfg := LoadConfig()
	if cfg != (Config{}) {
		t.Fatalf("malformed file: got %+v want zero config", cfg)
	}
}
