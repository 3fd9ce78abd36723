package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the pnvram configuration file
// (~/.config/pnvram/config.yaml). Values act as defaults and never
// override flags set on the command line.
type Config struct {
	NVRAMFile string `yaml:"nvram_file"`
	NVRAMSize *int64 `yaml:"nvram_size"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pnvram", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or cannot be parsed.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyConfig layers config file defaults under flags the user did not set.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.NVRAMFile != "" && !c.IsSet("nvram-file") {
		nvramFile = cfg.NVRAMFile
	}
	if cfg.NVRAMSize != nil && !c.IsSet("nvram-size") {
		nvramSize = *cfg.NVRAMSize
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
