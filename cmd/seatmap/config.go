package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envConfig = "SEATMAP_CONFIG"

// Config represents the seatmap configuration file (~/.config/seatmap/config.yaml).
// Empty strings mean "not set"; ScaleOverride is a pointer so an explicit 0
// can be told apart from an absent key.
type Config struct {
	InstallPath string   `yaml:"install_path"`
	DataDirs    []string `yaml:"data_dirs"`
	WorldDB     string   `yaml:"world_db"`
	CacheDB     string   `yaml:"cache_db"`
	CacheCodec  string   `yaml:"cache_codec"`

	// Output
	Format    string `yaml:"format"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Seats
	ScaleOverride *float64 `yaml:"scale_override"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	if p := os.Getenv(envConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "seatmap", "config.yaml")
}

// applyCommonConfig fills provider, world and logging flags the user did
// not set.
func applyCommonConfig(c *cli.Command, cfg Config) {
	if cfg.InstallPath != "" && !c.IsSet("install-path") {
		installPath = cfg.InstallPath
	}
	if len(cfg.DataDirs) > 0 && !c.IsSet("data-dir") {
		dataDirs = cfg.DataDirs
	}
	if cfg.CacheDB != "" && !c.IsSet("cache-db") {
		cacheDB = cfg.CacheDB
	}
	if cfg.CacheCodec != "" && !c.IsSet("cache-codec") {
		cacheCodec = cfg.CacheCodec
	}
	if cfg.WorldDB != "" && !c.IsSet("world-db") {
		worldDB = cfg.WorldDB
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyOutputConfig applies the output format default.
func applyOutputConfig(c *cli.Command, cfg Config, format *string) {
	if cfg.Format != "" && !c.IsSet("format") {
		*format = cfg.Format
	}
}

// applyExtractConfig applies extract command defaults.
func applyExtractConfig(c *cli.Command, cfg Config, format *string, scale *float64) {
	applyOutputConfig(c, cfg, format)
	if cfg.ScaleOverride != nil && !c.IsSet("scale-override") {
		*scale = *cfg.ScaleOverride
	}
}

// applyServeConfig applies serve command defaults.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, scale *float64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.ScaleOverride != nil && !c.IsSet("scale-override") {
		*scale = *cfg.ScaleOverride
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
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
