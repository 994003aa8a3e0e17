// Package config handles skillet.toml server configuration.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
)

// HooksDirEnv overrides the configured hooks directory when set.
const HooksDirEnv = "SKILLET_HOOKS_DIR"

// Config is the skillet.toml document.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Hooks  HooksConfig  `toml:"hooks"`
}

// ServerConfig configures the TCP and HTTP listeners.
type ServerConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	HTTPPort   int    `toml:"http_port"`
	Threads    int    `toml:"threads"`
	AuthToken  string `toml:"auth_token"`
	AdminToken string `toml:"admin_token"`
}

// CacheConfig bounds the result cache.
type CacheConfig struct {
	Capacity int `toml:"capacity"`
}

// HooksConfig locates the JavaScript hook directory.
type HooksConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:     "127.0.0.1",
			Port:     8080,
			HTTPPort: 5074,
			Threads:  runtime.GOMAXPROCS(0),
		},
		Cache: CacheConfig{Capacity: 1000},
		Hooks: HooksConfig{Dir: "./hooks"},
	}
}

// Load reads skillet.toml from path, layering it over the defaults. A
// missing file is not an error; the defaults apply. The SKILLET_HOOKS_DIR
// environment variable overrides the hooks directory either way.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	if dir := os.Getenv(HooksDirEnv); dir != "" {
		cfg.Hooks.Dir = dir
	}
	if cfg.Server.Threads <= 0 {
		cfg.Server.Threads = runtime.GOMAXPROCS(0)
	}
	if cfg.Cache.Capacity <= 0 {
		cfg.Cache.Capacity = 1000
	}
	return cfg, nil
}
