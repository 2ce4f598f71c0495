package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultRefresh = 5 * time.Second

// Config holds all configuration for pulse.
type Config struct {
	Refresh   string    `yaml:"refresh"`
	Providers Providers `yaml:"providers"`
}

// Providers lists the configured backends, one entry per instance.
type Providers struct {
	Proxmox []ProxmoxConfig `yaml:"proxmox"`
	Libvirt []LibvirtConfig `yaml:"libvirt"`
	Local   LocalConfig     `yaml:"local"`
}

// ProxmoxConfig describes one Proxmox VE endpoint. The token pair is
// opaque; it is only ever concatenated into an auth header.
type ProxmoxConfig struct {
	Name        string `yaml:"name"`
	Host        string `yaml:"host"`
	User        string `yaml:"user"`
	TokenID     string `yaml:"token_id"`
	TokenSecret string `yaml:"token_secret"`
}

// LibvirtConfig describes one libvirt host.
type LibvirtConfig struct {
	Name string `yaml:"name"`
	URI  string `yaml:"uri"`
}

// LocalConfig enables the local-machine provider.
type LocalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// RefreshInterval parses the refresh setting. Anything unset,
// unparsable or under 1s falls back to the default so a typo cannot
// spin the poll loop.
func (c *Config) RefreshInterval() time.Duration {
	if c.Refresh == "" {
		return DefaultRefresh
	}
	d, err := time.ParseDuration(c.Refresh)
	if err != nil || d < time.Second {
		return DefaultRefresh
	}
	return d
}

// ProviderCount returns the number of configured backend entries.
func (c *Config) ProviderCount() int {
	n := len(c.Providers.Proxmox) + len(c.Providers.Libvirt)
	if c.Providers.Local.Enabled {
		n++
	}
	return n
}

// DefaultPath returns ~/.config/pulse/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "pulse", "config.yaml")
}

// Load reads config from path. A missing file yields defaults (zero
// providers); malformed yaml is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
