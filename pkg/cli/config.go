package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

const defaultProfileName = "default"

// UserConfig represents ~/.exodash/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile represents a single named configuration profile.
type Profile struct {
	ArchiveURL string `yaml:"archive-url,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
	Limit      int    `yaml:"limit,omitempty"`
	Output     string `yaml:"output,omitempty"`
	Listen     string `yaml:"listen,omitempty"`
}

func newUserConfig() *UserConfig {
	return &UserConfig{
		CurrentProfile: defaultProfileName,
		Profiles:       map[string]Profile{},
	}
}

// ActiveProfile returns the profile named by override, or the current
// profile when override is empty. A missing current profile yields an empty
// profile; a missing override is an error.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	if override != "" {
		p, ok := c.Profiles[override]
		if !ok {
			return Profile{}, fmt.Errorf("profile %q not found", override)
		}
		return p, nil
	}
	return c.Profiles[c.CurrentProfile], nil
}

// ProfileNames returns the profile names in sorted order.
func (c *UserConfig) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigDir returns the path to ~/.exodash/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".exodash"
	}
	return filepath.Join(home, ".exodash")
}

// ConfigPath returns the path to ~/.exodash/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.exodash/config.yaml. A missing file is reported
// with an error wrapping fs.ErrNotExist.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := newUserConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", ConfigPath(), err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	if cfg.CurrentProfile == "" {
		cfg.CurrentProfile = defaultProfileName
	}
	return cfg, nil
}

// loadUserConfigOrEmpty treats a missing config file as an empty one.
func loadUserConfigOrEmpty() (*UserConfig, error) {
	cfg, err := LoadUserConfig()
	if errors.Is(err, fs.ErrNotExist) {
		return newUserConfig(), nil
	}
	return cfg, err
}

// SaveUserConfig writes ~/.exodash/config.yaml.
func SaveUserConfig(cfg *UserConfig) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}
