// Package scramcfg provides a YAML-backed configuration for the
// cmd/scramauth demo binary, in the style of the teacher's
// pkg/adapter/config/cfg1 package: plain fields with yaml tags, loaded
// and marshaled via gopkg.in/yaml.v3. The core engine itself never
// reads files or environment variables (spec.md §6); this package only
// configures the ambient knobs an operator running the demo CLI might
// want to adjust.
package scramcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the operator-facing knobs for a SCRAM authentication
// attempt.
type Config struct {
	// Source is the default authentication database when a
	// Credentials value omits one. Defaults to "admin" when empty,
	// matching spec.md §3.
	Source string `yaml:"source"`

	// MinIterations is the floor below which a server-proposed
	// iteration count is rejected as weak (spec.md §4.6). It must not
	// be set below 4096; a lower value is corrected up to 4096 on
	// Load, since accepting weaker parameters would violate spec.md's
	// WeakIterations invariant rather than merely being an operator
	// preference.
	MinIterations int `yaml:"minIterations"`

	// CacheCapacity is the SaltedPasswordCache's purge threshold
	// (spec.md §4.4). Defaults to 200 when zero.
	CacheCapacity int `yaml:"cacheCapacity"`
}

// defaultMinIterations mirrors the floor enforced by the conversation
// engine itself (spec.md §4.6).
const defaultMinIterations = 4096

// Default returns the Config a fresh installation should use.
func Default() *Config {
	return &Config{
		Source:        "admin",
		MinIterations: defaultMinIterations,
		CacheCapacity: 200,
	}
}

// Load reads and parses a YAML configuration file at path, filling in
// defaults for zero-valued fields.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parsing %q: %w", path, err)
	}
	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	if c.Source == "" {
		c.Source = "admin"
	}
	if c.MinIterations < defaultMinIterations {
		c.MinIterations = defaultMinIterations
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 200
	}
}

// Marshal serializes c back to YAML, e.g. for writing out a sample
// configuration file.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
