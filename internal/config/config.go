package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const configFile = "config.json"

// ErrCorrupt is returned by Load when the config file exists but cannot be
// parsed. It is never returned for a merely absent file.
var ErrCorrupt = errors.New("config file is corrupt")

// Load reads config from dir (or returns defaults if absent). dir defaults
// to ~/.actl.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".actl")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := &Config{
		Pending:   make(map[string][]PendingAssertion),
		configDir: dir,
	}

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Unknown fields are ignored on purpose: newer versions of the tool may
	// persist fields this version does not know about.
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}

	cfg.configDir = dir
	if cfg.Pending == nil {
		cfg.Pending = make(map[string][]PendingAssertion)
	}

	return cfg, nil
}

// Save writes the config to disk atomically: the JSON is written to a
// sibling temp file and renamed over the target, so a crash mid-write never
// leaves a truncated config behind.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	path := filepath.Join(c.configDir, configFile)
	tmp, err := os.CreateTemp(c.configDir, configFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// SetCredential replaces the stored credential.
func (c *Config) SetCredential(cred Credential) {
	c.Credential = &cred
}

// ClearCredential removes the stored credential. Idempotent.
func (c *Config) ClearCredential() {
	c.Credential = nil
}

// Authenticated reports whether a credential is present and not known to be
// expired. It never performs a network call.
func (c *Config) Authenticated(now time.Time) bool {
	return c.Credential != nil && !c.Credential.Expired(now)
}

// UpsertPending records a pending assertion under project. An existing entry
// with the same (name, constructor args) is replaced rather than duplicated:
// the pending table is last-write-wins per identity.
func (c *Config) UpsertPending(project string, pa PendingAssertion) {
	entries := c.Pending[project]
	for i := range entries {
		if entries[i].sameIdentity(pa) {
			entries[i] = pa
			return
		}
	}
	c.Pending[project] = append(entries, pa)
}

// RemovePending removes the entry with the given selector key from project's
// pending set. Returns false if no such entry exists.
func (c *Config) RemovePending(project, key string) bool {
	entries := c.Pending[project]
	for i := range entries {
		if entries[i].Key() == key {
			c.Pending[project] = append(entries[:i], entries[i+1:]...)
			if len(c.Pending[project]) == 0 {
				delete(c.Pending, project)
			}
			return true
		}
	}
	return false
}

// PendingFor returns the pending assertions recorded under project.
func (c *Config) PendingFor(project string) []PendingAssertion {
	return c.Pending[project]
}
