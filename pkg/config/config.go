// Package config handles the two ambient configuration concerns spec.md
// scopes out of the core's design effort but still requires: committer
// identity from the environment (§6.7) and the small repo-level settings
// file (§6.1's "config"). The settings file is serialized with
// github.com/BurntSushi/toml, the same library dolthub/dolt's noms module
// pulls in for this exact purpose.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrIdentityMissing is returned when either environment variable is unset.
var ErrIdentityMissing = fmt.Errorf("config: PYGIT_AUTHOR_NAME and PYGIT_AUTHOR_EMAIL must both be set")

// Identity is the committer/author name+email pulled from the environment.
type Identity struct {
	Name  string
	Email string
}

// ReadIdentity reads PYGIT_AUTHOR_NAME / PYGIT_AUTHOR_EMAIL. Both must be
// present or the commit operation that calls this fails with
// ErrIdentityMissing (spec.md §6.7/§7).
func ReadIdentity() (Identity, error) {
	name := os.Getenv("PYGIT_AUTHOR_NAME")
	email := os.Getenv("PYGIT_AUTHOR_EMAIL")
	if name == "" || email == "" {
		return Identity{}, ErrIdentityMissing
	}
	return Identity{Name: name, Email: email}, nil
}

// Core holds the small per-repo settings block written at `init` time.
type Core struct {
	Core struct {
		RepositoryFormatVersion int  `toml:"repositoryformatversion"`
		FileMode                bool `toml:"filemode"`
		Bare                    bool `toml:"bare"`
	} `toml:"core"`
	Remote struct {
		DefaultBranch string `toml:"default_branch"`
		Port          int    `toml:"port"`
	} `toml:"remote"`
}

// DefaultCore is written by `init`.
func DefaultCore() Core {
	var c Core
	c.Core.RepositoryFormatVersion = 0
	c.Core.FileMode = true
	c.Core.Bare = false
	c.Remote.DefaultBranch = "master"
	c.Remote.Port = 8471
	return c
}

// Load reads the TOML config file, or returns DefaultCore if absent.
func Load(path string) (Core, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCore(), nil
		}
		return Core{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Core
	if err := toml.Unmarshal(data, &c); err != nil {
		return Core{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}

// Save writes the config file via temp+rename, matching the atomicity
// policy used throughout the rest of the repository's on-disk state.
func Save(path string, c Core) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("config: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("config: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("config: rename temp: %w", err)
	}
	return nil
}
