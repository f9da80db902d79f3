// Package remote persists the named-remote table (spec.md §4.8/§6.5),
// generalized from nothing in the teacher (kit has no remote concept) and
// built directly from spec.md, reusing the same yaml.v3 persistence style
// as package index for consistency across the repository's small on-disk
// documents.
package remote

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Table is the name -> url map of configured remotes.
type Table struct {
	Remotes map[string]string `yaml:"remotes"`
	path    string
}

func Open(path string) (*Table, error) {
	t := &Table{Remotes: make(map[string]string), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("remote: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return t, nil
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("remote: parse %s: %w", path, err)
	}
	if t.Remotes == nil {
		t.Remotes = make(map[string]string)
	}
	t.path = path
	return t, nil
}

func (t *Table) Save() error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("remote: marshal: %w", err)
	}
	dir := filepath.Dir(t.path)
	tmp, err := os.CreateTemp(dir, ".remotes-*.tmp")
	if err != nil {
		return fmt.Errorf("remote: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("remote: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, t.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("remote: rename temp: %w", err)
	}
	return nil
}

// ParsedURL is the decomposed "pygit://host:port/repo" shape of §3.8/§6.3.
type ParsedURL struct {
	Host string
	Port string
	Repo string
}

// ParseURL validates and decomposes a remote URL. No auth/TLS is supported
// (non-goal per spec.md §1).
func ParseURL(raw string) (ParsedURL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return ParsedURL{}, fmt.Errorf("remote: parse url %q: %w", raw, err)
	}
	if u.Scheme != "pygit" {
		return ParsedURL{}, fmt.Errorf("remote: url %q must use the pygit:// scheme", raw)
	}
	if u.Host == "" {
		return ParsedURL{}, fmt.Errorf("remote: url %q is missing a host", raw)
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "8471"
	}
	repo := strings.TrimPrefix(u.Path, "/")
	if repo == "" {
		return ParsedURL{}, fmt.Errorf("remote: url %q is missing a repository name", raw)
	}
	return ParsedURL{Host: host, Port: port, Repo: repo}, nil
}

// Add registers a new remote, refusing to silently overwrite an existing
// one with the same name.
func (t *Table) Add(name, rawURL string) error {
	if _, err := ParseURL(rawURL); err != nil {
		return err
	}
	if _, exists := t.Remotes[name]; exists {
		return fmt.Errorf("remote: %q already exists", name)
	}
	t.Remotes[name] = rawURL
	return nil
}

// Remove deletes a remote by name.
func (t *Table) Remove(name string) error {
	if _, exists := t.Remotes[name]; !exists {
		return fmt.Errorf("remote: %q not found", name)
	}
	delete(t.Remotes, name)
	return nil
}

// List returns the configured remote names, sorted.
func (t *Table) List() []string {
	names := make([]string, 0, len(t.Remotes))
	for n := range t.Remotes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
