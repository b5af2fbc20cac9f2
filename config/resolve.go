// Copyright © 2024 The cstlint authors

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileConfig is the configuration for a single source file.
type FileConfig struct {
	Path   string
	Config *Config
	// Linters are the names of the linters to run, in order.
	Linters           []string
	DisabledAutoFixes []string
	Suppressions      []Suppression
}

// Enabled reports whether the named linter runs for the file.
func (fc *FileConfig) Enabled(rule string) bool {
	return contains(fc.Linters, rule)
}

// AutoFixDisabled reports whether fixes from the named linter are withheld.
func (fc *FileConfig) AutoFixDisabled(rule string) bool {
	return contains(fc.DisabledAutoFixes, rule)
}

// SuppressedForFile reports whether a suppression silences rule for the
// whole file.
func (fc *FileConfig) SuppressedForFile(rule string) bool {
	for _, s := range fc.Suppressions {
		if s.Linter == rule && len(s.Lines) == 0 {
			return true
		}
	}
	return false
}

// SuppressedAt reports whether a suppression silences rule on the given
// 1-based line.
func (fc *FileConfig) SuppressedAt(rule string, line int) bool {
	for _, s := range fc.Suppressions {
		if s.Linter != rule {
			continue
		}
		if len(s.Lines) == 0 {
			return true
		}
		if line >= s.Lines[0] && line <= s.Lines[1] {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// Resolver finds the configuration governing a path. The nearest cstlint.json
// at or above the path wins; configurations are not merged. Results are
// cached for the lifetime of the Resolver.
type Resolver struct {
	Catalog Catalog

	mu    sync.Mutex
	byDir map[string]*Config
}

// NewResolver returns a Resolver that validates linter names against catalog.
func NewResolver(catalog Catalog) *Resolver {
	return &Resolver{Catalog: catalog, byDir: map[string]*Config{}}
}

// Resolve returns the configuration for path, which may be a file or a
// directory. When no cstlint.json exists above it the default configuration
// anchored at the start directory is returned.
func (r *Resolver) Resolve(path string) (*Config, error) {
	start, err := startDir(path)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byDir == nil {
		r.byDir = map[string]*Config{}
	}
	if c, ok := r.byDir[start]; ok {
		return c, nil
	}
	file, ok, err := Find(start)
	if err != nil {
		return nil, err
	}
	var c *Config
	if ok {
		if c, ok = r.byDir[filepath.Dir(file)]; !ok {
			c, err = Load(file, r.Catalog)
			if err != nil {
				return nil, err
			}
			r.byDir[c.Dir] = c
		}
	} else {
		c = Default(start, r.Catalog)
	}
	r.byDir[start] = c
	return c, nil
}

// ForFile resolves the configuration of the file's directory and narrows it
// to the file.
func (r *Resolver) ForFile(path string) (*FileConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c, err := r.Resolve(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	fc := c.ForFile(abs)
	fc.Path = path
	return fc, nil
}

func startDir(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err == nil && !info.IsDir() {
		return filepath.Dir(abs), nil
	}
	return abs, nil
}

// Find walks upward from startDir looking for cstlint.json and returns the
// path of the first one found.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil {
			if !info.IsDir() {
				return candidate, true, nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// HasConfigFile reports whether dir directly contains a cstlint.json.
func HasConfigFile(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil && !info.IsDir()
}
