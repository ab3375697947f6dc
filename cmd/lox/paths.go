package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

var errManifestNotFound = errors.New(driver.ManifestFileName + " not found")

// findManifest walks up from start looking for lox.yml.
func findManifest(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, driver.ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errManifestNotFound
		}
		dir = parent
	}
}

func loadManifestFrom(start string) (*driver.Manifest, error) {
	path, err := findManifest(start)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

// resolveLoxHome returns $LOX_HOME, defaulting to ~/.lox.
func resolveLoxHome() (string, error) {
	if env := strings.TrimSpace(os.Getenv("LOX_HOME")); env != "" {
		return filepath.Abs(env)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".lox"), nil
}

func lockfilePath(manifest *driver.Manifest) string {
	return filepath.Join(manifest.Dir(), driver.LockfileFileName)
}

// loadLockfileForManifest returns nil when the manifest has no git
// dependencies and the lockfile is absent.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	path := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(path)
	if err == nil {
		return lock, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, name := range manifest.DependencyNames() {
		if manifest.Dependencies[name].IsGit() {
			return nil, fmt.Errorf("%s missing; run `lox deps install`", driver.LockfileFileName)
		}
	}
	return nil, nil
}
