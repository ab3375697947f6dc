package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SourceFile is one script scheduled for execution.
type SourceFile struct {
	Path    string
	Package string
	Source  string
}

// Program is the ordered list of scripts a session runs against a single
// global environment: dependency preludes first, then the root prelude,
// then the entry script.
type Program struct {
	Files []SourceFile
}

// Loader assembles programs from manifests. Git dependencies are read from
// CacheDir at the versions recorded in Lock.
type Loader struct {
	CacheDir string
	Lock     *Lockfile

	visiting map[string]bool
	visited  map[string]bool
}

// NewLoader constructs a loader backed by the given cache and lockfile.
func NewLoader(cacheDir string, lock *Lockfile) *Loader {
	return &Loader{CacheDir: cacheDir, Lock: lock}
}

// CachePath returns the checkout directory for a locked git dependency.
func CachePath(cacheDir, name, version string) string {
	segment := SanitizeName(version)
	if segment == "" {
		segment = "head"
	}
	return filepath.Join(cacheDir, "pkg", "src", SanitizeName(name), segment)
}

// LoadFile wraps a single script with no manifest.
func LoadFile(path string) (*Program, error) {
	file, err := readSource(path, "")
	if err != nil {
		return nil, err
	}
	return &Program{Files: []SourceFile{file}}, nil
}

// Load builds the program for manifest. entry overrides the manifest's main
// script when non-empty.
func (l *Loader) Load(manifest *Manifest, entry string) (*Program, error) {
	if manifest == nil {
		return nil, fmt.Errorf("loader: nil manifest")
	}
	l.visiting = map[string]bool{}
	l.visited = map[string]bool{}

	program := &Program{}
	l.visiting[manifest.Dir()] = true
	for _, name := range manifest.DependencyNames() {
		if err := l.loadDependency(program, manifest, name); err != nil {
			return nil, err
		}
	}
	if err := appendPrelude(program, manifest); err != nil {
		return nil, err
	}

	if entry == "" {
		entry = manifest.MainPath()
	}
	if entry == "" {
		return nil, fmt.Errorf("loader: %s declares no main script", manifest.Path)
	}
	file, err := readSource(entry, manifest.Name)
	if err != nil {
		return nil, err
	}
	program.Files = append(program.Files, file)
	return program, nil
}

func (l *Loader) loadDependency(program *Program, parent *Manifest, name string) error {
	dir, err := l.locate(parent, name, parent.Dependencies[name])
	if err != nil {
		return err
	}
	if l.visited[dir] {
		return nil
	}
	if l.visiting[dir] {
		return fmt.Errorf("loader: dependency cycle through %q", name)
	}
	manifest, err := LoadManifest(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return fmt.Errorf("loader: dependency %q: %w", name, err)
	}
	l.visiting[dir] = true
	for _, child := range manifest.DependencyNames() {
		if err := l.loadDependency(program, manifest, child); err != nil {
			return err
		}
	}
	l.visited[dir] = true
	return appendPrelude(program, manifest)
}

func (l *Loader) locate(parent *Manifest, name string, spec *DependencySpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("loader: dependency %q has no source", name)
	}
	if !spec.IsGit() {
		return filepath.Clean(parent.resolve(spec.Path)), nil
	}
	locked := l.Lock.Find(name)
	if locked == nil {
		return "", fmt.Errorf("loader: dependency %q is not installed; run `lox deps install`", name)
	}
	if l.CacheDir == "" {
		return "", fmt.Errorf("loader: dependency %q requires a cache directory", name)
	}
	dir := CachePath(l.CacheDir, locked.Name, locked.Version)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("loader: dependency %q missing from cache at %s; run `lox deps install`", name, dir)
		}
		return "", fmt.Errorf("loader: dependency %q: %w", name, err)
	}
	return dir, nil
}

func appendPrelude(program *Program, manifest *Manifest) error {
	for _, path := range manifest.PreludePaths() {
		file, err := readSource(path, manifest.Name)
		if err != nil {
			return err
		}
		program.Files = append(program.Files, file)
	}
	return nil
}

func readSource(path, pkg string) (SourceFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("loader: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return SourceFile{}, fmt.Errorf("loader: read %s: %w", abs, err)
	}
	if pkg == "" {
		pkg = strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	}
	return SourceFile{Path: abs, Package: pkg, Source: string(data)}, nil
}
