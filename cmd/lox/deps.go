package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lox/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "lox deps requires a subcommand (install)")
		return driver.ExitUsage
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "lox deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return driver.ExitUsage
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return driver.ExitUsage
	}
}

func runDepsInstall() int {
	manifestPath, err := findManifest(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestFileName, err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cacheDir, err := resolveLoxHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve LOX_HOME: %v\n", err)
		return 1
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	lockPath := lockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	lockCreated := false
	switch {
	case err == nil:
		if lock.Root != driver.SanitizeName(manifest.Name) {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return 1
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		lockCreated = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return 1
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion

	installer := newDependencyInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}

	if changed || lockCreated {
		action := "Updated"
		if lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(lock, lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileFileName, lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileFileName, lock.Path)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// dependencyInstaller resolves the manifest's dependency graph, fetching git
// packages into the cache and recording every package in the lockfile.
type dependencyInstaller struct {
	manifest  *driver.Manifest
	cacheDir  string
	git       *gitFetcher
	logs      []string
	resolved  map[string]*driver.LockedPackage
	resolving map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	return &dependencyInstaller{
		manifest: manifest,
		cacheDir: cacheDir,
		git:      newGitFetcher(cacheDir),
	}
}

// Install updates lock in place and reports whether it changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	d.logs = []string{}
	d.resolved = make(map[string]*driver.LockedPackage)
	d.resolving = make(map[string]bool)
	if d.manifest == nil {
		return false, d.logs, nil
	}

	for _, name := range d.manifest.DependencyNames() {
		if err := d.installDependency(d.manifest, name, d.manifest.Dependencies[name]); err != nil {
			return false, d.logs, err
		}
	}

	changed := false
	keep := make(map[string]bool, len(d.resolved))
	for name, pkg := range d.resolved {
		keep[name] = true
		if lock.Upsert(pkg) {
			changed = true
		}
	}
	if lock.Prune(keep) {
		changed = true
	}
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installDependency(parent *driver.Manifest, name string, spec *driver.DependencySpec) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	key := driver.SanitizeName(name)
	if _, ok := d.resolved[key]; ok {
		return nil
	}
	if d.resolving[key] {
		return fmt.Errorf("dependency cycle detected at %s", key)
	}
	d.resolving[key] = true
	defer delete(d.resolving, key)

	var (
		pkg *driver.LockedPackage
		dir string
		err error
	)
	if spec.IsGit() {
		pkg, dir, err = d.git.Fetch(name, spec)
	} else {
		pkg, dir, err = resolvePathDependency(parent, name, spec)
	}
	if err != nil {
		return err
	}

	manifest, err := driver.LoadManifest(filepath.Join(dir, driver.ManifestFileName))
	if err != nil {
		return fmt.Errorf("dependency %q: %w", name, err)
	}
	for _, child := range manifest.DependencyNames() {
		if err := d.installDependency(manifest, child, manifest.Dependencies[child]); err != nil {
			return err
		}
		pkg.Dependencies = append(pkg.Dependencies, driver.SanitizeName(child))
	}

	d.resolved[key] = pkg
	d.logs = append(d.logs, fmt.Sprintf("Resolved %s -> %s", key, pkg.Source))
	return nil
}

func resolvePathDependency(parent *driver.Manifest, name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	dir := spec.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(parent.Dir(), filepath.FromSlash(dir))
	}
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("dependency %q: %s is not a directory", name, dir)
	}
	checksum, err := dirChecksum(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, dir, err)
	}
	return &driver.LockedPackage{
		Name:     driver.SanitizeName(name),
		Version:  "path",
		Source:   "path:" + dir,
		Checksum: checksum,
	}, dir, nil
}
