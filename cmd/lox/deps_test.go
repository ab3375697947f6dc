package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"lox/interpreter-go/pkg/driver"
)

func initGitRepo(t *testing.T, dir string) (*git.Repository, string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == filepath.Join(dir, ".git") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Lox CLI",
			Email: "lox@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return repo, hash.String()
}

func TestDependencyInstaller_PathDependencyTransitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", driver.ManifestFileName), `
name: app
dependencies:
  shapes: ../shapes
`)
	writeFile(t, filepath.Join(root, "shapes", driver.ManifestFileName), `
name: shapes
prelude: shapes.lox
dependencies:
  math:
    path: ../math
`)
	writeFile(t, filepath.Join(root, "shapes", "shapes.lox"), "fun area(r) { return pi * r * r; }")
	writeFile(t, filepath.Join(root, "math", driver.ManifestFileName), "name: math\nprelude: math.lox")
	writeFile(t, filepath.Join(root, "math", "math.lox"), "var pi = 3;")

	manifest, err := driver.LoadManifest(filepath.Join(root, "app", driver.ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	installer := newDependencyInstaller(manifest, filepath.Join(root, "cache"))

	changed, logs, err := installer.Install(lock)
	if err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if !changed || len(logs) != 2 {
		t.Fatalf("changed = %v logs = %v", changed, logs)
	}
	shapes := lock.Find("shapes")
	if shapes == nil || !strings.HasPrefix(shapes.Source, "path:") || !strings.HasPrefix(shapes.Checksum, "sha256:") {
		t.Fatalf("shapes entry unexpected: %#v", shapes)
	}
	if len(shapes.Dependencies) != 1 || shapes.Dependencies[0] != "math" {
		t.Fatalf("shapes dependencies = %v", shapes.Dependencies)
	}
	if lock.Find("math") == nil {
		t.Fatalf("transitive dependency missing: %#v", lock.Packages)
	}

	changed, _, err = newDependencyInstaller(manifest, filepath.Join(root, "cache")).Install(lock)
	if err != nil {
		t.Fatalf("second Install: %v", err)
	}
	if changed {
		t.Fatal("second install should leave the lockfile unchanged")
	}
}

func TestDependencyInstaller_DetectsCycle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app", driver.ManifestFileName), "name: app\ndependencies:\n  a: ../a")
	writeFile(t, filepath.Join(root, "a", driver.ManifestFileName), "name: a\ndependencies:\n  b: ../b")
	writeFile(t, filepath.Join(root, "b", driver.ManifestFileName), "name: b\ndependencies:\n  a: ../a")

	manifest, err := driver.LoadManifest(filepath.Join(root, "app", driver.ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	_, _, err = newDependencyInstaller(manifest, t.TempDir()).Install(driver.NewLockfile("app", cliToolVersion))
	if err == nil || !strings.Contains(err.Error(), "dependency cycle detected at a") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestDependencyInstaller_GitDependency(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, driver.ManifestFileName), "name: colors\nprelude: colors.lox")
	writeFile(t, filepath.Join(repoDir, "colors.lox"), `var red = "red";`)
	_, rev := initGitRepo(t, repoDir)

	cases := []struct {
		name        string
		pin         string
		wantVersion string
	}{
		{name: "rev", pin: "rev: " + rev, wantVersion: rev},
		{name: "branch", pin: "branch: master", wantVersion: "master@" + rev},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appDir := filepath.Join(root, "app-"+tc.name)
			writeFile(t, filepath.Join(appDir, driver.ManifestFileName), fmt.Sprintf(`
name: app
dependencies:
  colors:
    git: %s
    %s
`, repoDir, tc.pin))
			manifest, err := driver.LoadManifest(filepath.Join(appDir, driver.ManifestFileName))
			if err != nil {
				t.Fatalf("LoadManifest: %v", err)
			}
			cacheDir := filepath.Join(root, "cache-"+tc.name)
			lock := driver.NewLockfile(manifest.Name, cliToolVersion)
			changed, _, err := newDependencyInstaller(manifest, cacheDir).Install(lock)
			if err != nil {
				t.Fatalf("Install error: %v", err)
			}
			if !changed || len(lock.Packages) != 1 {
				t.Fatalf("changed = %v packages = %#v", changed, lock.Packages)
			}
			pkg := lock.Packages[0]
			if pkg.Version != tc.wantVersion {
				t.Fatalf("pkg.Version = %q, want %q", pkg.Version, tc.wantVersion)
			}
			if want := fmt.Sprintf("git+%s@%s", repoDir, rev); pkg.Source != want {
				t.Fatalf("pkg.Source = %q, want %q", pkg.Source, want)
			}
			cached := driver.CachePath(cacheDir, pkg.Name, pkg.Version)
			if _, err := os.Stat(filepath.Join(cached, "colors.lox")); err != nil {
				t.Fatalf("expected cached checkout at %s: %v", cached, err)
			}
		})
	}
}

func TestDependencyInstaller_GitTag(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, driver.ManifestFileName), "name: colors")
	repo, rev := initGitRepo(t, repoDir)
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if _, err := repo.CreateTag("v1.0.0", head.Hash(), nil); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	writeFile(t, filepath.Join(root, "app", driver.ManifestFileName), fmt.Sprintf(`
name: app
dependencies:
  colors:
    git: %s
    tag: v1.0.0
`, repoDir))
	manifest, err := driver.LoadManifest(filepath.Join(root, "app", driver.ManifestFileName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	lock := driver.NewLockfile(manifest.Name, cliToolVersion)
	if _, _, err := newDependencyInstaller(manifest, filepath.Join(root, "cache")).Install(lock); err != nil {
		t.Fatalf("Install error: %v", err)
	}
	if pkg := lock.Find("colors"); pkg == nil || pkg.Version != "v1.0.0@"+rev {
		t.Fatalf("tagged package unexpected: %#v", pkg)
	}
}

func TestDepsInstallAndRunWithCachedDependency(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repoDir, driver.ManifestFileName), "name: greeting\nprelude: greeting.lox")
	writeFile(t, filepath.Join(repoDir, "greeting.lox"), `fun greet(name) { return "hello " + name; }`)
	_, rev := initGitRepo(t, repoDir)

	appDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(appDir, driver.ManifestFileName), fmt.Sprintf(`
name: app
main: main.lox
dependencies:
  greeting:
    git: %s
    rev: %s
`, repoDir, rev))
	writeFile(t, filepath.Join(appDir, "main.lox"), `print greet("cache");`)

	t.Setenv("LOX_HOME", filepath.Join(root, "home"))
	testChdir(t, appDir)

	code, _, stderr := captureCLI(t, []string{"run"})
	if code != 1 || !strings.Contains(stderr, "lox.lock missing") {
		t.Fatalf("run before install: code = %d stderr = %q", code, stderr)
	}

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("deps install: code = %d stderr = %q", code, stderr)
	}
	if !strings.Contains(stdout, "Created lox.lock") || !strings.Contains(stdout, "Dependencies installed.") {
		t.Fatalf("deps install stdout = %q", stdout)
	}

	code, stdout, _ = captureCLI(t, []string{"deps", "install"})
	if code != 0 || !strings.Contains(stdout, "lox.lock already up to date") {
		t.Fatalf("second install: code = %d stdout = %q", code, stdout)
	}

	code, stdout, stderr = captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("run: code = %d stderr = %q", code, stderr)
	}
	if stdout != "hello cache\n" {
		t.Fatalf("run stdout = %q", stdout)
	}
}

func TestRunDepsUsage(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"deps"})
	if code != driver.ExitUsage || !strings.Contains(stderr, "requires a subcommand") {
		t.Fatalf("code = %d stderr = %q", code, stderr)
	}
	code, _, _ = captureCLI(t, []string{"deps", "update"})
	if code != driver.ExitUsage {
		t.Fatalf("unknown subcommand code = %d", code)
	}
}
