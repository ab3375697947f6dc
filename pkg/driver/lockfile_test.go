package driver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockfileWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LockfileFileName)

	lock := NewLockfile("Shapes", " lox-cli test ")
	lock.Upsert(&LockedPackage{Name: "zeta", Version: "path", Source: "path:/tmp/zeta"})
	lock.Upsert(&LockedPackage{
		Name:         "Colors",
		Version:      "v1.0.0@abc123",
		Source:       "git+https://example.com/colors.git@abc123",
		Checksum:     "sha256:00ff",
		Dependencies: []string{"zeta", "alpha"},
	})
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read lockfile: %v", err)
	}
	if !strings.Contains(string(data), "root: shapes") {
		t.Fatalf("lockfile missing root:\n%s", data)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Tool != "lox-cli test" {
		t.Fatalf("Tool = %q", loaded.Tool)
	}
	if len(loaded.Packages) != 2 || loaded.Packages[0].Name != "colors" || loaded.Packages[1].Name != "zeta" {
		t.Fatalf("packages not sorted: %#v", loaded.Packages)
	}
	colors := loaded.Find("Colors")
	if colors == nil || colors.Version != "v1.0.0@abc123" || colors.Checksum != "sha256:00ff" {
		t.Fatalf("Find(colors) = %#v", colors)
	}
	if got := strings.Join(colors.Dependencies, ","); got != "alpha,zeta" {
		t.Fatalf("dependencies = %q", got)
	}
}

func TestLockfileUpsertAndPrune(t *testing.T) {
	lock := NewLockfile("root", "tool")
	pkg := &LockedPackage{Name: "a", Version: "path", Source: "path:/a"}
	if !lock.Upsert(pkg) {
		t.Fatal("first upsert should change the lockfile")
	}
	if lock.Upsert(&LockedPackage{Name: "a", Version: "path", Source: "path:/a"}) {
		t.Fatal("identical upsert should be a no-op")
	}
	if !lock.Upsert(&LockedPackage{Name: "a", Version: "path", Source: "path:/b"}) {
		t.Fatal("changed source should update")
	}
	lock.Upsert(&LockedPackage{Name: "b", Version: "path", Source: "path:/b"})
	if !lock.Prune(map[string]bool{"b": true}) {
		t.Fatal("prune should remove a")
	}
	if lock.Find("a") != nil || lock.Find("b") == nil {
		t.Fatalf("unexpected packages after prune: %#v", lock.Packages)
	}
	if lock.Prune(map[string]bool{"b": true}) {
		t.Fatal("second prune should be a no-op")
	}
}

func TestLoadLockfileMissing(t *testing.T) {
	_, err := LoadLockfile(filepath.Join(t.TempDir(), LockfileFileName))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestWriteLockfileRequiresPath(t *testing.T) {
	if err := WriteLockfile(NewLockfile("root", "tool"), ""); err == nil {
		t.Fatal("expected missing path error")
	}
	if err := WriteLockfile(nil, "x"); err == nil {
		t.Fatal("expected nil lockfile error")
	}
}
