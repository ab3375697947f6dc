package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type scriptFixture struct {
	Description string `yaml:"description"`
	Source      string `yaml:"source"`
	Stdin       string `yaml:"stdin"`
	Expect      struct {
		Stdout []string `yaml:"stdout"`
		Stderr []string `yaml:"stderr"`
		Exit   int      `yaml:"exit"`
	} `yaml:"expect"`
}

func TestScriptFixtures(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "fixtures", "*.yml"))
	if err != nil {
		t.Fatalf("glob fixtures: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no fixtures found")
	}
	for _, path := range paths {
		path := path
		name := strings.TrimSuffix(filepath.Base(path), ".yml")
		t.Run(name, func(t *testing.T) {
			fixture := readScriptFixture(t, path)
			var stdout, stderr bytes.Buffer
			session := NewSession(SessionOptions{
				Stdout: &stdout,
				Stderr: &stderr,
				Stdin:  strings.NewReader(fixture.Stdin),
			})
			outcome := session.Run(fixture.Source)
			if got := outcome.ExitCode(); got != fixture.Expect.Exit {
				t.Fatalf("%s: exit code = %d, want %d (stderr %q)", fixture.Description, got, fixture.Expect.Exit, stderr.String())
			}
			if got := outputLines(stdout.String()); !reflect.DeepEqual(got, fixture.Expect.Stdout) {
				t.Fatalf("%s: stdout = %q, want %q", fixture.Description, got, fixture.Expect.Stdout)
			}
			if got := outputLines(stderr.String()); !reflect.DeepEqual(got, fixture.Expect.Stderr) {
				t.Fatalf("%s: stderr = %q, want %q", fixture.Description, got, fixture.Expect.Stderr)
			}
		})
	}
}

func readScriptFixture(t *testing.T, path string) scriptFixture {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	var fixture scriptFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		t.Fatalf("parse fixture %s: %v", path, err)
	}
	return fixture
}

func outputLines(out string) []string {
	if out == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}
