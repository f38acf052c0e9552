package repos

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func mkRepo(t *testing.T, root string, parts ...string) string {
	t.Helper()
	dir := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestScanFindsCheckouts(t *testing.T) {
	root := t.TempDir()
	a := mkRepo(t, root, "alpha")
	b := mkRepo(t, root, "work", "beta")
	if err := os.MkdirAll(filepath.Join(root, "notes"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Scan(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{a: true, b: true}
	if len(got) != 2 {
		t.Fatalf("got %v, want 2 checkouts", got)
	}
	for _, dir := range got {
		if !want[dir] {
			t.Errorf("unexpected checkout %s", dir)
		}
	}
}

func TestScanSkipsHiddenAndExcluded(t *testing.T) {
	root := t.TempDir()
	mkRepo(t, root, ".cache", "hidden")
	mkRepo(t, root, "vendor", "dep")
	kept := mkRepo(t, root, "keep")

	got, err := Scan(root, []string{"vendor"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != kept {
		t.Fatalf("got %v, want only %s", got, kept)
	}
}

func TestScanDoesNotDescendIntoCheckouts(t *testing.T) {
	root := t.TempDir()
	outer := mkRepo(t, root, "outer")
	mkRepo(t, root, "outer", "nested")

	got, err := Scan(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != outer {
		t.Fatalf("got %v, want only %s", got, outer)
	}
}

func TestScanDepthLimit(t *testing.T) {
	root := t.TempDir()
	mkRepo(t, root, "a", "b", "c", "deep")

	got, err := Scan(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("got %v, want nothing below the depth limit", got)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "absent"), nil); err == nil {
		t.Fatal("want error for missing root")
	}
}

func TestDedupe(t *testing.T) {
	remotes := map[string]string{
		"/a/one": "org/one",
		"/b/one": "org/one",
		"/a/two": "org/two",
	}
	resolve := func(dir string) (string, error) {
		if r, ok := remotes[dir]; ok {
			return r, nil
		}
		return "", errors.New("no remote")
	}

	got, dropped := Dedupe([]string{"/a/one", "/b/one", "/a/two", "/c/local"}, resolve)
	want := []string{"/a/one", "/a/two", "/c/local"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %s, want %s", i, got[i], want[i])
		}
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestDedupePrefersShortestPath(t *testing.T) {
	resolve := func(dir string) (string, error) {
		return "org/one", nil
	}

	got, dropped := Dedupe([]string{"/deep/nested/one", "/top/one"}, resolve)
	if len(got) != 1 || got[0] != "/top/one" {
		t.Errorf("got %v, want [/top/one]", got)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}
