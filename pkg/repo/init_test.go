package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()

	r, err := Init(dir)
	if err != nil {
		t.Fatalf("Init(%q): %v", dir, err)
	}
	if r.RootDir != dir {
		t.Errorf("RootDir = %q, want %q", r.RootDir, dir)
	}
	gotDir := filepath.Join(dir, ".got")
	if r.GotDir != gotDir {
		t.Errorf("GotDir = %q, want %q", r.GotDir, gotDir)
	}

	assertDir(t, gotDir)
	assertFile(t, filepath.Join(gotDir, "HEAD"))
	assertDir(t, filepath.Join(gotDir, "objects"))
	assertDir(t, filepath.Join(gotDir, "refs", "heads"))
	assertDir(t, filepath.Join(gotDir, "logs", "refs", "heads"))

	if r.Store == nil {
		t.Error("Store is nil after Init")
	}
}

func TestInit_ExistingRepo_Error(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("first Init: %v", err)
	}
	_, err := Init(dir)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("second Init error = %v, want ErrExists", err)
	}
}

func TestOpen_FindsRepoFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	if _, err := Init(dir); err != nil {
		t.Fatalf("Init: %v", err)
	}
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	r, err := Open(sub)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	want, _ := filepath.Abs(dir)
	if r.RootDir != want {
		t.Errorf("RootDir = %q, want %q", r.RootDir, want)
	}
}

func TestOpen_NotARepo(t *testing.T) {
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("Open on empty dir should fail")
	}
}

func TestHead_DefaultsToMain(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	head, err := r.Head()
	if err != nil {
		t.Fatalf("Head: %v", err)
	}
	if head != "refs/heads/main" {
		t.Errorf("Head = %q, want refs/heads/main", head)
	}
	if _, err := r.ResolveRef("HEAD"); !errors.Is(err, ErrRefNotFound) {
		t.Errorf("ResolveRef(HEAD) on unborn branch = %v, want ErrRefNotFound", err)
	}
}

func TestValidRefName(t *testing.T) {
	tests := map[string]bool{
		"HEAD":                true,
		"refs/heads/main":     true,
		"refs/tags/v1.0":      true,
		"main":                false,
		"refs/heads/":         false,
		"refs/heads/../x":     false,
		"refs/heads/a b":      false,
		"refs/heads/x.lock":   false,
		"refs//heads":         false,
		"refs/heads/feat~1":   false,
		"refs/heads/feature1": true,
	}
	for name, want := range tests {
		if got := ValidRefName(name); got != want {
			t.Errorf("ValidRefName(%q) = %v, want %v", name, got, want)
		}
	}
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected file %q to exist: %v", path, err)
		return
	}
	if info.IsDir() {
		t.Errorf("%q exists but is a directory, expected file", path)
	}
}

func assertDir(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %q to exist: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("%q exists but is not a directory", path)
	}
}
