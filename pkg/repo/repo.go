package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gotbind/pkg/object"
)

// ErrRefNotFound is returned when a reference file does not exist.
var ErrRefNotFound = errors.New("reference not found")

// ErrExists is returned by Init when a repository is already present.
var ErrExists = errors.New("repository already exists")

// Repo represents an opened Got repository.
type Repo struct {
	RootDir string        // working directory root
	GotDir  string        // .got/ directory
	Store   *object.Store // content-addressed object store
}

// Init creates a new repository at path with HEAD pointing at
// refs/heads/main. It fails with ErrExists if .got/ is already present.
func Init(path string) (*Repo, error) {
	gotDir := filepath.Join(path, ".got")
	if _, err := os.Stat(gotDir); err == nil {
		return nil, fmt.Errorf("init %s: %w", gotDir, ErrExists)
	}

	dirs := []string{
		filepath.Join(gotDir, "objects"),
		filepath.Join(gotDir, "refs", "heads"),
		filepath.Join(gotDir, "logs", "refs", "heads"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("init: mkdir %s: %w", d, err)
		}
	}

	headPath := filepath.Join(gotDir, "HEAD")
	if err := os.WriteFile(headPath, []byte("ref: refs/heads/main\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init: write HEAD: %w", err)
	}
	return newRepo(path, gotDir), nil
}

// Open searches upward from path for a .got/ directory and opens the
// repository.
func Open(path string) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		gotDir := filepath.Join(cur, ".got")
		info, err := os.Stat(gotDir)
		if err == nil && info.IsDir() {
			return newRepo(cur, gotDir), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open %s: not a got repository (or any parent up to /)", abs)
		}
		cur = parent
	}
}

func newRepo(root, gotDir string) *Repo {
	return &Repo{
		RootDir: root,
		GotDir:  gotDir,
		Store:   object.NewStore(gotDir),
	}
}

// Head reads .got/HEAD. A symbolic HEAD yields the ref path
// ("refs/heads/main"); a detached HEAD yields the raw hash.
func (r *Repo) Head() (string, error) {
	data, err := os.ReadFile(filepath.Join(r.GotDir, "HEAD"))
	if err != nil {
		return "", fmt.Errorf("head: %w", err)
	}
	content := strings.TrimRight(string(data), "\n")
	if strings.HasPrefix(content, "ref: ") {
		return strings.TrimPrefix(content, "ref: "), nil
	}
	return content, nil
}

// ResolveRef resolves a ref name to an object hash.
//
// Resolution order:
//  1. "HEAD" reads HEAD and follows a symbolic target.
//  2. Names starting with "refs/" are read as-is.
//  3. Anything else is tried as "refs/heads/<name>".
func (r *Repo) ResolveRef(name string) (object.Hash, error) {
	if name == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(head, "refs/") {
			return r.ResolveRef(head)
		}
		return object.Hash(head), nil
	}

	full := FullRefName(name)
	h, err := readRefHash(filepath.Join(r.GotDir, filepath.FromSlash(full)))
	if err != nil {
		return "", fmt.Errorf("resolve ref %q: %w", name, err)
	}
	if h == "" {
		return "", fmt.Errorf("resolve ref %q: %w", name, ErrRefNotFound)
	}
	return h, nil
}

// FullRefName expands a short branch name to "refs/heads/<name>". HEAD and
// names already under refs/ are returned unchanged.
func FullRefName(name string) string {
	name = strings.TrimSpace(name)
	if name == "HEAD" || strings.HasPrefix(name, "refs/") {
		return name
	}
	return "refs/heads/" + name
}

// ValidRefName reports whether name is acceptable as a reference name.
func ValidRefName(name string) bool {
	if name == "HEAD" {
		return true
	}
	if !strings.HasPrefix(name, "refs/") || strings.HasSuffix(name, "/") {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." || strings.HasSuffix(part, ".lock") {
			return false
		}
		if strings.ContainsAny(part, " ~^:?*[\\\x00") {
			return false
		}
	}
	return true
}
