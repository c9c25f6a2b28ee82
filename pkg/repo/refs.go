package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/odvcencio/gotbind/pkg/object"
)

var ErrRefCASMismatch = errors.New("ref compare-and-swap mismatch")

const (
	refLockRetryDelay = 5 * time.Millisecond
	refLockWaitLimit  = 2 * time.Second
)

// RefUpdate describes a reference change and the reflog entry recorded
// for it.
type RefUpdate struct {
	Name      string
	Hash      object.Hash
	Committer object.Signature
	Message   string
	// ExpectedOld, when set, makes the update a compare-and-swap. Use
	// object.ZeroHash to require that the ref does not exist yet.
	ExpectedOld object.Hash
}

// UpdateRef writes a hash to the named ref using lockfile + rename and then
// appends a reflog entry for the change.
func (r *Repo) UpdateRef(u RefUpdate) error {
	name := FullRefName(u.Name)
	if !ValidRefName(name) {
		return fmt.Errorf("update ref %q: invalid name", u.Name)
	}
	refPath := filepath.Join(r.GotDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return fmt.Errorf("update ref %q: mkdir: %w", name, err)
	}

	lockPath := refPath + ".lock"
	lockFile, err := acquireRefLock(lockPath)
	if err != nil {
		return fmt.Errorf("update ref %q: lock: %w", name, err)
	}
	cleanupLock := true
	defer func() {
		if lockFile != nil {
			_ = lockFile.Close()
		}
		if cleanupLock {
			_ = os.Remove(lockPath)
		}
	}()

	oldHash, err := readRefHash(refPath)
	if err != nil {
		return fmt.Errorf("update ref %q: read old hash: %w", name, err)
	}
	if u.ExpectedOld != "" {
		have := oldHash
		if have == "" {
			have = object.ZeroHash
		}
		if have != u.ExpectedOld {
			return fmt.Errorf("update ref %q: %w (expected %s, found %s)", name, ErrRefCASMismatch, u.ExpectedOld, have)
		}
	}

	if _, err := lockFile.WriteString(string(u.Hash) + "\n"); err != nil {
		return fmt.Errorf("update ref %q: write: %w", name, err)
	}
	if err := lockFile.Close(); err != nil {
		lockFile = nil
		return fmt.Errorf("update ref %q: close: %w", name, err)
	}
	lockFile = nil

	if err := os.Rename(lockPath, refPath); err != nil {
		return fmt.Errorf("update ref %q: rename: %w", name, err)
	}
	cleanupLock = false

	entry := ReflogEntry{
		OldHash:   oldHash,
		NewHash:   u.Hash,
		Committer: u.Committer,
		Message:   u.Message,
	}
	if err := r.AppendReflog(name, entry); err != nil {
		return fmt.Errorf("update ref %q: ref written but reflog append failed: %w", name, err)
	}
	return nil
}

// ReadRef returns the hash stored in a ref file. A missing ref yields
// ErrRefNotFound.
func (r *Repo) ReadRef(name string) (object.Hash, error) {
	name = FullRefName(name)
	if name == "HEAD" {
		return r.ResolveRef(name)
	}
	h, err := readRefHash(filepath.Join(r.GotDir, filepath.FromSlash(name)))
	if err != nil {
		return "", fmt.Errorf("read ref %q: %w", name, err)
	}
	if h == "" {
		return "", fmt.Errorf("read ref %q: %w", name, ErrRefNotFound)
	}
	return h, nil
}

func acquireRefLock(lockPath string) (*os.File, error) {
	deadline := time.Now().Add(refLockWaitLimit)
	for {
		f, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, nil
		}
		if os.IsExist(err) {
			if time.Now().After(deadline) {
				return nil, fmt.Errorf("timeout waiting for lock %q", lockPath)
			}
			time.Sleep(refLockRetryDelay)
			continue
		}
		return nil, err
	}
}

func readRefHash(refPath string) (object.Hash, error) {
	data, err := os.ReadFile(refPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return object.Hash(strings.TrimSpace(string(data))), nil
}
