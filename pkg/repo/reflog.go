package repo

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gotbind/pkg/object"
)

// ReflogEntry is one recorded change of a reference.
type ReflogEntry struct {
	OldHash   object.Hash
	NewHash   object.Hash
	Committer object.Signature
	Message   string
}

func (r *Repo) reflogPath(ref string) string {
	return filepath.Join(r.GotDir, "logs", filepath.FromSlash(ref))
}

// encodeReflogEntry renders one line: "old new <committer>\tmessage\n".
// Newlines in the message are folded to spaces.
func encodeReflogEntry(e ReflogEntry) string {
	old := e.OldHash
	if strings.TrimSpace(string(old)) == "" {
		old = object.ZeroHash
	}
	newVal := e.NewHash
	if strings.TrimSpace(string(newVal)) == "" {
		newVal = object.ZeroHash
	}
	msg := strings.ReplaceAll(strings.TrimRight(e.Message, "\n"), "\n", " ")
	return fmt.Sprintf("%s %s %s\t%s\n", old, newVal, e.Committer, msg)
}

func decodeReflogEntry(line string) (ReflogEntry, error) {
	head, msg, _ := strings.Cut(line, "\t")
	parts := strings.SplitN(head, " ", 3)
	if len(parts) != 3 {
		return ReflogEntry{}, fmt.Errorf("malformed reflog line %q", line)
	}
	sig, err := object.ParseSignature(parts[2])
	if err != nil {
		return ReflogEntry{}, err
	}
	return ReflogEntry{
		OldHash:   object.Hash(parts[0]),
		NewHash:   object.Hash(parts[1]),
		Committer: sig,
		Message:   msg,
	}, nil
}

// AppendReflog appends one entry to the reflog of ref.
func (r *Repo) AppendReflog(ref string, e ReflogEntry) error {
	logPath := r.reflogPath(ref)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(encodeReflogEntry(e)); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// ReadReflog returns the reflog of ref, newest entry first. A ref without a
// log yields an empty slice.
func (r *Repo) ReadReflog(ref string) ([]ReflogEntry, error) {
	f, err := os.Open(r.reflogPath(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := decodeReflogEntry(line)
		if err != nil {
			return nil, fmt.Errorf("read reflog %s:%d: %w", ref, lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// WriteReflog atomically replaces the reflog of ref. entries are newest
// first, as returned by ReadReflog.
func (r *Repo) WriteReflog(ref string, entries []ReflogEntry) error {
	logPath := r.reflogPath(ref)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("write reflog: mkdir: %w", err)
	}

	var buf bytes.Buffer
	for i := len(entries) - 1; i >= 0; i-- {
		buf.WriteString(encodeReflogEntry(entries[i]))
	}

	tmp, err := os.CreateTemp(filepath.Dir(logPath), ".reflog-tmp-*")
	if err != nil {
		return fmt.Errorf("write reflog: tmpfile: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write reflog: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write reflog: close: %w", err)
	}
	if err := os.Rename(tmpName, logPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write reflog: rename: %w", err)
	}
	return nil
}

// HasReflog reports whether ref has a reflog file.
func (r *Repo) HasReflog(ref string) bool {
	_, err := os.Stat(r.reflogPath(ref))
	return err == nil
}

// DeleteReflog removes the reflog of ref. Deleting a missing reflog is not
// an error.
func (r *Repo) DeleteReflog(ref string) error {
	if err := os.Remove(r.reflogPath(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete reflog: %w", err)
	}
	return nil
}

// RenameReflog moves the reflog of oldRef to newRef. newRef must not already
// have a reflog.
func (r *Repo) RenameReflog(oldRef, newRef string) error {
	if r.HasReflog(newRef) {
		return fmt.Errorf("rename reflog %s -> %s: %w", oldRef, newRef, ErrExists)
	}
	dst := r.reflogPath(newRef)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("rename reflog: mkdir: %w", err)
	}
	if err := os.Rename(r.reflogPath(oldRef), dst); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("rename reflog %s: %w", oldRef, ErrRefNotFound)
		}
		return fmt.Errorf("rename reflog: %w", err)
	}
	return nil
}
