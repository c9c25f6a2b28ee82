package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/gotbind/pkg/object"
)

// CreateCommit writes c to the store. When updateRef is non-empty the ref is
// moved to the new commit with a compare-and-swap against the first parent
// (or against "no ref" for a root commit) and a reflog entry is recorded.
func (r *Repo) CreateCommit(updateRef string, c *object.CommitObj) (object.Hash, error) {
	if _, err := r.Store.ReadTree(c.TreeHash); err != nil {
		return "", fmt.Errorf("create commit: tree: %w", err)
	}
	for _, p := range c.Parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return "", fmt.Errorf("create commit: parent: %w", err)
		}
	}

	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}
	if updateRef == "" {
		return h, nil
	}

	ref := updateRef
	if ref == "HEAD" {
		head, err := r.Head()
		if err != nil {
			return "", fmt.Errorf("create commit: %w", err)
		}
		if strings.HasPrefix(head, "refs/") {
			ref = head
		}
	}
	expected := object.ZeroHash
	if len(c.Parents) > 0 {
		expected = c.Parents[0]
	}
	reason := "commit"
	if len(c.Parents) == 0 {
		reason = "commit (initial)"
	}
	subject, _, _ := strings.Cut(c.Message, "\n")
	err = r.UpdateRef(RefUpdate{
		Name:        ref,
		Hash:        h,
		Committer:   c.Committer,
		Message:     reason + ": " + subject,
		ExpectedOld: expected,
	})
	if err != nil {
		return "", fmt.Errorf("create commit: %w", err)
	}
	return h, nil
}

// Log walks first-parent history from start, newest first, returning at
// most limit commits.
func (r *Repo) Log(start object.Hash, limit int) ([]*object.CommitObj, error) {
	var commits []*object.CommitObj
	current := start
	for len(commits) < limit && !current.IsZero() {
		c, err := r.Store.ReadCommit(current)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				break
			}
			return nil, fmt.Errorf("log: read commit %s: %w", current, err)
		}
		commits = append(commits, c)
		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}
	return commits, nil
}
