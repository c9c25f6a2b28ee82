package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/egit"
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/repo"
)

const (
	modeFile       = 0o100644
	modeExecutable = 0o100755
	modeDir        = 0o40000
)

func newCommitCmd(a *app) *cobra.Command {
	var message string
	var sign bool
	var keyPath string

	cmd := &cobra.Command{
		Use:   "commit -m <message> <path>...",
		Short: "Commit the given files as the complete tree of a new commit on HEAD",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(message) == "" {
				return errors.New("commit message is required (-m)")
			}
			return a.withSession(cmd, func(s *session) error {
				r, err := s.openRepo()
				if err != nil {
					return err
				}
				root, err := collectFiles(s.dir, args)
				if err != nil {
					return err
				}
				tree, err := writeTree(s, r, root)
				if err != nil {
					return err
				}
				sig, err := commitSignature(s, r)
				if err != nil {
					return err
				}
				ref, parents, err := headState(s, r)
				if err != nil {
					return err
				}

				var id host.Value
				if sign || keyPath != "" {
					if keyPath == "" {
						keyPath = s.cfg.Signing.Key
					}
					id, err = signedCommit(s, r, ref, sig, message, tree, parents, keyPath)
				} else {
					callArgs := append([]host.Value{r, host.String(ref), sig, sig, host.String(message), tree}, parents...)
					id, err = s.call("git-commit-create", callArgs...)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", shortRef(ref), shortID(id), firstLine(message))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&keyPath, "key", "", "SSH private key for signing (implies --sign)")
	return cmd
}

// fileTree is a directory of files to commit, keyed by entry name.
type fileTree struct {
	files map[string]string // name -> absolute path
	dirs  map[string]*fileTree
}

func newFileTree() *fileTree {
	return &fileTree{files: map[string]string{}, dirs: map[string]*fileTree{}}
}

// collectFiles maps paths relative to dir into a tree. Directories are
// walked recursively.
func collectFiles(dir string, paths []string) (*fileTree, error) {
	root := newFileTree()
	add := func(abs string) error {
		rel, err := filepath.Rel(dir, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("%s is outside the repository", abs)
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		if parts[0] == ".got" {
			return nil
		}
		node := root
		for _, p := range parts[:len(parts)-1] {
			next, ok := node.dirs[p]
			if !ok {
				next = newFileTree()
				node.dirs[p] = next
			}
			node = next
		}
		node.files[parts[len(parts)-1]] = abs
		return nil
	}
	for _, p := range paths {
		abs := p
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(dir, p)
		}
		err := filepath.WalkDir(abs, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == ".got" {
					return filepath.SkipDir
				}
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}
	return root, nil
}

// writeTree stores blobs and subtrees bottom-up and returns the tree id.
func writeTree(s *session, r host.Value, t *fileTree) (host.Value, error) {
	var items []host.Value
	names := make([]string, 0, len(t.files))
	for name := range t.files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		path := t.files[name]
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		mode := modeFile
		if info.Mode()&0o111 != 0 {
			mode = modeExecutable
		}
		id, err := s.call("git-blob-create-frombuffer", r, host.String(data))
		if err != nil {
			return nil, err
		}
		items = append(items, host.List(host.String(name), host.Int(mode), id))
	}
	for name, sub := range t.dirs {
		id, err := writeTree(s, r, sub)
		if err != nil {
			return nil, err
		}
		items = append(items, host.List(host.String(name), host.Int(modeDir), id))
	}
	if len(items) == 0 {
		return nil, errors.New("nothing to commit")
	}
	return s.call("git-tree-create", r, host.List(items...))
}

// commitSignature uses the configured author, falling back to the
// repository's identity.
func commitSignature(s *session, r host.Value) (host.Value, error) {
	if s.cfg.Author.Name != "" || s.cfg.Author.Email != "" {
		return s.call("git-signature-now", host.String(s.cfg.Author.Name), host.String(s.cfg.Author.Email))
	}
	return s.call("git-signature-default", r)
}

// headState returns the ref HEAD points at and the parents for a new
// commit on it.
func headState(s *session, r host.Value) (string, []host.Value, error) {
	head, err := s.call("git-repository-head", r)
	if err != nil {
		if !errors.Is(err, &host.Signal{Symbol: egit.QGitError}) {
			return "", nil, err
		}
		// Unborn branch: the first commit creates the ref HEAD names.
		local, oerr := repo.Open(s.dir)
		if oerr != nil {
			return "", nil, err
		}
		name, herr := local.Head()
		if herr != nil || !strings.HasPrefix(name, "refs/") {
			return "", nil, err
		}
		if _, rerr := local.ResolveRef(name); !errors.Is(rerr, repo.ErrRefNotFound) {
			return "", nil, err
		}
		return name, nil, nil
	}
	defer s.drop(head)
	name, err := s.call("git-reference-name", head)
	if err != nil {
		return "", nil, err
	}
	target, err := s.call("git-reference-target", head)
	if err != nil {
		return "", nil, err
	}
	return stringValue(name), []host.Value{target}, nil
}

// signedCommit builds the commit content, signs it and points ref at the
// stored commit.
func signedCommit(s *session, r host.Value, ref string, sig host.Value, message string, tree host.Value, parents []host.Value, keyPath string) (host.Value, error) {
	signer, resolved, err := newSSHCommitSigner(keyPath)
	if err != nil {
		return nil, err
	}
	s.logger.Info("signing commit", "key", resolved)
	callArgs := append([]host.Value{r, sig, sig, host.String(message), tree}, parents...)
	buf, err := s.call("git-commit-create-buffer", callArgs...)
	if err != nil {
		return nil, err
	}
	signature, err := signer([]byte(stringValue(buf)))
	if err != nil {
		return nil, fmt.Errorf("sign commit: %w", err)
	}
	id, err := s.call("git-commit-create-with-signature", r, buf, host.String(signature))
	if err != nil {
		return nil, err
	}
	prefix := "commit: "
	if len(parents) == 0 {
		prefix = "commit (initial): "
	}
	refVal, err := s.call("git-reference-create", r, host.String(ref), id, host.T, host.String(prefix+firstLine(message)))
	if err != nil {
		return nil, err
	}
	s.drop(refVal)
	return id, nil
}

func shortRef(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
