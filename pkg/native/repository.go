package native

import (
	"errors"
	"strings"

	"github.com/odvcencio/gotbind/pkg/object"
	"github.com/odvcencio/gotbind/pkg/repo"
)

type repoObj struct {
	r *repo.Repo
}

// RepositoryInit creates a repository at path and stores an owned handle
// in out.
func (l *Lib) RepositoryInit(out *Ptr, path string) int {
	defer l.enter()()
	r, err := repo.Init(path)
	if err != nil {
		if errors.Is(err, repo.ErrExists) {
			return l.fail(ErrExists, ClassRepository, "%v", err)
		}
		return l.fail(ErrGeneric, ClassOS, "%v", err)
	}
	*out = l.alloc(KindRepository, &repoObj{r: r})
	return OK
}

// RepositoryOpen opens the repository containing path.
func (l *Lib) RepositoryOpen(out *Ptr, path string) int {
	defer l.enter()()
	r, err := repo.Open(path)
	if err != nil {
		return l.fail(ErrNotFound, ClassRepository, "%v", err)
	}
	*out = l.alloc(KindRepository, &repoObj{r: r})
	return OK
}

// RepositoryFree releases a repository handle.
func (l *Lib) RepositoryFree(p Ptr) {
	defer l.enter()()
	l.free(p, KindRepository)
}

// RepositoryPath returns the repository's .got directory, or "" for an
// invalid pointer.
func (l *Lib) RepositoryPath(p Ptr) string {
	defer l.enter()()
	o, ok := l.get(p, KindRepository)
	if !ok {
		return ""
	}
	return o.(*repoObj).r.GotDir
}

// RepositoryWorkdir returns the repository's working directory.
func (l *Lib) RepositoryWorkdir(p Ptr) string {
	defer l.enter()()
	o, ok := l.get(p, KindRepository)
	if !ok {
		return ""
	}
	return o.(*repoObj).r.RootDir
}

// RepositoryHead looks up the reference HEAD points at.
func (l *Lib) RepositoryHead(out *Ptr, repoPtr Ptr) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	head, err := r.Head()
	if err != nil {
		return l.fail(ErrGeneric, ClassRepository, "%v", err)
	}
	name := head
	if !strings.HasPrefix(head, "refs/") {
		name = "HEAD"
	}
	target, err := r.ResolveRef(name)
	if err != nil {
		if errors.Is(err, repo.ErrRefNotFound) {
			return l.fail(ErrUnbornBranch, ClassReference, "reference '%s' not found", head)
		}
		return l.fail(ErrGeneric, ClassReference, "%v", err)
	}
	*out = l.alloc(KindReference, &refObj{name: name, target: target})
	return OK
}

func (l *Lib) repo(p Ptr) (*repo.Repo, int) {
	o, ok := l.get(p, KindRepository)
	if !ok {
		return nil, invalidArg(l, "repository", p)
	}
	return o.(*repoObj).r, OK
}

// defaultSignature falls back to a placeholder identity like libgit2 does
// for reflog entries when no user is configured.
func defaultSignature(r *repo.Repo) object.Signature {
	sig, err := r.DefaultSignature()
	if err != nil {
		sig = object.Signature{Name: "unknown", Email: "unknown"}
	}
	return sig
}
