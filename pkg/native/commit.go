package native

import (
	"errors"
	"strings"

	"github.com/odvcencio/gotbind/pkg/object"
	"github.com/odvcencio/gotbind/pkg/repo"
)

type commitObj struct {
	r  *repo.Repo
	id object.Hash
	c  *object.CommitObj
}

// lookupFail maps a store read error onto a return code.
func (l *Lib) lookupFail(err error, what string, id object.Hash) int {
	if errors.Is(err, object.ErrNotFound) {
		return l.fail(ErrNotFound, ClassObject, "%s %s not found", what, id)
	}
	return l.fail(ErrGeneric, ClassObject, "%v", err)
}

// CommitLookup loads a commit by id.
func (l *Lib) CommitLookup(out *Ptr, repoPtr Ptr, id object.Hash) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	c, err := r.Store.ReadCommit(id)
	if err != nil {
		return l.lookupFail(err, "commit", id)
	}
	*out = l.alloc(KindCommit, &commitObj{r: r, id: id, c: c})
	return OK
}

// CommitFree releases a commit and invalidates its author and committer
// pointers.
func (l *Lib) CommitFree(p Ptr) {
	defer l.enter()()
	l.free(p, KindCommit)
}

func (l *Lib) commit(p Ptr) (*commitObj, bool) {
	o, ok := l.get(p, KindCommit)
	if !ok {
		return nil, false
	}
	return o.(*commitObj), true
}

// CommitID returns the commit's id.
func (l *Lib) CommitID(p Ptr) object.Hash {
	defer l.enter()()
	if c, ok := l.commit(p); ok {
		return c.id
	}
	return ""
}

// CommitMessage returns the full commit message.
func (l *Lib) CommitMessage(p Ptr) string {
	defer l.enter()()
	if c, ok := l.commit(p); ok {
		return c.c.Message
	}
	return ""
}

// CommitSummary returns the first line of the message.
func (l *Lib) CommitSummary(p Ptr) string {
	defer l.enter()()
	if c, ok := l.commit(p); ok {
		s, _, _ := strings.Cut(strings.TrimLeft(c.c.Message, "\n"), "\n")
		return s
	}
	return ""
}

// CommitAuthor returns an interior pointer to the author signature.
func (l *Lib) CommitAuthor(p Ptr) Ptr {
	defer l.enter()()
	c, ok := l.commit(p)
	if !ok {
		return Null
	}
	return l.interiorPtr(p, KindSignature, &c.c.Author)
}

// CommitCommitter returns an interior pointer to the committer signature.
func (l *Lib) CommitCommitter(p Ptr) Ptr {
	defer l.enter()()
	c, ok := l.commit(p)
	if !ok {
		return Null
	}
	return l.interiorPtr(p, KindSignature, &c.c.Committer)
}

// CommitTreeID returns the id of the commit's root tree.
func (l *Lib) CommitTreeID(p Ptr) object.Hash {
	defer l.enter()()
	if c, ok := l.commit(p); ok {
		return c.c.TreeHash
	}
	return ""
}

// CommitTree loads the commit's root tree as a new owned object.
func (l *Lib) CommitTree(out *Ptr, p Ptr) int {
	defer l.enter()()
	c, ok := l.commit(p)
	if !ok {
		return invalidArg(l, "commit", p)
	}
	return l.treeLookup(out, c.r, c.c.TreeHash)
}

// CommitParentCount returns the number of parents.
func (l *Lib) CommitParentCount(p Ptr) int {
	defer l.enter()()
	if c, ok := l.commit(p); ok {
		return len(c.c.Parents)
	}
	return 0
}

// CommitParentID returns the id of parent n, or "" when n is out of range.
func (l *Lib) CommitParentID(p Ptr, n int) object.Hash {
	defer l.enter()()
	c, ok := l.commit(p)
	if !ok || n < 0 || n >= len(c.c.Parents) {
		return ""
	}
	return c.c.Parents[n]
}

// CommitParent loads parent n as a new owned commit.
func (l *Lib) CommitParent(out *Ptr, p Ptr, n int) int {
	defer l.enter()()
	c, ok := l.commit(p)
	if !ok {
		return invalidArg(l, "commit", p)
	}
	if n < 0 || n >= len(c.c.Parents) {
		return l.fail(ErrNotFound, ClassInvalid, "parent %d does not exist", n)
	}
	id := c.c.Parents[n]
	pc, err := c.r.Store.ReadCommit(id)
	if err != nil {
		return l.lookupFail(err, "commit", id)
	}
	*out = l.alloc(KindCommit, &commitObj{r: c.r, id: id, c: pc})
	return OK
}

// CommitSpec describes a commit to create. Author and Committer are
// signature pointers.
type CommitSpec struct {
	Author    Ptr
	Committer Ptr
	Message   string
	Tree      object.Hash
	Parents   []object.Hash
}

func (l *Lib) buildCommit(r *repo.Repo, spec CommitSpec) (*object.CommitObj, int) {
	author, ok := l.signature(spec.Author)
	if !ok {
		return nil, invalidArg(l, "author", spec.Author)
	}
	committer, ok := l.signature(spec.Committer)
	if !ok {
		return nil, invalidArg(l, "committer", spec.Committer)
	}
	if _, err := r.Store.ReadTree(spec.Tree); err != nil {
		return nil, l.lookupFail(err, "tree", spec.Tree)
	}
	for _, p := range spec.Parents {
		if _, err := r.Store.ReadCommit(p); err != nil {
			return nil, l.lookupFail(err, "commit", p)
		}
	}
	return &object.CommitObj{
		TreeHash:  spec.Tree,
		Parents:   append([]object.Hash(nil), spec.Parents...),
		Author:    *author,
		Committer: *committer,
		Message:   spec.Message,
	}, OK
}

// CommitCreate writes a new commit and, when updateRef is non-empty, moves
// that reference to it. The reference must currently point at the first
// parent.
func (l *Lib) CommitCreate(out *object.Hash, repoPtr Ptr, updateRef string, spec CommitSpec) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	if updateRef != "" && !repo.ValidRefName(updateRef) {
		return l.fail(ErrInvalidSpec, ClassReference, "the given reference name '%s' is not valid", updateRef)
	}
	c, code := l.buildCommit(r, spec)
	if code != OK {
		return code
	}
	h, err := r.CreateCommit(updateRef, c)
	if err != nil {
		if errors.Is(err, repo.ErrRefCASMismatch) {
			return l.fail(ErrModified, ClassObject, "failed to create commit: current tip is not the first parent")
		}
		return l.fail(ErrGeneric, ClassObject, "%v", err)
	}
	*out = h
	return OK
}

// CommitCreateBuffer renders the commit that CommitCreate would write,
// without storing it. The result is the payload to sign.
func (l *Lib) CommitCreateBuffer(out *[]byte, repoPtr Ptr, spec CommitSpec) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	c, code := l.buildCommit(r, spec)
	if code != OK {
		return code
	}
	*out = object.MarshalCommit(c)
	return OK
}

// CommitCreateWithSignature stores a commit buffer from CommitCreateBuffer
// with signature attached. No reference is updated.
func (l *Lib) CommitCreateWithSignature(out *object.Hash, repoPtr Ptr, content []byte, signature string) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	c, err := object.UnmarshalCommit(content)
	if err != nil {
		return l.fail(ErrInvalid, ClassObject, "%v", err)
	}
	if strings.ContainsAny(signature, "\n") {
		return l.fail(ErrInvalid, ClassObject, "signature must be a single line")
	}
	c.Signature = signature
	h, err := r.Store.WriteCommit(c)
	if err != nil {
		return l.fail(ErrGeneric, ClassObject, "%v", err)
	}
	*out = h
	return OK
}

// CommitExtractSignature returns a commit's signature and the payload it
// signs. Unsigned commits fail with ErrNotFound.
func (l *Lib) CommitExtractSignature(signature *string, signed *[]byte, repoPtr Ptr, id object.Hash) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	c, err := r.Store.ReadCommit(id)
	if err != nil {
		return l.lookupFail(err, "commit", id)
	}
	if strings.TrimSpace(c.Signature) == "" {
		return l.fail(ErrNotFound, ClassObject, "this commit is not signed")
	}
	*signature = c.Signature
	*signed = object.CommitSigningPayload(c)
	return OK
}
