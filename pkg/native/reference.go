package native

import (
	"errors"

	"github.com/odvcencio/gotbind/pkg/object"
	"github.com/odvcencio/gotbind/pkg/repo"
)

type refObj struct {
	name   string
	target object.Hash
}

// ReferenceLookup resolves a full reference name.
func (l *Lib) ReferenceLookup(out *Ptr, repoPtr Ptr, name string) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	if !repo.ValidRefName(name) {
		return l.fail(ErrInvalidSpec, ClassReference, "the given reference name '%s' is not valid", name)
	}
	target, err := r.ReadRef(name)
	if err != nil {
		if errors.Is(err, repo.ErrRefNotFound) {
			return l.fail(ErrNotFound, ClassReference, "reference '%s' not found", name)
		}
		return l.fail(ErrGeneric, ClassReference, "%v", err)
	}
	*out = l.alloc(KindReference, &refObj{name: name, target: target})
	return OK
}

// ReferenceCreate points name at id. Without force an existing reference is
// an ErrExists failure. The change is recorded in the reflog with the
// repository's default signature.
func (l *Lib) ReferenceCreate(out *Ptr, repoPtr Ptr, name string, id object.Hash, force bool, logMessage string) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	if !repo.ValidRefName(name) || name == "HEAD" {
		return l.fail(ErrInvalidSpec, ClassReference, "the given reference name '%s' is not valid", name)
	}
	if _, err := object.ParseHash(string(id)); err != nil {
		return l.fail(ErrInvalid, ClassInvalid, "%v", err)
	}
	u := repo.RefUpdate{
		Name:      name,
		Hash:      id,
		Committer: defaultSignature(r),
		Message:   logMessage,
	}
	if !force {
		u.ExpectedOld = object.ZeroHash
	}
	if err := r.UpdateRef(u); err != nil {
		if errors.Is(err, repo.ErrRefCASMismatch) {
			return l.fail(ErrExists, ClassReference, "failed to write reference '%s': a reference with that name already exists", name)
		}
		return l.fail(ErrGeneric, ClassReference, "%v", err)
	}
	*out = l.alloc(KindReference, &refObj{name: name, target: id})
	return OK
}

// ReferenceFree releases a reference.
func (l *Lib) ReferenceFree(p Ptr) {
	defer l.enter()()
	l.free(p, KindReference)
}

// ReferenceName returns the full name of the reference.
func (l *Lib) ReferenceName(p Ptr) string {
	defer l.enter()()
	o, ok := l.get(p, KindReference)
	if !ok {
		return ""
	}
	return o.(*refObj).name
}

// ReferenceTarget returns the object id the reference points at.
func (l *Lib) ReferenceTarget(p Ptr) object.Hash {
	defer l.enter()()
	o, ok := l.get(p, KindReference)
	if !ok {
		return ""
	}
	return o.(*refObj).target
}
