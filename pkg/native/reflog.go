package native

import (
	"errors"

	"github.com/odvcencio/gotbind/pkg/object"
	"github.com/odvcencio/gotbind/pkg/repo"
)

type reflogObj struct {
	r       *repo.Repo
	name    string
	entries []*reflogEntry // newest first
}

type reflogEntry struct {
	oldID     object.Hash
	newID     object.Hash
	committer object.Signature
	message   string
}

// ReflogRead loads the reflog of a reference. A reference without a log
// yields an empty reflog, not an error.
func (l *Lib) ReflogRead(out *Ptr, repoPtr Ptr, name string) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	if !repo.ValidRefName(name) {
		return l.fail(ErrInvalidSpec, ClassReference, "the given reference name '%s' is not valid", name)
	}
	entries, err := r.ReadReflog(name)
	if err != nil {
		return l.fail(ErrGeneric, ClassReflog, "%v", err)
	}
	rl := &reflogObj{r: r, name: name, entries: make([]*reflogEntry, 0, len(entries))}
	for _, e := range entries {
		rl.entries = append(rl.entries, &reflogEntry{
			oldID:     e.OldHash,
			newID:     e.NewHash,
			committer: e.Committer,
			message:   e.Message,
		})
	}
	*out = l.alloc(KindReflog, rl)
	return OK
}

// ReflogFree releases a reflog and invalidates every entry pointer
// obtained from it.
func (l *Lib) ReflogFree(p Ptr) {
	defer l.enter()()
	l.free(p, KindReflog)
}

func (l *Lib) reflog(p Ptr) (*reflogObj, bool) {
	o, ok := l.get(p, KindReflog)
	if !ok {
		return nil, false
	}
	return o.(*reflogObj), true
}

// ReflogEntryCount returns the number of entries.
func (l *Lib) ReflogEntryCount(p Ptr) int {
	defer l.enter()()
	rl, ok := l.reflog(p)
	if !ok {
		return 0
	}
	return len(rl.entries)
}

// ReflogEntryByIndex returns an interior pointer to entry idx, where 0 is
// the most recent entry. Out-of-range indices yield Null.
func (l *Lib) ReflogEntryByIndex(p Ptr, idx int) Ptr {
	defer l.enter()()
	rl, ok := l.reflog(p)
	if !ok || idx < 0 || idx >= len(rl.entries) {
		return Null
	}
	return l.interiorPtr(p, KindReflogEntry, rl.entries[idx])
}

func (l *Lib) reflogEntry(p Ptr) (*reflogEntry, bool) {
	o, ok := l.get(p, KindReflogEntry)
	if !ok {
		return nil, false
	}
	return o.(*reflogEntry), true
}

// ReflogEntryIDOld returns the id the reference pointed at before the
// change.
func (l *Lib) ReflogEntryIDOld(p Ptr) object.Hash {
	defer l.enter()()
	if e, ok := l.reflogEntry(p); ok {
		return e.oldID
	}
	return ""
}

// ReflogEntryIDNew returns the id the reference pointed at after the
// change.
func (l *Lib) ReflogEntryIDNew(p Ptr) object.Hash {
	defer l.enter()()
	if e, ok := l.reflogEntry(p); ok {
		return e.newID
	}
	return ""
}

// ReflogEntryCommitter returns an interior pointer to the entry's
// committer signature.
func (l *Lib) ReflogEntryCommitter(p Ptr) Ptr {
	defer l.enter()()
	e, ok := l.reflogEntry(p)
	if !ok {
		return Null
	}
	return l.interiorPtr(p, KindSignature, &e.committer)
}

// ReflogEntryMessage returns the entry's message.
func (l *Lib) ReflogEntryMessage(p Ptr) string {
	defer l.enter()()
	if e, ok := l.reflogEntry(p); ok {
		return e.message
	}
	return ""
}

// ReflogAppend adds a new most-recent entry in memory. Its old id is the
// new id of the previous most-recent entry. Existing entry pointers stay
// valid.
func (l *Lib) ReflogAppend(p Ptr, id object.Hash, committer Ptr, message string) int {
	defer l.enter()()
	rl, ok := l.reflog(p)
	if !ok {
		return invalidArg(l, "reflog", p)
	}
	sig, ok := l.signature(committer)
	if !ok {
		return invalidArg(l, "signature", committer)
	}
	if _, err := object.ParseHash(string(id)); err != nil {
		return l.fail(ErrInvalid, ClassInvalid, "%v", err)
	}
	old := object.ZeroHash
	if len(rl.entries) > 0 {
		old = rl.entries[0].newID
	}
	e := &reflogEntry{oldID: old, newID: id, committer: *sig, message: message}
	rl.entries = append([]*reflogEntry{e}, rl.entries...)
	return OK
}

// ReflogDrop removes entry idx. With rewritePrevious the next newer entry's
// old id is rewritten so the history stays contiguous. Pointers to the
// dropped entry become invalid.
func (l *Lib) ReflogDrop(p Ptr, idx int, rewritePrevious bool) int {
	defer l.enter()()
	rl, ok := l.reflog(p)
	if !ok {
		return invalidArg(l, "reflog", p)
	}
	if idx < 0 || idx >= len(rl.entries) {
		return l.fail(ErrNotFound, ClassReflog, "no reflog entry at index %d", idx)
	}
	dropped := rl.entries[idx]
	l.invalidateInterior(p, dropped)
	rl.entries = append(rl.entries[:idx], rl.entries[idx+1:]...)

	if !rewritePrevious || idx == 0 || len(rl.entries) == 0 {
		return OK
	}
	newer := rl.entries[idx-1]
	if idx == len(rl.entries) {
		newer.oldID = object.ZeroHash
		return OK
	}
	newer.oldID = rl.entries[idx].newID
	return OK
}

func (l *Lib) invalidateInterior(owner Ptr, obj any) {
	oc := l.cells[owner]
	kept := oc.interior[:0]
	for _, ip := range oc.interior {
		if l.cells[ip].obj == obj {
			l.invalidate(ip)
			continue
		}
		kept = append(kept, ip)
	}
	oc.interior = kept
}

// ReflogWrite persists the in-memory reflog.
func (l *Lib) ReflogWrite(p Ptr) int {
	defer l.enter()()
	rl, ok := l.reflog(p)
	if !ok {
		return invalidArg(l, "reflog", p)
	}
	entries := make([]repo.ReflogEntry, 0, len(rl.entries))
	for _, e := range rl.entries {
		entries = append(entries, repo.ReflogEntry{
			OldHash:   e.oldID,
			NewHash:   e.newID,
			Committer: e.committer,
			Message:   e.message,
		})
	}
	if err := rl.r.WriteReflog(rl.name, entries); err != nil {
		return l.fail(ErrGeneric, ClassReflog, "%v", err)
	}
	return OK
}

// ReflogDelete removes the reflog of name from disk.
func (l *Lib) ReflogDelete(repoPtr Ptr, name string) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	if !repo.ValidRefName(name) {
		return l.fail(ErrInvalidSpec, ClassReference, "the given reference name '%s' is not valid", name)
	}
	if err := r.DeleteReflog(name); err != nil {
		return l.fail(ErrGeneric, ClassReflog, "%v", err)
	}
	return OK
}

// ReflogRename moves the reflog of oldName to newName.
func (l *Lib) ReflogRename(repoPtr Ptr, oldName, newName string) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	for _, n := range []string{oldName, newName} {
		if !repo.ValidRefName(n) {
			return l.fail(ErrInvalidSpec, ClassReference, "the given reference name '%s' is not valid", n)
		}
	}
	if err := r.RenameReflog(oldName, newName); err != nil {
		switch {
		case errors.Is(err, repo.ErrExists):
			return l.fail(ErrExists, ClassReflog, "%v", err)
		case errors.Is(err, repo.ErrRefNotFound):
			return l.fail(ErrNotFound, ClassReflog, "%v", err)
		}
		return l.fail(ErrGeneric, ClassReflog, "%v", err)
	}
	return OK
}
