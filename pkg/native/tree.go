package native

import (
	"sort"
	"strconv"

	"github.com/odvcencio/gotbind/pkg/object"
	"github.com/odvcencio/gotbind/pkg/repo"
)

type treeObj struct {
	id object.Hash
	t  *object.TreeObj
}

// TreeLookup loads a tree by id.
func (l *Lib) TreeLookup(out *Ptr, repoPtr Ptr, id object.Hash) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	return l.treeLookup(out, r, id)
}

func (l *Lib) treeLookup(out *Ptr, r *repo.Repo, id object.Hash) int {
	t, err := r.Store.ReadTree(id)
	if err != nil {
		return l.lookupFail(err, "tree", id)
	}
	*out = l.alloc(KindTree, &treeObj{id: id, t: t})
	return OK
}

// TreeFree releases a tree and invalidates its entry pointers.
func (l *Lib) TreeFree(p Ptr) {
	defer l.enter()()
	l.free(p, KindTree)
}

func (l *Lib) tree(p Ptr) (*treeObj, bool) {
	o, ok := l.get(p, KindTree)
	if !ok {
		return nil, false
	}
	return o.(*treeObj), true
}

// TreeID returns the tree's id.
func (l *Lib) TreeID(p Ptr) object.Hash {
	defer l.enter()()
	if t, ok := l.tree(p); ok {
		return t.id
	}
	return ""
}

// TreeEntryCount returns the number of entries.
func (l *Lib) TreeEntryCount(p Ptr) int {
	defer l.enter()()
	if t, ok := l.tree(p); ok {
		return len(t.t.Entries)
	}
	return 0
}

// TreeEntryByIndex returns an interior pointer to entry idx, or Null.
func (l *Lib) TreeEntryByIndex(p Ptr, idx int) Ptr {
	defer l.enter()()
	t, ok := l.tree(p)
	if !ok || idx < 0 || idx >= len(t.t.Entries) {
		return Null
	}
	return l.interiorPtr(p, KindTreeEntry, &t.t.Entries[idx])
}

// TreeEntryByName returns an interior pointer to the named entry, or Null.
func (l *Lib) TreeEntryByName(p Ptr, name string) Ptr {
	defer l.enter()()
	t, ok := l.tree(p)
	if !ok {
		return Null
	}
	for i := range t.t.Entries {
		if t.t.Entries[i].Name == name {
			return l.interiorPtr(p, KindTreeEntry, &t.t.Entries[i])
		}
	}
	return Null
}

func (l *Lib) treeEntry(p Ptr) (*object.TreeEntry, bool) {
	o, ok := l.get(p, KindTreeEntry)
	if !ok {
		return nil, false
	}
	return o.(*object.TreeEntry), true
}

// TreeEntryName returns the entry's file name.
func (l *Lib) TreeEntryName(p Ptr) string {
	defer l.enter()()
	if e, ok := l.treeEntry(p); ok {
		return e.Name
	}
	return ""
}

// TreeEntryID returns the id of the blob or subtree.
func (l *Lib) TreeEntryID(p Ptr) object.Hash {
	defer l.enter()()
	if e, ok := l.treeEntry(p); ok {
		return e.Hash
	}
	return ""
}

// TreeEntryFilemode returns the entry mode as an integer (0o100644 ...).
func (l *Lib) TreeEntryFilemode(p Ptr) int {
	defer l.enter()()
	e, ok := l.treeEntry(p)
	if !ok {
		return 0
	}
	mode, err := strconv.ParseInt(e.Mode, 8, 32)
	if err != nil {
		return 0
	}
	return int(mode)
}

// TreeCreate writes a tree built from entries. Names must be unique and
// every referenced object must exist.
func (l *Lib) TreeCreate(out *object.Hash, repoPtr Ptr, entries []object.TreeEntry) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	sorted := append([]object.TreeEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for i, e := range sorted {
		if e.Name == "" || e.Name == "." || e.Name == ".." {
			return l.fail(ErrInvalid, ClassObject, "failed to insert entry: invalid name '%s'", e.Name)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return l.fail(ErrExists, ClassObject, "duplicate tree entry '%s'", e.Name)
		}
		want := object.TypeBlob
		switch e.Mode {
		case object.TreeModeDir:
			want = object.TypeTree
		case object.TreeModeFile, object.TreeModeExecutable:
		default:
			return l.fail(ErrInvalid, ClassObject, "failed to insert entry: invalid filemode for file '%s'", e.Name)
		}
		typ, _, err := r.Store.Read(e.Hash)
		if err != nil {
			return l.lookupFail(err, string(want), e.Hash)
		}
		if typ != want {
			return l.fail(ErrInvalid, ClassObject, "entry '%s' is a %s, want %s", e.Name, typ, want)
		}
	}
	h, err := r.Store.WriteTree(&object.TreeObj{Entries: sorted})
	if err != nil {
		return l.fail(ErrGeneric, ClassObject, "%v", err)
	}
	*out = h
	return OK
}
