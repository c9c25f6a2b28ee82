package egit

import (
	"strconv"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
	"github.com/odvcencio/gotbind/pkg/object"
)

var treeBindings = []binding{
	{"git-tree-lookup", 2, 2, "Look up the tree ID in REPO.", treeLookup},
	{"git-tree-id", 1, 1, "Return the id of TREE.", treeID},
	{"git-tree-entrycount", 1, 1, "Return the number of entries in TREE.", treeEntryCount},
	{"git-tree-entry-byindex", 2, 2, "Return entry N of TREE.", treeEntryByIndex},
	{"git-tree-entry-byname", 2, 2, "Return the entry of TREE called NAME.", treeEntryByName},
	{"git-tree-entry-name", 1, 1, "Return the file name of ENTRY.", treeEntryName},
	{"git-tree-entry-id", 1, 1, "Return the id of the object ENTRY refers to.", treeEntryID},
	{"git-tree-entry-filemode", 1, 1, "Return the file mode of ENTRY as an integer.", treeEntryFilemode},
	{"git-tree-create", 2, 2, "Write a tree to REPO from ENTRIES, a list of (NAME MODE ID).", treeCreate},
}

func treeLookup(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	id, err := hashArg(args[1])
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("tree_lookup", "id", id.Short(12))
	err = rt.check(rt.lib.TreeLookup(&out, r, id))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeTree)
}

func treeID(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	t, err := rt.Extract(args[0], TypeTree)
	if err != nil {
		return nil, err
	}
	return hashValue(rt.lib.TreeID(t)), nil
}

func treeEntryCount(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	t, err := rt.Extract(args[0], TypeTree)
	if err != nil {
		return nil, err
	}
	return host.Int(rt.lib.TreeEntryCount(t)), nil
}

func treeEntryByIndex(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	t, err := rt.Extract(args[0], TypeTree)
	if err != nil {
		return nil, err
	}
	idx, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	entry := rt.lib.TreeEntryByIndex(t, idx)
	if entry == native.Null {
		return nil, rangeError(args[0], args[1])
	}
	return rt.Wrap(env, entry, TypeTreeEntry, args[0])
}

func treeEntryByName(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	t, err := rt.Extract(args[0], TypeTree)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	entry := rt.lib.TreeEntryByName(t, name)
	if entry == native.Null {
		return nil, rangeError(args[0], args[1])
	}
	return rt.Wrap(env, entry, TypeTreeEntry, args[0])
}

func treeEntryName(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	e, err := rt.Extract(args[0], TypeTreeEntry)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.TreeEntryName(e)), nil
}

func treeEntryID(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	e, err := rt.Extract(args[0], TypeTreeEntry)
	if err != nil {
		return nil, err
	}
	return hashValue(rt.lib.TreeEntryID(e)), nil
}

func treeEntryFilemode(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	e, err := rt.Extract(args[0], TypeTreeEntry)
	if err != nil {
		return nil, err
	}
	return host.Int(rt.lib.TreeEntryFilemode(e)), nil
}

func treeCreate(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	items, ok := host.ListValues(args[1])
	if !ok {
		return nil, typeMismatch("listp", args[1])
	}
	entries := make([]object.TreeEntry, 0, len(items))
	for _, item := range items {
		e, err := treeEntryArg(item)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	var id object.Hash
	done := rt.logOp("tree_create", "entries", len(entries))
	err = rt.check(rt.lib.TreeCreate(&id, r, entries))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.String(id), nil
}

// treeEntryArg parses one (NAME MODE ID) element.
func treeEntryArg(v host.Value) (object.TreeEntry, error) {
	fields, ok := host.ListValues(v)
	if !ok || len(fields) != 3 {
		return object.TreeEntry{}, wrongValue(v)
	}
	name, err := stringArg(fields[0])
	if err != nil {
		return object.TreeEntry{}, err
	}
	mode, err := intArg(fields[1])
	if err != nil {
		return object.TreeEntry{}, err
	}
	id, err := hashArg(fields[2])
	if err != nil {
		return object.TreeEntry{}, err
	}
	return object.TreeEntry{Name: name, Mode: strconv.FormatInt(int64(mode), 8), Hash: id}, nil
}
