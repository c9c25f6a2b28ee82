package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
	"github.com/odvcencio/gotbind/pkg/object"
)

var reflogBindings = []binding{
	{"git-reflog-read", 2, 2, "Read the reflog of REFNAME in REPO.", reflogRead},
	{"git-reflog-entry-byindex", 2, 2, "Return entry N of REFLOG, 0 being the most recent.", reflogEntryByIndex},
	{"git-reflog-entry-committer", 1, 1, "Return a copy of the committer signature of ENTRY.", reflogEntryCommitter},
	{"git-reflog-entry-id", 2, 2, "Return the old or new id of ENTRY. SIDE is the symbol old or new.", reflogEntryID},
	{"git-reflog-entry-message", 1, 1, "Return the message of ENTRY.", reflogEntryMessage},
	{"git-reflog-entrycount", 1, 1, "Return the number of entries in REFLOG.", reflogEntryCount},
	{"git-reflog-append", 3, 4, "Add a new entry for ID by COMMITTER to REFLOG, with optional MESSAGE.", reflogAppend},
	{"git-reflog-drop", 2, 3, "Remove entry N from REFLOG. With REWRITE keep the history contiguous.", reflogDrop},
	{"git-reflog-write", 1, 1, "Write REFLOG back to disk.", reflogWrite},
	{"git-reflog-delete", 2, 2, "Delete the reflog of REFNAME in REPO.", reflogDelete},
	{"git-reflog-rename", 3, 3, "Rename the reflog of OLD to NEW in REPO.", reflogRename},
}

const (
	qOld host.Symbol = "old"
	qNew host.Symbol = "new"
)

func reflogRead(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("reflog_read", "ref", name)
	err = rt.check(rt.lib.ReflogRead(&out, r, name))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeReflog)
}

func reflogEntryByIndex(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	rl, err := rt.Extract(args[0], TypeReflog)
	if err != nil {
		return nil, err
	}
	idx, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	entry := rt.lib.ReflogEntryByIndex(rl, idx)
	if entry == native.Null {
		return nil, rangeError(args[0], args[1])
	}
	return rt.Wrap(env, entry, TypeReflogEntry, args[0])
}

// reflogEntryCommitter duplicates the committer so the result owns its
// memory and outlives the reflog.
func reflogEntryCommitter(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	entry, err := rt.Extract(args[0], TypeReflogEntry)
	if err != nil {
		return nil, err
	}
	sig := rt.lib.ReflogEntryCommitter(entry)
	if sig == native.Null {
		return nil, rangeError(args[0], host.Symbol("committer"))
	}
	var dup native.Ptr
	done := rt.logOp("signature_dup")
	err = rt.check(rt.lib.SignatureDup(&dup, sig))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, dup, TypeSignature)
}

func reflogEntryID(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	entry, err := rt.Extract(args[0], TypeReflogEntry)
	if err != nil {
		return nil, err
	}
	side, err := symbolArg(args[1])
	if err != nil {
		return nil, err
	}
	var id object.Hash
	switch side {
	case qOld:
		id = rt.lib.ReflogEntryIDOld(entry)
	case qNew:
		id = rt.lib.ReflogEntryIDNew(entry)
	default:
		return nil, wrongValue(args[1])
	}
	return hashValue(id), nil
}

func reflogEntryMessage(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	entry, err := rt.Extract(args[0], TypeReflogEntry)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.ReflogEntryMessage(entry)), nil
}

func reflogEntryCount(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	rl, err := rt.Extract(args[0], TypeReflog)
	if err != nil {
		return nil, err
	}
	return host.Int(rt.lib.ReflogEntryCount(rl)), nil
}

func reflogAppend(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	rl, err := rt.Extract(args[0], TypeReflog)
	if err != nil {
		return nil, err
	}
	id, err := hashArg(args[1])
	if err != nil {
		return nil, err
	}
	committer, err := rt.Extract(args[2], TypeSignature)
	if err != nil {
		return nil, err
	}
	msg, err := optStringArg(optArg(args, 3))
	if err != nil {
		return nil, err
	}
	done := rt.logOp("reflog_append", "id", id.Short(12))
	err = rt.check(rt.lib.ReflogAppend(rl, id, committer, msg))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.Nil, nil
}

func reflogDrop(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	h, err := rt.ExtractHandle(args[0], TypeReflog)
	if err != nil {
		return nil, err
	}
	idx, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= rt.lib.ReflogEntryCount(h.ptr) {
		return nil, rangeError(args[0], args[1])
	}
	rewrite := !host.IsNil(optArg(args, 2))
	done := rt.logOp("reflog_drop", "index", idx, "rewrite", rewrite)
	err = rt.check(rt.lib.ReflogDrop(h.ptr, idx, rewrite))
	done(err)
	if err != nil {
		return nil, err
	}
	rt.invalidateStale(h)
	return host.T, nil
}

func reflogWrite(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	rl, err := rt.Extract(args[0], TypeReflog)
	if err != nil {
		return nil, err
	}
	done := rt.logOp("reflog_write")
	err = rt.check(rt.lib.ReflogWrite(rl))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.T, nil
}

func reflogDelete(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	done := rt.logOp("reflog_delete", "ref", name)
	err = rt.check(rt.lib.ReflogDelete(r, name))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.T, nil
}

func reflogRename(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	oldName, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	newName, err := stringArg(args[2])
	if err != nil {
		return nil, err
	}
	done := rt.logOp("reflog_rename", "old", oldName, "new", newName)
	err = rt.check(rt.lib.ReflogRename(r, oldName, newName))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.T, nil
}
