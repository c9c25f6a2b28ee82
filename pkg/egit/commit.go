package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
	"github.com/odvcencio/gotbind/pkg/object"
)

var commitBindings = []binding{
	{"git-commit-lookup", 2, 2, "Look up the commit ID in REPO.", commitLookup},
	{"git-commit-id", 1, 1, "Return the id of COMMIT.", commitID},
	{"git-commit-message", 1, 1, "Return the full message of COMMIT.", commitMessage},
	{"git-commit-summary", 1, 1, "Return the first line of the message of COMMIT.", commitSummary},
	{"git-commit-author", 1, 1, "Return the author of COMMIT. The signature borrows from COMMIT.", commitAuthor},
	{"git-commit-committer", 1, 1, "Return the committer of COMMIT. The signature borrows from COMMIT.", commitCommitter},
	{"git-commit-tree", 1, 1, "Return the root tree of COMMIT.", commitTree},
	{"git-commit-tree-id", 1, 1, "Return the id of the root tree of COMMIT.", commitTreeID},
	{"git-commit-parentcount", 1, 1, "Return the number of parents of COMMIT.", commitParentCount},
	{"git-commit-parent-id", 2, 2, "Return the id of parent N of COMMIT.", commitParentID},
	{"git-commit-parent", 2, 2, "Return parent N of COMMIT.", commitParent},
	{"git-commit-create", 6, host.Many, "Create a commit in REPO and move REF to it.\n\n(git-commit-create REPO REF AUTHOR COMMITTER MESSAGE TREE-ID &rest PARENTS)", commitCreate},
	{"git-commit-create-buffer", 5, host.Many, "Return the unsigned commit content for a commit.\n\n(git-commit-create-buffer REPO AUTHOR COMMITTER MESSAGE TREE-ID &rest PARENTS)", commitCreateBuffer},
	{"git-commit-create-with-signature", 3, 3, "Store commit CONTENT in REPO with SIGNATURE attached and return its id.", commitCreateWithSignature},
	{"git-commit-extract-signature", 2, 2, "Return (SIGNATURE . SIGNED-PAYLOAD) for the commit ID in REPO.", commitExtractSignature},
}

func commitLookup(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	id, err := hashArg(args[1])
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("commit_lookup", "id", id.Short(12))
	err = rt.check(rt.lib.CommitLookup(&out, r, id))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeCommit)
}

func commitID(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	return hashValue(rt.lib.CommitID(c)), nil
}

func commitMessage(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.CommitMessage(c)), nil
}

func commitSummary(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.CommitSummary(c)), nil
}

func commitAuthor(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	sig := rt.lib.CommitAuthor(c)
	if sig == native.Null {
		return nil, rangeError(args[0], host.Symbol("author"))
	}
	return rt.Wrap(env, sig, TypeSignature, args[0])
}

func commitCommitter(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	sig := rt.lib.CommitCommitter(c)
	if sig == native.Null {
		return nil, rangeError(args[0], host.Symbol("committer"))
	}
	return rt.Wrap(env, sig, TypeSignature, args[0])
}

func commitTree(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("commit_tree")
	err = rt.check(rt.lib.CommitTree(&out, c))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeTree)
}

func commitTreeID(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	return hashValue(rt.lib.CommitTreeID(c)), nil
}

func commitParentCount(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	return host.Int(rt.lib.CommitParentCount(c)), nil
}

func commitParentID(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	n, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	id := rt.lib.CommitParentID(c, n)
	if id == "" {
		return nil, rangeError(args[0], args[1])
	}
	return host.String(id), nil
}

func commitParent(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	c, err := rt.Extract(args[0], TypeCommit)
	if err != nil {
		return nil, err
	}
	n, err := intArg(args[1])
	if err != nil {
		return nil, err
	}
	if n < 0 || n >= rt.lib.CommitParentCount(c) {
		return nil, rangeError(args[0], args[1])
	}
	var out native.Ptr
	done := rt.logOp("commit_parent", "n", n)
	err = rt.check(rt.lib.CommitParent(&out, c, n))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeCommit)
}

// commitSpecArgs extracts AUTHOR COMMITTER MESSAGE TREE-ID &rest PARENTS.
func (rt *Runtime) commitSpecArgs(args []host.Value) (native.CommitSpec, error) {
	var spec native.CommitSpec
	var err error
	if spec.Author, err = rt.Extract(args[0], TypeSignature); err != nil {
		return spec, err
	}
	if spec.Committer, err = rt.Extract(args[1], TypeSignature); err != nil {
		return spec, err
	}
	if spec.Message, err = stringArg(args[2]); err != nil {
		return spec, err
	}
	if spec.Tree, err = hashArg(args[3]); err != nil {
		return spec, err
	}
	for _, p := range args[4:] {
		id, err := hashArg(p)
		if err != nil {
			return spec, err
		}
		spec.Parents = append(spec.Parents, id)
	}
	return spec, nil
}

func commitCreate(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	ref, err := optStringArg(args[1])
	if err != nil {
		return nil, err
	}
	spec, err := rt.commitSpecArgs(args[2:])
	if err != nil {
		return nil, err
	}
	var id object.Hash
	done := rt.logOp("commit_create", "ref", ref, "parents", len(spec.Parents))
	err = rt.check(rt.lib.CommitCreate(&id, r, ref, spec))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.String(id), nil
}

func commitCreateBuffer(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	spec, err := rt.commitSpecArgs(args[1:])
	if err != nil {
		return nil, err
	}
	var buf []byte
	done := rt.logOp("commit_create_buffer")
	err = rt.check(rt.lib.CommitCreateBuffer(&buf, r, spec))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.String(buf), nil
}

func commitCreateWithSignature(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	signature, err := stringArg(args[2])
	if err != nil {
		return nil, err
	}
	var id object.Hash
	done := rt.logOp("commit_create_with_signature")
	err = rt.check(rt.lib.CommitCreateWithSignature(&id, r, []byte(content), signature))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.String(id), nil
}

func commitExtractSignature(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	id, err := hashArg(args[1])
	if err != nil {
		return nil, err
	}
	var signature string
	var payload []byte
	done := rt.logOp("commit_extract_signature", "id", id.Short(12))
	err = rt.check(rt.lib.CommitExtractSignature(&signature, &payload, r, id))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.NewCons(host.String(signature), host.String(payload)), nil
}
