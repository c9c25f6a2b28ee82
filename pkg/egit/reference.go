package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

var referenceBindings = []binding{
	{"git-reference-lookup", 2, 2, "Look up the reference NAME in REPO.", referenceLookup},
	{"git-reference-name", 1, 1, "Return the full name of REF.", referenceName},
	{"git-reference-target", 1, 1, "Return the object id REF points at.", referenceTarget},
	{"git-reference-create", 3, 5, "Point NAME in REPO at ID, optionally with FORCE and a reflog MESSAGE.", referenceCreate},
}

func referenceLookup(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("reference_lookup", "name", name)
	err = rt.check(rt.lib.ReferenceLookup(&out, r, name))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeReference)
}

func referenceName(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	ref, err := rt.Extract(args[0], TypeReference)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.ReferenceName(ref)), nil
}

func referenceTarget(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	ref, err := rt.Extract(args[0], TypeReference)
	if err != nil {
		return nil, err
	}
	return hashValue(rt.lib.ReferenceTarget(ref)), nil
}

func referenceCreate(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	name, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	id, err := hashArg(args[2])
	if err != nil {
		return nil, err
	}
	force := !host.IsNil(optArg(args, 3))
	msg, err := optStringArg(optArg(args, 4))
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("reference_create", "name", name, "id", id.Short(12), "force", force)
	err = rt.check(rt.lib.ReferenceCreate(&out, r, name, id, force, msg))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeReference)
}
