package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

var repositoryBindings = []binding{
	{"git-repository-init", 1, 1, "Create a repository at PATH and return it.", repositoryInit},
	{"git-repository-open", 1, 1, "Open the repository containing PATH.", repositoryOpen},
	{"git-repository-path", 1, 1, "Return the metadata directory of REPO.", repositoryPath},
	{"git-repository-workdir", 1, 1, "Return the working directory of REPO.", repositoryWorkdir},
	{"git-repository-head", 1, 1, "Return the reference HEAD of REPO points at.", repositoryHead},
}

func repositoryInit(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	path, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("repository_init", "path", path)
	err = rt.check(rt.lib.RepositoryInit(&out, path))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeRepository)
}

func repositoryOpen(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	path, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("repository_open", "path", path)
	err = rt.check(rt.lib.RepositoryOpen(&out, path))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeRepository)
}

func repositoryPath(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.RepositoryPath(r)), nil
}

func repositoryWorkdir(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.RepositoryWorkdir(r)), nil
}

func repositoryHead(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("repository_head")
	err = rt.check(rt.lib.RepositoryHead(&out, r))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeReference)
}

// wrapOwned wraps a freshly allocated pointer, freeing it if the wrap
// fails so nothing leaks.
func (rt *Runtime) wrapOwned(env *host.Env, ptr native.Ptr, typ Type) (host.Value, error) {
	v, err := rt.Wrap(env, ptr, typ, host.Nil)
	if err != nil {
		if typ.Ownable() && ptr != native.Null {
			registry[typ].free(rt.lib, ptr)
		}
		return nil, err
	}
	return v, nil
}
