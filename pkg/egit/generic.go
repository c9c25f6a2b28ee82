package egit

import "github.com/odvcencio/gotbind/pkg/host"

var genericBindings = []binding{
	{"git-typeof", 1, 1, "Return the type of git object OBJ as a symbol, or nil.", gitTypeOf},
	{"git-free", 1, 1, "Release OBJ now instead of when it is collected.", gitFree},
}

func gitTypeOf(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	t, ok := rt.TypeOf(args[0])
	if !ok {
		return host.Nil, nil
	}
	return t.Symbol(), nil
}

func gitFree(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	if err := rt.Release(args[0]); err != nil {
		return nil, err
	}
	return host.Nil, nil
}
