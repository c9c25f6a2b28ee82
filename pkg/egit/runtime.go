// Package egit binds the native version-control library to the host
// runtime. Native pointers cross into the host as type-tagged handles;
// handles that borrow memory from another handle keep it reachable and
// unfreed until they are finalized themselves.
package egit

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

// Runtime owns the bookkeeping for every handle wrapped over one native
// library instance.
type Runtime struct {
	lib    *native.Lib
	logger *log.Logger
	stats  Stats
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger traces native calls and handle lifecycle events to l.
func WithLogger(l *log.Logger) Option {
	return func(rt *Runtime) { rt.logger = l }
}

// New returns a runtime over lib.
func New(lib *native.Lib, opts ...Option) *Runtime {
	rt := &Runtime{lib: lib}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Lib returns the underlying native library.
func (rt *Runtime) Lib() *native.Lib { return rt.lib }

// logOp starts tracing one native call. Call the result with the outcome.
//
//	done := rt.logOp("reflog_read", "ref", name)
//	err := rt.check(rt.lib.ReflogRead(&out, repo, name))
//	done(err)
func (rt *Runtime) logOp(op string, keyvals ...any) func(error) {
	if rt.logger == nil {
		return func(error) {}
	}
	start := time.Now()
	return func(err error) {
		args := make([]any, 0, len(keyvals)+6)
		args = append(args, "op", op, "duration", time.Since(start).String())
		args = append(args, keyvals...)
		if err != nil {
			args = append(args, "error", err.Error())
			rt.logger.Warn("native call failed", args...)
			return
		}
		rt.logger.Debug("native call", args...)
	}
}

func (rt *Runtime) debug(msg string, keyvals ...any) {
	if rt.logger != nil {
		rt.logger.Debug(msg, keyvals...)
	}
}

type wrapperFunc func(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error)

type binding struct {
	name host.Symbol
	min  int
	max  int
	doc  string
	fn   wrapperFunc
}

var bindingTables = [][]binding{
	repositoryBindings,
	referenceBindings,
	signatureBindings,
	reflogBindings,
	commitBindings,
	treeBindings,
	blobBindings,
	genericBindings,
}

// Install defines every git-* function in env.
func (rt *Runtime) Install(env *host.Env) {
	for _, table := range bindingTables {
		for _, b := range table {
			b := b
			env.Defun(&host.Function{
				Name:    b.name,
				MinArgs: b.min,
				MaxArgs: b.max,
				Doc:     b.doc,
				Fn: func(env *host.Env, args []host.Value) host.Value {
					v, err := b.fn(rt, env, args)
					if err != nil {
						signal(env, err)
						return host.Nil
					}
					return v
				},
			})
		}
	}
	for _, t := range Types() {
		t := t
		env.Defun(&host.Function{
			Name:    t.Predicate(),
			MinArgs: 1,
			MaxArgs: 1,
			Doc:     "Return t if OBJ is a git " + t.String() + ".",
			Fn: func(env *host.Env, args []host.Value) host.Value {
				return host.Bool(rt.IsType(args[0], t))
			},
		})
	}
	rt.debug("installed", "functions", len(env.Functions()))
}
