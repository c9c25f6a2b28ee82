package host

import (
	"fmt"
	"sort"
)

// Env is one host environment. It is not safe for concurrent use.
type Env struct {
	globals   map[Symbol]Value
	funcs     map[Symbol]*Function
	protected map[Value]int
	heap      map[uint64]*UserPtr
	nextID    uint64
	exit      *Signal
	stats     Stats
}

// Stats describes the user-pointer heap.
type Stats struct {
	Live        int
	Allocated   uint64
	Finalized   uint64
	Collections uint64
}

// NewEnv returns an empty environment.
func NewEnv() *Env {
	return &Env{
		globals:   make(map[Symbol]Value),
		funcs:     make(map[Symbol]*Function),
		protected: make(map[Value]int),
		heap:      make(map[uint64]*UserPtr),
	}
}

// MakeUserPtr allocates a user pointer. refs stay reachable for as long as
// the returned value is reachable.
func (e *Env) MakeUserPtr(fin Finalizer, payload any, refs ...Value) *UserPtr {
	e.nextID++
	u := &UserPtr{id: e.nextID, payload: payload, fin: fin}
	for _, r := range refs {
		if !IsNil(r) {
			u.refs = append(u.refs, r)
		}
	}
	e.heap[u.id] = u
	e.stats.Allocated++
	return u
}

// Stats returns heap counters.
func (e *Env) Stats() Stats {
	s := e.stats
	s.Live = len(e.heap)
	return s
}

// Set binds a global variable. Globals are collector roots.
func (e *Env) Set(sym Symbol, v Value) {
	if IsNil(v) {
		delete(e.globals, sym)
		return
	}
	e.globals[sym] = v
}

// Get returns the value of a global, or Nil.
func (e *Env) Get(sym Symbol) Value {
	if v, ok := e.globals[sym]; ok {
		return v
	}
	return Nil
}

// Protect roots v until a matching Unprotect.
func (e *Env) Protect(v Value) {
	if IsNil(v) {
		return
	}
	e.protected[v]++
}

// Unprotect undoes one Protect.
func (e *Env) Unprotect(v Value) {
	n := e.protected[v]
	switch {
	case n <= 1:
		delete(e.protected, v)
	default:
		e.protected[v] = n - 1
	}
}

// Defun installs f in the function table, replacing any previous binding.
func (e *Env) Defun(f *Function) {
	e.funcs[f.Name] = f
}

// Fboundp reports whether name has a function binding.
func (e *Env) Fboundp(name Symbol) bool {
	_, ok := e.funcs[name]
	return ok
}

// Functions lists the bound function names in sorted order.
func (e *Env) Functions() []Symbol {
	out := make([]Symbol, 0, len(e.funcs))
	for name := range e.funcs {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Funcall calls the function bound to name. A signal raised by the
// function is cleared and returned as a *Signal error.
func (e *Env) Funcall(name Symbol, args ...Value) (Value, error) {
	if e.exit != nil {
		return Nil, fmt.Errorf("funcall %s: %w", name, e.take())
	}
	f, ok := e.funcs[name]
	if !ok {
		e.Signal(QVoidFunction, List(name))
		return Nil, e.take()
	}
	if len(args) < f.MinArgs || (f.MaxArgs != Many && len(args) > f.MaxArgs) {
		e.Signal(QWrongNumberOfArguments, List(name, Int(len(args))))
		return Nil, e.take()
	}
	out := f.Fn(e, args)
	if e.exit != nil {
		return Nil, e.take()
	}
	if out == nil {
		out = Nil
	}
	return out, nil
}

func (e *Env) take() *Signal {
	s := e.exit
	e.exit = nil
	return s
}
