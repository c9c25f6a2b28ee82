package host

import "sort"

// GC runs a full mark-and-sweep collection over user pointers. Roots are
// globals and protected values. Unreachable user pointers are removed and
// their finalizers run, most recently allocated first. It returns the
// number of finalized user pointers.
func (e *Env) GC() int {
	marked := make(map[uint64]bool, len(e.heap))
	var stack []Value
	for _, v := range e.globals {
		stack = append(stack, v)
	}
	for v := range e.protected {
		stack = append(stack, v)
	}

	seen := make(map[*Cons]bool)
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch x := v.(type) {
		case *Cons:
			if seen[x] {
				continue
			}
			seen[x] = true
			stack = append(stack, x.Car, x.Cdr)
		case *UserPtr:
			if marked[x.id] {
				continue
			}
			marked[x.id] = true
			stack = append(stack, x.refs...)
		}
	}

	var dead []*UserPtr
	for id, u := range e.heap {
		if !marked[id] {
			dead = append(dead, u)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i].id > dead[j].id })

	for _, u := range dead {
		delete(e.heap, u.id)
	}
	for _, u := range dead {
		e.finalize(u)
	}
	e.stats.Collections++
	return len(dead)
}

// Shutdown finalizes every remaining user pointer, as at process exit.
func (e *Env) Shutdown() int {
	e.globals = make(map[Symbol]Value)
	e.protected = make(map[Value]int)
	return e.GC()
}

func (e *Env) finalize(u *UserPtr) {
	if u.finalized {
		return
	}
	u.finalized = true
	e.stats.Finalized++
	if u.fin != nil {
		u.fin(u.payload)
	}
	u.refs = nil
}
