package egit

import (
	"fmt"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

// qAnyHandle is the predicate reported when any handle type is accepted.
const qAnyHandle host.Symbol = "git-object-p"

// Wrap turns a native pointer into a host value. With a nil parent the
// returned handle owns ptr and frees it when finalized. Otherwise it
// borrows from parent, which stays reachable and unfreed for as long as
// the child is.
func (rt *Runtime) Wrap(env *host.Env, ptr native.Ptr, typ Type, parent host.Value) (host.Value, error) {
	if !typ.Valid() {
		return nil, wrongValuef(nil, "invalid type tag %d", uint8(typ))
	}
	if ptr == native.Null {
		return nil, wrongValuef(nil, "cannot wrap null %s pointer", typ)
	}

	var p *Handle
	if host.IsNil(parent) {
		if !typ.Ownable() {
			return nil, wrongValuef(nil, "%s handles must borrow from a parent", typ)
		}
	} else {
		ph, ok := rt.handleOf(parent)
		if !ok || !ph.usable() {
			return nil, typeMismatch(qAnyHandle, parent)
		}
		p = ph
	}

	h := &Handle{rt: rt, ptr: ptr, typ: typ, parent: p}
	var v *host.UserPtr
	if p != nil {
		if p.children == nil {
			p.children = make(map[*Handle]struct{})
		}
		p.children[h] = struct{}{}
		v = env.MakeUserPtr(rt.finalizer, h, parent)
		rt.stats.Borrowed++
	} else {
		v = env.MakeUserPtr(rt.finalizer, h)
		rt.stats.Owned++
	}
	rt.stats.Wrapped++
	rt.debug("wrap", "handle", h, "owned", p == nil)
	return v, nil
}

// Extract returns the pointer behind v after checking it is a live handle
// tagged typ. It never calls into the native library.
func (rt *Runtime) Extract(v host.Value, typ Type) (native.Ptr, error) {
	h, err := rt.ExtractHandle(v, typ)
	if err != nil {
		return native.Null, err
	}
	return h.ptr, nil
}

// ExtractOptional is Extract for arguments that may be nil.
func (rt *Runtime) ExtractOptional(v host.Value, typ Type) (native.Ptr, error) {
	if host.IsNil(v) {
		return native.Null, nil
	}
	return rt.Extract(v, typ)
}

// ExtractHandle is Extract returning the handle itself.
func (rt *Runtime) ExtractHandle(v host.Value, typ Type) (*Handle, error) {
	h, ok := rt.liveHandle(v)
	if !ok || h.typ != typ {
		return nil, typeMismatch(typ.Predicate(), v)
	}
	return h, nil
}

// liveHandle is handleOf restricted to handles that may still be used.
func (rt *Runtime) liveHandle(v host.Value) (*Handle, bool) {
	h, ok := rt.handleOf(v)
	if !ok || !h.usable() {
		return nil, false
	}
	return h, true
}

// handleOf resolves v to a handle created by this runtime.
func (rt *Runtime) handleOf(v host.Value) (*Handle, bool) {
	h, ok := handleOf(v)
	if !ok || h.rt != rt {
		return nil, false
	}
	return h, true
}

func (rt *Runtime) finalizer(payload any) {
	h, ok := payload.(*Handle)
	if !ok {
		panic(fmt.Sprintf("egit: finalizer called with %T", payload))
	}
	rt.finalize(h)
}
