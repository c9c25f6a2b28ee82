package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
)

// Stats counts handles by lifecycle state.
type Stats struct {
	Owned     int // live owning handles
	Borrowed  int // live borrowing handles
	Pending   int // finalized owners waiting on children
	Wrapped   uint64
	Finalized uint64
	Frees     uint64
	Deferred  uint64
}

// Live is the number of handles not yet finalized.
func (s Stats) Live() int { return s.Owned + s.Borrowed }

// Stats returns a snapshot of the handle counters.
func (rt *Runtime) Stats() Stats { return rt.stats }

// finalize runs at most once per handle. An owner with live children
// defers its native free until the last child retires.
func (rt *Runtime) finalize(h *Handle) {
	if h.finalized {
		return
	}
	h.finalized = true
	rt.stats.Finalized++
	if h.parent == nil {
		rt.stats.Owned--
	} else {
		rt.stats.Borrowed--
	}
	if len(h.children) > 0 {
		if h.parent == nil {
			h.deferred = true
			rt.stats.Deferred++
			rt.stats.Pending++
		}
		rt.debug("finalize deferred", "handle", h, "children", len(h.children))
		return
	}
	rt.retire(h)
}

// retire releases h and walks up the parent chain releasing every
// finalized ancestor left without children.
func (rt *Runtime) retire(h *Handle) {
	for h != nil && h.finalized && !h.released && len(h.children) == 0 {
		h.released = true
		p := h.parent
		if p == nil {
			rt.free(h)
			return
		}
		delete(p.children, h)
		h = p
	}
}

func (rt *Runtime) free(h *Handle) {
	info := registry[h.typ]
	done := rt.logOp(info.name+"_free", "ptr", h.ptr)
	info.free(rt.lib, h.ptr)
	done(nil)
	rt.stats.Frees++
	if h.deferred {
		rt.stats.Pending--
	}
}

// Release finalizes v now instead of waiting for the host collector. An
// owning handle with live children cannot be released. Releasing an
// already finalized handle is a no-op.
func (rt *Runtime) Release(v host.Value) error {
	h, ok := rt.handleOf(v)
	if !ok {
		return typeMismatch(qAnyHandle, v)
	}
	if h.finalized {
		return nil
	}
	if n := len(h.children); n > 0 {
		return wrongValuef(v, "%s still has %d dependent handles", h, n)
	}
	rt.finalize(h)
	return nil
}

// invalidateStale marks children of h whose native pointers the library
// no longer considers live, for example reflog entries removed by a drop.
// Extracting a stale handle fails like extracting a released one.
func (rt *Runtime) invalidateStale(h *Handle) {
	for c := range h.children {
		if !c.stale && !rt.lib.IsLive(c.ptr) {
			c.stale = true
			rt.debug("stale handle", "handle", c)
		}
		rt.invalidateStale(c)
	}
}
