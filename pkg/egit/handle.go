package egit

import (
	"fmt"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

// Handle is the payload of every host value produced by Wrap. A handle
// without a parent owns its pointer; a handle with a parent borrows memory
// the parent owns.
type Handle struct {
	rt       *Runtime
	ptr      native.Ptr
	typ      Type
	parent   *Handle
	children map[*Handle]struct{}

	finalized bool // host finalizer ran, or explicit release
	released  bool // link to parent dropped, or native memory freed
	stale     bool // native pointer invalidated by a mutation of the parent
	deferred  bool // finalized with live children, free pending
}

// Type returns the handle's tag.
func (h *Handle) Type() Type { return h.typ }

// Ptr returns the wrapped pointer. It is only meaningful for the duration
// of one native call.
func (h *Handle) Ptr() native.Ptr { return h.ptr }

// Owned reports whether the handle owns its native memory.
func (h *Handle) Owned() bool { return h.parent == nil }

// Parent returns the handle this one borrows from, or nil.
func (h *Handle) Parent() *Handle { return h.parent }

// Children returns the number of handles still borrowing from h.
func (h *Handle) Children() int { return len(h.children) }

// Finalized reports whether the handle has been finalized or released.
func (h *Handle) Finalized() bool { return h.finalized }

// Freed reports whether the handle's native memory has been freed. Always
// false for borrowing handles.
func (h *Handle) Freed() bool { return h.released && h.parent == nil }

func (h *Handle) usable() bool {
	return !h.finalized && !h.stale
}

func (h *Handle) String() string {
	return fmt.Sprintf("git-%s %#x", h.typ, uintptr(h.ptr))
}

func handleOf(v host.Value) (*Handle, bool) {
	u, ok := v.(*host.UserPtr)
	if !ok {
		return nil, false
	}
	h, ok := u.Payload().(*Handle)
	return h, ok
}
