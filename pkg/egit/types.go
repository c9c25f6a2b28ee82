package egit

import (
	"fmt"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

// Type tags a handle with the native struct kind it wraps. The zero value
// is invalid.
type Type uint8

const (
	TypeInvalid Type = iota
	TypeRepository
	TypeReference
	TypeCommit
	TypeTree
	TypeTreeEntry
	TypeBlob
	TypeSignature
	TypeReflog
	TypeReflogEntry
	numTypes
)

type typeInfo struct {
	name string
	kind native.Kind
	// free releases an owned pointer. nil for kinds that are only ever
	// borrowed from a parent.
	free func(*native.Lib, native.Ptr)
}

var registry = [numTypes]typeInfo{
	TypeRepository:  {"repository", native.KindRepository, (*native.Lib).RepositoryFree},
	TypeReference:   {"reference", native.KindReference, (*native.Lib).ReferenceFree},
	TypeCommit:      {"commit", native.KindCommit, (*native.Lib).CommitFree},
	TypeTree:        {"tree", native.KindTree, (*native.Lib).TreeFree},
	TypeTreeEntry:   {"tree-entry", native.KindTreeEntry, nil},
	TypeBlob:        {"blob", native.KindBlob, (*native.Lib).BlobFree},
	TypeSignature:   {"signature", native.KindSignature, (*native.Lib).SignatureFree},
	TypeReflog:      {"reflog", native.KindReflog, (*native.Lib).ReflogFree},
	TypeReflogEntry: {"reflog-entry", native.KindReflogEntry, nil},
}

// Types lists every valid type tag.
func Types() []Type {
	out := make([]Type, 0, numTypes-1)
	for t := TypeInvalid + 1; t < numTypes; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is a registered tag.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < numTypes
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("type(%d)", uint8(t))
	}
	return registry[t].name
}

// TypeName returns the diagnostic name of t.
func TypeName(t Type) string { return t.String() }

// Predicate is the host predicate name that accepts handles of type t.
func (t Type) Predicate() host.Symbol {
	return host.Symbol("git-" + t.String() + "-p")
}

// Symbol is what git-typeof returns for handles of type t.
func (t Type) Symbol() host.Symbol {
	return host.Symbol(t.String())
}

// NativeKind is the native struct kind behind t.
func (t Type) NativeKind() native.Kind {
	if !t.Valid() {
		return 0
	}
	return registry[t].kind
}

// Ownable reports whether a handle of type t may own its pointer.
func (t Type) Ownable() bool {
	return t.Valid() && registry[t].free != nil
}

// TypeOf returns the tag of v when v is a usable handle created by rt.
// Finalized, stale and foreign handles have no type.
func (rt *Runtime) TypeOf(v host.Value) (Type, bool) {
	h, ok := rt.liveHandle(v)
	if !ok {
		return TypeInvalid, false
	}
	return h.typ, true
}

// IsType reports whether v is a usable handle of rt tagged t. Extract
// succeeds exactly when IsType does.
func (rt *Runtime) IsType(v host.Value, t Type) bool {
	got, ok := rt.TypeOf(v)
	return ok && got == t
}
