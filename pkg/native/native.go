// Package native is a manually memory-managed version-control library with a
// C-style calling convention: objects are opaque Ptr values allocated by the
// library, released by explicit *Free calls, and operations report failure
// through negative integer return codes plus a last-error slot.
//
// Lookups that have no result return Null instead of an error code.
// Pointers obtained from an accessor on another object (a reflog entry,
// a commit's author, a tree entry) are interior pointers: they stay valid
// only while the owning object is alive and are invalidated when it is
// freed.
//
// The library keeps freed cells around so misuse can be counted instead of
// crashing the process; see Lib.Stats.
package native

import (
	"fmt"
	"sync"
)

// Ptr is an opaque handle to library-owned memory.
type Ptr uintptr

// Null is the absent pointer.
const Null Ptr = 0

// Return codes. Zero is success, negative values are errors.
const (
	OK              = 0
	ErrGeneric      = -1
	ErrNotFound     = -3
	ErrExists       = -4
	ErrUnbornBranch = -9
	ErrInvalidSpec  = -12
	ErrModified     = -15
	ErrInvalid      = -21
)

// Class categorizes the last error, like libgit2's error classes.
type Class int

const (
	ClassNone Class = iota
	ClassOS
	ClassInvalid
	ClassReference
	ClassObject
	ClassRepository
	ClassReflog
)

var classNames = [...]string{
	ClassNone:       "none",
	ClassOS:         "os",
	ClassInvalid:    "invalid",
	ClassReference:  "reference",
	ClassObject:     "object",
	ClassRepository: "repository",
	ClassReflog:     "reflog",
}

func (c Class) String() string {
	if c >= 0 && int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// ErrorInfo is the content of the last-error slot.
type ErrorInfo struct {
	Class   Class
	Message string
}

// Kind identifies the struct type behind a Ptr.
type Kind uint8

const (
	KindRepository Kind = iota + 1
	KindReference
	KindCommit
	KindTree
	KindTreeEntry
	KindBlob
	KindSignature
	KindReflog
	KindReflogEntry
)

var kindNames = [...]string{
	KindRepository:  "repository",
	KindReference:   "reference",
	KindCommit:      "commit",
	KindTree:        "tree",
	KindTreeEntry:   "tree_entry",
	KindBlob:        "blob",
	KindSignature:   "signature",
	KindReflog:      "reflog",
	KindReflogEntry: "reflog_entry",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

type cell struct {
	kind     Kind
	obj      any
	owner    Ptr   // Null for allocations the caller must free
	interior []Ptr // pointers into this object's memory
	freed    bool
}

// Stats counts allocations and detected misuse.
type Stats struct {
	Calls         uint64
	Allocs        uint64
	Frees         uint64
	Live          int
	DoubleFrees   uint64
	UseAfterFree  uint64
	TypeConfusion uint64
	BadFrees      uint64 // free of an interior or unknown pointer
}

// Violations is the total number of detected memory-safety errors.
func (s Stats) Violations() uint64 {
	return s.DoubleFrees + s.UseAfterFree + s.TypeConfusion + s.BadFrees
}

// Lib is one instance of the library. All entry points are serialized by
// an internal mutex; the library itself offers no finer-grained guarantees.
type Lib struct {
	mu    sync.Mutex
	next  Ptr
	cells map[Ptr]*cell
	last  ErrorInfo
	stats Stats
}

// New returns an initialized library instance.
func New() *Lib {
	return &Lib{
		next:  0x1000,
		cells: make(map[Ptr]*cell),
	}
}

// enter counts the call and takes the library lock. Use as
// defer l.enter()().
func (l *Lib) enter() func() {
	l.mu.Lock()
	l.stats.Calls++
	return l.mu.Unlock
}

// LastError returns the last error recorded by a failing call. Successful
// calls do not clear it.
func (l *Lib) LastError() ErrorInfo {
	defer l.enter()()
	return l.last
}

// ErrorClear resets the last-error slot.
func (l *Lib) ErrorClear() {
	defer l.enter()()
	l.last = ErrorInfo{}
}

// Stats returns a snapshot of the allocation and misuse counters. It does
// not count as a call.
func (l *Lib) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.stats
	s.Live = 0
	for _, c := range l.cells {
		if !c.freed && c.owner == Null {
			s.Live++
		}
	}
	return s
}

// Calls returns the number of library entry points invoked so far.
func (l *Lib) Calls() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.Calls
}

// IsLive reports whether p is a valid, unfreed pointer. It does not count
// as a call.
func (l *Lib) IsLive(p Ptr) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, ok := l.cells[p]
	return ok && !c.freed
}

func (l *Lib) fail(code int, class Class, format string, args ...any) int {
	l.last = ErrorInfo{Class: class, Message: fmt.Sprintf(format, args...)}
	return code
}

func (l *Lib) alloc(kind Kind, obj any) Ptr {
	p := l.next
	l.next += 0x10
	l.cells[p] = &cell{kind: kind, obj: obj}
	l.stats.Allocs++
	return p
}

// interiorPtr returns a pointer into owner's memory, reusing an existing
// one for the same object so repeated accessors yield the same address.
func (l *Lib) interiorPtr(owner Ptr, kind Kind, obj any) Ptr {
	oc := l.cells[owner]
	for _, ip := range oc.interior {
		if c := l.cells[ip]; !c.freed && c.obj == obj {
			return ip
		}
	}
	p := l.next
	l.next += 0x10
	l.cells[p] = &cell{kind: kind, obj: obj, owner: owner}
	oc.interior = append(oc.interior, p)
	return p
}

// invalidate marks p and everything pointing into it as freed.
func (l *Lib) invalidate(p Ptr) {
	c := l.cells[p]
	if c == nil || c.freed {
		return
	}
	c.freed = true
	for _, ip := range c.interior {
		l.invalidate(ip)
	}
	c.interior = nil
}

// get resolves p as an object of the given kind, counting misuse.
func (l *Lib) get(p Ptr, kind Kind) (any, bool) {
	c, ok := l.cells[p]
	if !ok {
		if p != Null {
			l.stats.TypeConfusion++
		}
		return nil, false
	}
	if c.freed {
		l.stats.UseAfterFree++
		return nil, false
	}
	if c.kind != kind {
		l.stats.TypeConfusion++
		return nil, false
	}
	return c.obj, true
}

// free releases a caller-owned allocation of the given kind.
func (l *Lib) free(p Ptr, kind Kind) {
	if p == Null {
		return
	}
	c, ok := l.cells[p]
	switch {
	case !ok:
		l.stats.BadFrees++
	case c.freed:
		l.stats.DoubleFrees++
	case c.owner != Null:
		l.stats.BadFrees++
	case c.kind != kind:
		l.stats.TypeConfusion++
	default:
		l.invalidate(p)
		l.stats.Frees++
	}
}

func invalidArg(l *Lib, what string, p Ptr) int {
	return l.fail(ErrInvalid, ClassInvalid, "invalid argument: %s (%#x)", what, uintptr(p))
}
