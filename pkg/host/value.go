// Package host is a small dynamically typed, garbage-collected runtime that
// native bindings are installed into. It models the parts of an embedding
// API a binding layer relies on: symbols, integers, strings, cons lists,
// user pointers carrying a native payload and finalizer, a function table
// with arity checks, and non-local exits (signals).
package host

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is any host value.
type Value interface {
	hostValue()
}

// Symbol is an interned name. Nil and T are the canonical false and true.
type Symbol string

// Int is a host integer.
type Int int64

// String is a host string.
type String string

// Cons is a pair; proper lists end in Nil.
type Cons struct {
	Car Value
	Cdr Value
}

const (
	Nil Symbol = "nil"
	T   Symbol = "t"
)

func (Symbol) hostValue() {}
func (Int) hostValue() {}
func (String) hostValue() {}
func (*Cons) hostValue() {}
func (*UserPtr) hostValue() {}
func (*Function) hostValue() {}

// Intern returns the symbol named name.
func Intern(name string) Symbol { return Symbol(name) }

// Bool converts b to T or Nil.
func Bool(b bool) Value {
	if b {
		return T
	}
	return Nil
}

// IsNil reports whether v is nil. A Go nil Value counts as Nil.
func IsNil(v Value) bool {
	return v == nil || v == Nil
}

// NewCons allocates a pair.
func NewCons(car, cdr Value) *Cons {
	return &Cons{Car: car, Cdr: cdr}
}

// List builds a proper list from vals.
func List(vals ...Value) Value {
	var out Value = Nil
	for i := len(vals) - 1; i >= 0; i-- {
		out = NewCons(vals[i], out)
	}
	return out
}

// ListValues flattens a proper list. The second result is false for an
// improper list or a non-list value.
func ListValues(v Value) ([]Value, bool) {
	var out []Value
	for !IsNil(v) {
		c, ok := v.(*Cons)
		if !ok {
			return nil, false
		}
		out = append(out, c.Car)
		v = c.Cdr
	}
	return out, true
}

// Format renders v the way a host printer would.
func Format(v Value) string {
	var b strings.Builder
	format(&b, v)
	return b.String()
}

func format(b *strings.Builder, v Value) {
	switch x := v.(type) {
	case nil:
		b.WriteString("nil")
	case Symbol:
		b.WriteString(string(x))
	case Int:
		b.WriteString(strconv.FormatInt(int64(x), 10))
	case String:
		b.WriteString(strconv.Quote(string(x)))
	case *Cons:
		b.WriteByte('(')
		format(b, x.Car)
		rest := x.Cdr
		for {
			c, ok := rest.(*Cons)
			if !ok {
				break
			}
			b.WriteByte(' ')
			format(b, c.Car)
			rest = c.Cdr
		}
		if !IsNil(rest) {
			b.WriteString(" . ")
			format(b, rest)
		}
		b.WriteByte(')')
	case *UserPtr:
		if s, ok := x.payload.(fmt.Stringer); ok {
			fmt.Fprintf(b, "#<user-ptr %s>", s)
			return
		}
		fmt.Fprintf(b, "#<user-ptr %d>", x.id)
	case *Function:
		fmt.Fprintf(b, "#<subr %s>", x.Name)
	default:
		fmt.Fprintf(b, "#<unknown %T>", v)
	}
}

// Finalizer runs once when a user pointer becomes unreachable.
type Finalizer func(payload any)

// UserPtr is an opaque host value carrying a Go payload. refs are values
// the user pointer keeps reachable.
type UserPtr struct {
	id        uint64
	payload   any
	fin       Finalizer
	refs      []Value
	finalized bool
}

// Payload returns the attached payload.
func (u *UserPtr) Payload() any { return u.payload }

// Finalizer returns the registered finalizer, or nil.
func (u *UserPtr) Finalizer() Finalizer { return u.fin }

// Finalized reports whether the collector has already run the finalizer.
func (u *UserPtr) Finalized() bool { return u.finalized }

// ID is the allocation sequence number, increasing with creation order.
func (u *UserPtr) ID() uint64 { return u.id }

// Many is the MaxArgs value of a function taking a &rest argument.
const Many = -1

// Function is a callable registered in the function table. Fn reports
// failure by calling env.Signal and returning any value; the value is
// discarded when a signal is pending.
type Function struct {
	Name    Symbol
	MinArgs int
	MaxArgs int
	Doc     string
	Fn      func(env *Env, args []Value) Value
}
