package egit

import (
	"errors"
	"fmt"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

// QGitError is the host error symbol for native library failures.
const QGitError host.Symbol = "giterr"

// ErrorKind classifies a failure at the binding boundary.
type ErrorKind int

const (
	KindTypeMismatch ErrorKind = iota + 1
	KindWrongValue
	KindRange
	KindLibrary
)

func (k ErrorKind) String() string {
	switch k {
	case KindTypeMismatch:
		return "type mismatch"
	case KindWrongValue:
		return "wrong value"
	case KindRange:
		return "out of range"
	case KindLibrary:
		return "library error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrTypeMismatch = &Error{Kind: KindTypeMismatch}
	ErrWrongValue   = &Error{Kind: KindWrongValue}
	ErrRange        = &Error{Kind: KindRange}
	ErrLibrary      = &Error{Kind: KindLibrary}
)

// Error is a failure detected by the binding layer or reported by the
// native library.
type Error struct {
	Kind ErrorKind

	// Want is the predicate the argument failed (type mismatch).
	Want host.Symbol
	// Got is the offending value, or the container for range errors.
	Got host.Value
	// Key is the index or name that had no element (range).
	Key host.Value

	// Code, Class and Message are copied from the library (library
	// errors). Message is also set for wrong-value errors.
	Code    int
	Class   native.Class
	Message string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTypeMismatch:
		return fmt.Sprintf("wrong type argument: %s, %s", e.Want, host.Format(e.Got))
	case KindWrongValue:
		if e.Message != "" {
			return "wrong value argument: " + e.Message
		}
		return "wrong value argument: " + host.Format(e.Got)
	case KindRange:
		return fmt.Sprintf("args out of range: %s, %s", host.Format(e.Got), host.Format(e.Key))
	case KindLibrary:
		return fmt.Sprintf("git error (%s): %s", e.Class, e.Message)
	}
	return e.Kind.String()
}

// Is matches errors of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Signal raises e on env using the host's standard error symbols.
func (e *Error) Signal(env *host.Env) {
	switch e.Kind {
	case KindTypeMismatch:
		env.Signal(host.QWrongTypeArgument, host.List(e.Want, orNil(e.Got)))
	case KindWrongValue:
		if e.Got != nil {
			env.Signal(host.QWrongValueArgument, host.List(e.Got))
			return
		}
		env.Signal(host.QWrongValueArgument, host.List(host.String(e.Message)))
	case KindRange:
		env.Signal(host.QArgsOutOfRange, host.List(orNil(e.Got), orNil(e.Key)))
	case KindLibrary:
		env.Signal(QGitError, host.NewCons(host.Symbol(e.Class.String()), host.String(e.Message)))
	default:
		env.Signal(host.QError, host.List(host.String(e.Error())))
	}
}

func orNil(v host.Value) host.Value {
	if v == nil {
		return host.Nil
	}
	return v
}

// signal raises any error on env. Errors that are not *Error become a
// plain host error.
func signal(env *host.Env, err error) {
	var e *Error
	if errors.As(err, &e) {
		e.Signal(env)
		return
	}
	env.Signal(host.QError, host.List(host.String(err.Error())))
}

func typeMismatch(want host.Symbol, got host.Value) *Error {
	return &Error{Kind: KindTypeMismatch, Want: want, Got: orNil(got)}
}

func wrongValue(got host.Value) *Error {
	return &Error{Kind: KindWrongValue, Got: got}
}

func wrongValuef(got host.Value, format string, args ...any) *Error {
	return &Error{Kind: KindWrongValue, Got: got, Message: fmt.Sprintf(format, args...)}
}

// rangeError reports a lookup in container that found nothing at key.
func rangeError(container, key host.Value) *Error {
	return &Error{Kind: KindRange, Got: orNil(container), Key: orNil(key)}
}

// check classifies a native return code. The last-error slot is read
// immediately, before any other native call can overwrite it.
func (rt *Runtime) check(code int) error {
	if code >= native.OK {
		return nil
	}
	info := rt.lib.LastError()
	msg := info.Message
	if msg == "" {
		msg = fmt.Sprintf("native call failed with code %d", code)
	}
	return &Error{Kind: KindLibrary, Code: code, Class: info.Class, Message: msg}
}
