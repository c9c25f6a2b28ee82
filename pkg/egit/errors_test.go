package egit

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

func TestCheckReadsLastErrorImmediately(t *testing.T) {
	f := newFixture(t)
	if err := f.rt.check(native.OK); err != nil {
		t.Fatalf("check(OK) = %v", err)
	}

	var sig native.Ptr
	code := f.lib.SignatureNew(&sig, "", "", 0, 0)
	err := f.rt.check(code)
	// A later failure must not change the captured message.
	f.lib.ReflogDrop(native.Null, 0, false)

	var e *Error
	if !errors.As(err, &e) || e.Kind != KindLibrary {
		t.Fatalf("check(%d) = %v, want library error", code, err)
	}
	if e.Code != native.ErrInvalid || e.Class != native.ClassInvalid {
		t.Fatalf("error = %+v", e)
	}
	if !strings.Contains(e.Message, "invalid name or email") {
		t.Fatalf("message = %q", e.Message)
	}
}

func TestCheckEmptyMessage(t *testing.T) {
	f := newFixture(t)
	f.lib.ErrorClear()
	err := f.rt.check(native.ErrGeneric)
	if !errors.Is(err, ErrLibrary) {
		t.Fatalf("err = %v", err)
	}
	if err.(*Error).Message == "" {
		t.Fatal("library error carries an empty message")
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	errs := map[ErrorKind]error{
		KindTypeMismatch: typeMismatch("stringp", host.Int(1)),
		KindWrongValue:   wrongValue(host.Symbol("sideways")),
		KindRange:        rangeError(host.Nil, host.Int(10)),
		KindLibrary:      &Error{Kind: KindLibrary, Message: "boom"},
	}
	sentinels := map[ErrorKind]error{
		KindTypeMismatch: ErrTypeMismatch,
		KindWrongValue:   ErrWrongValue,
		KindRange:        ErrRange,
		KindLibrary:      ErrLibrary,
	}
	for kind, err := range errs {
		for sk, sentinel := range sentinels {
			if got := errors.Is(err, sentinel); got != (kind == sk) {
				t.Errorf("errors.Is(%s, %s) = %v", kind, sk, got)
			}
		}
		wrapped := fmt.Errorf("outer: %w", err)
		if !errors.Is(wrapped, sentinels[kind]) {
			t.Errorf("wrapped %s lost its kind", kind)
		}
	}
}

func TestErrorSignals(t *testing.T) {
	tests := []struct {
		err  *Error
		sym  host.Symbol
		data string
	}{
		{typeMismatch("git-reflog-p", host.Int(7)), host.QWrongTypeArgument, "(git-reflog-p 7)"},
		{wrongValue(host.Symbol("sideways")), host.QWrongValueArgument, "(sideways)"},
		{wrongValuef(nil, "cannot wrap null reflog pointer"), host.QWrongValueArgument, `("cannot wrap null reflog pointer")`},
		{rangeError(host.String("reflog"), host.Int(10)), host.QArgsOutOfRange, `("reflog" 10)`},
		{&Error{Kind: KindLibrary, Class: native.ClassReference, Message: "not found"}, QGitError, `(reference . "not found")`},
	}
	for _, tt := range tests {
		env := host.NewEnv()
		tt.err.Signal(env)
		kind, sym, data := env.NonLocalExitGet()
		if kind != host.ExitSignal || sym != tt.sym {
			t.Errorf("%v: signal = %v %s", tt.err, kind, sym)
			continue
		}
		if got := host.Format(data); got != tt.data {
			t.Errorf("%v: data = %s, want %s", tt.err, got, tt.data)
		}
	}
}

func TestPlainErrorsSignalHostError(t *testing.T) {
	env := host.NewEnv()
	signal(env, errors.New("disk on fire"))
	_, sym, data := env.NonLocalExitGet()
	if sym != host.QError || host.Format(data) != `("disk on fire")` {
		t.Fatalf("signal = %s %s", sym, host.Format(data))
	}
}
