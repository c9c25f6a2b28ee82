package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFuncallArity(t *testing.T) {
	env := NewEnv()
	env.Defun(&Function{
		Name:    "add",
		MinArgs: 1,
		MaxArgs: 2,
		Fn: func(env *Env, args []Value) Value {
			sum := Int(0)
			for _, a := range args {
				sum += a.(Int)
			}
			return sum
		},
	})

	got, err := env.Funcall("add", Int(1), Int(2))
	require.NoError(t, err)
	require.Equal(t, Int(3), got)

	_, err = env.Funcall("add")
	var sig *Signal
	require.ErrorAs(t, err, &sig)
	require.Equal(t, QWrongNumberOfArguments, sig.Symbol)
	require.Equal(t, "wrong-number-of-arguments add 0", sig.Error())

	_, err = env.Funcall("add", Int(1), Int(2), Int(3))
	require.ErrorIs(t, err, &Signal{Symbol: QWrongNumberOfArguments})
	require.Equal(t, ExitReturn, env.NonLocalExitCheck(), "signal should be cleared after Funcall")
}

func TestFuncallRestArgs(t *testing.T) {
	env := NewEnv()
	env.Defun(&Function{
		Name:    "count",
		MaxArgs: Many,
		Fn: func(env *Env, args []Value) Value {
			return Int(len(args))
		},
	})
	got, err := env.Funcall("count", Nil, Nil, Nil, Nil)
	require.NoError(t, err)
	require.Equal(t, Int(4), got)
}

func TestFuncallVoidFunction(t *testing.T) {
	env := NewEnv()
	_, err := env.Funcall("missing")
	require.ErrorIs(t, err, &Signal{Symbol: QVoidFunction})
}

func TestSignalFromFunction(t *testing.T) {
	env := NewEnv()
	env.Defun(&Function{
		Name:    "fail",
		MaxArgs: 0,
		Fn: func(env *Env, args []Value) Value {
			env.Signal("giterr", NewCons(Symbol("reflog"), String("boom")))
			env.Signal("ignored", Nil)
			return Int(1)
		},
	})
	got, err := env.Funcall("fail")
	require.Equal(t, Nil, got)
	var sig *Signal
	require.True(t, errors.As(err, &sig))
	require.Equal(t, Symbol("giterr"), sig.Symbol)
	require.Equal(t, `giterr (reflog . "boom")`, sig.Error())
}

func TestNonLocalExitSlot(t *testing.T) {
	env := NewEnv()
	require.Equal(t, ExitReturn, env.NonLocalExitCheck())
	env.Signal(QArgsOutOfRange, List(Int(10)))
	kind, sym, data := env.NonLocalExitGet()
	require.Equal(t, ExitSignal, kind)
	require.Equal(t, QArgsOutOfRange, sym)
	require.Equal(t, "(10)", Format(data))
	env.NonLocalExitClear()
	require.Equal(t, ExitReturn, env.NonLocalExitCheck())
}

func TestListHelpers(t *testing.T) {
	l := List(Int(1), String("two"), Symbol("three"))
	require.Equal(t, `(1 "two" three)`, Format(l))
	vals, ok := ListValues(l)
	require.True(t, ok)
	require.Len(t, vals, 3)

	_, ok = ListValues(NewCons(Int(1), Int(2)))
	require.False(t, ok)
	require.Equal(t, "(1 . 2)", Format(NewCons(Int(1), Int(2))))
	require.True(t, IsNil(List()))
	require.Equal(t, T, Bool(true))
}

func TestGlobals(t *testing.T) {
	env := NewEnv()
	require.Equal(t, Nil, env.Get("x"))
	env.Set("x", Int(5))
	require.Equal(t, Int(5), env.Get("x"))
	env.Set("x", Nil)
	require.Equal(t, Nil, env.Get("x"))
}
