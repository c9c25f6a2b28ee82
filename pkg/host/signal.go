package host

import "strings"

// Standard error symbols.
const (
	QWrongTypeArgument      Symbol = "wrong-type-argument"
	QWrongValueArgument     Symbol = "wrong-value-argument"
	QArgsOutOfRange         Symbol = "args-out-of-range"
	QWrongNumberOfArguments Symbol = "wrong-number-of-arguments"
	QVoidFunction           Symbol = "void-function"
	QError                  Symbol = "error"
)

// ExitKind is the state of the non-local exit slot.
type ExitKind int

const (
	ExitReturn ExitKind = iota
	ExitSignal
)

// Signal is a non-local exit raised by a function. It is returned as an
// error from Funcall once the exit has been taken.
type Signal struct {
	Symbol Symbol
	Data   Value
}

func (s *Signal) Error() string {
	var b strings.Builder
	b.WriteString(string(s.Symbol))
	if vals, ok := ListValues(s.Data); ok {
		for _, v := range vals {
			b.WriteByte(' ')
			b.WriteString(Format(v))
		}
		return b.String()
	}
	b.WriteByte(' ')
	b.WriteString(Format(s.Data))
	return b.String()
}

// Is matches another *Signal with the same symbol.
func (s *Signal) Is(target error) bool {
	t, ok := target.(*Signal)
	return ok && t.Symbol == s.Symbol
}

// Signal sets the pending non-local exit. A signal raised while another is
// pending is ignored.
func (e *Env) Signal(sym Symbol, data Value) {
	if e.exit != nil {
		return
	}
	if data == nil {
		data = Nil
	}
	e.exit = &Signal{Symbol: sym, Data: data}
}

// NonLocalExitCheck reports whether a signal is pending.
func (e *Env) NonLocalExitCheck() ExitKind {
	if e.exit != nil {
		return ExitSignal
	}
	return ExitReturn
}

// NonLocalExitGet returns the pending signal's symbol and data.
func (e *Env) NonLocalExitGet() (ExitKind, Symbol, Value) {
	if e.exit == nil {
		return ExitReturn, Nil, Nil
	}
	return ExitSignal, e.exit.Symbol, e.exit.Data
}

// NonLocalExitClear drops the pending signal.
func (e *Env) NonLocalExitClear() {
	e.exit = nil
}
