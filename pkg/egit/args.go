package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/object"
)

func optArg(args []host.Value, i int) host.Value {
	if i < len(args) && args[i] != nil {
		return args[i]
	}
	return host.Nil
}

func stringArg(v host.Value) (string, error) {
	s, ok := v.(host.String)
	if !ok {
		return "", typeMismatch("stringp", v)
	}
	return string(s), nil
}

func intArg(v host.Value) (int, error) {
	n, ok := v.(host.Int)
	if !ok {
		return 0, typeMismatch("integerp", v)
	}
	return int(n), nil
}

func symbolArg(v host.Value) (host.Symbol, error) {
	s, ok := v.(host.Symbol)
	if !ok {
		return "", typeMismatch("symbolp", v)
	}
	return s, nil
}

// hashArg parses an object id. A string that is not a valid id is a wrong
// value, not a type mismatch.
func hashArg(v host.Value) (object.Hash, error) {
	s, err := stringArg(v)
	if err != nil {
		return "", err
	}
	h, err := object.ParseHash(s)
	if err != nil {
		return "", wrongValue(v)
	}
	return h, nil
}

func optStringArg(v host.Value) (string, error) {
	if host.IsNil(v) {
		return "", nil
	}
	return stringArg(v)
}

func hashValue(h object.Hash) host.Value {
	if h == "" {
		return host.Nil
	}
	return host.String(h)
}
