package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

var signatureBindings = []binding{
	{"git-signature-new", 2, 4, "Create a signature for NAME and EMAIL at TIME (unix seconds) and OFFSET (minutes east of UTC).", signatureNew},
	{"git-signature-now", 2, 2, "Create a signature for NAME and EMAIL at the current time.", signatureNow},
	{"git-signature-default", 1, 1, "Create a signature from the identity configured in REPO.", signatureDefault},
	{"git-signature-name", 1, 1, "Return the name of SIG.", signatureName},
	{"git-signature-email", 1, 1, "Return the email of SIG.", signatureEmail},
	{"git-signature-time", 1, 1, "Return (TIME OFFSET) of SIG.", signatureTime},
}

func signatureNew(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	name, err := stringArg(args[0])
	if err != nil {
		return nil, err
	}
	email, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	timeArg, offsetArg := optArg(args, 2), optArg(args, 3)
	if host.IsNil(timeArg) {
		var out native.Ptr
		done := rt.logOp("signature_now", "name", name)
		err = rt.check(rt.lib.SignatureNow(&out, name, email))
		done(err)
		if err != nil {
			return nil, err
		}
		return rt.wrapOwned(env, out, TypeSignature)
	}

	when, err := intArg(timeArg)
	if err != nil {
		return nil, err
	}
	offset := 0
	if !host.IsNil(offsetArg) {
		if offset, err = intArg(offsetArg); err != nil {
			return nil, err
		}
	}
	var out native.Ptr
	done := rt.logOp("signature_new", "name", name)
	err = rt.check(rt.lib.SignatureNew(&out, name, email, int64(when), offset))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeSignature)
}

func signatureNow(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	return signatureNew(rt, env, args[:2])
}

func signatureDefault(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("signature_default")
	err = rt.check(rt.lib.SignatureDefault(&out, r))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeSignature)
}

func signatureName(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	sig, err := rt.Extract(args[0], TypeSignature)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.SignatureName(sig)), nil
}

func signatureEmail(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	sig, err := rt.Extract(args[0], TypeSignature)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.SignatureEmail(sig)), nil
}

func signatureTime(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	sig, err := rt.Extract(args[0], TypeSignature)
	if err != nil {
		return nil, err
	}
	when, offset := rt.lib.SignatureWhen(sig)
	return host.List(host.Int(when), host.Int(offset)), nil
}
