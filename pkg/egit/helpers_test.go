package egit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
)

type fixture struct {
	t   testing.TB
	env *host.Env
	lib *native.Lib
	rt  *Runtime
}

func newFixture(t testing.TB) *fixture {
	t.Helper()
	lib := native.New()
	f := &fixture{t: t, env: host.NewEnv(), lib: lib, rt: New(lib)}
	f.rt.Install(f.env)
	return f
}

func (f *fixture) call(name string, args ...host.Value) host.Value {
	f.t.Helper()
	v, err := f.env.Funcall(host.Symbol(name), args...)
	if err != nil {
		f.t.Fatalf("%s: %v", name, err)
	}
	return v
}

func (f *fixture) callSignal(name string, args ...host.Value) *host.Signal {
	f.t.Helper()
	v, err := f.env.Funcall(host.Symbol(name), args...)
	var sig *host.Signal
	if !errors.As(err, &sig) {
		f.t.Fatalf("%s = %s, %v; want a signal", name, host.Format(v), err)
	}
	if v != host.Nil {
		f.t.Fatalf("%s returned %s alongside a signal", name, host.Format(v))
	}
	return sig
}

// initRepo creates a repository and keeps its handle as a global.
func (f *fixture) initRepo() host.Value {
	f.t.Helper()
	r := f.call("git-repository-init", host.String(f.t.TempDir()))
	f.env.Set("repo", r)
	return r
}

func (f *fixture) newSig(name string, when int) host.Value {
	f.t.Helper()
	return f.call("git-signature-new", host.String(name), host.String(name+"@example.com"), host.Int(when), host.Int(60))
}

func hashN(i int) host.String {
	return host.String(fmt.Sprintf("%064x", i))
}

// seedReflog writes n entries to the reflog of ref. Entry i (1-based)
// records hashN(i) and message "entry i".
func (f *fixture) seedReflog(repo host.Value, ref string, n int) {
	f.t.Helper()
	rl := f.call("git-reflog-read", repo, host.String(ref))
	sig := f.newSig("Seeder", 1700000000)
	for i := 1; i <= n; i++ {
		f.call("git-reflog-append", rl, hashN(i), sig, host.String(fmt.Sprintf("entry %d", i)))
	}
	f.call("git-reflog-write", rl)
	f.call("git-free", rl)
	f.call("git-free", sig)
}

func (f *fixture) assertClean() {
	f.t.Helper()
	f.env.Shutdown()
	st := f.lib.Stats()
	if st.Violations() != 0 {
		f.t.Fatalf("native memory violations: %+v", st)
	}
	if st.Live != 0 {
		f.t.Fatalf("%d native allocations leaked", st.Live)
	}
	if rs := f.rt.Stats(); rs.Live() != 0 || rs.Pending != 0 {
		f.t.Fatalf("runtime stats after shutdown: %+v", rs)
	}
}
