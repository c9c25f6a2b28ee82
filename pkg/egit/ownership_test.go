package egit

import (
	"errors"
	"testing"

	"github.com/odvcencio/gotbind/pkg/host"
)

// newReflog seeds a reflog and returns its handle plus a handle to the
// entry at idx, neither rooted.
func newReflog(f *fixture, n, idx int) (reflog, entry host.Value) {
	f.t.Helper()
	repo := f.initRepo()
	f.seedReflog(repo, "refs/heads/main", n)
	reflog = f.call("git-reflog-read", repo, host.String("refs/heads/main"))
	entry = f.call("git-reflog-entry-byindex", reflog, host.Int(idx))
	return reflog, entry
}

func TestOwnedHandleFreedOnceByCollector(t *testing.T) {
	f := newFixture(t)
	f.newSig("Ada", 1)
	frees := f.lib.Stats().Frees

	if n := f.env.GC(); n != 1 {
		t.Fatalf("GC finalized %d, want 1", n)
	}
	if got := f.lib.Stats().Frees - frees; got != 1 {
		t.Fatalf("native frees = %d, want 1", got)
	}
	f.env.GC()
	if got := f.lib.Stats().Frees - frees; got != 1 {
		t.Fatalf("native frees after second GC = %d, want 1", got)
	}
	if st := f.rt.Stats(); st.Frees != 1 || st.Finalized != 1 {
		t.Fatalf("runtime stats = %+v", st)
	}
	f.assertClean()
}

func TestFinalizeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	v := f.newSig("Ada", 1)
	h, err := f.rt.ExtractHandle(v, TypeSignature)
	if err != nil {
		t.Fatal(err)
	}
	f.rt.finalize(h)
	f.rt.finalize(h)
	v.(*host.UserPtr).Finalizer()(h)
	if st := f.lib.Stats(); st.Frees != 1 || st.DoubleFrees != 0 {
		t.Fatalf("native stats = %+v", st)
	}
	if !h.Freed() {
		t.Fatal("handle not marked freed")
	}
}

func TestChildKeepsParentAlive(t *testing.T) {
	f := newFixture(t)
	reflog, entry := newReflog(f, 3, 1)
	f.env.Set("entry", entry)

	f.env.GC()
	rh, _ := handleOf(reflog)
	if rh.Finalized() {
		t.Fatal("reflog finalized while an entry still references it")
	}
	if msg := f.call("git-reflog-entry-message", entry); msg != host.String("entry 2") {
		t.Fatalf("entry message = %s", host.Format(msg))
	}
	if got := f.call("git-reflog-entrycount", reflog); got != host.Int(3) {
		t.Fatalf("entrycount = %s", host.Format(got))
	}

	f.env.Set("entry", host.Nil)
	f.env.GC()
	if !rh.Freed() {
		t.Fatal("reflog not freed once its entry was collected")
	}
	f.assertClean()
}

func TestParentFinalizedFirstDefersFree(t *testing.T) {
	f := newFixture(t)
	reflog, entry := newReflog(f, 2, 0)
	rh, _ := handleOf(reflog)
	eh, _ := handleOf(entry)

	// Finalize out of order, as a host without reachability ordering could.
	f.rt.finalize(rh)
	if rh.Freed() {
		t.Fatal("parent freed while a child is live")
	}
	if st := f.rt.Stats(); st.Pending != 1 || st.Deferred != 1 {
		t.Fatalf("runtime stats = %+v", st)
	}
	if !f.lib.IsLive(eh.Ptr()) {
		t.Fatal("entry pointer invalidated before the child was released")
	}
	f.rt.finalize(eh)
	if !rh.Freed() {
		t.Fatal("parent not freed after its last child")
	}
	if st := f.rt.Stats(); st.Pending != 0 {
		t.Fatalf("pending = %d", st.Pending)
	}
	if st := f.lib.Stats(); st.Violations() != 0 {
		t.Fatalf("violations: %+v", st)
	}
}

func TestGrandchildKeepsChainAlive(t *testing.T) {
	f := newFixture(t)
	reflog, entry := newReflog(f, 1, 0)
	ep, _ := f.rt.Extract(entry, TypeReflogEntry)
	sig, err := f.rt.Wrap(f.env, f.lib.ReflogEntryCommitter(ep), TypeSignature, entry)
	if err != nil {
		t.Fatalf("Wrap committer: %v", err)
	}
	f.env.Protect(sig)

	f.env.GC()
	if got := f.call("git-signature-name", sig); got != host.String("Seeder") {
		t.Fatalf("grandchild name = %s", host.Format(got))
	}
	rh, _ := handleOf(reflog)
	if rh.Finalized() {
		t.Fatal("grandparent finalized while the grandchild is reachable")
	}

	frees := f.lib.Stats().Frees
	f.env.Unprotect(sig)
	if n := f.env.GC(); n != 3 {
		t.Fatalf("GC finalized %d, want 3", n)
	}
	if got := f.lib.Stats().Frees - frees; got != 1 {
		t.Fatalf("native frees = %d, want only the reflog", got)
	}
	f.assertClean()
}

func TestBorrowedFinalizeNeverFrees(t *testing.T) {
	f := newFixture(t)
	reflog, entry := newReflog(f, 1, 0)
	f.env.Set("reflog", reflog)
	frees := f.lib.Stats().Frees
	if err := f.rt.Release(entry); err != nil {
		t.Fatalf("Release entry: %v", err)
	}
	if f.lib.Stats().Frees != frees {
		t.Fatal("releasing a borrowed handle freed native memory")
	}
	rh, _ := handleOf(reflog)
	if rh.Children() != 0 {
		t.Fatalf("parent still counts %d children", rh.Children())
	}
	f.assertClean()
}

func TestReleaseRefusesLiveChildren(t *testing.T) {
	f := newFixture(t)
	reflog, entry := newReflog(f, 1, 0)
	err := f.rt.Release(reflog)
	if !errors.Is(err, ErrWrongValue) {
		t.Fatalf("Release with live child err = %v", err)
	}
	if err := f.rt.Release(entry); err != nil {
		t.Fatal(err)
	}
	if err := f.rt.Release(reflog); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := f.rt.Release(reflog); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if _, err := f.rt.Extract(reflog, TypeReflog); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Extract after release err = %v", err)
	}
	if st := f.lib.Stats(); st.DoubleFrees != 0 {
		t.Fatalf("double frees = %d", st.DoubleFrees)
	}
	if err := f.rt.Release(host.Int(3)); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("Release(3) err = %v", err)
	}
	f.assertClean()
}

func TestDropInvalidatesEntryHandles(t *testing.T) {
	f := newFixture(t)
	reflog, entry := newReflog(f, 3, 0)
	kept := f.call("git-reflog-entry-byindex", reflog, host.Int(2))
	f.call("git-reflog-drop", reflog, host.Int(0), host.T)

	before := f.lib.Calls()
	sig := f.callSignal("git-reflog-entry-message", entry)
	if sig.Symbol != host.QWrongTypeArgument {
		t.Fatalf("signal = %v", sig)
	}
	if f.lib.Calls() != before {
		t.Fatal("stale handle reached the library")
	}
	if got := f.call("git-reflog-entry-message", kept); got != host.String("entry 1") {
		t.Fatalf("surviving entry message = %s", host.Format(got))
	}
	if st := f.lib.Stats(); st.UseAfterFree != 0 {
		t.Fatalf("use after free = %d", st.UseAfterFree)
	}
	f.assertClean()
}
