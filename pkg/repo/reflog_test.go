package repo

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/odvcencio/gotbind/pkg/object"
)

func testSig(when int64) object.Signature {
	return object.Signature{Name: "Test User", Email: "test@example.com", When: when}
}

func hashN(i int) object.Hash {
	return object.Hash(fmt.Sprintf("%064x", i))
}

func TestUpdateRef_WritesReflog(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	h1, h2 := hashN(1), hashN(2)
	if err := r.UpdateRef(RefUpdate{Name: "main", Hash: h1, Committer: testSig(1), Message: "first"}); err != nil {
		t.Fatalf("UpdateRef(h1): %v", err)
	}
	if err := r.UpdateRef(RefUpdate{Name: "refs/heads/main", Hash: h2, Committer: testSig(2), Message: "second\nline"}); err != nil {
		t.Fatalf("UpdateRef(h2): %v", err)
	}

	entries, err := r.ReadReflog("refs/heads/main")
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	want := []ReflogEntry{
		{OldHash: h1, NewHash: h2, Committer: testSig(2), Message: "second line"},
		{OldHash: object.ZeroHash, NewHash: h1, Committer: testSig(1), Message: "first"},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("reflog mismatch (-want +got):\n%s", diff)
	}
	assertFile(t, filepath.Join(r.GotDir, "logs", "refs", "heads", "main"))

	got, err := r.ReadRef("main")
	if err != nil || got != h2 {
		t.Fatalf("ReadRef = %q, %v; want %q", got, err, h2)
	}
}

func TestUpdateRef_CompareAndSwap(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := r.UpdateRef(RefUpdate{Name: "main", Hash: hashN(1), ExpectedOld: object.ZeroHash}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err = r.UpdateRef(RefUpdate{Name: "main", Hash: hashN(3), ExpectedOld: hashN(2)})
	if !errors.Is(err, ErrRefCASMismatch) {
		t.Fatalf("stale CAS error = %v, want ErrRefCASMismatch", err)
	}
}

func TestUpdateRef_ConcurrentSingleWinner(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	base := hashN(100)
	if err := r.UpdateRef(RefUpdate{Name: "main", Hash: base}); err != nil {
		t.Fatalf("UpdateRef(base): %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := r.UpdateRef(RefUpdate{Name: "main", Hash: hashN(i + 1), ExpectedOld: base})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
}

func TestReadReflog_Missing(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	entries, err := r.ReadReflog("refs/heads/nope")
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d, want 0", len(entries))
	}
}

func TestWriteReflog_RoundTrip(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	entries := []ReflogEntry{
		{OldHash: hashN(2), NewHash: hashN(3), Committer: testSig(3), Message: "c"},
		{OldHash: hashN(1), NewHash: hashN(2), Committer: testSig(2), Message: "b"},
	}
	if err := r.WriteReflog("refs/heads/topic", entries); err != nil {
		t.Fatalf("WriteReflog: %v", err)
	}
	got, err := r.ReadReflog("refs/heads/topic")
	if err != nil {
		t.Fatalf("ReadReflog: %v", err)
	}
	if diff := cmp.Diff(entries, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRenameAndDeleteReflog(t *testing.T) {
	r, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := r.AppendReflog("refs/heads/a", ReflogEntry{NewHash: hashN(1), Committer: testSig(1)}); err != nil {
		t.Fatalf("AppendReflog: %v", err)
	}
	if err := r.RenameReflog("refs/heads/a", "refs/heads/b"); err != nil {
		t.Fatalf("RenameReflog: %v", err)
	}
	if r.HasReflog("refs/heads/a") || !r.HasReflog("refs/heads/b") {
		t.Fatal("reflog was not moved")
	}
	if err := r.RenameReflog("refs/heads/missing", "refs/heads/c"); !errors.Is(err, ErrRefNotFound) {
		t.Fatalf("rename missing = %v, want ErrRefNotFound", err)
	}
	if err := r.DeleteReflog("refs/heads/b"); err != nil {
		t.Fatalf("DeleteReflog: %v", err)
	}
	if err := r.DeleteReflog("refs/heads/b"); err != nil {
		t.Fatalf("DeleteReflog twice: %v", err)
	}
}
