package native

import (
	"fmt"
	"strings"
	"testing"

	"github.com/odvcencio/gotbind/pkg/object"
)

func hashN(i int) object.Hash {
	return object.Hash(fmt.Sprintf("%064x", i))
}

func initRepo(t *testing.T, l *Lib) Ptr {
	t.Helper()
	var r Ptr
	if code := l.RepositoryInit(&r, t.TempDir()); code != OK {
		t.Fatalf("RepositoryInit = %d (%s)", code, l.LastError().Message)
	}
	t.Cleanup(func() { l.RepositoryFree(r) })
	return r
}

func newSig(t *testing.T, l *Lib, name string, when int64) Ptr {
	t.Helper()
	var s Ptr
	if code := l.SignatureNew(&s, name, strings.ToLower(name)+"@example.com", when, 0); code != OK {
		t.Fatalf("SignatureNew = %d (%s)", code, l.LastError().Message)
	}
	return s
}

func assertNoViolations(t *testing.T, l *Lib) {
	t.Helper()
	if st := l.Stats(); st.Violations() != 0 {
		t.Fatalf("memory violations: %+v", st)
	}
}

func TestSignatureLifecycle(t *testing.T) {
	l := New()
	s := newSig(t, l, "Ada", 42)
	if got := l.SignatureName(s); got != "Ada" {
		t.Errorf("SignatureName = %q", got)
	}
	if got := l.SignatureEmail(s); got != "ada@example.com" {
		t.Errorf("SignatureEmail = %q", got)
	}
	if when, off := l.SignatureWhen(s); when != 42 || off != 0 {
		t.Errorf("SignatureWhen = %d, %d", when, off)
	}

	var dup Ptr
	if code := l.SignatureDup(&dup, s); code != OK {
		t.Fatalf("SignatureDup = %d", code)
	}
	if dup == s {
		t.Fatal("dup returned the same pointer")
	}
	l.SignatureFree(s)
	if l.SignatureName(dup) != "Ada" {
		t.Error("dup should survive freeing the original")
	}
	l.SignatureFree(dup)

	st := l.Stats()
	if st.Live != 0 || st.Frees != 2 {
		t.Fatalf("stats = %+v, want 0 live and 2 frees", st)
	}
	assertNoViolations(t, l)
}

func TestSignatureNewRejectsBadIdentity(t *testing.T) {
	l := New()
	var s Ptr
	if code := l.SignatureNew(&s, "", "a@b", 0, 0); code != ErrInvalid {
		t.Fatalf("empty name code = %d, want %d", code, ErrInvalid)
	}
	if l.LastError().Message == "" {
		t.Fatal("last error message is empty")
	}
	if code := l.SignatureNew(&s, "A", "a<b", 0, 0); code != ErrInvalid {
		t.Fatalf("bad email code = %d", code)
	}
	if s != Null {
		t.Fatal("out pointer written on failure")
	}
}

func TestMisuseIsCounted(t *testing.T) {
	l := New()
	s := newSig(t, l, "Ada", 1)
	l.SignatureFree(s)
	l.SignatureFree(s)
	if got := l.Stats().DoubleFrees; got != 1 {
		t.Fatalf("DoubleFrees = %d, want 1", got)
	}
	_ = l.SignatureName(s)
	if got := l.Stats().UseAfterFree; got != 1 {
		t.Fatalf("UseAfterFree = %d, want 1", got)
	}

	r := initRepo(t, l)
	_ = l.ReflogEntryCount(r)
	if got := l.Stats().TypeConfusion; got != 1 {
		t.Fatalf("TypeConfusion = %d, want 1", got)
	}
}

func TestCallsCounter(t *testing.T) {
	l := New()
	before := l.Calls()
	_ = l.ReflogEntryCount(Null)
	_ = l.SignatureName(Null)
	if got := l.Calls() - before; got != 2 {
		t.Fatalf("calls delta = %d, want 2", got)
	}
	_ = l.Stats()
	_ = l.IsLive(Null)
	if got := l.Calls() - before; got != 2 {
		t.Fatalf("introspection should not count as calls, delta = %d", got)
	}
}

func seedReflog(t *testing.T, l *Lib, r Ptr, name string, n int) {
	t.Helper()
	var rl Ptr
	if code := l.ReflogRead(&rl, r, name); code != OK {
		t.Fatalf("ReflogRead = %d (%s)", code, l.LastError().Message)
	}
	defer l.ReflogFree(rl)
	sig := newSig(t, l, "Seeder", 100)
	defer l.SignatureFree(sig)
	for i := 1; i <= n; i++ {
		if code := l.ReflogAppend(rl, hashN(i), sig, fmt.Sprintf("entry %d", i)); code != OK {
			t.Fatalf("ReflogAppend = %d (%s)", code, l.LastError().Message)
		}
	}
	if code := l.ReflogWrite(rl); code != OK {
		t.Fatalf("ReflogWrite = %d (%s)", code, l.LastError().Message)
	}
}

func TestReflogReadAndEntries(t *testing.T) {
	l := New()
	r := initRepo(t, l)
	seedReflog(t, l, r, "refs/heads/main", 3)

	var rl Ptr
	if code := l.ReflogRead(&rl, r, "refs/heads/main"); code != OK {
		t.Fatalf("ReflogRead = %d", code)
	}
	if got := l.ReflogEntryCount(rl); got != 3 {
		t.Fatalf("ReflogEntryCount = %d, want 3", got)
	}

	newest := l.ReflogEntryByIndex(rl, 0)
	if newest == Null {
		t.Fatal("entry 0 is Null")
	}
	if got := l.ReflogEntryIDNew(newest); got != hashN(3) {
		t.Errorf("newest id = %s, want %s", got, hashN(3))
	}
	if got := l.ReflogEntryIDOld(newest); got != hashN(2) {
		t.Errorf("newest old id = %s, want %s", got, hashN(2))
	}
	if got := l.ReflogEntryMessage(newest); got != "entry 3" {
		t.Errorf("message = %q", got)
	}
	if again := l.ReflogEntryByIndex(rl, 0); again != newest {
		t.Errorf("repeated lookup returned %#x, want %#x", again, newest)
	}
	oldest := l.ReflogEntryByIndex(rl, 2)
	if got := l.ReflogEntryIDOld(oldest); got != object.ZeroHash {
		t.Errorf("oldest old id = %s, want zero", got)
	}
	if l.ReflogEntryByIndex(rl, 3) != Null || l.ReflogEntryByIndex(rl, -1) != Null {
		t.Error("out-of-range index should yield Null")
	}

	committer := l.ReflogEntryCommitter(newest)
	if l.SignatureName(committer) != "Seeder" {
		t.Errorf("committer name = %q", l.SignatureName(committer))
	}

	l.ReflogFree(rl)
	if l.IsLive(newest) || l.IsLive(committer) {
		t.Fatal("interior pointers should be invalidated with their owner")
	}
	assertNoViolations(t, l)

	_ = l.ReflogEntryMessage(newest)
	if got := l.Stats().UseAfterFree; got != 1 {
		t.Fatalf("UseAfterFree = %d, want 1", got)
	}
}

func TestReflogDropRewritesHistory(t *testing.T) {
	l := New()
	r := initRepo(t, l)
	seedReflog(t, l, r, "refs/heads/main", 4)

	var rl Ptr
	if code := l.ReflogRead(&rl, r, "refs/heads/main"); code != OK {
		t.Fatalf("ReflogRead = %d", code)
	}
	defer l.ReflogFree(rl)

	dropped := l.ReflogEntryByIndex(rl, 1)
	if code := l.ReflogDrop(rl, 1, true); code != OK {
		t.Fatalf("ReflogDrop = %d", code)
	}
	if l.IsLive(dropped) {
		t.Error("dropped entry pointer should be invalid")
	}
	if got := l.ReflogEntryCount(rl); got != 3 {
		t.Fatalf("count after drop = %d", got)
	}
	// entry 0 (4) now chains to entry 1 (2).
	if got := l.ReflogEntryIDOld(l.ReflogEntryByIndex(rl, 0)); got != hashN(2) {
		t.Errorf("rewritten old id = %s, want %s", got, hashN(2))
	}

	if code := l.ReflogDrop(rl, 2, true); code != OK {
		t.Fatalf("drop oldest = %d", code)
	}
	if got := l.ReflogEntryIDOld(l.ReflogEntryByIndex(rl, 1)); got != object.ZeroHash {
		t.Errorf("new oldest old id = %s, want zero", got)
	}

	if code := l.ReflogDrop(rl, 10, false); code != ErrNotFound {
		t.Fatalf("drop out of range = %d, want %d", code, ErrNotFound)
	}
	assertNoViolations(t, l)
}

func TestReflogRenameAndDelete(t *testing.T) {
	l := New()
	r := initRepo(t, l)
	seedReflog(t, l, r, "refs/heads/a", 1)

	if code := l.ReflogRename(r, "refs/heads/a", "refs/heads/b"); code != OK {
		t.Fatalf("ReflogRename = %d (%s)", code, l.LastError().Message)
	}
	if code := l.ReflogRename(r, "refs/heads/a", "refs/heads/c"); code != ErrNotFound {
		t.Fatalf("rename missing = %d, want ErrNotFound", code)
	}
	if code := l.ReflogRename(r, "refs/heads/b", "bad name"); code != ErrInvalidSpec {
		t.Fatalf("rename to invalid = %d, want ErrInvalidSpec", code)
	}
	if code := l.ReflogDelete(r, "refs/heads/b"); code != OK {
		t.Fatalf("ReflogDelete = %d", code)
	}
	var rl Ptr
	if code := l.ReflogRead(&rl, r, "refs/heads/b"); code != OK {
		t.Fatalf("ReflogRead after delete = %d", code)
	}
	defer l.ReflogFree(rl)
	if got := l.ReflogEntryCount(rl); got != 0 {
		t.Fatalf("count after delete = %d", got)
	}
}

func TestLastErrorIsOverwrittenByNextFailure(t *testing.T) {
	l := New()
	r := initRepo(t, l)
	var p Ptr
	if code := l.ReferenceLookup(&p, r, "refs/heads/missing"); code != ErrNotFound {
		t.Fatalf("lookup code = %d", code)
	}
	first := l.LastError()
	if first.Class != ClassReference || !strings.Contains(first.Message, "missing") {
		t.Fatalf("first error = %+v", first)
	}
	if code := l.ReferenceLookup(&p, r, "not valid"); code != ErrInvalidSpec {
		t.Fatalf("invalid lookup code = %d", code)
	}
	if l.LastError().Message == first.Message {
		t.Fatal("last error was not overwritten")
	}
}

func TestCommitTreeBlobRoundTrip(t *testing.T) {
	l := New()
	r := initRepo(t, l)

	var blobID object.Hash
	if code := l.BlobCreateFromBuffer(&blobID, r, []byte("hello\n")); code != OK {
		t.Fatalf("BlobCreateFromBuffer = %d", code)
	}
	var treeID object.Hash
	entries := []object.TreeEntry{{Name: "hello.txt", Mode: object.TreeModeFile, Hash: blobID}}
	if code := l.TreeCreate(&treeID, r, entries); code != OK {
		t.Fatalf("TreeCreate = %d (%s)", code, l.LastError().Message)
	}
	if code := l.TreeCreate(&treeID, r, append(entries, entries[0])); code != ErrExists {
		t.Fatalf("duplicate entry code = %d, want ErrExists", code)
	}

	sig := newSig(t, l, "Ada", 1000)
	defer l.SignatureFree(sig)

	var commitID object.Hash
	spec := CommitSpec{Author: sig, Committer: sig, Message: "initial\n\nbody", Tree: treeID}
	if code := l.CommitCreate(&commitID, r, "refs/heads/main", spec); code != OK {
		t.Fatalf("CommitCreate = %d (%s)", code, l.LastError().Message)
	}
	if code := l.CommitCreate(&commitID, r, "refs/heads/main", spec); code != ErrModified {
		t.Fatalf("second root commit code = %d, want ErrModified", code)
	}

	var c Ptr
	if code := l.CommitLookup(&c, r, commitID); code != OK {
		t.Fatalf("CommitLookup = %d", code)
	}
	if l.CommitSummary(c) != "initial" {
		t.Errorf("CommitSummary = %q", l.CommitSummary(c))
	}
	if l.CommitParentCount(c) != 0 || l.CommitParentID(c, 0) != "" {
		t.Error("root commit should have no parents")
	}
	author := l.CommitAuthor(c)
	if l.SignatureName(author) != "Ada" {
		t.Errorf("author = %q", l.SignatureName(author))
	}

	var tree Ptr
	if code := l.CommitTree(&tree, c); code != OK {
		t.Fatalf("CommitTree = %d", code)
	}
	entry := l.TreeEntryByName(tree, "hello.txt")
	if entry == Null || l.TreeEntryByName(tree, "nope") != Null {
		t.Fatal("TreeEntryByName lookup mismatch")
	}
	if l.TreeEntryFilemode(entry) != 0o100644 {
		t.Errorf("filemode = %o", l.TreeEntryFilemode(entry))
	}

	var blob Ptr
	if code := l.BlobLookup(&blob, r, l.TreeEntryID(entry)); code != OK {
		t.Fatalf("BlobLookup = %d", code)
	}
	if string(l.BlobRawContent(blob)) != "hello\n" || l.BlobRawSize(blob) != 6 {
		t.Error("blob content mismatch")
	}

	l.BlobFree(blob)
	l.TreeFree(tree)
	l.CommitFree(c)
	if l.IsLive(author) || l.IsLive(entry) {
		t.Fatal("interior pointers outlived their owners")
	}
	assertNoViolations(t, l)

	var head Ptr
	if code := l.RepositoryHead(&head, r); code != OK {
		t.Fatalf("RepositoryHead = %d", code)
	}
	defer l.ReferenceFree(head)
	if l.ReferenceTarget(head) != commitID || l.ReferenceName(head) != "refs/heads/main" {
		t.Fatalf("HEAD = %s -> %s", l.ReferenceName(head), l.ReferenceTarget(head))
	}
}

func TestCommitSignatureExtraction(t *testing.T) {
	l := New()
	r := initRepo(t, l)
	var blobID, treeID, id object.Hash
	l.BlobCreateFromBuffer(&blobID, r, []byte("x"))
	l.TreeCreate(&treeID, r, []object.TreeEntry{{Name: "x", Mode: object.TreeModeFile, Hash: blobID}})
	sig := newSig(t, l, "Ada", 1)
	defer l.SignatureFree(sig)

	var buf []byte
	if code := l.CommitCreateBuffer(&buf, r, CommitSpec{Author: sig, Committer: sig, Message: "signed", Tree: treeID}); code != OK {
		t.Fatalf("CommitCreateBuffer = %d", code)
	}
	if code := l.CommitCreateWithSignature(&id, r, buf, "test-sig"); code != OK {
		t.Fatalf("CommitCreateWithSignature = %d (%s)", code, l.LastError().Message)
	}

	var gotSig string
	var payload []byte
	if code := l.CommitExtractSignature(&gotSig, &payload, r, id); code != OK {
		t.Fatalf("CommitExtractSignature = %d", code)
	}
	if gotSig != "test-sig" || string(payload) != string(buf) {
		t.Fatalf("signature %q, payload matches buffer = %v", gotSig, string(payload) == string(buf))
	}
}

func TestUnbornHead(t *testing.T) {
	l := New()
	r := initRepo(t, l)
	var head Ptr
	if code := l.RepositoryHead(&head, r); code != ErrUnbornBranch {
		t.Fatalf("RepositoryHead on empty repo = %d, want ErrUnbornBranch", code)
	}
}
