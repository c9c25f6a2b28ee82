package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ZeroHash is the all-zero hash used for "no object" in reflogs.
const ZeroHash Hash = "0000000000000000000000000000000000000000000000000000000000000000"

// IsZero reports whether h is empty or the all-zero hash.
func (h Hash) IsZero() bool {
	return h == "" || h == ZeroHash
}

// Short returns the first n characters of h.
func (h Hash) Short(n int) string {
	if len(h) <= n {
		return string(h)
	}
	return string(h[:n])
}

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Hash points at a blob for files
// and at a tree for directories.
type TreeEntry struct {
	Name string
	Mode string
	Hash Hash
}

// IsDir reports whether the entry names a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Mode == TreeModeDir
}

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// CommitObj represents a commit pointing to a tree with metadata.
type CommitObj struct {
	TreeHash  Hash
	Parents   []Hash
	Author    Signature
	Committer Signature
	Signature string // optional detached signature over CommitSigningPayload
	Message   string
}
