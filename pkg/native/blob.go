package native

import "github.com/odvcencio/gotbind/pkg/object"

type blobObj struct {
	id   object.Hash
	data []byte
}

// BlobLookup loads a blob by id.
func (l *Lib) BlobLookup(out *Ptr, repoPtr Ptr, id object.Hash) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	b, err := r.Store.ReadBlob(id)
	if err != nil {
		return l.lookupFail(err, "blob", id)
	}
	*out = l.alloc(KindBlob, &blobObj{id: id, data: b.Data})
	return OK
}

// BlobFree releases a blob.
func (l *Lib) BlobFree(p Ptr) {
	defer l.enter()()
	l.free(p, KindBlob)
}

// BlobID returns the blob's id.
func (l *Lib) BlobID(p Ptr) object.Hash {
	defer l.enter()()
	if o, ok := l.get(p, KindBlob); ok {
		return o.(*blobObj).id
	}
	return ""
}

// BlobRawSize returns the content length in bytes, or -1 for an invalid
// pointer.
func (l *Lib) BlobRawSize(p Ptr) int64 {
	defer l.enter()()
	if o, ok := l.get(p, KindBlob); ok {
		return int64(len(o.(*blobObj).data))
	}
	return -1
}

// BlobRawContent returns a copy of the blob content.
func (l *Lib) BlobRawContent(p Ptr) []byte {
	defer l.enter()()
	o, ok := l.get(p, KindBlob)
	if !ok {
		return nil
	}
	data := o.(*blobObj).data
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// BlobCreateFromBuffer stores data as a blob and returns its id.
func (l *Lib) BlobCreateFromBuffer(out *object.Hash, repoPtr Ptr, data []byte) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	h, err := r.Store.WriteBlob(&object.Blob{Data: data})
	if err != nil {
		return l.fail(ErrGeneric, ClassObject, "%v", err)
	}
	*out = h
	return OK
}
