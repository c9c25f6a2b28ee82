package egit

import (
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
	"github.com/odvcencio/gotbind/pkg/object"
)

var blobBindings = []binding{
	{"git-blob-lookup", 2, 2, "Look up the blob ID in REPO.", blobLookup},
	{"git-blob-id", 1, 1, "Return the id of BLOB.", blobID},
	{"git-blob-rawsize", 1, 1, "Return the size of BLOB in bytes.", blobRawSize},
	{"git-blob-rawcontent", 1, 1, "Return the content of BLOB as a string.", blobRawContent},
	{"git-blob-create-frombuffer", 2, 2, "Store DATA as a blob in REPO and return its id.", blobCreateFromBuffer},
}

func blobLookup(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	id, err := hashArg(args[1])
	if err != nil {
		return nil, err
	}
	var out native.Ptr
	done := rt.logOp("blob_lookup", "id", id.Short(12))
	err = rt.check(rt.lib.BlobLookup(&out, r, id))
	done(err)
	if err != nil {
		return nil, err
	}
	return rt.wrapOwned(env, out, TypeBlob)
}

func blobID(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	b, err := rt.Extract(args[0], TypeBlob)
	if err != nil {
		return nil, err
	}
	return hashValue(rt.lib.BlobID(b)), nil
}

func blobRawSize(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	b, err := rt.Extract(args[0], TypeBlob)
	if err != nil {
		return nil, err
	}
	return host.Int(rt.lib.BlobRawSize(b)), nil
}

func blobRawContent(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	b, err := rt.Extract(args[0], TypeBlob)
	if err != nil {
		return nil, err
	}
	return host.String(rt.lib.BlobRawContent(b)), nil
}

func blobCreateFromBuffer(rt *Runtime, env *host.Env, args []host.Value) (host.Value, error) {
	r, err := rt.Extract(args[0], TypeRepository)
	if err != nil {
		return nil, err
	}
	data, err := stringArg(args[1])
	if err != nil {
		return nil, err
	}
	var id object.Hash
	done := rt.logOp("blob_create_frombuffer", "size", len(data))
	err = rt.check(rt.lib.BlobCreateFromBuffer(&id, r, []byte(data)))
	done(err)
	if err != nil {
		return nil, err
	}
	return host.String(id), nil
}
