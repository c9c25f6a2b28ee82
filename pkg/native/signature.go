package native

import (
	"strings"
	"time"

	"github.com/odvcencio/gotbind/pkg/object"
)

func validIdentity(s string) bool {
	return strings.TrimSpace(s) != "" && !strings.ContainsAny(s, "<>\n")
}

// SignatureNew allocates a signature. offset is minutes east of UTC.
func (l *Lib) SignatureNew(out *Ptr, name, email string, when int64, offset int) int {
	defer l.enter()()
	return l.signatureNew(out, name, email, when, offset)
}

func (l *Lib) signatureNew(out *Ptr, name, email string, when int64, offset int) int {
	if !validIdentity(name) || !validIdentity(email) {
		return l.fail(ErrInvalid, ClassInvalid, "failed to parse signature - invalid name or email")
	}
	if offset <= -24*60 || offset >= 24*60 {
		return l.fail(ErrInvalid, ClassInvalid, "invalid timezone offset %d", offset)
	}
	sig := &object.Signature{
		Name:   strings.TrimSpace(name),
		Email:  strings.TrimSpace(email),
		When:   when,
		Offset: offset,
	}
	*out = l.alloc(KindSignature, sig)
	return OK
}

// SignatureNow allocates a signature stamped with the current local time.
func (l *Lib) SignatureNow(out *Ptr, name, email string) int {
	defer l.enter()()
	now := time.Now()
	_, off := now.Zone()
	return l.signatureNew(out, name, email, now.Unix(), off/60)
}

// SignatureDefault allocates the repository's configured identity.
func (l *Lib) SignatureDefault(out *Ptr, repoPtr Ptr) int {
	defer l.enter()()
	r, code := l.repo(repoPtr)
	if code != OK {
		return code
	}
	sig, err := r.DefaultSignature()
	if err != nil {
		return l.fail(ErrNotFound, ClassRepository, "%v", err)
	}
	*out = l.alloc(KindSignature, &sig)
	return OK
}

// SignatureDup copies sig into a new caller-owned allocation. sig may be
// an interior pointer.
func (l *Lib) SignatureDup(out *Ptr, sig Ptr) int {
	defer l.enter()()
	o, ok := l.get(sig, KindSignature)
	if !ok {
		return invalidArg(l, "signature", sig)
	}
	cp := *o.(*object.Signature)
	*out = l.alloc(KindSignature, &cp)
	return OK
}

// SignatureFree releases a caller-owned signature.
func (l *Lib) SignatureFree(p Ptr) {
	defer l.enter()()
	l.free(p, KindSignature)
}

func (l *Lib) signature(p Ptr) (*object.Signature, bool) {
	o, ok := l.get(p, KindSignature)
	if !ok {
		return nil, false
	}
	return o.(*object.Signature), true
}

// SignatureName returns the signer's name.
func (l *Lib) SignatureName(p Ptr) string {
	defer l.enter()()
	if s, ok := l.signature(p); ok {
		return s.Name
	}
	return ""
}

// SignatureEmail returns the signer's email.
func (l *Lib) SignatureEmail(p Ptr) string {
	defer l.enter()()
	if s, ok := l.signature(p); ok {
		return s.Email
	}
	return ""
}

// SignatureWhen returns the signature time as unix seconds and the offset
// in minutes.
func (l *Lib) SignatureWhen(p Ptr) (int64, int) {
	defer l.enter()()
	if s, ok := l.signature(p); ok {
		return s.When, s.Offset
	}
	return 0, 0
}
