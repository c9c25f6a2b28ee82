package object

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Signature identifies who made a change and when. Offset is the timezone
// offset in minutes east of UTC.
type Signature struct {
	Name   string
	Email  string
	When   int64
	Offset int
}

// Time returns the signature time in its recorded zone.
func (s Signature) Time() time.Time {
	loc := time.FixedZone("", s.Offset*60)
	return time.Unix(s.When, 0).In(loc)
}

// String renders the signature as "Name <email> unix +hhmm".
func (s Signature) String() string {
	sign := '+'
	off := s.Offset
	if off < 0 {
		sign = '-'
		off = -off
	}
	return fmt.Sprintf("%s <%s> %d %c%02d%02d", s.Name, s.Email, s.When, sign, off/60, off%60)
}

// ParseSignature parses the output of Signature.String.
func ParseSignature(s string) (Signature, error) {
	lt := strings.IndexByte(s, '<')
	gt := strings.LastIndexByte(s, '>')
	if lt < 0 || gt < lt {
		return Signature{}, fmt.Errorf("parse signature %q: missing <email>", s)
	}
	sig := Signature{
		Name:  strings.TrimSpace(s[:lt]),
		Email: s[lt+1 : gt],
	}
	fields := strings.Fields(s[gt+1:])
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("parse signature %q: want time and offset", s)
	}
	when, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: bad time: %w", s, err)
	}
	sig.When = when
	off, err := parseOffset(fields[1])
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: %w", s, err)
	}
	sig.Offset = off
	return sig, nil
}

func parseOffset(s string) (int, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, fmt.Errorf("bad offset %q", s)
	}
	hh, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, fmt.Errorf("bad offset %q", s)
	}
	mm, err := strconv.Atoi(s[3:5])
	if err != nil || mm >= 60 {
		return 0, fmt.Errorf("bad offset %q", s)
	}
	off := hh*60 + mm
	if s[0] == '-' {
		off = -off
	}
	return off, nil
}

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload excludes the signature field itself.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}
