// Package digest implements the content-addressing primitive every
// envelope variant is built on: a 32-byte SHA-256 hash with two
// combinators, one over raw bytes and one over other digests.
package digest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Size is the length in bytes of a Digest.
const Size = sha256.Size

// Digest is a 32-byte content hash. The zero value is not a valid digest
// of anything; it only appears as a sentinel in places that need one.
type Digest [Size]byte

// OfBytes computes the digest of a byte string: SHA-256(b).
func OfBytes(b []byte) Digest {
	return Digest(sha256.Sum256(b))
}

// OfDigests computes the digest of a sequence of digests: SHA-256 of the
// concatenation of their raw bytes, in the given order. An empty slice
// hashes the empty byte string.
func OfDigests(ds ...Digest) Digest {
	buf := make([]byte, 0, Size*len(ds))
	for _, d := range ds {
		buf = append(buf, d[:]...)
	}
	return OfBytes(buf)
}

// Bytes returns the digest's raw 32 bytes.
func (d Digest) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, d[:])
	return out
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 8 hex characters, used by tree-view rendering.
func (d Digest) Short() string {
	h := d.Hex()
	return h[:8]
}

func (d Digest) String() string {
	return d.Hex()
}

// Equal reports whether two digests are byte-equal.
func (d Digest) Equal(o Digest) bool {
	return d == o
}

// Compare orders digests lexicographically by raw bytes; used to keep a
// Node's assertions in deterministic order regardless of insertion order.
func (d Digest) Compare(o Digest) int {
	return bytes.Compare(d[:], o[:])
}

// FromBytes reconstructs a Digest from exactly Size raw bytes.
func FromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != Size {
		return d, fmt.Errorf("digest: expected %d bytes, got %d", Size, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// FromHex parses a hex-encoded digest.
func FromHex(s string) (Digest, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("digest: invalid hex: %w", err)
	}
	return FromBytes(b)
}

// SortSlice sorts digests ascending, in place.
func SortSlice(ds []Digest) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Compare(ds[j]) < 0 })
}

// Provider is implemented by anything that carries or can compute a
// digest — the common interface shared by envelopes, assertions, and any
// future extension type that needs to participate in digest sets.
type Provider interface {
	Digest() Digest
}
