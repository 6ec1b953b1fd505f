// Package envelope implements the Gordian Envelope data model: a
// recursive, hash-addressed container over deterministic CBOR, and the
// privacy-preserving transformations (elision, encryption, compression)
// that preserve an envelope's digest. See SPEC_FULL.md for the full
// design; this file defines the eight-variant sum type and its smart
// constructors.
package envelope

import (
	"fmt"

	"github.com/blockchaincommons/gordian-envelope/pkg/dcbor"
	"github.com/blockchaincommons/gordian-envelope/pkg/digest"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
)

// Kind discriminates the eight envelope variants.
type Kind int

const (
	KindLeaf Kind = iota
	KindKnownValue
	KindAssertion
	KindNode
	KindWrapped
	KindEncrypted
	KindCompressed
	KindElided
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindKnownValue:
		return "known-value"
	case KindAssertion:
		return "assertion"
	case KindNode:
		return "node"
	case KindWrapped:
		return "wrapped"
	case KindEncrypted:
		return "encrypted"
	case KindCompressed:
		return "compressed"
	case KindElided:
		return "elided"
	default:
		return "unknown"
	}
}

// Envelope is implemented by exactly the eight variant types below.
// Values are immutable after construction; every "mutator" in this
// package returns a new Envelope while sharing unchanged subtrees.
type Envelope interface {
	digest.Provider
	Kind() Kind
	sealEnvelope()
}

// Leaf carries a dCBOR value that is not itself an envelope tag. Its
// digest is digest_of_bytes of the value's canonical CBOR encoding.
type Leaf struct {
	cborBytes []byte
	value     any
	d         digest.Digest
}

func (*Leaf) sealEnvelope()        {}
func (*Leaf) Kind() Kind           { return KindLeaf }
func (l *Leaf) Digest() digest.Digest { return l.d }

// CBORBytes returns the leaf's canonical CBOR encoding.
func (l *Leaf) CBORBytes() []byte { return l.cborBytes }

// Value returns the decoded native value, as passed to NewLeaf.
func (l *Leaf) Value() any { return l.value }

// NewLeaf canonically encodes v and wraps it as a Leaf envelope. Text
// values are NFC-normalized before encoding so canonical bytes are
// determined by content alone.
func NewLeaf(v any) (*Leaf, error) {
	if s, ok := v.(string); ok {
		v = dcbor.NormalizeText(s)
	}
	b, err := dcbor.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("envelope: encoding leaf: %w", err)
	}
	return &Leaf{cborBytes: b, value: v, d: digest.OfBytes(b)}, nil
}

// KnownValueLeaf carries a KnownValue predicate.
type KnownValueLeaf struct {
	kv        knownvalue.KnownValue
	cborBytes []byte
	d         digest.Digest
}

func (*KnownValueLeaf) sealEnvelope()           {}
func (*KnownValueLeaf) Kind() Kind              { return KindKnownValue }
func (k *KnownValueLeaf) Digest() digest.Digest { return k.d }

// Value returns the carried KnownValue.
func (k *KnownValueLeaf) Value() knownvalue.KnownValue { return k.kv }

// NewKnownValueLeaf wraps a KnownValue as an envelope.
func NewKnownValueLeaf(kv knownvalue.KnownValue) (*KnownValueLeaf, error) {
	b, err := dcbor.Marshal(kv.Value())
	if err != nil {
		return nil, fmt.Errorf("envelope: encoding known value: %w", err)
	}
	return &KnownValueLeaf{kv: kv, cborBytes: b, d: digest.OfBytes(b)}, nil
}

// Assertion is an immutable (predicate, object) pair attached to a
// subject; its digest is digest_of_digests([digest(predicate), digest(object)]).
type Assertion struct {
	predicate Envelope
	object    Envelope
	d         digest.Digest
}

func (*Assertion) sealEnvelope()           {}
func (*Assertion) Kind() Kind              { return KindAssertion }
func (a *Assertion) Digest() digest.Digest { return a.d }

// Predicate returns the assertion's predicate envelope.
func (a *Assertion) Predicate() Envelope { return a.predicate }

// Object returns the assertion's object envelope.
func (a *Assertion) Object() Envelope { return a.object }

// NewAssertion constructs an Assertion from a predicate and object,
// converting each through New if it is not already an Envelope.
func NewAssertion(predicate, object any) (*Assertion, error) {
	p, err := New(predicate)
	if err != nil {
		return nil, fmt.Errorf("envelope: assertion predicate: %w", err)
	}
	o, err := New(object)
	if err != nil {
		return nil, fmt.Errorf("envelope: assertion object: %w", err)
	}
	return &Assertion{
		predicate: p,
		object:    o,
		d:         digest.OfDigests(p.Digest(), o.Digest()),
	}, nil
}

// Node combines a subject with one or more assertions, always stored
// sorted ascending by digest so the node's digest is independent of
// insertion order.
type Node struct {
	subject    Envelope
	assertions []Envelope
	d          digest.Digest
}

func (*Node) sealEnvelope()           {}
func (*Node) Kind() Kind              { return KindNode }
func (n *Node) Digest() digest.Digest { return n.d }

// Subject returns the node's subject envelope.
func (n *Node) Subject() Envelope { return n.subject }

// Assertions returns the node's assertions, sorted ascending by digest.
func (n *Node) Assertions() []Envelope {
	out := make([]Envelope, len(n.assertions))
	copy(out, n.assertions)
	return out
}

// NewNode constructs a Node from a subject and at least one assertion
// envelope. Each assertion must be digest-equivalent to an Assertion (it
// is one, or an obscured form whose digest equals one), per spec.md §3.3.
// Obscured forms carry only a digest, so their Assertion-ness can't be
// re-derived here; only the non-obscured case is checked directly.
func NewNode(subject Envelope, assertions []Envelope) (*Node, error) {
	if len(assertions) == 0 {
		return nil, ErrEmptyNode
	}
	for _, a := range assertions {
		if !IsAssertion(a) && !IsObscured(a) {
			return nil, fmt.Errorf("%w: node assertion slot holds a %s", ErrNotAssertion, a.Kind())
		}
	}
	sorted := make([]Envelope, len(assertions))
	copy(sorted, assertions)
	sortEnvelopesByDigest(sorted)

	digests := make([]digest.Digest, 0, len(sorted)+1)
	digests = append(digests, subject.Digest())
	for _, a := range sorted {
		digests = append(digests, a.Digest())
	}
	return &Node{subject: subject, assertions: sorted, d: digest.OfDigests(digests...)}, nil
}

func sortEnvelopesByDigest(es []Envelope) {
	for i := 1; i < len(es); i++ {
		for j := i; j > 0 && es[j-1].Digest().Compare(es[j].Digest()) > 0; j-- {
			es[j-1], es[j] = es[j], es[j-1]
		}
	}
}

// Wrapped treats another envelope as a single opaque subject.
type Wrapped struct {
	inner Envelope
	d     digest.Digest
}

func (*Wrapped) sealEnvelope()           {}
func (*Wrapped) Kind() Kind              { return KindWrapped }
func (w *Wrapped) Digest() digest.Digest { return w.d }

// Inner returns the wrapped envelope.
func (w *Wrapped) Inner() Envelope { return w.inner }

// NewWrapped wraps inner in a Wrapped envelope.
func NewWrapped(inner Envelope) *Wrapped {
	return &Wrapped{inner: inner, d: digest.OfDigests(inner.Digest())}
}

// EncryptedMessage is opaque AEAD ciphertext produced by an Encryptor,
// binding the plaintext's digest into its additional authenticated data.
type EncryptedMessage struct {
	Ciphertext []byte
	Nonce      []byte
	AAD        []byte
	KeyVersion string
}

// Encrypted carries AEAD ciphertext that embeds the plaintext's digest;
// its own digest IS the embedded plaintext digest.
type Encrypted struct {
	Message EncryptedMessage
	d       digest.Digest
}

func (*Encrypted) sealEnvelope()           {}
func (*Encrypted) Kind() Kind              { return KindEncrypted }
func (e *Encrypted) Digest() digest.Digest { return e.d }

// NewEncrypted constructs an Encrypted envelope carrying message, which
// MUST embed plaintextDigest (spec.md §3.3, "Ciphertext/Compressed carry
// digest"); a zero digest is rejected.
func NewEncrypted(message EncryptedMessage, plaintextDigest digest.Digest) (*Encrypted, error) {
	var zero digest.Digest
	if plaintextDigest == zero {
		return nil, ErrMissingDigest
	}
	return &Encrypted{Message: message, d: plaintextDigest}, nil
}

// Compressed carries compressed bytes that embed the uncompressed
// envelope's digest; its own digest IS that embedded digest.
type Compressed struct {
	Blob []byte
	d    digest.Digest
}

func (*Compressed) sealEnvelope()           {}
func (*Compressed) Kind() Kind              { return KindCompressed }
func (c *Compressed) Digest() digest.Digest { return c.d }

// NewCompressed constructs a Compressed envelope; blob MUST have been
// produced from content whose digest is plaintextDigest.
func NewCompressed(blob []byte, plaintextDigest digest.Digest) (*Compressed, error) {
	var zero digest.Digest
	if plaintextDigest == zero {
		return nil, ErrMissingDigest
	}
	return &Compressed{Blob: blob, d: plaintextDigest}, nil
}

// Elided carries only a digest, standing in for content that has been
// removed while preserving verifiability.
type Elided struct {
	d digest.Digest
}

func (*Elided) sealEnvelope()           {}
func (*Elided) Kind() Kind              { return KindElided }
func (e *Elided) Digest() digest.Digest { return e.d }

// NewElided constructs an Elided envelope standing in for d.
func NewElided(d digest.Digest) *Elided {
	return &Elided{d: d}
}

// New is the general-purpose smart constructor (spec.md §4.1): if v is
// already an Envelope, the result wraps it in a Wrapped; if it is a
// KnownValue, an *Assertion, or an obscured (*Encrypted, *Compressed,
// *Elided) envelope, the corresponding variant is returned directly;
// otherwise v is dCBOR-encoded into a Leaf.
func New(v any) (Envelope, error) {
	switch x := v.(type) {
	case knownvalue.KnownValue:
		return NewKnownValueLeaf(x)
	case *Assertion:
		return x, nil
	case *Encrypted:
		return x, nil
	case *Compressed:
		return x, nil
	case *Elided:
		return x, nil
	case Envelope:
		return NewWrapped(x), nil
	default:
		return NewLeaf(v)
	}
}

// AddAssertion returns a new envelope whose node contains subject as
// subject (or extends subject's existing node) with a new assertion for
// (predicate, object) inserted into the sorted assertion list.
func AddAssertion(subject Envelope, predicate, object any) (Envelope, error) {
	a, err := NewAssertion(predicate, object)
	if err != nil {
		return nil, err
	}
	return AddAssertionEnvelope(subject, a)
}

// AddAssertionEnvelope is AddAssertion for an already-constructed
// assertion envelope; AddAssertion builds the assertion and delegates here.
func AddAssertionEnvelope(subject Envelope, assertion Envelope) (Envelope, error) {
	if n, ok := subject.(*Node); ok {
		return NewNode(n.subject, append(n.Assertions(), assertion))
	}
	return NewNode(subject, []Envelope{assertion})
}

// Subject returns e's subject: for Node, the subject field; for every
// other variant, e itself.
func Subject(e Envelope) Envelope {
	if n, ok := e.(*Node); ok {
		return n.subject
	}
	return e
}

// Assertions returns e's assertions: for Node, the sorted assertion
// list; for every other variant, nil.
func Assertions(e Envelope) []Envelope {
	if n, ok := e.(*Node); ok {
		return n.Assertions()
	}
	return nil
}

// HasAssertions reports whether e is a Node with at least one assertion.
func HasAssertions(e Envelope) bool {
	return len(Assertions(e)) > 0
}

// IsLeaf, IsNode, IsWrapped, IsKnownValue, IsAssertion, IsEncrypted,
// IsCompressed, and IsElided test e's variant.
func IsLeaf(e Envelope) bool       { return e.Kind() == KindLeaf }
func IsNode(e Envelope) bool       { return e.Kind() == KindNode }
func IsWrapped(e Envelope) bool    { return e.Kind() == KindWrapped }
func IsKnownValue(e Envelope) bool { return e.Kind() == KindKnownValue }
func IsAssertion(e Envelope) bool  { return e.Kind() == KindAssertion }
func IsEncrypted(e Envelope) bool  { return e.Kind() == KindEncrypted }
func IsCompressed(e Envelope) bool { return e.Kind() == KindCompressed }
func IsElided(e Envelope) bool     { return e.Kind() == KindElided }

// IsObscured reports whether e is Encrypted, Compressed, or Elided.
func IsObscured(e Envelope) bool {
	switch e.Kind() {
	case KindEncrypted, KindCompressed, KindElided:
		return true
	default:
		return false
	}
}

// IsInternal reports whether e is a structural (non-leaf, non-obscured)
// variant: Assertion, Node, or Wrapped.
func IsInternal(e Envelope) bool {
	switch e.Kind() {
	case KindAssertion, KindNode, KindWrapped:
		return true
	default:
		return false
	}
}
