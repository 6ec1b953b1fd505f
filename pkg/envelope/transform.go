package envelope

import (
	"crypto/rand"
	"fmt"

	"github.com/blockchaincommons/gordian-envelope/pkg/digest"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
)

// Encryptor is the symmetric-encryption capability the transformation
// engine consumes (spec.md §6); concrete implementations live in
// pkg/crypto.
type Encryptor interface {
	Encrypt(plaintext, key, aad []byte) (EncryptedMessage, error)
	Decrypt(message EncryptedMessage, key []byte) ([]byte, error)
}

// Compressor is the compression capability the transformation engine
// consumes (spec.md §6); concrete implementations live in pkg/crypto.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(blob []byte) ([]byte, error)
}

type obscureFunc func(e Envelope) (Envelope, error)

func obscureElide(e Envelope) (Envelope, error) {
	if el, ok := e.(*Elided); ok {
		return el, nil // elide(elide(E)) == elide(E)
	}
	return NewElided(e.Digest()), nil
}

func obscureEncrypt(key []byte, enc Encryptor) obscureFunc {
	return func(e Envelope) (Envelope, error) {
		if IsObscured(e) {
			return nil, fmt.Errorf("%w: cannot encrypt an already-obscured envelope", ErrAlreadyObscured)
		}
		d := e.Digest()
		plaintext, err := Encode(e)
		if err != nil {
			return nil, err
		}
		msg, err := enc.Encrypt(plaintext, key, d.Bytes())
		if err != nil {
			return nil, fmt.Errorf("envelope: encrypt: %w", err)
		}
		return NewEncrypted(msg, d)
	}
}

func obscureCompress(comp Compressor) obscureFunc {
	return func(e Envelope) (Envelope, error) {
		if c, ok := e.(*Compressed); ok {
			return c, nil // compress(compress(E)) is idempotent in behavior
		}
		if IsEncrypted(e) || IsElided(e) {
			return nil, fmt.Errorf("%w: cannot compress an encrypted or elided envelope", ErrAlreadyObscured)
		}
		d := e.Digest()
		plaintext, err := Encode(e)
		if err != nil {
			return nil, err
		}
		blob, err := comp.Compress(plaintext)
		if err != nil {
			return nil, fmt.Errorf("envelope: compress: %w", err)
		}
		return NewCompressed(blob, d)
	}
}

// transform implements the recursive selection rule of spec.md §4.4: an
// envelope whose digest's presence in target differs from revealing is
// replaced by its obscured form; otherwise transform recurses into its
// children, reconstructing the same digest as a post-condition.
func transform(e Envelope, target DigestSet, revealing bool, obscure obscureFunc) (Envelope, error) {
	d := e.Digest()
	if target.Contains(d) != revealing {
		return obscure(e)
	}

	switch x := e.(type) {
	case *Assertion:
		p, err := transform(x.predicate, target, revealing, obscure)
		if err != nil {
			return nil, err
		}
		o, err := transform(x.object, target, revealing, obscure)
		if err != nil {
			return nil, err
		}
		if got := digest.OfDigests(p.Digest(), o.Digest()); !got.Equal(d) {
			return nil, fmt.Errorf("envelope: internal: assertion digest not preserved during transform")
		}
		return &Assertion{predicate: p, object: o, d: d}, nil

	case *Node:
		s, err := transform(x.subject, target, revealing, obscure)
		if err != nil {
			return nil, err
		}
		newAssertions := make([]Envelope, len(x.assertions))
		for i, a := range x.assertions {
			na, err := transform(a, target, revealing, obscure)
			if err != nil {
				return nil, err
			}
			newAssertions[i] = na
		}
		digests := make([]digest.Digest, 0, 1+len(newAssertions))
		digests = append(digests, s.Digest())
		for _, a := range newAssertions {
			digests = append(digests, a.Digest())
		}
		if got := digest.OfDigests(digests...); !got.Equal(d) {
			return nil, fmt.Errorf("envelope: internal: node digest not preserved during transform")
		}
		return &Node{subject: s, assertions: newAssertions, d: d}, nil

	case *Wrapped:
		inner, err := transform(x.inner, target, revealing, obscure)
		if err != nil {
			return nil, err
		}
		if got := digest.OfDigests(inner.Digest()); !got.Equal(d) {
			return nil, fmt.Errorf("envelope: internal: wrapped digest not preserved during transform")
		}
		return &Wrapped{inner: inner, d: d}, nil

	default:
		return e, nil // leaves and already-obscured variants pass through unchanged
	}
}

// ElideRevealing keeps every envelope whose digest is in target and
// elides every other one. An envelope outside target is elided whole, so
// target must also hold the digest of every ancestor and every
// descendant that is to stay visible.
func ElideRevealing(e Envelope, target DigestSet) (Envelope, error) {
	return transform(e, target, true, obscureElide)
}

// ElideRemoving elides every envelope whose digest IS in target, keeping
// everything else intact.
func ElideRemoving(e Envelope, target DigestSet) (Envelope, error) {
	return transform(e, target, false, obscureElide)
}

// EncryptRevealing is ElideRevealing's encrypting counterpart.
func EncryptRevealing(e Envelope, target DigestSet, key []byte, enc Encryptor) (Envelope, error) {
	return transform(e, target, true, obscureEncrypt(key, enc))
}

// EncryptRemoving is ElideRemoving's encrypting counterpart.
func EncryptRemoving(e Envelope, target DigestSet, key []byte, enc Encryptor) (Envelope, error) {
	return transform(e, target, false, obscureEncrypt(key, enc))
}

// CompressRevealing is ElideRevealing's compressing counterpart.
func CompressRevealing(e Envelope, target DigestSet, comp Compressor) (Envelope, error) {
	return transform(e, target, true, obscureCompress(comp))
}

// CompressRemoving is ElideRemoving's compressing counterpart.
func CompressRemoving(e Envelope, target DigestSet, comp Compressor) (Envelope, error) {
	return transform(e, target, false, obscureCompress(comp))
}

// Unelide returns candidate if its digest matches e's elided digest.
func Unelide(e Envelope, candidate Envelope) (Envelope, error) {
	el, ok := e.(*Elided)
	if !ok {
		return nil, ErrNotObscured
	}
	if !candidate.Digest().Equal(el.d) {
		return nil, ErrInvalidDigest
	}
	return candidate, nil
}

// Decrypt reverses EncryptRevealing/EncryptRemoving for a single
// Encrypted envelope: it verifies the embedded digest matches the
// decoded plaintext's digest and returns the decoded envelope.
func Decrypt(e Envelope, key []byte, enc Encryptor) (Envelope, error) {
	enc2, ok := e.(*Encrypted)
	if !ok {
		return nil, ErrNotObscured
	}
	plaintext, err := enc.Decrypt(enc2.Message, key)
	if err != nil {
		return nil, fmt.Errorf("envelope: decrypt: %w", err)
	}
	decoded, err := Decode(plaintext)
	if err != nil {
		return nil, err
	}
	if !decoded.Digest().Equal(enc2.d) {
		return nil, ErrInvalidDigest
	}
	return decoded, nil
}

// Decompress reverses CompressRevealing/CompressRemoving for a single
// Compressed envelope.
func Decompress(e Envelope, comp Compressor) (Envelope, error) {
	c, ok := e.(*Compressed)
	if !ok {
		return nil, ErrNotObscured
	}
	data, err := comp.Decompress(c.Blob)
	if err != nil {
		return nil, fmt.Errorf("envelope: decompress: %w", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		return nil, err
	}
	if !decoded.Digest().Equal(c.d) {
		return nil, ErrInvalidDigest
	}
	return decoded, nil
}

const saltLength = 16

// AddAssertionSalted adds a (predicate, object) assertion to subject. If
// salted is true, the assertion's object is itself wrapped with a random
// 'salt' sub-assertion first, decorrelating the assertion's digest so it
// cannot be guessed from predicate and object alone (spec.md §4.4).
func AddAssertionSalted(subject Envelope, predicate, object any, salted bool) (Envelope, error) {
	if !salted {
		return AddAssertion(subject, predicate, object)
	}
	objEnv, err := New(object)
	if err != nil {
		return nil, fmt.Errorf("envelope: salted object: %w", err)
	}
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("envelope: generating salt: %w", err)
	}
	saltKV, ok := knownvalue.ByName("salt")
	if !ok {
		return nil, fmt.Errorf("envelope: internal: 'salt' known value not registered")
	}
	saltedObject, err := AddAssertion(objEnv, saltKV, salt)
	if err != nil {
		return nil, fmt.Errorf("envelope: salting object: %w", err)
	}
	return AddAssertion(subject, predicate, saltedObject)
}

// collectAncestorDigests records e's digest if e or any of its
// descendants has digest targetDigest, recursing through Assertion,
// Node, and Wrapped. It returns whether a match was found anywhere in
// e's subtree.
func collectAncestorDigests(e Envelope, targetDigest digest.Digest, acc DigestSet) bool {
	found := e.Digest().Equal(targetDigest)

	switch x := e.(type) {
	case *Assertion:
		if collectAncestorDigests(x.predicate, targetDigest, acc) {
			found = true
		}
		if collectAncestorDigests(x.object, targetDigest, acc) {
			found = true
		}
	case *Node:
		if collectAncestorDigests(x.subject, targetDigest, acc) {
			found = true
		}
		for _, a := range x.assertions {
			if collectAncestorDigests(a, targetDigest, acc) {
				found = true
			}
		}
	case *Wrapped:
		if collectAncestorDigests(x.inner, targetDigest, acc) {
			found = true
		}
	}

	if found {
		acc.Add(e.Digest())
	}
	return found
}

// ProofContainsTarget returns an elided envelope with the same root
// digest as root that exposes the digest of target somewhere in its
// structure — every digest on the downward path from root to each
// occurrence of target survives revealing; everything else is elided.
func ProofContainsTarget(root Envelope, target Envelope) (Envelope, error) {
	acc := make(DigestSet)
	if !collectAncestorDigests(root, target.Digest(), acc) {
		return nil, ErrTargetNotFound
	}
	return ElideRevealing(root, acc)
}

// ConfirmContainsTarget succeeds iff proof shares root's digest and
// target's digest appears somewhere within proof's structure.
func ConfirmContainsTarget(root Envelope, target Envelope, proof Envelope) bool {
	if !proof.Digest().Equal(root.Digest()) {
		return false
	}
	return DeepDigests(proof).Contains(target.Digest())
}
