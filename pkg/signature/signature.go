// Package signature implements the Gordian Envelope signature layer
// (spec.md §4.5): signing over an envelope's digest, verification
// requiring a 'signed' assertion, metadata-bearing nested signatures,
// and threshold verification across multiple keys. Concrete Signer and
// Verifier implementations (Ed25519, key rings) live in pkg/crypto; this
// package only defines the capability interfaces it consumes and the
// envelope-shaping logic built on top of them.
package signature

import (
	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
)

// Signer produces a Signature over an arbitrary message (in this
// package, always an envelope digest).
type Signer interface {
	Sign(message []byte) (Signature, error)
	KeyID() string
}

// Verifier checks a Signature against a message and reports whether the
// signing key is one this Verifier trusts.
type Verifier interface {
	Verify(sig Signature, message []byte) (bool, error)
	KeyID() string
}

// Signature is the object of a 'signed' assertion: raw signature bytes
// plus the signing key's identifier, so a verifier (or a KeyRing) can
// tell which key to check against without trial-and-error.
type Signature struct {
	Bytes []byte `cbor:"1,keyasint"`
	KeyID string `cbor:"2,keyasint"`
}

func signedPredicate() (knownvalue.KnownValue, error) {
	kv, ok := knownvalue.ByName("signed")
	if !ok {
		return knownvalue.KnownValue{}, envelope.ErrInvalidFormat
	}
	return kv, nil
}

// Sign wraps e and adds a 'signed' assertion whose object is the
// signature over the wrapped envelope's digest.
func Sign(e envelope.Envelope, signer Signer) (envelope.Envelope, error) {
	wrapped := envelope.NewWrapped(e)
	sig, err := signer.Sign(wrapped.Digest().Bytes())
	if err != nil {
		return nil, err
	}
	predicate, err := signedPredicate()
	if err != nil {
		return nil, err
	}
	return envelope.AddAssertion(wrapped, predicate, sig)
}

// AddSignature signs e's own subject digest directly, without wrapping.
func AddSignature(e envelope.Envelope, signer Signer) (envelope.Envelope, error) {
	sig, err := signer.Sign(e.Digest().Bytes())
	if err != nil {
		return nil, err
	}
	predicate, err := signedPredicate()
	if err != nil {
		return nil, err
	}
	return envelope.AddAssertion(e, predicate, sig)
}

func unwrapIfWrapped(e envelope.Envelope) envelope.Envelope {
	if w, ok := e.(*envelope.Wrapped); ok {
		return w.Inner()
	}
	return e
}

// Verify requires at least one 'signed' assertion on e's subject that
// validates against the subject's digest using verifier. Success yields
// the original envelope (unwrapped, if e was produced by Sign).
// Failure yields ErrInvalidSignatureType if every 'signed' assertion's
// object failed to parse as a Signature, or ErrUnverifiedSignature if at
// least one parsed but none validated.
func Verify(e envelope.Envelope, verifier Verifier) (envelope.Envelope, error) {
	subject := envelope.Subject(e)
	predicate, err := signedPredicate()
	if err != nil {
		return nil, err
	}
	assertions, err := envelope.AssertionsWithPredicate(e, predicate)
	if err != nil {
		return nil, err
	}
	sawValidType := false
	for _, a := range assertions {
		assertion, ok := a.(*envelope.Assertion)
		if !ok {
			continue
		}
		sig, err := envelope.ExtractSubject[Signature](assertion.Object())
		if err != nil {
			continue
		}
		sawValidType = true
		ok2, err := verifier.Verify(sig, subject.Digest().Bytes())
		if err == nil && ok2 {
			return unwrapIfWrapped(subject), nil
		}
	}
	if !sawValidType && len(assertions) > 0 {
		return nil, envelope.ErrInvalidSignatureType
	}
	return nil, envelope.ErrUnverifiedSignature
}

// VerifyThreshold counts distinct verifiers (by KeyID) whose signature
// validates against one of e's 'signed' assertions, succeeding once at
// least k distinct verifiers have done so.
func VerifyThreshold(e envelope.Envelope, verifiers []Verifier, k int) (envelope.Envelope, error) {
	subject := envelope.Subject(e)
	predicate, err := signedPredicate()
	if err != nil {
		return nil, err
	}
	assertions, err := envelope.AssertionsWithPredicate(e, predicate)
	if err != nil {
		return nil, err
	}

	verified := make(map[string]bool)
	sawValidType := false
	for _, a := range assertions {
		assertion, ok := a.(*envelope.Assertion)
		if !ok {
			continue
		}
		sig, err := envelope.ExtractSubject[Signature](assertion.Object())
		if err != nil {
			continue
		}
		sawValidType = true
		for _, v := range verifiers {
			if verified[v.KeyID()] {
				continue
			}
			ok2, err := v.Verify(sig, subject.Digest().Bytes())
			if err == nil && ok2 {
				verified[v.KeyID()] = true
			}
		}
	}
	if len(verified) < k {
		if !sawValidType && len(assertions) > 0 {
			return nil, envelope.ErrInvalidSignatureType
		}
		return nil, envelope.ErrUnverifiedSignature
	}
	return unwrapIfWrapped(subject), nil
}

// SignWithMetadata implements the nested signature shape of spec.md
// §4.5: the inner Signature over e becomes the subject of a metadata
// envelope carrying the given assertions; that envelope is wrapped and
// signed again by the same key, and the outer signature is added to it
// as a 'signed' assertion before the whole metadata envelope is attached
// to e's wrapped form as its own 'signed' object.
func SignWithMetadata(e envelope.Envelope, signer Signer, metadata map[string]any) (envelope.Envelope, error) {
	wrapped := envelope.NewWrapped(e)
	innerSig, err := signer.Sign(wrapped.Digest().Bytes())
	if err != nil {
		return nil, err
	}

	metaEnv, err := envelope.New(innerSig)
	if err != nil {
		return nil, err
	}
	for key, value := range metadata {
		metaEnv, err = envelope.AddAssertion(metaEnv, key, value)
		if err != nil {
			return nil, err
		}
	}

	metaWrapped := envelope.NewWrapped(metaEnv)
	outerSig, err := signer.Sign(metaWrapped.Digest().Bytes())
	if err != nil {
		return nil, err
	}
	predicate, err := signedPredicate()
	if err != nil {
		return nil, err
	}
	signedMeta, err := envelope.AddAssertion(metaWrapped, predicate, outerSig)
	if err != nil {
		return nil, err
	}

	return envelope.AddAssertion(wrapped, predicate, signedMeta)
}

// VerifyWithMetadata verifies a signature produced by either Sign/
// AddSignature or SignWithMetadata. It returns the original envelope
// and, when the matching 'signed' assertion carried nested metadata,
// the metadata envelope as well (nil otherwise).
//
// Failure distinguishes where verification gave up, per spec.md §7:
// ErrInvalidSignatureType if a top-level 'signed' object is neither a
// Signature nor a metadata envelope whose own subject extracts as one
// (ErrInvalidInnerSignatureType marks that inner case specifically);
// ErrInvalidOuterSignatureType if a metadata envelope's nested 'signed'
// object fails to parse as a Signature; ErrUnverifiedInnerSignature if a
// metadata envelope's outer signature parsed but did not validate; and
// ErrUnverifiedSignature for a plain (non-metadata) signature that
// parsed but did not validate, or when nothing at all matched.
func VerifyWithMetadata(e envelope.Envelope, verifier Verifier) (subject envelope.Envelope, metadata envelope.Envelope, err error) {
	root := envelope.Subject(e)
	predicate, perr := signedPredicate()
	if perr != nil {
		return nil, nil, perr
	}
	assertions, aerr := envelope.AssertionsWithPredicate(e, predicate)
	if aerr != nil {
		return nil, nil, aerr
	}

	sawPlainType, sawInnerType, sawOuterType := false, false, false
	sawPlainVerifyFail, sawOuterVerifyFail := false, false

	for _, a := range assertions {
		assertion, ok := a.(*envelope.Assertion)
		if !ok {
			continue
		}
		obj := assertion.Object()

		if _, isLeaf := obj.(*envelope.Leaf); isLeaf {
			if sig, serr := envelope.ExtractSubject[Signature](obj); serr == nil {
				sawPlainType = true
				ok2, verr := verifier.Verify(sig, root.Digest().Bytes())
				if verr == nil && ok2 {
					return unwrapIfWrapped(root), nil, nil
				}
				sawPlainVerifyFail = true
				continue
			}
		}

		// AddAssertion wraps a non-leaf object, so a metadata 'signed'
		// object arrives as Wrapped(Node(metaWrapped, ['signed': outer])).
		metaNode := unwrapIfWrapped(obj)
		metaSubject := envelope.Subject(metaNode)
		if _, serr := envelope.ExtractSubject[Signature](metaSubject); serr != nil {
			continue // neither a plain signature nor a metadata-wrapped one
		}
		sawInnerType = true

		innerAssertions, ierr := envelope.AssertionsWithPredicate(metaNode, predicate)
		if ierr != nil {
			continue
		}
		for _, ia := range innerAssertions {
			iassertion, ok := ia.(*envelope.Assertion)
			if !ok {
				continue
			}
			outerSig, serr := envelope.ExtractSubject[Signature](iassertion.Object())
			if serr != nil {
				continue
			}
			sawOuterType = true
			ok2, verr := verifier.Verify(outerSig, metaSubject.Digest().Bytes())
			if verr == nil && ok2 {
				return unwrapIfWrapped(root), unwrapIfWrapped(metaSubject), nil
			}
			sawOuterVerifyFail = true
		}
	}

	switch {
	case sawOuterVerifyFail:
		return nil, nil, envelope.ErrUnverifiedInnerSignature
	case sawInnerType && !sawOuterType:
		return nil, nil, envelope.ErrInvalidOuterSignatureType
	case sawPlainVerifyFail:
		return nil, nil, envelope.ErrUnverifiedSignature
	case !sawPlainType && !sawInnerType && len(assertions) > 0:
		return nil, nil, envelope.ErrInvalidInnerSignatureType
	default:
		return nil, nil, envelope.ErrUnverifiedSignature
	}
}
