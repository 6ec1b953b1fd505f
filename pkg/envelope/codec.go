package envelope

import (
	"fmt"

	"github.com/blockchaincommons/gordian-envelope/pkg/dcbor"
	"github.com/blockchaincommons/gordian-envelope/pkg/digest"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
)

// Per spec.md §4.2, every envelope — at any position in the tree, not
// only the root — round-trips as Tag(envelope, <variant form>). Node is
// the one variant with no extra tag beyond the envelope tag: its
// "variant form" is a bare array of the fully tagged subject and
// assertions.

type encryptedWire struct {
	Digest     []byte `cbor:"1,keyasint"`
	Ciphertext []byte `cbor:"2,keyasint"`
	Nonce      []byte `cbor:"3,keyasint"`
	AAD        []byte `cbor:"4,keyasint"`
	KeyVersion string `cbor:"5,keyasint"`
}

type compressedWire struct {
	Digest []byte `cbor:"1,keyasint"`
	Blob   []byte `cbor:"2,keyasint"`
}

// Encode produces e's canonical, tagged CBOR bytes.
func Encode(e Envelope) ([]byte, error) {
	tagged, err := encodeEnvelope(e)
	if err != nil {
		return nil, err
	}
	return dcbor.Marshal(tagged)
}

func encodeEnvelope(e Envelope) (dcbor.Tag, error) {
	content, err := variantContent(e)
	if err != nil {
		return dcbor.Tag{}, err
	}
	return dcbor.Tag{Number: dcbor.TagEnvelope, Content: content}, nil
}

func variantContent(e Envelope) (any, error) {
	switch x := e.(type) {
	case *Leaf:
		return dcbor.Tag{Number: dcbor.TagLeaf, Content: dcbor.RawMessage(x.cborBytes)}, nil
	case *KnownValueLeaf:
		return dcbor.Tag{Number: dcbor.TagKnownValue, Content: dcbor.RawMessage(x.cborBytes)}, nil
	case *Assertion:
		predTagged, err := encodeEnvelope(x.predicate)
		if err != nil {
			return nil, err
		}
		objTagged, err := encodeEnvelope(x.object)
		if err != nil {
			return nil, err
		}
		return dcbor.Tag{Number: dcbor.TagAssertion, Content: []any{predTagged, objTagged}}, nil
	case *Node:
		items := make([]any, 0, 1+len(x.assertions))
		subjTagged, err := encodeEnvelope(x.subject)
		if err != nil {
			return nil, err
		}
		items = append(items, subjTagged)
		for _, a := range x.assertions {
			aTagged, err := encodeEnvelope(a)
			if err != nil {
				return nil, err
			}
			items = append(items, aTagged)
		}
		return items, nil
	case *Wrapped:
		innerTagged, err := encodeEnvelope(x.inner)
		if err != nil {
			return nil, err
		}
		return dcbor.Tag{Number: dcbor.TagWrappedEnvelope, Content: innerTagged}, nil
	case *Encrypted:
		wire := encryptedWire{
			Digest:     x.d.Bytes(),
			Ciphertext: x.Message.Ciphertext,
			Nonce:      x.Message.Nonce,
			AAD:        x.Message.AAD,
			KeyVersion: x.Message.KeyVersion,
		}
		return dcbor.Tag{Number: dcbor.TagCryptoMessage, Content: wire}, nil
	case *Compressed:
		wire := compressedWire{Digest: x.d.Bytes(), Blob: x.Blob}
		return dcbor.Tag{Number: dcbor.TagCompressed, Content: wire}, nil
	case *Elided:
		return dcbor.Tag{Number: dcbor.TagDigest, Content: x.d.Bytes()}, nil
	default:
		return nil, fmt.Errorf("%w: unknown envelope type %T", ErrInvalidFormat, e)
	}
}

// Decode parses data as a canonical envelope.
func Decode(data []byte) (Envelope, error) {
	return decodeEnvelope(dcbor.RawMessage(data))
}

func decodeEnvelope(raw dcbor.RawMessage) (Envelope, error) {
	tagNum, content, err := dcbor.UnmarshalTagged(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if tagNum != dcbor.TagEnvelope {
		return nil, fmt.Errorf("%w: expected envelope tag %d, got %d", ErrInvalidFormat, dcbor.TagEnvelope, tagNum)
	}
	return decodeVariantContent(content)
}

func decodeVariantContent(content dcbor.RawMessage) (Envelope, error) {
	tagNum, inner, err := dcbor.UnmarshalTagged(content)
	if err == nil {
		switch tagNum {
		case dcbor.TagLeaf:
			return decodeLeaf(inner)
		case dcbor.TagKnownValue:
			return decodeKnownValue(inner)
		case dcbor.TagAssertion:
			return decodeAssertion(inner)
		case dcbor.TagWrappedEnvelope:
			return decodeWrapped(inner)
		case dcbor.TagCryptoMessage:
			return decodeEncrypted(inner)
		case dcbor.TagCompressed:
			return decodeCompressed(inner)
		case dcbor.TagDigest:
			return decodeElided(inner)
		default:
			return nil, fmt.Errorf("%w: unknown variant tag %d", ErrInvalidFormat, tagNum)
		}
	}
	// Not a tag: must be Node's bare array of [subject, a1, ..., an].
	var items []dcbor.RawMessage
	if err2 := dcbor.Unmarshal(content, &items); err2 != nil {
		return nil, fmt.Errorf("%w: neither a variant tag nor an array: %v", ErrInvalidFormat, err2)
	}
	if len(items) < 2 {
		return nil, fmt.Errorf("%w: node array needs a subject and at least one assertion", ErrInvalidFormat)
	}
	subject, err := decodeEnvelope(items[0])
	if err != nil {
		return nil, err
	}
	assertions := make([]Envelope, 0, len(items)-1)
	for _, it := range items[1:] {
		a, err := decodeEnvelope(it)
		if err != nil {
			return nil, err
		}
		assertions = append(assertions, a)
	}
	return NewNode(subject, assertions)
}

func decodeLeaf(inner dcbor.RawMessage) (Envelope, error) {
	var v any
	if err := dcbor.Unmarshal(inner, &v); err != nil {
		return nil, fmt.Errorf("%w: leaf content: %v", ErrInvalidFormat, err)
	}
	b := []byte(inner)
	return &Leaf{cborBytes: b, value: v, d: digest.OfBytes(b)}, nil
}

func decodeKnownValue(inner dcbor.RawMessage) (Envelope, error) {
	var v uint64
	if err := dcbor.Unmarshal(inner, &v); err != nil {
		return nil, fmt.Errorf("%w: known value content: %v", ErrInvalidFormat, err)
	}
	b := []byte(inner)
	return &KnownValueLeaf{kv: knownvalue.New(v), cborBytes: b, d: digest.OfBytes(b)}, nil
}

func decodeAssertion(inner dcbor.RawMessage) (Envelope, error) {
	var items []dcbor.RawMessage
	if err := dcbor.Unmarshal(inner, &items); err != nil || len(items) != 2 {
		return nil, fmt.Errorf("%w: assertion content must be a 2-element array", ErrInvalidFormat)
	}
	predicate, err := decodeEnvelope(items[0])
	if err != nil {
		return nil, err
	}
	object, err := decodeEnvelope(items[1])
	if err != nil {
		return nil, err
	}
	return &Assertion{
		predicate: predicate,
		object:    object,
		d:         digest.OfDigests(predicate.Digest(), object.Digest()),
	}, nil
}

func decodeWrapped(inner dcbor.RawMessage) (Envelope, error) {
	innerEnv, err := decodeEnvelope(inner)
	if err != nil {
		return nil, err
	}
	return &Wrapped{inner: innerEnv, d: digest.OfDigests(innerEnv.Digest())}, nil
}

func decodeEncrypted(inner dcbor.RawMessage) (Envelope, error) {
	var wire encryptedWire
	if err := dcbor.Unmarshal(inner, &wire); err != nil {
		return nil, fmt.Errorf("%w: encrypted content: %v", ErrInvalidFormat, err)
	}
	if len(wire.Digest) == 0 {
		return nil, ErrMissingDigest
	}
	d, err := digest.FromBytes(wire.Digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDigest, err)
	}
	return &Encrypted{
		Message: EncryptedMessage{
			Ciphertext: wire.Ciphertext,
			Nonce:      wire.Nonce,
			AAD:        wire.AAD,
			KeyVersion: wire.KeyVersion,
		},
		d: d,
	}, nil
}

func decodeCompressed(inner dcbor.RawMessage) (Envelope, error) {
	var wire compressedWire
	if err := dcbor.Unmarshal(inner, &wire); err != nil {
		return nil, fmt.Errorf("%w: compressed content: %v", ErrInvalidFormat, err)
	}
	if len(wire.Digest) == 0 {
		return nil, ErrMissingDigest
	}
	d, err := digest.FromBytes(wire.Digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingDigest, err)
	}
	return &Compressed{Blob: wire.Blob, d: d}, nil
}

func decodeElided(inner dcbor.RawMessage) (Envelope, error) {
	var b []byte
	if err := dcbor.Unmarshal(inner, &b); err != nil {
		return nil, fmt.Errorf("%w: elided content: %v", ErrInvalidFormat, err)
	}
	d, err := digest.FromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return &Elided{d: d}, nil
}
