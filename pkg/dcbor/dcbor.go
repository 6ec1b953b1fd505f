// Package dcbor is the deterministic-CBOR adapter the envelope core
// consumes as an external collaborator (spec.md §1, §6). It wraps
// github.com/fxamacker/cbor/v2 configured for canonical, bit-exact output
// and normalizes text to NFC before encoding, so two independently built
// envelopes with the same content always produce the same bytes.
package dcbor

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/text/unicode/norm"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	encOpts := cbor.CanonicalEncOptions()
	// CanonicalEncOptions already sorts map keys and uses shortest-form
	// integers/floats; additionally reject indefinite-length items on
	// decode and forbid duplicate map keys for determinism.
	m, err := encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("dcbor: building canonical encode mode: %v", err))
	}
	encMode = m

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	d, err := decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("dcbor: building decode mode: %v", err))
	}
	decMode = d
}

// NormalizeText returns s in Unicode NFC form, the canonical form every
// text leaf is encoded under.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// Marshal canonically encodes v. String values nested anywhere inside v
// are NOT individually NFC-normalized by this call; callers constructing
// text leaves should pre-normalize with NormalizeText.
func Marshal(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("dcbor: marshal: %w", err)
	}
	return b, nil
}

// Unmarshal decodes canonical CBOR bytes into v.
func Unmarshal(data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("dcbor: unmarshal: %w", err)
	}
	return nil
}

// Tag is a CBOR major-type-6 tagged value: a tag number plus its
// contained item.
type Tag = cbor.Tag

// MarshalTagged canonically encodes content under the given tag number.
func MarshalTagged(tagNum uint64, content any) ([]byte, error) {
	return Marshal(cbor.Tag{Number: tagNum, Content: content})
}

// UnmarshalTagged decodes data as a tagged value, returning the tag
// number and the still-encoded content bytes (so the caller can decode
// the content into whatever concrete type the tag implies).
func UnmarshalTagged(data []byte) (tagNum uint64, content RawMessage, err error) {
	var t cbor.RawTag
	if err := decMode.Unmarshal(data, &t); err != nil {
		return 0, nil, fmt.Errorf("dcbor: unmarshal tagged: %w", err)
	}
	return t.Number, RawMessage(t.Content), nil
}

// RawMessage holds still-encoded CBOR bytes, deferring decoding until the
// caller knows the concrete shape expected (mirrors encoding/json.RawMessage).
type RawMessage = cbor.RawMessage

// DiagnosticNotation renders data in RFC-8949 §8 extended diagnostic
// notation, used by pkg/format for CBOR-diagnostic rendering.
func DiagnosticNotation(data []byte) (string, error) {
	s, err := cbor.Diagnose(data)
	if err != nil {
		return "", fmt.Errorf("dcbor: diagnose: %w", err)
	}
	return s, nil
}
