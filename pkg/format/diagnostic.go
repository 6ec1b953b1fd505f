package format

import (
	"fmt"
	"regexp"

	"github.com/blockchaincommons/gordian-envelope/pkg/dcbor"
	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

func init() {
	RegisterTagName(dcbor.TagEnvelope, "envelope")
	RegisterTagName(dcbor.TagLeaf, "leaf")
	RegisterTagName(dcbor.TagKnownValue, "known-value")
	RegisterTagName(dcbor.TagAssertion, "assertion")
	RegisterTagName(dcbor.TagWrappedEnvelope, "wrapped-envelope")
	RegisterTagName(dcbor.TagCryptoMessage, "crypto-msg")
	RegisterTagName(dcbor.TagCompressed, "compressed")
	RegisterTagName(dcbor.TagDigest, "digest")
}

// Diagnostic renders e's canonical CBOR encoding in RFC-8949 §8 extended
// diagnostic notation (spec.md §6.3), unannotated.
func Diagnostic(e envelope.Envelope) (string, error) {
	data, err := envelope.Encode(e)
	if err != nil {
		return "", fmt.Errorf("format: encoding for diagnostic: %w", err)
	}
	s, err := dcbor.DiagnosticNotation(data)
	if err != nil {
		return "", fmt.Errorf("format: diagnostic notation: %w", err)
	}
	return s, nil
}

// tagTokenRe matches a bare tag-number token immediately followed by its
// content parenthesis, e.g. the "24800(" in "24800(h'...')". The
// leading \b (rather than capturing a preceding non-word character) is
// deliberate: a prefix-capturing match consumes the "(" between two
// immediately nested tags (e.g. "24800(24801("), leaving nothing for
// the inner tag's match to anchor on, so it would silently go
// unannotated. \b is zero-width and needs no character of its own, so
// adjacent/nested tag tokens each match independently.
var tagTokenRe = regexp.MustCompile(`\b([0-9]+)\(`)

// DiagnosticAnnotated is Diagnostic with every tag number that has a
// registered name (via RegisterTagName, or the envelope variant tags
// registered by this package's init) preceded by an RFC-8949 §8 comment
// naming it, e.g. "/envelope/ 24800(...)".
func DiagnosticAnnotated(e envelope.Envelope) (string, error) {
	raw, err := Diagnostic(e)
	if err != nil {
		return "", err
	}
	return annotateTags(raw), nil
}

func annotateTags(s string) string {
	return tagTokenRe.ReplaceAllStringFunc(s, func(match string) string {
		sub := tagTokenRe.FindStringSubmatch(match)
		numStr := sub[1]
		var n uint64
		if _, err := fmt.Sscanf(numStr, "%d", &n); err != nil {
			return match
		}
		name, ok := tagName(n)
		if !ok {
			return match
		}
		return fmt.Sprintf("/%s/ %s(", name, numStr)
	})
}
