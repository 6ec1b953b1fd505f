// Package format renders envelopes as human-readable text: envelope
// notation (spec.md §6.1), tree view (§6.2), and CBOR diagnostic
// notation (§6.3). Grounded on original_source/src/base/format.rs and
// src/format/mod.rs (EnvelopeFormat/EnvelopeFormatItem/EnvelopeSummary),
// adapted to this module's Envelope variant set and dcbor adapter.
package format

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blockchaincommons/gordian-envelope/pkg/dcbor"
	"github.com/blockchaincommons/gordian-envelope/pkg/signature"
)

// tagNames is the format-context tag registry (spec.md §5 names it
// explicitly as process-wide mutable state, alongside the known-values
// registry): a name to print for a CBOR tag number encountered in a
// leaf's value, used by summarizeValue and DiagnosticAnnotated.
var (
	tagNamesMu sync.RWMutex
	tagNames   = map[uint64]string{
		dcbor.TagDate: "date",
	}
)

// RegisterTagName associates name with a CBOR tag number for display in
// leaf summaries and annotated diagnostic notation.
func RegisterTagName(number uint64, name string) {
	tagNamesMu.Lock()
	defer tagNamesMu.Unlock()
	tagNames[number] = name
}

func tagName(number uint64) (string, bool) {
	tagNamesMu.RLock()
	defer tagNamesMu.RUnlock()
	n, ok := tagNames[number]
	return n, ok
}

// summarizeValue renders a leaf's decoded dCBOR value the way
// EnvelopeSummary::envelope_summary does in mod.rs: numbers bare, text
// quoted (escaping embedded newlines), byte strings as a length, arrays
// recursively, maps collapsed, and tagged content either through a
// registered name or the bare tag number.
func summarizeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case string:
		return quoteText(x)
	case []byte:
		return fmt.Sprintf("Bytes(%d)", len(x))
	case float32:
		return trimFloat(float64(x))
	case float64:
		return trimFloat(x)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", x)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = summarizeValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		return "Map"
	case map[any]any:
		return "Map"
	case dcbor.Date:
		return summarizeDate(x)
	case dcbor.Tag:
		return summarizeTag(x)
	case signature.Signature:
		return "Signature"
	default:
		return fmt.Sprintf("%v", x)
	}
}

func quoteText(s string) string {
	return "\"" + strings.ReplaceAll(s, "\n", "\\n") + "\""
}

// trimFloat renders whole-valued floats without a trailing ".0", so 42.0
// reads like 42 in the notation. The two still encode differently: the
// dcbor package keeps 42.0 a float.
func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", f), "0"), ".")
}

// summarizeDate renders a Date as its ISO-8601 form, collapsed to just
// the date portion when the time is exactly midnight UTC, matching
// mod.rs's DATE_VALUE case.
func summarizeDate(d dcbor.Date) string {
	s := d.ISO8601()
	if strings.HasSuffix(s, "T00:00:00Z") {
		return s[:10]
	}
	return s
}

func summarizeTag(t dcbor.Tag) string {
	if name, ok := tagName(t.Number); ok {
		return fmt.Sprintf("%s(%s)", name, summarizeValue(t.Content))
	}
	return fmt.Sprintf("%d(%s)", t.Number, summarizeValue(t.Content))
}
