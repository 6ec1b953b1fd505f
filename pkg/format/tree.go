package format

import (
	"strings"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

// Tree renders root as a tree view (spec.md §6.2): one line per visited
// envelope, prefixed with its short digest and labeled by variant
// (NODE/ASSERTION/WRAPPED) or edge (subj/pred/obj), indented by
// descent depth. When hideNodes is true, Node visits are collapsed (the
// subject takes the node's place, per envelope.ModeTree) and every
// line drops its digest and edge label, printing only the envelope's
// content — "printing only subjects" per spec.md §6.2 — matching
// original_source/src/tests/format_tests.rs's tree_format(true, _)
// expectations.
func Tree(root envelope.Envelope, hideNodes bool) string {
	var lines []string
	mode := envelope.ModeStructure
	if hideNodes {
		mode = envelope.ModeTree
	}
	envelope.Walk(root, mode, func(e envelope.Envelope, level int, incoming envelope.EdgeType, _ envelope.Envelope) bool {
		indent := strings.Repeat("    ", level)
		if hideNodes {
			lines = append(lines, indent+treeBody(e))
		} else {
			lines = append(lines, indent+e.Digest().Short()+" "+treeContent(e, incoming))
		}
		return false
	})
	return strings.Join(lines, "\n")
}

func treeContent(e envelope.Envelope, incoming envelope.EdgeType) string {
	body := treeBody(e)
	if label := edgeLabel(incoming); label != "" {
		return label + " " + body
	}
	return body
}

func treeBody(e envelope.Envelope) string {
	switch x := e.(type) {
	case *envelope.Leaf:
		return summarizeValue(x.Value())
	case *envelope.KnownValueLeaf:
		return knownValueTreeLabel(x)
	case *envelope.Assertion:
		return "ASSERTION"
	case *envelope.Node:
		return "NODE"
	case *envelope.Wrapped:
		return "WRAPPED"
	case *envelope.Elided:
		return "ELIDED"
	case *envelope.Encrypted:
		return "ENCRYPTED"
	case *envelope.Compressed:
		return "COMPRESSED"
	default:
		return "?"
	}
}

// knownValueTreeLabel renders a KnownValue's bare registered name (or
// its integer value, unregistered) without notation's quoting, the
// compact style original_source's tree formatter uses for predicates
// like verifiedBy.
func knownValueTreeLabel(k *envelope.KnownValueLeaf) string {
	if name, ok := k.Value().Name(); ok {
		return name
	}
	return k.Value().String()
}

func edgeLabel(t envelope.EdgeType) string {
	switch t {
	case envelope.EdgeSubject:
		return "subj"
	case envelope.EdgePredicate:
		return "pred"
	case envelope.EdgeObject:
		return "obj"
	case envelope.EdgeWrapped:
		return "wrapped"
	default:
		return ""
	}
}
