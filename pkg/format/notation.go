package format

import (
	"fmt"
	"strings"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

// Format renders e in hierarchical envelope notation (spec.md §6.1):
// the subject on its own line (or lines, if it is itself compound),
// assertions indented one level inside brackets, one per line,
// well-known predicates quoted like 'isA', and obscured variants
// rendered as the literal ELIDED/ENCRYPTED/COMPRESSED. Grounded on
// original_source/src/format/notation.rs's Begin/End/Item item tree,
// reworked here as a list-of-lines recursion instead of carrying that
// file's intermediate AST, since Go has no equivalent need for the
// flatten/nicen passes notation.rs uses to merge adjacent delimiters.
func Format(e envelope.Envelope) string {
	return strings.Join(blockLines(e), "\n")
}

// FormatFlat renders e on a single line, assertions comma-separated.
func FormatFlat(e envelope.Envelope) string {
	return flatRender(e)
}

func indentBlock(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = "    " + l
	}
	return out
}

// blockLines renders e as a list of lines with no leading indentation of
// their own; a caller nesting this output indents every line uniformly
// with indentBlock, so the relative structure survives however deep it
// is embedded.
func blockLines(e envelope.Envelope) []string {
	switch x := e.(type) {
	case *envelope.Leaf:
		return []string{summarizeValue(x.Value())}
	case *envelope.KnownValueLeaf:
		return []string{x.Value().String()}
	case *envelope.Elided:
		return []string{"ELIDED"}
	case *envelope.Encrypted:
		return []string{"ENCRYPTED"}
	case *envelope.Compressed:
		return []string{"COMPRESSED"}
	case *envelope.Wrapped:
		inner := blockLines(x.Inner())
		if len(inner) == 1 {
			return []string{"{ " + inner[0] + " }"}
		}
		lines := []string{"{"}
		lines = append(lines, indentBlock(inner)...)
		lines = append(lines, "}")
		return lines
	case *envelope.Assertion:
		pred := blockLines(x.Predicate())
		obj := blockLines(x.Object())
		if len(pred) == 1 && len(obj) == 1 {
			return []string{pred[0] + ": " + obj[0]}
		}
		lines := make([]string, len(pred))
		copy(lines, pred)
		lines[len(lines)-1] += ":"
		lines = append(lines, obj...)
		return lines
	case *envelope.Node:
		subj := blockLines(x.Subject())
		assertions := assertionBlockLines(x.Assertions())
		lines := make([]string, 0, len(subj)+len(assertions)+2)
		lines = append(lines, subj[:len(subj)-1]...)
		lines = append(lines, subj[len(subj)-1]+" [")
		lines = append(lines, indentBlock(assertions)...)
		lines = append(lines, "]")
		return lines
	default:
		return []string{"?"}
	}
}

// assertionBlockLines renders a Node's assertions, collapsing a run of
// consecutive elided assertions into a single "ELIDED (n)" line rather
// than repeating ELIDED n times, matching notation.rs's grouping of
// adjacent elided siblings.
func assertionBlockLines(assertions []envelope.Envelope) []string {
	var out []string
	i := 0
	for i < len(assertions) {
		if envelope.IsElided(assertions[i]) {
			j := i
			for j < len(assertions) && envelope.IsElided(assertions[j]) {
				j++
			}
			out = append(out, elidedRunLabel(j-i))
			i = j
			continue
		}
		out = append(out, blockLines(assertions[i])...)
		i++
	}
	return out
}

func elidedRunLabel(count int) string {
	if count > 1 {
		return fmt.Sprintf("ELIDED (%d)", count)
	}
	return "ELIDED"
}

func flatRender(e envelope.Envelope) string {
	switch x := e.(type) {
	case *envelope.Leaf:
		return summarizeValue(x.Value())
	case *envelope.KnownValueLeaf:
		return x.Value().String()
	case *envelope.Elided:
		return "ELIDED"
	case *envelope.Encrypted:
		return "ENCRYPTED"
	case *envelope.Compressed:
		return "COMPRESSED"
	case *envelope.Wrapped:
		return "{ " + flatRender(x.Inner()) + " }"
	case *envelope.Assertion:
		return flatRender(x.Predicate()) + ": " + flatRender(x.Object())
	case *envelope.Node:
		subj := flatRender(x.Subject())
		parts := flatAssertionParts(x.Assertions())
		return subj + " [ " + strings.Join(parts, ", ") + " ]"
	default:
		return "?"
	}
}

func flatAssertionParts(assertions []envelope.Envelope) []string {
	var out []string
	i := 0
	for i < len(assertions) {
		if envelope.IsElided(assertions[i]) {
			j := i
			for j < len(assertions) && envelope.IsElided(assertions[j]) {
				j++
			}
			out = append(out, elidedRunLabel(j-i))
			i = j
			continue
		}
		out = append(out, flatRender(assertions[i]))
		i++
	}
	return out
}
