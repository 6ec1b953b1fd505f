package envelope

// Edge extension (SPEC_FULL.md §12): a flattened (subject, predicate,
// object) triple view over a Node's assertions, independent of the
// EdgeType traversal enum — useful for exporting an envelope's
// assertions to a triple-store-like representation.
type Edge struct {
	Subject   Envelope
	Predicate Envelope
	Object    Envelope
}

// Edges returns one Edge per assertion on e's subject.
func Edges(e Envelope) []Edge {
	subject := Subject(e)
	assertions := Assertions(e)
	out := make([]Edge, 0, len(assertions))
	for _, a := range assertions {
		assertion, ok := a.(*Assertion)
		if !ok {
			continue
		}
		out = append(out, Edge{
			Subject:   subject,
			Predicate: assertion.Predicate(),
			Object:    assertion.Object(),
		})
	}
	return out
}
