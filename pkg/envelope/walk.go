package envelope

import "github.com/blockchaincommons/gordian-envelope/pkg/digest"

// EdgeType labels the kind of child relation a walk step descended
// through, per spec.md §3.5.
type EdgeType int

const (
	EdgeNone EdgeType = iota
	EdgeSubject
	EdgeAssertion
	EdgePredicate
	EdgeObject
	EdgeWrapped
)

func (t EdgeType) String() string {
	switch t {
	case EdgeSubject:
		return "subject"
	case EdgeAssertion:
		return "assertion"
	case EdgePredicate:
		return "predicate"
	case EdgeObject:
		return "object"
	case EdgeWrapped:
		return "wrapped"
	default:
		return "none"
	}
}

// WalkMode selects between the two traversal modes spec.md §4.3 defines.
type WalkMode int

const (
	// ModeStructure visits every envelope, including inner Node roots.
	ModeStructure WalkMode = iota
	// ModeTree collapses Node visits: the subject inherits the node's
	// level rather than the node itself being visited as a step.
	ModeTree
)

// Visitor is called once per descent step. Returning true prunes the
// walk below this envelope (its children are not visited).
type Visitor func(e Envelope, level int, incoming EdgeType, parent Envelope) (prune bool)

// Walk performs a fixed-order depth-first traversal starting at root:
// for Node, subject then assertions in sorted order; for Assertion,
// predicate then object; for Wrapped, inner.
func Walk(root Envelope, mode WalkMode, visit Visitor) {
	walkStep(root, 0, EdgeNone, nil, mode, visit)
}

func walkStep(e Envelope, level int, incoming EdgeType, parent Envelope, mode WalkMode, visit Visitor) {
	if mode == ModeTree {
		if n, ok := e.(*Node); ok {
			walkStep(n.subject, level, EdgeSubject, e, mode, visit)
			for _, a := range n.assertions {
				walkStep(a, level+1, EdgeAssertion, e, mode, visit)
			}
			return
		}
	}

	if visit(e, level, incoming, parent) {
		return
	}

	switch x := e.(type) {
	case *Node:
		walkStep(x.subject, level+1, EdgeSubject, e, mode, visit)
		for _, a := range x.assertions {
			walkStep(a, level+1, EdgeAssertion, e, mode, visit)
		}
	case *Assertion:
		walkStep(x.predicate, level+1, EdgePredicate, e, mode, visit)
		walkStep(x.object, level+1, EdgeObject, e, mode, visit)
	case *Wrapped:
		walkStep(x.inner, level+1, EdgeWrapped, e, mode, visit)
	}
}

// DigestSet is an unordered collection of digests, used by the
// transformation engine to select which subtrees to obscure or reveal.
type DigestSet map[digest.Digest]struct{}

// NewDigestSet builds a DigestSet from the given digests.
func NewDigestSet(ds ...digest.Digest) DigestSet {
	s := make(DigestSet, len(ds))
	for _, d := range ds {
		s[d] = struct{}{}
	}
	return s
}

// Contains reports whether d is in the set.
func (s DigestSet) Contains(d digest.Digest) bool {
	_, ok := s[d]
	return ok
}

// Add inserts d into the set.
func (s DigestSet) Add(d digest.Digest) {
	s[d] = struct{}{}
}

// DigestsToLevel returns the digest set of every envelope reachable from
// root within levelLimit descent steps (root is level 0); passing a
// negative limit is equivalent to no limit, producing the deep digest
// set used by proofs and by structural equality checks.
func DigestsToLevel(root Envelope, levelLimit int) DigestSet {
	set := make(DigestSet)
	Walk(root, ModeStructure, func(e Envelope, level int, _ EdgeType, _ Envelope) bool {
		if levelLimit >= 0 && level > levelLimit {
			return true
		}
		set.Add(e.Digest())
		return false
	})
	return set
}

// DeepDigests returns the digest set of every envelope reachable from
// root, at any depth.
func DeepDigests(root Envelope) DigestSet {
	return DigestsToLevel(root, -1)
}

// ShallowDigests returns the digest set down to level 2: the root, its
// children, and their children (spec.md §4.3).
func ShallowDigests(root Envelope) DigestSet {
	return DigestsToLevel(root, 2)
}
