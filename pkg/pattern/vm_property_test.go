//go:build property
// +build property

package pattern

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

func nestWrapped(t *testing.T, depth int) envelope.Envelope {
	t.Helper()
	e, err := envelope.New("leaf")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < depth; i++ {
		e = envelope.NewWrapped(e)
	}
	return e
}

// TestRepeatMatchesAnyNestingDepthWithinBounds checks that a bounded
// Repeat(Wrapped(Any()), 0, max, Greedy) matches an envelope nested to
// any depth at or below max, for arbitrarily generated depths — the
// backtracking search has to find a valid repetition count, not just the
// maximal one, for every depth in range.
func TestRepeatMatchesAnyNestingDepthWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("Repeat matches every nesting depth within its bounds", prop.ForAll(
		func(max, depth int) bool {
			if depth > max {
				depth = max
			}
			env := nestWrapped(t, depth)
			pat := Repeat(Wrapped(Any()), 0, max, Greedy)
			return Matches(pat, env)
		},
		gen.IntRange(0, 6),
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

// TestGreedyRepeatNeverShorterThanLazy checks that for any nesting depth,
// the greedy quantifier's longest path is never shorter than the lazy
// quantifier's, mirroring regex greedy/lazy quantifier semantics.
func TestGreedyRepeatNeverShorterThanLazy(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("greedy repeat path is never shorter than lazy", prop.ForAll(
		func(depth int) bool {
			env := nestWrapped(t, depth)
			greedy := Paths(Repeat(Wrapped(Any()), 0, depth, Greedy), env)
			lazy := Paths(Repeat(Wrapped(Any()), 0, depth, Lazy), env)
			if len(greedy) == 0 || len(lazy) == 0 {
				return false
			}
			return len(greedy[0]) >= len(lazy[0])
		},
		gen.IntRange(0, 6),
	))

	properties.TestingRun(t)
}

// TestSearchFindsLeafAtAnyAssertionIndex checks Search locates a
// distinguished leaf value regardless of which assertion position (among
// a randomly sized sibling list) it occupies.
func TestSearchFindsLeafAtAnyAssertionIndex(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("Search finds a planted leaf at any sibling position", prop.ForAll(
		func(siblingCount, target int) bool {
			if siblingCount < 1 {
				siblingCount = 1
			}
			target = target % siblingCount
			if target < 0 {
				target += siblingCount
			}

			subject, err := envelope.New("subject")
			if err != nil {
				t.Fatal(err)
			}
			node := subject
			for i := 0; i < siblingCount; i++ {
				object := "filler"
				if i == target {
					object = "needle"
				}
				node, err = envelope.AddAssertion(node, "has", object)
				if err != nil {
					t.Fatal(err)
				}
			}

			return Matches(Search(Text("needle")), node)
		},
		gen.IntRange(1, 10),
		gen.IntRange(0, 10),
	))

	properties.TestingRun(t)
}
