// Package pattern implements the Gordian Envelope pattern-matching
// engine (spec.md §4.6): a compiled bytecode VM, Thompson-style with
// backtracking and greediness, that walks envelope trees and returns
// paths matching leaf, structural, and meta patterns.
//
// The design keeps the source's split between leaf patterns (match a
// leaf's CBOR value), structure patterns (match envelope shape), and
// meta patterns (combine other patterns). Every concrete pattern type
// implements the unexported Pattern contract directly below; callers
// never construct one by hand, only through the exported constructor
// functions in leaf.go, structure.go, and meta.go.
package pattern

import "github.com/blockchaincommons/gordian-envelope/pkg/envelope"

// Path is an ordered sequence of envelopes from a root through child
// edges to a matched envelope (spec.md §3.4).
type Path []envelope.Envelope

// Last returns the final envelope in the path, or nil if empty.
func (p Path) Last() envelope.Envelope {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

func (p Path) clone() Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// Greediness controls how Repeat orders and selects repetition counts,
// mirroring regex quantifier behavior.
type Greediness int

const (
	// Greedy tries the highest repetition count first.
	Greedy Greediness = iota
	// Lazy tries the lowest repetition count first.
	Lazy
	// Possessive tries only the highest repetition count.
	Possessive
)

// Pattern is implemented by every leaf, structure, and meta pattern.
// The interface is sealed (unexported methods) the same way
// pkg/envelope.Envelope is: only this package's constructors produce
// values that satisfy it.
type Pattern interface {
	// directPaths evaluates the pattern against env without going
	// through the compiled bytecode cache. Used internally by the VM
	// (MatchPredicate/NotMatch/Search operands), by PushAxis-compiled
	// structure patterns used as a nested operand, and by meta patterns
	// that recurse into sub-patterns outside the VM (And, Or, Capture).
	directPaths(env envelope.Envelope) []Path
	// compile appends this pattern's bytecode to code, recording any
	// sub-patterns it references as literals.
	compile(code *[]Instr, lits *[]Pattern)
	// describe renders a structural signature used as a cache key; two
	// patterns with equal describe() strings must behave identically.
	describe() string
	sealPattern()
}

// Paths runs p against env and returns every matching path. A
// compiled program for p's structure is built once and cached,
// keyed by describe() (spec.md §4.6.3); a cache miss recompiles.
func Paths(p Pattern, env envelope.Envelope) []Path {
	prog := compiledProgram(p)
	return runProgram(prog, env)
}

// Matches reports whether p matches anywhere that Paths would return a
// non-empty result: matches(E) == !paths(E).is_empty() (spec.md §8).
func Matches(p Pattern, env envelope.Envelope) bool {
	return len(Paths(p, env)) > 0
}
