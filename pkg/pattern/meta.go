package pattern

import (
	"fmt"
	"strings"

	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

// Meta patterns combine or modify other patterns (spec.md §4.6.2,
// §4.6.3). Any, None, And, and Or are atomic: they test the
// current position and, if satisfied, return [[env]] without
// navigating further — the same classification vm.rs's atomic_paths
// dispatch gives Any/None, extended here to the other boolean
// combinators since none of them change traversal position either
// (see DESIGN.md, meta.go entry). Capture is transparent: it compiles
// and matches exactly as its inner pattern does. Not,
// Search, and Repeat have dedicated VM opcodes. Sequence chains its
// sub-patterns' own compiled code via ExtendSequence/CombineSequence.

// region: Any / None

type anyPattern struct{}

func (*anyPattern) sealPattern()                              {}
func (*anyPattern) directPaths(env envelope.Envelope) []Path  { return []Path{{env}} }
func (p *anyPattern) compile(code *[]Instr, lits *[]Pattern)  { compileAsPredicate(p, code, lits) }
func (*anyPattern) describe() string                          { return "meta:any" }

// Any matches every envelope.
func Any() Pattern { return &anyPattern{} }

type nonePattern struct{}

func (*nonePattern) sealPattern()                             {}
func (*nonePattern) directPaths(envelope.Envelope) []Path     { return nil }
func (p *nonePattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (*nonePattern) describe() string                         { return "meta:none" }

// None matches nothing.
func None() Pattern { return &nonePattern{} }

// endregion

// region: And / Or

type andPattern struct{ patterns []Pattern }

func (andPattern) sealPattern() {}

// And matches env if every pattern in patterns matches it.
func And(patterns ...Pattern) Pattern { return &andPattern{patterns: patterns} }

func (p *andPattern) directPaths(env envelope.Envelope) []Path {
	for _, sub := range p.patterns {
		if len(sub.directPaths(env)) == 0 {
			return nil
		}
	}
	return []Path{{env}}
}

func (p *andPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *andPattern) describe() string {
	parts := make([]string, len(p.patterns))
	for i, sub := range p.patterns {
		parts[i] = sub.describe()
	}
	return "meta:and:[" + strings.Join(parts, ",") + "]"
}

type orPattern struct{ patterns []Pattern }

func (orPattern) sealPattern() {}

// Or matches env if any pattern in patterns matches it.
func Or(patterns ...Pattern) Pattern { return &orPattern{patterns: patterns} }

func (p *orPattern) directPaths(env envelope.Envelope) []Path {
	for _, sub := range p.patterns {
		if len(sub.directPaths(env)) > 0 {
			return []Path{{env}}
		}
	}
	return nil
}

func (p *orPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *orPattern) describe() string {
	parts := make([]string, len(p.patterns))
	for i, sub := range p.patterns {
		parts[i] = sub.describe()
	}
	return "meta:or:[" + strings.Join(parts, ",") + "]"
}

// endregion

// region: Not

type notPattern struct{ inner Pattern }

func (notPattern) sealPattern() {}

// Not matches env if inner does not.
func Not(inner Pattern) Pattern { return &notPattern{inner: inner} }

func (p *notPattern) directPaths(env envelope.Envelope) []Path {
	if len(p.inner.directPaths(env)) > 0 {
		return nil
	}
	return []Path{{env}}
}

func (p *notPattern) compile(code *[]Instr, lits *[]Pattern) {
	idx := len(*lits)
	*lits = append(*lits, p.inner)
	*code = append(*code, Instr{op: opNotMatch, idx: idx})
}
func (p *notPattern) describe() string { return "meta:not:" + p.inner.describe() }

// endregion

// region: Search

type searchPattern struct{ inner Pattern }

func (searchPattern) sealPattern() {}

// Search matches if inner matches anywhere in the subtree rooted at
// env, including env itself.
func Search(inner Pattern) Pattern { return &searchPattern{inner: inner} }

func (p *searchPattern) directPaths(env envelope.Envelope) []Path {
	var out []Path
	var walk func(e envelope.Envelope, prefix Path)
	walk = func(e envelope.Envelope, prefix Path) {
		for _, fp := range p.inner.directPaths(e) {
			out = append(out, extendPath(prefix, fp))
		}
		for _, c := range structuralChildren(e) {
			walk(c, append(prefix.clone(), c))
		}
	}
	walk(env, Path{env})
	return out
}

func (p *searchPattern) compile(code *[]Instr, lits *[]Pattern) {
	idx := len(*lits)
	*lits = append(*lits, p.inner)
	*code = append(*code, Instr{op: opSearch, idx: idx})
}
func (p *searchPattern) describe() string { return "meta:search:" + p.inner.describe() }

// endregion

// region: Repeat

type repeatPattern struct {
	inner Pattern
	min   int
	max   int // -1 means unbounded
	mode  Greediness
}

func (repeatPattern) sealPattern() {}

// Repeat matches [min, max] consecutive applications of inner, chained
// child-to-child; max of -1 means unbounded. mode controls which
// counts are preferred when more than one would satisfy min/max.
func Repeat(inner Pattern, min, max int, mode Greediness) Pattern {
	return &repeatPattern{inner: inner, min: min, max: max, mode: mode}
}

func (p *repeatPattern) directPaths(env envelope.Envelope) []Path {
	states := repeatStates(p.inner, env, Path{env}, p.min, p.max, p.mode)
	if len(states) == 0 {
		return nil
	}
	return []Path{states[0].path}
}

func (p *repeatPattern) compile(code *[]Instr, lits *[]Pattern) {
	idx := len(*lits)
	*lits = append(*lits, p.inner)
	*code = append(*code, Instr{op: opRepeat, idx: idx, repeatMin: p.min, repeatMax: p.max, repeatMode: p.mode})
}
func (p *repeatPattern) describe() string {
	return fmt.Sprintf("meta:repeat:%d:%d:%d:%s", p.min, p.max, p.mode, p.inner.describe())
}

// endregion

// region: Sequence

type sequencePattern struct{ patterns []Pattern }

func (sequencePattern) sealPattern() {}

// Sequence matches patterns in order, each continuing from where the
// previous left off (spec.md §4.6.2's ExtendSequence/CombineSequence).
// An empty sequence never matches (spec.md §8): with no sub-patterns to
// compile, the alternative of emitting no instructions would fall
// through to the VM's trailing Accept and match everything instead.
func Sequence(patterns ...Pattern) Pattern {
	if len(patterns) == 0 {
		return None()
	}
	return &sequencePattern{patterns: patterns}
}

func (p *sequencePattern) directPaths(env envelope.Envelope) []Path {
	return Paths(p, env)
}

func (p *sequencePattern) compile(code *[]Instr, lits *[]Pattern) {
	for i, sub := range p.patterns {
		if i > 0 {
			*code = append(*code, Instr{op: opExtendSequence})
		}
		sub.compile(code, lits)
		if i > 0 {
			*code = append(*code, Instr{op: opCombineSequence})
		}
	}
}
func (p *sequencePattern) describe() string {
	parts := make([]string, len(p.patterns))
	for i, sub := range p.patterns {
		parts[i] = sub.describe()
	}
	return "meta:sequence:[" + strings.Join(parts, ",") + "]"
}

// endregion

// region: Capture

type capturePattern struct {
	name  string
	inner Pattern
}

func (capturePattern) sealPattern() {}

// Capture names inner's match for later retrieval via CaptureName,
// without otherwise changing what or where it matches: compile and
// directPaths both delegate straight through to inner.
func Capture(name string, inner Pattern) Pattern { return &capturePattern{name: name, inner: inner} }

// CaptureName reports the name a Capture pattern was constructed with,
// if p is one.
func CaptureName(p Pattern) (string, bool) {
	c, ok := p.(*capturePattern)
	if !ok {
		return "", false
	}
	return c.name, true
}

func (p *capturePattern) directPaths(env envelope.Envelope) []Path { return p.inner.directPaths(env) }
func (p *capturePattern) compile(code *[]Instr, lits *[]Pattern)   { p.inner.compile(code, lits) }
func (p *capturePattern) describe() string                         { return "meta:capture:" + p.name + ":" + p.inner.describe() }

// endregion
