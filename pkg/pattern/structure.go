package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blockchaincommons/gordian-envelope/pkg/digest"
	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
)

// Structure patterns match on an envelope's shape. Subject, Wrapped,
// Predicate, and Object navigate to a single child reachable via one
// of vm.go's Axis kinds, compiling to PushAxis followed directly by
// the inner pattern's own code — PushAxis forks into the child (or
// dies if env has none), so the inner pattern's eventual Accept/Save
// records a path ending at the matched descendant. Assertions instead
// forks into every assertion child, then — for the predicate/object
// variants — pushes one axis deeper to filter and Pops back so the
// reported path ends at the assertion itself, not the filtered field.
// directPaths gives every one of these the same semantics without
// going through the VM, for use as a nested operand of And/Or/Not/
// Capture, which evaluate sub-patterns directly.

// axisPaths evaluates inner against every child env has along axis,
// returning one path per match, extended from env through the child.
func axisPaths(axis Axis, env envelope.Envelope, inner Pattern) []Path {
	var out []Path
	for _, ce := range axis.Children(env) {
		for _, sp := range inner.directPaths(ce.env) {
			out = append(out, extendPath(Path{env}, sp))
		}
	}
	return out
}

// compileAxis emits a PushAxis into axis followed directly by inner's
// own bytecode: PushAxis forks one thread per child, so inner then
// runs with that child as the current position.
func compileAxis(axis Axis, inner Pattern, code *[]Instr, lits *[]Pattern) {
	*code = append(*code, Instr{op: opPushAxis, axis: axis})
	inner.compile(code, lits)
}

// region: Subject

type subjectPattern struct{ inner Pattern }

func (subjectPattern) sealPattern() {}

// Subject navigates to a Node's subject and matches inner against it.
// Only a Node has a subject child along AxisSubject, so Subject does not
// match any other variant.
func Subject(inner Pattern) Pattern { return &subjectPattern{inner: inner} }

func (p *subjectPattern) directPaths(env envelope.Envelope) []Path {
	return axisPaths(AxisSubject, env, p.inner)
}

func (p *subjectPattern) compile(code *[]Instr, lits *[]Pattern) {
	compileAxis(AxisSubject, p.inner, code, lits)
}
func (p *subjectPattern) describe() string { return "struct:subject:" + p.inner.describe() }

// endregion

// region: Wrapped

type wrappedPattern struct{ inner Pattern }

func (wrappedPattern) sealPattern() {}

// Wrapped navigates into a Wrapped envelope's inner content (or, if env
// is a Node whose subject is Wrapped, into that) and matches inner
// against it.
func Wrapped(inner Pattern) Pattern { return &wrappedPattern{inner: inner} }

func (p *wrappedPattern) directPaths(env envelope.Envelope) []Path {
	return axisPaths(AxisWrapped, env, p.inner)
}

func (p *wrappedPattern) compile(code *[]Instr, lits *[]Pattern) {
	compileAxis(AxisWrapped, p.inner, code, lits)
}
func (p *wrappedPattern) describe() string { return "struct:wrapped:" + p.inner.describe() }

// endregion

// region: Predicate / Object (only meaningful on an Assertion)

type predicatePattern struct{ inner Pattern }

func (predicatePattern) sealPattern() {}

// Predicate matches inner against env's predicate (env must be an
// Assertion).
func Predicate(inner Pattern) Pattern { return &predicatePattern{inner: inner} }

func (p *predicatePattern) directPaths(env envelope.Envelope) []Path {
	return axisPaths(AxisPredicate, env, p.inner)
}

func (p *predicatePattern) compile(code *[]Instr, lits *[]Pattern) {
	compileAxis(AxisPredicate, p.inner, code, lits)
}
func (p *predicatePattern) describe() string { return "struct:predicate:" + p.inner.describe() }

type objectPattern struct{ inner Pattern }

func (objectPattern) sealPattern() {}

// Object matches inner against env's object (env must be an Assertion).
func Object(inner Pattern) Pattern { return &objectPattern{inner: inner} }

func (p *objectPattern) directPaths(env envelope.Envelope) []Path {
	return axisPaths(AxisObject, env, p.inner)
}

func (p *objectPattern) compile(code *[]Instr, lits *[]Pattern) {
	compileAxis(AxisObject, p.inner, code, lits)
}
func (p *objectPattern) describe() string { return "struct:object:" + p.inner.describe() }

// endregion

// region: Assertions

type assertionsPattern struct {
	anyValue  bool
	predicate Pattern
	object    Pattern
}

func (assertionsPattern) sealPattern() {}

// AnyAssertion matches any one assertion on a Node.
func AnyAssertion() Pattern { return &assertionsPattern{anyValue: true} }

// AssertionWithPredicate matches an assertion on a Node whose predicate
// matches predicate.
func AssertionWithPredicate(predicate Pattern) Pattern {
	return &assertionsPattern{predicate: predicate}
}

// AssertionWithObject matches an assertion on a Node whose object
// matches object.
func AssertionWithObject(object Pattern) Pattern {
	return &assertionsPattern{object: object}
}

func (p *assertionsPattern) directPaths(env envelope.Envelope) []Path {
	var out []Path
	for _, ce := range AxisAssertion.Children(env) {
		a := ce.env
		matched := p.anyValue
		switch {
		case p.predicate != nil:
			matched = false
			for _, pe := range AxisPredicate.Children(a) {
				if len(p.predicate.directPaths(pe.env)) > 0 {
					matched = true
					break
				}
			}
		case p.object != nil:
			matched = false
			for _, oe := range AxisObject.Children(a) {
				if len(p.object.directPaths(oe.env)) > 0 {
					matched = true
					break
				}
			}
		}
		if matched {
			out = append(out, Path{env, a})
		}
	}
	return out
}

// compile pushes into every assertion, then — for the filtered
// variants — one axis deeper to test the predicate or object, popping
// back so the final path lands on the assertion, not the filtered
// field.
func (p *assertionsPattern) compile(code *[]Instr, lits *[]Pattern) {
	*code = append(*code, Instr{op: opPushAxis, axis: AxisAssertion})
	switch {
	case p.predicate != nil:
		compileAxis(AxisPredicate, p.predicate, code, lits)
		*code = append(*code, Instr{op: opPop})
	case p.object != nil:
		compileAxis(AxisObject, p.object, code, lits)
		*code = append(*code, Instr{op: opPop})
	}
}
func (p *assertionsPattern) describe() string {
	switch {
	case p.anyValue:
		return "struct:assertions:any"
	case p.predicate != nil:
		return "struct:assertions:predicate:" + p.predicate.describe()
	default:
		return "struct:assertions:object:" + p.object.describe()
	}
}

// endregion

// region: Node

type nodePattern struct {
	cmp      countCmp
	count    int
	min, max int
}

func (nodePattern) sealPattern() {}

// AnyNode matches any Node envelope.
func AnyNode() Pattern { return &nodePattern{cmp: countAny} }

// NodeCount matches a Node with exactly n assertions.
func NodeCount(n int) Pattern { return &nodePattern{cmp: countExact, count: n} }

// NodeCountRange matches a Node with [min, max] assertions.
func NodeCountRange(min, max int) Pattern { return &nodePattern{cmp: countRange, min: min, max: max} }

func (p *nodePattern) directPaths(env envelope.Envelope) []Path {
	if !envelope.IsNode(env) {
		return nil
	}
	n := len(envelope.Assertions(env))
	var matched bool
	switch p.cmp {
	case countAny:
		matched = true
	case countExact:
		matched = n == p.count
	case countRange:
		matched = n >= p.min && n <= p.max
	}
	return leafPaths(matched, env)
}

func (p *nodePattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *nodePattern) describe() string {
	return fmt.Sprintf("struct:node:%d:%d:%d:%d", p.cmp, p.count, p.min, p.max)
}

// endregion

// region: Obscured

type obscuredKind int

const (
	obscuredAny obscuredKind = iota
	obscuredElided
	obscuredEncrypted
	obscuredCompressed
)

type obscuredPattern struct{ kind obscuredKind }

func (obscuredPattern) sealPattern() {}

// AnyObscured matches any elided, encrypted, or compressed envelope.
func AnyObscured() Pattern { return &obscuredPattern{kind: obscuredAny} }

// Elided matches an elided envelope.
func Elided() Pattern { return &obscuredPattern{kind: obscuredElided} }

// Encrypted matches an encrypted envelope.
func Encrypted() Pattern { return &obscuredPattern{kind: obscuredEncrypted} }

// Compressed matches a compressed envelope.
func Compressed() Pattern { return &obscuredPattern{kind: obscuredCompressed} }

func (p *obscuredPattern) directPaths(env envelope.Envelope) []Path {
	var matched bool
	switch p.kind {
	case obscuredAny:
		matched = envelope.IsObscured(env)
	case obscuredElided:
		matched = envelope.IsElided(env)
	case obscuredEncrypted:
		matched = envelope.IsEncrypted(env)
	case obscuredCompressed:
		matched = envelope.IsCompressed(env)
	}
	return leafPaths(matched, env)
}

func (p *obscuredPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *obscuredPattern) describe() string                       { return fmt.Sprintf("struct:obscured:%d", p.kind) }

// endregion

// region: Digest

type digestCmp int

const (
	digestExact digestCmp = iota
	digestHexPrefix
	digestByteRegex
)

type digestPattern struct {
	cmp    digestCmp
	exact  digest.Digest
	prefix string
	re     *regexp.Regexp
}

func (digestPattern) sealPattern() {}

// DigestExact matches an envelope whose digest equals d.
func DigestExact(d digest.Digest) Pattern { return &digestPattern{cmp: digestExact, exact: d} }

// DigestHexPrefix matches an envelope whose hex-encoded digest starts
// with prefix (case-insensitive).
func DigestHexPrefix(prefix string) Pattern {
	return &digestPattern{cmp: digestHexPrefix, prefix: strings.ToLower(prefix)}
}

// DigestByteRegex matches an envelope whose raw 32-byte digest matches
// a binary regex.
func DigestByteRegex(re *regexp.Regexp) Pattern { return &digestPattern{cmp: digestByteRegex, re: re} }

func (p *digestPattern) directPaths(env envelope.Envelope) []Path {
	d := env.Digest()
	var matched bool
	switch p.cmp {
	case digestExact:
		matched = d.Equal(p.exact)
	case digestHexPrefix:
		matched = strings.HasPrefix(strings.ToLower(d.Hex()), p.prefix)
	case digestByteRegex:
		matched = p.re.Match(d.Bytes())
	}
	return leafPaths(matched, env)
}

func (p *digestPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *digestPattern) describe() string {
	switch p.cmp {
	case digestExact:
		return "struct:digest:exact:" + p.exact.Hex()
	case digestHexPrefix:
		return "struct:digest:prefix:" + p.prefix
	default:
		return "struct:digest:regex:" + p.re.String()
	}
}

// endregion
