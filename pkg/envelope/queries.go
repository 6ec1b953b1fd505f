package envelope

import (
	"fmt"

	"github.com/blockchaincommons/gordian-envelope/pkg/dcbor"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
)

// AsKnownValue returns e's carried KnownValue if e is a KnownValueLeaf,
// or ErrNotKnownValue otherwise — the per-variant accessor spec.md §9
// calls for in place of runtime type reflection.
func AsKnownValue(e Envelope) (knownvalue.KnownValue, error) {
	kvl, ok := e.(*KnownValueLeaf)
	if !ok {
		return knownvalue.KnownValue{}, ErrNotKnownValue
	}
	return kvl.Value(), nil
}

// ExtractSubject resolves e's subject through Node and Wrapped to a
// Leaf, then decodes its CBOR into T. It fails with ErrNotLeaf if
// resolution bottoms out on a non-leaf variant, or with ErrInvalidFormat
// if the leaf's CBOR does not decode into T.
func ExtractSubject[T any](e Envelope) (T, error) {
	var zero T
	cur := e
	for {
		switch x := cur.(type) {
		case *Node:
			cur = x.subject
		case *Wrapped:
			cur = x.inner
		case *Leaf:
			if v, ok := x.Value().(T); ok {
				return v, nil
			}
			var out T
			if err := dcbor.Unmarshal(x.CBORBytes(), &out); err != nil {
				return zero, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
			}
			return out, nil
		default:
			return zero, ErrNotLeaf
		}
	}
}

// AssertionsWithPredicate returns every assertion on e's subject whose
// predicate has the same digest as probe.
func AssertionsWithPredicate(e Envelope, predicate any) ([]Envelope, error) {
	probe, err := New(predicate)
	if err != nil {
		return nil, err
	}
	var out []Envelope
	for _, a := range Assertions(e) {
		assertion, ok := a.(*Assertion)
		if !ok {
			continue
		}
		if assertion.Predicate().Digest().Equal(probe.Digest()) {
			out = append(out, a)
		}
	}
	return out, nil
}

// AssertionWithPredicate requires exactly one assertion on e's subject
// matching predicate, returning ErrNonexistentPredicate or
// ErrAmbiguousPredicate otherwise.
func AssertionWithPredicate(e Envelope, predicate any) (Envelope, error) {
	matches, err := AssertionsWithPredicate(e, predicate)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrNonexistentPredicate
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousPredicate
	}
}

// ObjectForPredicate is a convenience over AssertionWithPredicate that
// returns just the matching assertion's object.
func ObjectForPredicate(e Envelope, predicate any) (Envelope, error) {
	a, err := AssertionWithPredicate(e, predicate)
	if err != nil {
		return nil, err
	}
	assertion := a.(*Assertion)
	return assertion.Object(), nil
}

// ExtractObjectForPredicate finds the single assertion matching
// predicate and decodes its object's subject into T.
func ExtractObjectForPredicate[T any](e Envelope, predicate any) (T, error) {
	var zero T
	obj, err := ObjectForPredicate(e, predicate)
	if err != nil {
		return zero, err
	}
	return ExtractSubject[T](obj)
}

// ElementsCount counts e plus every recursively reachable child
// envelope (spec.md §4.1, used by testable property 6).
func ElementsCount(e Envelope) int {
	count := 1
	switch x := e.(type) {
	case *Assertion:
		count += ElementsCount(x.predicate)
		count += ElementsCount(x.object)
	case *Node:
		count += ElementsCount(x.subject)
		for _, a := range x.assertions {
			count += ElementsCount(a)
		}
	case *Wrapped:
		count += ElementsCount(x.inner)
	}
	return count
}
