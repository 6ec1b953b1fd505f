package pattern

import (
	"fmt"
	"math"
	"regexp"
	"sync"
	"time"

	"github.com/blockchaincommons/gordian-envelope/pkg/dcbor"
	"github.com/blockchaincommons/gordian-envelope/pkg/envelope"
	"github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"
)

// secondsToTime converts a (possibly fractional) epoch-seconds value,
// as decoded generically from a dCBOR tag-1 payload, into a time.Time.
func secondsToTime(sec float64) time.Time {
	whole := math.Trunc(sec)
	frac := sec - whole
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// Leaf patterns match on a Leaf (or, for KnownValue, a KnownValueLeaf)
// envelope's carried value (spec.md §4.6.1). Every leaf pattern's
// directPaths either returns [[env]] (it matched at the current
// position, no descent) or nil; compile always lowers to a single
// MatchPredicate instruction, since leaf patterns never move the
// traversal position.

func leafPaths(matched bool, env envelope.Envelope) []Path {
	if !matched {
		return nil
	}
	return []Path{{env}}
}

func leafValue(env envelope.Envelope) (any, bool) {
	l, ok := env.(*envelope.Leaf)
	if !ok {
		return nil, false
	}
	return l.Value(), true
}

func compileAsPredicate(self Pattern, code *[]Instr, lits *[]Pattern) {
	idx := len(*lits)
	*lits = append(*lits, self)
	*code = append(*code, Instr{op: opMatchPredicate, idx: idx})
}

// region: Bool

type boolPattern struct {
	anyValue bool
	hasValue bool
	value    bool
}

func (boolPattern) sealPattern() {}

// Bool matches a specific boolean leaf value.
func Bool(b bool) Pattern { return &boolPattern{hasValue: true, value: b} }

// AnyBool matches any boolean leaf value.
func AnyBool() Pattern { return &boolPattern{anyValue: true} }

func (p *boolPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	if p.anyValue {
		return leafPaths(true, env)
	}
	return leafPaths(b == p.value, env)
}

func (p *boolPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *boolPattern) describe() string {
	if p.anyValue {
		return "leaf:bool:any"
	}
	return fmt.Sprintf("leaf:bool:%v", p.value)
}

// endregion

// region: Number

type numberCmp int

const (
	numAny numberCmp = iota
	numExact
	numRange
	numGreater
	numGreaterEq
	numLess
	numLessEq
	numNaN
)

type numberPattern struct {
	cmp      numberCmp
	value    float64
	min, max float64
}

func (numberPattern) sealPattern() {}

// AnyNumber matches any numeric leaf value.
func AnyNumber() Pattern { return &numberPattern{cmp: numAny} }

// Number matches an exact numeric leaf value.
func Number(v float64) Pattern { return &numberPattern{cmp: numExact, value: v} }

// NumberRange matches a numeric leaf value within [min, max] inclusive.
func NumberRange(min, max float64) Pattern { return &numberPattern{cmp: numRange, min: min, max: max} }

// NumberGreaterThan matches a numeric leaf value strictly greater than v.
func NumberGreaterThan(v float64) Pattern { return &numberPattern{cmp: numGreater, value: v} }

// NumberGreaterThanOrEqual matches a numeric leaf value >= v.
func NumberGreaterThanOrEqual(v float64) Pattern { return &numberPattern{cmp: numGreaterEq, value: v} }

// NumberLessThan matches a numeric leaf value strictly less than v.
func NumberLessThan(v float64) Pattern { return &numberPattern{cmp: numLess, value: v} }

// NumberLessThanOrEqual matches a numeric leaf value <= v.
func NumberLessThanOrEqual(v float64) Pattern { return &numberPattern{cmp: numLessEq, value: v} }

// NumberNaN matches a numeric leaf value that is NaN.
func NumberNaN() Pattern { return &numberPattern{cmp: numNaN} }

func toFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func (p *numberPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	f, ok := toFloat64(v)
	if !ok {
		return nil
	}
	var matched bool
	switch p.cmp {
	case numAny:
		matched = true
	case numExact:
		matched = f == p.value
	case numRange:
		matched = f >= p.min && f <= p.max
	case numGreater:
		matched = f > p.value
	case numGreaterEq:
		matched = f >= p.value
	case numLess:
		matched = f < p.value
	case numLessEq:
		matched = f <= p.value
	case numNaN:
		matched = math.IsNaN(f)
	}
	return leafPaths(matched, env)
}

func (p *numberPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *numberPattern) describe() string {
	return fmt.Sprintf("leaf:number:%d:%v:%v:%v", p.cmp, p.value, p.min, p.max)
}

// endregion

// region: Text

type textPattern struct {
	anyValue bool
	exact    string
	hasExact bool
	re       *regexp.Regexp
}

func (textPattern) sealPattern() {}

// AnyText matches any text leaf value.
func AnyText() Pattern { return &textPattern{anyValue: true} }

// Text matches an exact text leaf value.
func Text(s string) Pattern { return &textPattern{exact: s, hasExact: true} }

// TextRegex matches a text leaf value against re, applied over Unicode
// scalar values per spec.md §4.6.4.
func TextRegex(re *regexp.Regexp) Pattern { return &textPattern{re: re} }

func (p *textPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return nil
	}
	var matched bool
	switch {
	case p.anyValue:
		matched = true
	case p.hasExact:
		matched = s == p.exact
	case p.re != nil:
		matched = p.re.MatchString(s)
	}
	return leafPaths(matched, env)
}

func (p *textPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *textPattern) describe() string {
	switch {
	case p.anyValue:
		return "leaf:text:any"
	case p.hasExact:
		return fmt.Sprintf("leaf:text:exact:%q", p.exact)
	default:
		return fmt.Sprintf("leaf:text:regex:%s", p.re.String())
	}
}

// endregion

// region: ByteString

type byteStringPattern struct {
	anyValue bool
	exact    []byte
	hasExact bool
	re       *regexp.Regexp
}

func (byteStringPattern) sealPattern() {}

// AnyByteString matches any byte-string leaf value.
func AnyByteString() Pattern { return &byteStringPattern{anyValue: true} }

// ByteString matches an exact byte-string leaf value.
func ByteString(b []byte) Pattern { return &byteStringPattern{exact: b, hasExact: true} }

// ByteStringRegex matches a byte-string leaf value against a binary
// regex applied over raw bytes (spec.md §4.6.4); use `(?s)` in re's
// source to let `.` match any byte, including `\x00`-`\xFF`.
func ByteStringRegex(re *regexp.Regexp) Pattern { return &byteStringPattern{re: re} }

func (p *byteStringPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil
	}
	var matched bool
	switch {
	case p.anyValue:
		matched = true
	case p.hasExact:
		matched = string(b) == string(p.exact)
	case p.re != nil:
		matched = p.re.Match(b)
	}
	return leafPaths(matched, env)
}

func (p *byteStringPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *byteStringPattern) describe() string {
	switch {
	case p.anyValue:
		return "leaf:bytestring:any"
	case p.hasExact:
		return fmt.Sprintf("leaf:bytestring:exact:%x", p.exact)
	default:
		return fmt.Sprintf("leaf:bytestring:regex:%s", p.re.String())
	}
}

// endregion

// region: Date

type dateCmp int

const (
	dateAny dateCmp = iota
	dateExact
	dateRange
	dateEarliest
	dateLatest
	dateISO8601
	dateRegex
)

type datePattern struct {
	cmp      dateCmp
	value    dcbor.Date
	min, max dcbor.Date
	iso      string
	re       *regexp.Regexp
}

func (datePattern) sealPattern() {}

// AnyDate matches any Date (CBOR tag 1) leaf value.
func AnyDate() Pattern { return &datePattern{cmp: dateAny} }

// DateExact matches a specific Date leaf value.
func DateExact(d dcbor.Date) Pattern { return &datePattern{cmp: dateExact, value: d} }

// DateRange matches a Date leaf value within [min, max] inclusive.
func DateRange(min, max dcbor.Date) Pattern { return &datePattern{cmp: dateRange, min: min, max: max} }

// DateEarliest matches a Date leaf value on or after d.
func DateEarliest(d dcbor.Date) Pattern { return &datePattern{cmp: dateEarliest, value: d} }

// DateLatest matches a Date leaf value on or before d.
func DateLatest(d dcbor.Date) Pattern { return &datePattern{cmp: dateLatest, value: d} }

// DateISO8601 matches a Date leaf value by its ISO-8601 string form.
func DateISO8601(iso string) Pattern { return &datePattern{cmp: dateISO8601, iso: iso} }

// DateRegex matches a Date leaf value whose ISO-8601 string form
// matches re.
func DateRegex(re *regexp.Regexp) Pattern { return &datePattern{cmp: dateRegex, re: re} }

func dateValue(env envelope.Envelope) (dcbor.Date, bool) {
	v, ok := leafValue(env)
	if !ok {
		return dcbor.Date{}, false
	}
	switch x := v.(type) {
	case dcbor.Date:
		return x, true
	case time.Time:
		return dcbor.NewDate(x), true
	}
	tag, ok := v.(dcbor.Tag)
	if !ok || tag.Number != dcbor.TagDate {
		return dcbor.Date{}, false
	}
	sec, ok := toFloat64(tag.Content)
	if !ok {
		return dcbor.Date{}, false
	}
	return dcbor.NewDate(secondsToTime(sec)), true
}

func (p *datePattern) directPaths(env envelope.Envelope) []Path {
	d, ok := dateValue(env)
	if !ok {
		return nil
	}
	var matched bool
	switch p.cmp {
	case dateAny:
		matched = true
	case dateExact:
		matched = d.Time().Equal(p.value.Time())
	case dateRange:
		matched = !d.Time().Before(p.min.Time()) && !d.Time().After(p.max.Time())
	case dateEarliest:
		matched = !d.Time().Before(p.value.Time())
	case dateLatest:
		matched = !d.Time().After(p.value.Time())
	case dateISO8601:
		matched = d.ISO8601() == p.iso
	case dateRegex:
		matched = p.re.MatchString(d.ISO8601())
	}
	return leafPaths(matched, env)
}

func (p *datePattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *datePattern) describe() string {
	return fmt.Sprintf("leaf:date:%d:%s:%s:%s:%s", p.cmp, p.value.ISO8601(), p.min.ISO8601(), p.max.ISO8601(), p.iso)
}

// endregion

// region: Array

type countCmp int

const (
	countAny countCmp = iota
	countExact
	countRange
)

type arrayPattern struct {
	cmp      countCmp
	count    int
	min, max int
}

func (arrayPattern) sealPattern() {}

// AnyArray matches any array leaf value.
func AnyArray() Pattern { return &arrayPattern{cmp: countAny} }

// ArrayCount matches an array leaf value with exactly n elements.
func ArrayCount(n int) Pattern { return &arrayPattern{cmp: countExact, count: n} }

// ArrayCountRange matches an array leaf value with [min, max] elements.
func ArrayCountRange(min, max int) Pattern { return &arrayPattern{cmp: countRange, min: min, max: max} }

func arrayLen(v any) (int, bool) {
	arr, ok := v.([]any)
	if !ok {
		return 0, false
	}
	return len(arr), true
}

func (p *arrayPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	n, ok := arrayLen(v)
	if !ok {
		return nil
	}
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

func (p *arrayPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *arrayPattern) describe() string {
	return fmt.Sprintf("leaf:array:%d:%d:%d:%d", p.cmp, p.count, p.min, p.max)
}

// endregion

// region: Map

type mapPattern struct {
	cmp      countCmp
	count    int
	min, max int
}

func (mapPattern) sealPattern() {}

// AnyMap matches any map leaf value.
func AnyMap() Pattern { return &mapPattern{cmp: countAny} }

// MapCount matches a map leaf value with exactly n entries.
func MapCount(n int) Pattern { return &mapPattern{cmp: countExact, count: n} }

// MapCountRange matches a map leaf value with [min, max] entries.
func MapCountRange(min, max int) Pattern { return &mapPattern{cmp: countRange, min: min, max: max} }

func mapLen(v any) (int, bool) {
	switch m := v.(type) {
	case map[any]any:
		return len(m), true
	case map[string]any:
		return len(m), true
	default:
		return 0, false
	}
}

func (p *mapPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	n, ok := mapLen(v)
	if !ok {
		return nil
	}
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

func (p *mapPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *mapPattern) describe() string {
	return fmt.Sprintf("leaf:map:%d:%d:%d:%d", p.cmp, p.count, p.min, p.max)
}

// endregion

// region: Null

type nullPattern struct{}

func (nullPattern) sealPattern() {}

// Null matches a CBOR null leaf value.
func Null() Pattern { return &nullPattern{} }

func (p *nullPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	return leafPaths(v == nil, env)
}

func (p *nullPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *nullPattern) describe() string                       { return "leaf:null" }

// endregion

// region: Tag

// tagNames is a small, optional registry mapping CBOR tag numbers to
// display names for TaggedWithName/TaggedWithNameRegex matching. Real
// tag-registry ownership is a format-context concern outside the core
// (spec.md §1); this is just enough to let patterns refer to tags by a
// name the caller has chosen to register.
var (
	tagNamesMu sync.RWMutex
	tagNames   = map[uint64]string{dcbor.TagDate: "date"}
)

// RegisterTagName associates name with a CBOR tag number for
// TaggedWithName/TaggedWithNameRegex pattern matching.
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

type tagCmp int

const (
	tagAny tagCmp = iota
	tagByValue
	tagByName
	tagByNameRegex
)

type taggedPattern struct {
	cmp   tagCmp
	value uint64
	name  string
	re    *regexp.Regexp
}

func (taggedPattern) sealPattern() {}

// AnyTag matches any tagged CBOR leaf value.
func AnyTag() Pattern { return &taggedPattern{cmp: tagAny} }

// TaggedWithValue matches a tagged leaf value whose tag number is value.
func TaggedWithValue(value uint64) Pattern { return &taggedPattern{cmp: tagByValue, value: value} }

// TaggedWithName matches a tagged leaf value whose tag number is
// registered (via RegisterTagName) under name.
func TaggedWithName(name string) Pattern { return &taggedPattern{cmp: tagByName, name: name} }

// TaggedWithNameRegex matches a tagged leaf value whose registered tag
// name matches re.
func TaggedWithNameRegex(re *regexp.Regexp) Pattern { return &taggedPattern{cmp: tagByNameRegex, re: re} }

func (p *taggedPattern) directPaths(env envelope.Envelope) []Path {
	v, ok := leafValue(env)
	if !ok {
		return nil
	}
	tag, ok := v.(dcbor.Tag)
	if !ok {
		return nil
	}
	var matched bool
	switch p.cmp {
	case tagAny:
		matched = true
	case tagByValue:
		matched = tag.Number == p.value
	case tagByName:
		name, found := tagName(tag.Number)
		matched = found && name == p.name
	case tagByNameRegex:
		name, found := tagName(tag.Number)
		matched = found && p.re.MatchString(name)
	}
	return leafPaths(matched, env)
}

func (p *taggedPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *taggedPattern) describe() string {
	return fmt.Sprintf("leaf:tag:%d:%d:%s", p.cmp, p.value, p.name)
}

// endregion

// region: KnownValue

type kvCmp int

const (
	kvAny kvCmp = iota
	kvExact
	kvByName
	kvByNameRegex
)

type knownValuePattern struct {
	cmp   kvCmp
	value knownvalue.KnownValue
	name  string
	re    *regexp.Regexp
}

func (knownValuePattern) sealPattern() {}

// AnyKnownValue matches any KnownValue leaf.
func AnyKnownValue() Pattern { return &knownValuePattern{cmp: kvAny} }

// KnownValueExact matches a specific KnownValue leaf.
func KnownValueExact(v knownvalue.KnownValue) Pattern { return &knownValuePattern{cmp: kvExact, value: v} }

// KnownValueNamed matches a KnownValue leaf registered under name.
func KnownValueNamed(name string) Pattern { return &knownValuePattern{cmp: kvByName, name: name} }

// KnownValueRegex matches a KnownValue leaf whose registered name
// matches re.
func KnownValueRegex(re *regexp.Regexp) Pattern { return &knownValuePattern{cmp: kvByNameRegex, re: re} }

func (p *knownValuePattern) directPaths(env envelope.Envelope) []Path {
	kvl, ok := env.(*envelope.KnownValueLeaf)
	if !ok {
		return nil
	}
	kv := kvl.Value()
	var matched bool
	switch p.cmp {
	case kvAny:
		matched = true
	case kvExact:
		matched = kv.Equal(p.value)
	case kvByName:
		name, found := kv.Name()
		matched = found && name == p.name
	case kvByNameRegex:
		name, found := kv.Name()
		matched = found && p.re.MatchString(name)
	}
	return leafPaths(matched, env)
}

func (p *knownValuePattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *knownValuePattern) describe() string {
	return fmt.Sprintf("leaf:knownvalue:%d:%d:%s", p.cmp, p.value.Value(), p.name)
}

// endregion

// region: CBOR

type cborPattern struct {
	anyValue bool
	exact    []byte // canonical encoding of the expected value, for comparison
	hasExact bool
}

func (cborPattern) sealPattern() {}

// AnyCBOR matches any leaf, regardless of its decoded CBOR value.
func AnyCBOR() Pattern { return &cborPattern{anyValue: true} }

// CBOR matches a leaf whose canonical CBOR encoding equals v's.
func CBOR(v any) Pattern {
	b, err := dcbor.Marshal(v)
	if err != nil {
		return &cborPattern{hasExact: true, exact: nil}
	}
	return &cborPattern{hasExact: true, exact: b}
}

func (p *cborPattern) directPaths(env envelope.Envelope) []Path {
	l, ok := env.(*envelope.Leaf)
	if !ok {
		return nil
	}
	if p.anyValue {
		return leafPaths(true, env)
	}
	return leafPaths(string(l.CBORBytes()) == string(p.exact), env)
}

func (p *cborPattern) compile(code *[]Instr, lits *[]Pattern) { compileAsPredicate(p, code, lits) }
func (p *cborPattern) describe() string {
	if p.anyValue {
		return "leaf:cbor:any"
	}
	return fmt.Sprintf("leaf:cbor:exact:%x", p.exact)
}

// endregion
