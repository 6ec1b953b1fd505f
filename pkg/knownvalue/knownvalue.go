// Package knownvalue implements the compact unsigned-integer predicate
// namespace envelopes use for well-defined assertions: each KnownValue is
// a u64 with an optional registered display name, looked up in a
// process-wide, read-mostly registry.
package knownvalue

import (
	"fmt"
	"sync"
)

// KnownValue is a compact predicate identifier. Equality and hashing use
// the integer value only; the name is presentation, resolved through the
// registry.
type KnownValue struct {
	value uint64
}

// New wraps a raw value, independent of whether it has a registered name.
func New(value uint64) KnownValue {
	return KnownValue{value: value}
}

// Value returns the raw unsigned integer.
func (k KnownValue) Value() uint64 {
	return k.value
}

// Equal compares by integer value only.
func (k KnownValue) Equal(o KnownValue) bool {
	return k.value == o.value
}

// Name returns the registered display name, if any, and whether one was
// found.
func (k KnownValue) Name() (string, bool) {
	return registry.name(k.value)
}

// String renders the registered name quoted like 'isA', or the bare
// integer if unregistered, matching the envelope-notation convention in
// spec.md §6.
func (k KnownValue) String() string {
	if name, ok := k.Name(); ok {
		return fmt.Sprintf("'%s'", name)
	}
	return fmt.Sprintf("%d", k.value)
}

// registryTable is the process-wide, read-mostly name<->value mapping.
type registryTable struct {
	mu        sync.RWMutex
	byValue   map[uint64]string
	byName    map[string]uint64
}

func newRegistryTable() *registryTable {
	return &registryTable{
		byValue: make(map[uint64]string),
		byName:  make(map[string]uint64),
	}
}

func (r *registryTable) register(value uint64, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byValue[value] = name
	r.byName[name] = value
}

func (r *registryTable) name(value uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byValue[value]
	return name, ok
}

func (r *registryTable) byNameLookup(name string) (uint64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byName[name]
	return v, ok
}

var (
	registryOnce sync.Once
	registry     *registryTable
)

func init() {
	registryOnce.Do(func() {
		registry = newRegistryTable()
		for _, e := range registryEntries {
			registry.register(e.value, e.name)
		}
	})
}

// ByName looks up a registered KnownValue by its display name.
func ByName(name string) (KnownValue, bool) {
	v, ok := registry.byNameLookup(name)
	if !ok {
		return KnownValue{}, false
	}
	return New(v), true
}

// Register adds or overrides a name for a value in the process-wide
// registry. Intended for extension packages (e.g. application-specific
// predicates) to register additional names at init time; not required for
// ordinary use of the fixed table below.
func Register(value uint64, name string) {
	registry.register(value, name)
}

type registryEntry struct {
	value uint64
	name  string
}

// registryEntries is the fixed BCR-2023-002 known-value table, transcribed
// directly from the original source's known_values_registry.rs (the
// known_value_constant! list, in file order). The 600-series edge-role
// entries at the end have no counterpart there — original_source never
// assigns "edge" a number at all, and spec.md §3.2 itself leaves its
// value unspecified ("edge=…") — so they are this module's own reserved
// range for the edge extension (SPEC_FULL.md §12), picked past the
// source's highest assigned value (507) to avoid collision.
var registryEntries = []registryEntry{
	{1, "isA"},
	{2, "id"},
	{3, "signed"},
	{4, "note"},
	{5, "hasRecipient"},
	{6, "sskrShare"},
	{7, "controller"},
	{8, "key"},
	{9, "dereferenceVia"},
	{10, "entity"},
	{11, "name"},
	{12, "language"},
	{13, "issuer"},
	{14, "holder"},
	{15, "salt"},
	{16, "date"},
	{17, "Unknown"},
	{18, "version"},
	{20, "edits"},
	{21, "validFrom"},
	{22, "validUntil"},
	{50, "attachment"},
	{51, "vendor"},
	{52, "conformsTo"},
	{60, "allow"},
	{61, "deny"},
	{62, "endpoint"},
	{63, "delegate"},
	{64, "provenance"},
	{65, "privateKey"},
	{66, "service"},
	{67, "capability"},
	{70, "All"},
	{71, "Auth"},
	{72, "Sign"},
	{73, "Encrypt"},
	{74, "Elide"},
	{75, "Issue"},
	{76, "Access"},
	{80, "Delegate"},
	{81, "Verify"},
	{82, "Update"},
	{83, "Transfer"},
	{84, "Elect"},
	{85, "Burn"},
	{86, "Revoke"},
	{100, "body"},
	{101, "result"},
	{102, "error"},
	{103, "OK"},
	{104, "Processing"},
	{105, "sender"},
	{106, "senderContinuation"},
	{107, "recipientContinuation"},
	{108, "content"},
	{200, "Seed"},
	{201, "PrivateKey"},
	{202, "PublicKey"},
	{203, "MasterKey"},
	{300, "asset"},
	{301, "BTC"},
	{302, "ETH"},
	{400, "network"},
	{401, "MainNet"},
	{402, "TestNet"},
	{500, "BIP32Key"},
	{501, "chainCode"},
	{502, "DerivationPath"},
	{503, "parent"},
	{504, "children"},
	{505, "parentFingerprint"},
	{506, "PSBT"},
	{507, "OutputDescriptor"},
	{600, "edge"},
	{601, "subjectEdge"},
	{602, "predicateEdge"},
	{603, "objectEdge"},
}
