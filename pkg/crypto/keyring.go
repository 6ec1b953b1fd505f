package crypto

import (
	"fmt"
	"sync"

	"github.com/blockchaincommons/gordian-envelope/pkg/signature"
)

// KeyRing holds a set of verifiers keyed by KeyID, adapted from the
// teacher repository's pkg/crypto/keyring.go (mutex-guarded map of
// signers) but generalized to hold Verifiers for threshold verification
// across multiple keys, per spec.md §4.5.
type KeyRing struct {
	mu        sync.RWMutex
	verifiers map[string]signature.Verifier
}

// NewKeyRing returns an empty KeyRing.
func NewKeyRing() *KeyRing {
	return &KeyRing{verifiers: make(map[string]signature.Verifier)}
}

// Add registers a verifier under its own KeyID.
func (r *KeyRing) Add(v signature.Verifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verifiers[v.KeyID()] = v
}

// Revoke removes a verifier by KeyID.
func (r *KeyRing) Revoke(keyID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.verifiers, keyID)
}

// Get returns the verifier registered for keyID, if any.
func (r *KeyRing) Get(keyID string) (signature.Verifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.verifiers[keyID]
	return v, ok
}

// All returns every registered verifier, in no particular order, for use
// with signature.VerifyThreshold.
func (r *KeyRing) All() []signature.Verifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]signature.Verifier, 0, len(r.verifiers))
	for _, v := range r.verifiers {
		out = append(out, v)
	}
	return out
}

// VerifierFor resolves the single verifier matching sig.KeyID, or
// ErrUnknownKey if no such key is registered.
func (r *KeyRing) VerifierFor(keyID string) (signature.Verifier, error) {
	v, ok := r.Get(keyID)
	if !ok {
		return nil, fmt.Errorf("crypto: keyring: %w: %s", ErrUnknownKey, keyID)
	}
	return v, nil
}
