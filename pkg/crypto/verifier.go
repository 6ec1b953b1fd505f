package crypto

import (
	"crypto/ed25519"

	"github.com/blockchaincommons/gordian-envelope/pkg/signature"
)

// Ed25519Verifier checks Ed25519 signatures against a single public key.
type Ed25519Verifier struct {
	pubKey ed25519.PublicKey
	keyID  string
}

// NewEd25519Verifier builds a verifier for the given public key and ID.
func NewEd25519Verifier(pubKey ed25519.PublicKey, keyID string) *Ed25519Verifier {
	return &Ed25519Verifier{pubKey: pubKey, keyID: keyID}
}

// Verify implements signature.Verifier. It ignores sig.KeyID beyond
// logging intent at call sites that care; this verifier always checks
// against its own configured key, matching Ed25519's single-key verify.
func (v *Ed25519Verifier) Verify(sig signature.Signature, message []byte) (bool, error) {
	return ed25519.Verify(v.pubKey, message, sig.Bytes), nil
}

// KeyID implements signature.Verifier.
func (v *Ed25519Verifier) KeyID() string { return v.keyID }

// PublicKey returns the verifier's public key.
func (v *Ed25519Verifier) PublicKey() ed25519.PublicKey { return v.pubKey }
