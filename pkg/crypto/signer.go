// Package crypto provides concrete implementations of the external
// capabilities the envelope and signature packages consume as
// collaborators (spec.md §6): Ed25519 signing/verification, AEAD
// encryption, zstd compression, and a versioned symmetric keystore.
// Adapted from the teacher repository's pkg/crypto (Ed25519Signer /
// Ed25519Verifier / KeyRing) and pkg/kms (versioned, rotate-capable
// keystore), generalized from their original contracts-specific payload
// types to sign/verify arbitrary byte digests.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/blockchaincommons/gordian-envelope/pkg/signature"
)

// Ed25519Signer signs messages with a raw Ed25519 private key, the
// standard library's only cryptographic signing primitive and the one
// the teacher repository itself already depended on.
type Ed25519Signer struct {
	privKey ed25519.PrivateKey
	pubKey  ed25519.PublicKey
	keyID   string
}

// NewEd25519Signer generates a fresh Ed25519 key pair for keyID.
func NewEd25519Signer(keyID string) (*Ed25519Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generating ed25519 key: %w", err)
	}
	return &Ed25519Signer{privKey: priv, pubKey: pub, keyID: keyID}, nil
}

// NewEd25519SignerFromKey builds a signer from an existing private key.
func NewEd25519SignerFromKey(priv ed25519.PrivateKey, keyID string) *Ed25519Signer {
	return &Ed25519Signer{privKey: priv, pubKey: priv.Public().(ed25519.PublicKey), keyID: keyID}
}

// Sign implements signature.Signer.
func (s *Ed25519Signer) Sign(message []byte) (signature.Signature, error) {
	sig := ed25519.Sign(s.privKey, message)
	return signature.Signature{Bytes: sig, KeyID: s.keyID}, nil
}

// KeyID implements signature.Signer.
func (s *Ed25519Signer) KeyID() string { return s.keyID }

// PublicKey returns the signer's public key, for constructing a matching
// Ed25519Verifier.
func (s *Ed25519Signer) PublicKey() ed25519.PublicKey { return s.pubKey }

// Verifier returns an Ed25519Verifier for this signer's own public key,
// a convenience for self-verification in tests.
func (s *Ed25519Signer) Verifier() *Ed25519Verifier {
	return NewEd25519Verifier(s.pubKey, s.keyID)
}
