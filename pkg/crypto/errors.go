package crypto

import "errors"

// ErrUnknownKey is returned when a key version or key ID has no matching
// entry in a KeyRing or Keystore.
var ErrUnknownKey = errors.New("crypto: unknown key")
