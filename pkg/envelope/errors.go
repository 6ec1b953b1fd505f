package envelope

import "errors"

// Error kinds, per spec.md §7. These are sentinels so callers can use
// errors.Is; concrete errors wrap one of these with additional context
// via fmt.Errorf's %w verb.
var (
	ErrInvalidFormat             = errors.New("envelope: invalid format")
	ErrNotLeaf                   = errors.New("envelope: not a leaf")
	ErrNotAssertion              = errors.New("envelope: not an assertion")
	ErrNotKnownValue             = errors.New("envelope: not a known value")
	ErrMissingDigest             = errors.New("envelope: missing embedded digest")
	ErrInvalidDigest             = errors.New("envelope: candidate digest does not match")
	ErrNonexistentPredicate      = errors.New("envelope: no assertion matches predicate")
	ErrAmbiguousPredicate        = errors.New("envelope: multiple assertions match predicate")
	ErrUnverifiedSignature       = errors.New("envelope: unverified signature")
	ErrUnverifiedInnerSignature  = errors.New("envelope: unverified inner signature")
	ErrInvalidSignatureType      = errors.New("envelope: invalid signature type")
	ErrInvalidInnerSignatureType = errors.New("envelope: invalid inner signature type")
	ErrInvalidOuterSignatureType = errors.New("envelope: invalid outer signature type")
	ErrInvalidAttachment         = errors.New("envelope: invalid attachment")
	ErrNonexistentAttachment     = errors.New("envelope: no attachment matches")
	ErrAmbiguousAttachment       = errors.New("envelope: multiple attachments match")
	ErrEmptyNode                 = errors.New("envelope: node must have at least one assertion")
	ErrNotObscured               = errors.New("envelope: operation requires an obscured envelope")
	ErrAlreadyObscured           = errors.New("envelope: cannot obscure an already-obscured envelope")
	ErrTargetNotFound            = errors.New("envelope: target digest not found in tree")
)
