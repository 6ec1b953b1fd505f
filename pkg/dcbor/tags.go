package dcbor

// Tag numbers used to discriminate envelope variants on the wire. The
// source specification explicitly puts tag-registry ownership out of
// core scope (spec.md §1); this module picks a small, internally
// consistent set rather than claiming real IANA registration (see
// SPEC_FULL.md §13, "CBOR tag numbers").
const (
	TagEnvelope        = 24800
	TagLeaf            = 24801
	TagKnownValue      = 24802
	TagAssertion       = 24803
	TagWrappedEnvelope = 24804
	TagCryptoMessage   = 24805
	TagCompressed      = 24806
	TagDigest          = 24807
)
