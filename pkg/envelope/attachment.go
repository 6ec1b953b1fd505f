package envelope

import "github.com/blockchaincommons/gordian-envelope/pkg/knownvalue"

// Attachment extension (SPEC_FULL.md §12): vendor-tagged auxiliary
// payloads attached to a subject via the 'attachment' known value,
// distinct from ordinary assertions in that they carry a vendor
// identifier and optional conformance info used to disambiguate.

// AddAttachment attaches payload to subject under the 'attachment'
// known value, tagging it with vendor and, if non-empty, a conformsTo
// identifier.
func AddAttachment(subject Envelope, payload any, vendor, conformsTo string) (Envelope, error) {
	attachmentKV, ok := knownvalue.ByName("attachment")
	if !ok {
		return nil, ErrInvalidAttachment
	}
	vendorKV, ok := knownvalue.ByName("vendor")
	if !ok {
		return nil, ErrInvalidAttachment
	}

	node, err := New(payload)
	if err != nil {
		return nil, err
	}
	node, err = AddAssertion(node, vendorKV, vendor)
	if err != nil {
		return nil, err
	}
	if conformsTo != "" {
		conformsKV, ok := knownvalue.ByName("conformsTo")
		if !ok {
			return nil, ErrInvalidAttachment
		}
		node, err = AddAssertion(node, conformsKV, conformsTo)
		if err != nil {
			return nil, err
		}
	}
	return AddAssertion(subject, attachmentKV, node)
}

// Attachments returns every 'attachment' assertion on subject.
func Attachments(subject Envelope) ([]Envelope, error) {
	attachmentKV, ok := knownvalue.ByName("attachment")
	if !ok {
		return nil, ErrInvalidAttachment
	}
	return AssertionsWithPredicate(subject, attachmentKV)
}

// AttachmentsWithVendor filters Attachments to those tagged with vendor.
func AttachmentsWithVendor(subject Envelope, vendor string) ([]Envelope, error) {
	vendorKV, ok := knownvalue.ByName("vendor")
	if !ok {
		return nil, ErrInvalidAttachment
	}
	all, err := Attachments(subject)
	if err != nil {
		return nil, err
	}
	var out []Envelope
	for _, a := range all {
		assertion, ok := a.(*Assertion)
		if !ok {
			continue
		}
		// AddAttachment's payload node arrives wrapped as the assertion's
		// object; its vendor assertion sits on the inner node.
		obj := assertion.Object()
		if w, ok := obj.(*Wrapped); ok {
			obj = w.Inner()
		}
		v, err := ExtractObjectForPredicate[string](obj, vendorKV)
		if err != nil {
			continue
		}
		if v == vendor {
			out = append(out, a)
		}
	}
	return out, nil
}

// Attachment requires exactly one attachment tagged with vendor.
func Attachment(subject Envelope, vendor string) (Envelope, error) {
	matches, err := AttachmentsWithVendor(subject, vendor)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrNonexistentAttachment
	case 1:
		return matches[0], nil
	default:
		return nil, ErrAmbiguousAttachment
	}
}
