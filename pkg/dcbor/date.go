package dcbor

import (
	"fmt"
	"time"
)

// TagDate is the standard RFC 8949 §3.4.2 tag for epoch-based date/time
// (a numeric offset in seconds from the Unix epoch). Unlike the envelope
// variant tags in tags.go, this one is a real IANA-registered tag number,
// not a module-local choice: dates are ordinary dCBOR content, not part
// of the envelope variant discriminant.
const TagDate = 1

// Date wraps a point in time for use as an envelope leaf. Encoding
// truncates to whole seconds, matching the epoch-seconds representation
// tag 1 defines; sub-second precision is not preserved.
type Date struct {
	t time.Time
}

// NewDate wraps t as a Date leaf value.
func NewDate(t time.Time) Date { return Date{t: t.UTC()} }

// DateFromISO8601 parses an RFC-3339 / ISO-8601 string into a Date.
func DateFromISO8601(s string) (Date, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("dcbor: invalid ISO-8601 date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// Time returns the wrapped time, truncated to whole seconds.
func (d Date) Time() time.Time { return d.t.Truncate(time.Second) }

// ISO8601 renders the date as an RFC-3339 / ISO-8601 string in UTC.
func (d Date) ISO8601() string {
	return d.t.Truncate(time.Second).Format(time.RFC3339)
}

// MarshalCBOR implements cbor.Marshaler, encoding the date as tag 1
// wrapping the epoch-seconds integer.
func (d Date) MarshalCBOR() ([]byte, error) {
	return Marshal(Tag{Number: TagDate, Content: d.t.Truncate(time.Second).Unix()})
}

// UnmarshalCBOR implements cbor.Unmarshaler, decoding tag 1's numeric
// content as epoch seconds.
func (d *Date) UnmarshalCBOR(data []byte) error {
	var tag Tag
	if err := Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("dcbor: decoding date: %w", err)
	}
	if tag.Number != TagDate {
		return fmt.Errorf("dcbor: decoding date: expected tag %d, got %d", TagDate, tag.Number)
	}
	sec, ok := toInt64(tag.Content)
	if !ok {
		return fmt.Errorf("dcbor: decoding date: non-numeric content %T", tag.Content)
	}
	d.t = time.Unix(sec, 0).UTC()
	return nil
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}
