package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// Count is a non-fractional quantity read from the stored documents.  The
// club and competition files keep points and numberOfPlaces as strings
// ("13"), but older files and hand edits contain plain numbers, so decoding
// accepts both.  Anything that cannot be read as an integer decodes to 0
// instead of failing the whole document.
//
// Count encodes back to a JSON string so rewritten files keep the layout
// of the originals.
type Count int

// ParseCount converts a raw submitted value into an int.  Leading and
// trailing whitespace is ignored; any other malformation yields def.
// Integers beyond the int32 range saturate, see ParseCountStrict.
func ParseCount(raw string, def int) int {
	n, err := ParseCountStrict(raw)
	if err != nil {
		return def
	}
	return n
}

// ParseCountStrict parses raw as a base-10 integer, ignoring surrounding
// whitespace.  A well-formed integer outside the int32 range is clamped to
// math.MaxInt32 or math.MinInt32, so "99999999999999999999" is a very
// large request rather than a malformed one.
func ParseCountStrict(raw string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	// On ErrRange, n is already saturated to the int64 bound of its sign.
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32, nil
	case n < math.MinInt32:
		return math.MinInt32, nil
	}
	return int(n), nil
}

// UnmarshalJSON implements json.Unmarshaler with the coercion rules above.
func (c *Count) UnmarshalJSON(data []byte) error {
	*c = Count(coerceJSONInt(data))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Count) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(c)))
}

// Int returns the count as a plain int.
func (c Count) Int() int { return int(c) }

// coerceJSONInt reads a raw JSON value as an integer.  Strings are parsed and
// numbers are truncated toward zero.  Values outside the int32 range and
// every other kind of value are 0.
func coerceJSONInt(data []byte) int {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return 0
		}
		return int(n)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0
		}
		if f > math.MaxInt32 || f < math.MinInt32 {
			return 0
		}
		return int(f)
	default:
		return 0
	}
}
