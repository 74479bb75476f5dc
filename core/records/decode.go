package records

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Source exports write integers as 3, 3.0 or "3" depending on the tool that
// produced them. The helpers here read all three and never fail a decode.

// wholeNumber parses a JSON number or numeric string holding an integral value
func wholeNumber(data []byte) (int, bool) {
	f, ok := jsonNumber(data)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// jsonNumber reads a JSON number, or a string that parses as one
func jsonNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0, false
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// truthy applies JavaScript truthiness to a raw JSON value: false, null, 0 and
// the empty string are false, everything else is true.
func truthy(data []byte) bool {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return false
	}
	switch data[0] {
	case 'n', 'f':
		return false
	case 't', '[', '{':
		return true
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return false
		}
		return s != ""
	}
	f, err := strconv.ParseFloat(string(data), 64)
	return err == nil && f != 0
}

// looseInt is an integer field that tolerates float and string encodings.
// Anything unreadable decodes as 0.
type looseInt int

// UnmarshalJSON implements json.Unmarshaler
func (n *looseInt) UnmarshalJSON(data []byte) error {
	v, _ := wholeNumber(data)
	*n = looseInt(v)
	return nil
}

// IDList is a list of record IDs. Elements that are not integral numbers are
// dropped, and a non-array value reads as an empty list.
type IDList []int

// UnmarshalJSON implements json.Unmarshaler
func (l *IDList) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		*l = nil
		return nil
	}
	out := make(IDList, 0, len(items))
	for _, it := range items {
		if id, ok := wholeNumber(it); ok {
			out = append(out, id)
		}
	}
	*l = out
	return nil
}

// Truthy is an indicator read with JavaScript truthiness, so "Sí" and 2 are
// set and "", 0 and null are not.
type Truthy bool

// UnmarshalJSON implements json.Unmarshaler
func (t *Truthy) UnmarshalJSON(data []byte) error {
	*t = Truthy(truthy(data))
	return nil
}
