package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Path is a sequence of field names or array indices.
//
// In JSON it is written either as an array of segments, ["message", "text"],
// or as a dotted string, "message.text".
type Path []string

// ParsePath splits a dotted path. The empty string is the empty path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	return Path(strings.Split(s, "."))
}

// String returns the dotted form of the path.
func (p Path) String() string {
	return strings.Join(p, ".")
}

// UnmarshalJSON accepts a dotted string or an array of strings and numbers.
func (p *Path) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Path{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParsePath(s)
		return nil
	}

	var raw []any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("path: expected string or array: %w", err)
	}

	out := make(Path, 0, len(raw))
	for _, seg := range raw {
		switch v := seg.(type) {
		case string:
			out = append(out, v)
		case json.Number:
			out = append(out, v.String())
		default:
			return fmt.Errorf("path: unsupported segment %v", seg)
		}
	}
	*p = out
	return nil
}

// MarshalJSON writes the path as an array of segments.
func (p Path) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(p))
}
