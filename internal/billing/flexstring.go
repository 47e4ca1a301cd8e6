package billing

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// FlexString is a string field whose wire value may arrive as either a JSON
// string or a JSON number. The Alibaba amortized-cost API is known to send
// account/owner identifiers both ways; ingestion coerces them to string so
// downstream code never branches on the wire type.
type FlexString string

// UnmarshalJSON accepts a string, a number, or null. Numbers keep their
// literal text (no float round-trip, so large IDs stay exact).
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(data)
	return nil
}

// MarshalJSON always emits a JSON string
func (s FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// String returns the underlying value
func (s FlexString) String() string { return string(s) }
