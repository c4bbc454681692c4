package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// iso8601Layouts accepted ISO-8601 timestamp layouts, tried in order
//
// Layouts without a zone are read as UTC.
var iso8601Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// naiveISO8601Layout output layout for timestamps, always in UTC
const naiveISO8601Layout = "2006-01-02T15:04:05.999999"

/*
ParseISO8601 parse an ISO-8601 timestamp and normalize it to UTC

	@param value string - the timestamp string
	@returns the parsed timestamp in UTC
*/
func ParseISO8601(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range iso8601Layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("'%s' is not a valid ISO-8601 datetime", value)
}

// FormatISO8601 render a timestamp as a zone-less ISO-8601 string in UTC
func FormatISO8601(ts time.Time) string {
	return ts.UTC().Format(naiveISO8601Layout)
}

// ISO8601Time a timestamp carried over JSON as an ISO-8601 string
type ISO8601Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *ISO8601Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("datetime must be a string [%w]", err)
	}
	parsed, err := ParseISO8601(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (t ISO8601Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatISO8601(t.Time))
}
