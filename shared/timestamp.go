package shared

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Timestamp decodes whatever time format the backend sends. Values that don't parse are left zero
// rather than failing the surrounding decode.
type Timestamp struct {
	time.Time
}

// tried in order; layouts without a zone are read as UTC
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"2006-01-02",
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	t.Time = time.Time{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		t.Time = ParseTimestamp(s)
		return nil
	}

	if n, err := strconv.ParseFloat(string(b), 64); err == nil {
		t.Time = fromEpoch(n)
	}
	return nil
}

// ParseTimestamp returns the zero time when s matches no known layout.
func ParseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(n)
	}

	return time.Time{}
}

// values past 1e11 can only be milliseconds (year 5138 in seconds)
func fromEpoch(n float64) time.Time {
	if n <= 0 {
		return time.Time{}
	}
	if n > 1e11 {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec := int64(n)
	return time.Unix(sec, int64((n-float64(sec))*1e9)).UTC()
}
