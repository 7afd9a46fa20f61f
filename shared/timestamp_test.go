package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2024-05-01T12:00:00Z"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"offset", `"2024-05-01T14:00:00+02:00"`, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"no zone micros", `"2024-05-01T12:34:56.789012"`, time.Date(2024, 5, 1, 12, 34, 56, 789012000, time.UTC)},
		{"no zone", `"2024-05-01T12:34:56"`, time.Date(2024, 5, 1, 12, 34, 56, 0, time.UTC)},
		{"space separated", `"2024-05-01 12:34:56"`, time.Date(2024, 5, 1, 12, 34, 56, 0, time.UTC)},
		{"date only", `"2024-05-01"`, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"epoch seconds", `1714566896`, time.Unix(1714566896, 0).UTC()},
		{"epoch millis", `1714566896123`, time.UnixMilli(1714566896123).UTC()},
		{"epoch string", `"1714566896"`, time.Unix(1714566896, 0).UTC()},
		{"null", `null`, time.Time{}},
		{"unparseable", `"next tuesday"`, time.Time{}},
		{"object", `{"$date":"x"}`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v", ts.Time)
		})
	}
}

func TestPostDecodeKeepsOtherFieldsOnBadTime(t *testing.T) {
	var p Post
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"p1","username":"alice","upload_time":"garbage"}`), &p))
	assert.Equal(t, "p1", p.Id)
	assert.Equal(t, "alice", p.Username)
	assert.True(t, p.UploadedAt.IsZero())
}

func TestTimestampMarshalRoundTrip(t *testing.T) {
	in := Post{Id: "p1", UploadedAt: NewTimestamp(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"upload_time":"2024-05-01T12:00:00Z"`)

	var out Post
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.True(t, in.UploadedAt.Equal(out.UploadedAt.Time))
}
