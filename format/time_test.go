package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRelative(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{90 * time.Second, "1m ago"},
		{45 * time.Minute, "45m ago"},
		{90 * time.Minute, "1h ago"},
		{5 * time.Hour, "5h ago"},
		{30 * time.Hour, "yesterday"},
		{3 * Day, "3d ago"},
		{8 * Day, "1w ago"},
		{20 * Day, "2w ago"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Relative(now.Add(-tt.ago), now), tt.ago.String())
	}

	assert.Equal(t, "5m from now", Relative(now.Add(5*time.Minute), now))

	old := now.Add(-60 * Day)
	assert.Equal(t, old.Local().Format("Jan 2 2006"), Relative(old, now))
}

func TestTimeZero(t *testing.T) {
	assert.Equal(t, "", Time(time.Time{}))
}

func TestTimestamp(t *testing.T) {
	assert.Equal(t, "unknown time", Timestamp(time.Time{}))

	ts := time.Date(2024, 5, 1, 15, 4, 0, 0, time.Local)
	assert.Equal(t, "May 1, 2024 3:04 PM", Timestamp(ts))
}
