// Adapted from https://raw.githubusercontent.com/dustin/go-humanize/master/times.go

package format

import (
	"fmt"
	"sort"
	"time"
)

const (
	Day   = 24 * time.Hour
	Week  = 7 * Day
	Month = 30 * Day
)

const TimestampLayout = "Jan 2, 2006 3:04 PM"

// Time formats a post time relative to now, e.g. "3h ago".
func Time(then time.Time) string {
	if then.IsZero() {
		return ""
	}
	return Relative(then, time.Now())
}

// Relative formats then as seen from now. Past a month it falls back to the date.
func Relative(then, now time.Time) string {
	return customRelTime(then.UTC(), now.UTC(), "ago", "from now", defaultMagnitudes)
}

// Timestamp is the absolute local time shown next to each post.
func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Local().Format(TimestampLayout)
}

// A relTimeMagnitude switches to Format once the difference reaches D.
// Format may hold a "%d" for diff/DivBy and a "%s" for the label;
// a DivBy of 1 means Format takes only the label.
type relTimeMagnitude struct {
	D      time.Duration
	Format string
	DivBy  time.Duration
}

var defaultMagnitudes = []relTimeMagnitude{
	{time.Minute, "just now", 0},
	{2 * time.Minute, "1m %s", 1},
	{time.Hour, "%dm %s", time.Minute},
	{2 * time.Hour, "1h %s", 1},
	{Day, "%dh %s", time.Hour},
	{2 * Day, "yesterday", 0},
	{Week, "%dd %s", Day},
	{2 * Week, "1w %s", 1},
	{Month, "%dw %s", Week},
}

func customRelTime(a, b time.Time, albl, blbl string, magnitudes []relTimeMagnitude) string {
	lbl := albl
	diff := b.Sub(a)

	if a.After(b) {
		lbl = blbl
		diff = a.Sub(b)
	}

	if diff >= magnitudes[len(magnitudes)-1].D {
		return a.Local().Format("Jan 2 2006")
	}

	n := sort.Search(len(magnitudes), func(i int) bool {
		return magnitudes[i].D > diff
	})
	mag := magnitudes[n]

	switch mag.DivBy {
	case 0:
		return mag.Format
	case 1:
		return fmt.Sprintf(mag.Format, lbl)
	}
	return fmt.Sprintf(mag.Format, diff/mag.DivBy, lbl)
}
