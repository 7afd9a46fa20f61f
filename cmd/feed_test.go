package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFeedFooter(t *testing.T) {
	assert.Equal(t, "1 post", feedFooter(1, 1, ""))
	assert.Equal(t, "3 posts", feedFooter(3, 3, ""))
	assert.Equal(t, `1 of 3 posts match "sun"`, feedFooter(1, 3, "sun"))
}

func TestJsonTime(t *testing.T) {
	assert.Empty(t, jsonTime(time.Time{}))
	assert.Equal(t, "2024-05-01T12:00:00Z", jsonTime(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}
