package term

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestFormatError(t *testing.T) {
	color.NoColor = true

	assert.Equal(t, "🚨 Upload failed", FormatError("upload failed"))
	assert.Equal(t,
		"🚨 Error creating post\n  → Bad request\n    → Missing caption",
		FormatError("error creating post: Bad request: Missing caption"),
	)
	assert.Equal(t,
		"🚨 Error loading feed\n  → Timeout",
		FormatError("error loading feed: timeout: Timeout"),
	)
}
