package term

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestGetDivisionLine(t *testing.T) {
	line := GetDivisionLine()
	n := utf8.RuneCountInString(line)

	assert.Greater(t, n, 0)
	assert.LessOrEqual(t, n, 80)
	assert.Equal(t, strings.Repeat("─", n), line)
}

