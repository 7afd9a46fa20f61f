package term

import (
	"fmt"
	"os"
	"strings"

	"instavibe/shared"

	"github.com/fatih/color"
)

func OutputSimpleError(msg string, args ...interface{}) {
	msg = fmt.Sprintf(msg, args...)
	fmt.Fprintln(os.Stderr, color.New(ColorHiRed, color.Bold).Sprint("🚨 "+shared.Capitalize(msg)))
}

func OutputErrorAndExit(msg string, args ...interface{}) {
	StopSpinner()
	fmt.Fprintln(os.Stderr, FormatError(fmt.Sprintf(msg, args...)))
	os.Exit(1)
}

// FormatError renders a "a: b: c" error chain as an indented list, dropping repeated parts.
func FormatError(msg string) string {
	errorParts := strings.Split(msg, ": ")
	if len(errorParts) < 2 {
		return color.New(ColorHiRed, color.Bold).Sprint("🚨 " + shared.Capitalize(msg))
	}

	var b strings.Builder
	seen := map[string]bool{}
	i := 0
	for _, part := range errorParts {
		key := strings.ToLower(strings.TrimSpace(part))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		if i == 0 {
			b.WriteString(color.New(ColorHiRed, color.Bold).Sprint("🚨 " + shared.Capitalize(part)))
		} else {
			b.WriteString("\n")
			b.WriteString(strings.Repeat("  ", i))
			b.WriteString("→ " + shared.Capitalize(part))
		}
		i++
	}

	return b.String()
}

// HandleApiError exits with the message a user should see for a failed call.
func HandleApiError(prefix string, apiErr *shared.ApiError) {
	StopSpinner()

	if apiErr.Type == shared.ApiErrorTypeServerTransient {
		OutputSimpleError("%s", prefix)
		fmt.Fprintln(os.Stderr, "The backend might be waking up. Please try again in 30 seconds.")
		os.Exit(1)
	}

	if apiErr.Type == shared.ApiErrorTypeNetwork {
		OutputErrorAndExit("%s: Network error. Please check your internet connection: %s", prefix, apiErr.Msg)
	}

	if apiErr.Msg == "" {
		OutputErrorAndExit("%s: %s", prefix, apiErr.Error())
	}
	OutputErrorAndExit("%s: %s", prefix, apiErr.Msg)
}
