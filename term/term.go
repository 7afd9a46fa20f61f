package term

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
)

func ClearCurrentLine() {
	if !IsTerminal() {
		return
	}
	fmt.Print("\033[2K\r")
}

func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func GetDivisionLine() string {
	return strings.Repeat("─", min(GetTerminalWidth(), 80))
}

func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		log.Println("Error fetching terminal size:", err)
		return 50
	}
	return width
}

// Wrap word-wraps s to width, leaving at least a minimal column when the terminal is tiny.
func Wrap(s string, width int) string {
	if width < 10 {
		width = 10
	}
	return wordwrap.String(s, width)
}
