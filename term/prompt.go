package term

import (
	"fmt"
	"os"
	"strings"

	"github.com/cqroot/prompt"
	"github.com/eiannone/keyboard"
	"github.com/fatih/color"
)

// GetRequiredUserStringInput keeps asking until the trimmed answer is non-empty.
func GetRequiredUserStringInput(msg, requiredMsg string) (string, error) {
	res, err := GetUserStringInput(msg)
	if err != nil {
		return "", fmt.Errorf("failed to get user input: %s", err)
	}

	res = strings.TrimSpace(res)
	if res == "" {
		color.New(color.Bold, ColorHiRed).Println("🚨 " + requiredMsg)
		return GetRequiredUserStringInput(msg, requiredMsg)
	}

	return res, nil
}

func GetUserStringInput(msg string) (string, error) {
	res, err := prompt.New().Ask(msg).Input("")

	if err != nil && err.Error() == "user quit prompt" {
		os.Exit(0)
	}

	return res, err
}

func GetUserKeyInput() (rune, error) {
	if err := keyboard.Open(); err != nil {
		return 0, fmt.Errorf("failed to open keyboard: %s", err)
	}
	defer func() {
		_ = keyboard.Close()
	}()

	char, _, err := keyboard.GetKey()
	if err != nil {
		return 0, fmt.Errorf("failed to read keypress: %s", err)
	}

	return char, nil
}

func ConfirmYesNo(fmtStr string, fmtArgs ...interface{}) (bool, error) {
	color.New(ColorHiMagenta, color.Bold).Printf(fmtStr+" (y)es | (n)o", fmtArgs...)
	color.New(ColorHiMagenta, color.Bold).Print("> ")

	char, err := GetUserKeyInput()
	if err != nil {
		return false, fmt.Errorf("failed to get user input: %s", err)
	}

	fmt.Println(string(char))
	switch char {
	case 'y', 'Y':
		return true, nil
	case 'n', 'N':
		return false, nil
	}

	fmt.Println()
	color.New(ColorHiRed, color.Bold).Print("Invalid input.\nEnter 'y' for yes or 'n' for no.\n\n")
	return ConfirmYesNo(fmtStr, fmtArgs...)
}
