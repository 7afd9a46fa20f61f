package term

import (
	"os"

	"github.com/fatih/color"
	"github.com/plandex-ai/survey/v2"
)

func SelectFromList(msg string, options []string) (string, error) {
	var selected string
	prompt := &survey.Select{
		Message:  color.New(ColorHiMagenta, color.Bold).Sprint(msg),
		Options:  options,
		PageSize: 10,
	}
	err := survey.AskOne(prompt, &selected)
	if err != nil {
		if err.Error() == "interrupt" {
			os.Exit(0)
		}
		return "", err
	}

	return selected, nil
}

// SelectIndex is SelectFromList for labels that may repeat.
func SelectIndex(msg string, options []string) (int, error) {
	var idx int
	prompt := &survey.Select{
		Message:  color.New(ColorHiMagenta, color.Bold).Sprint(msg),
		Options:  options,
		PageSize: 10,
	}
	err := survey.AskOne(prompt, &idx)
	if err != nil {
		if err.Error() == "interrupt" {
			os.Exit(0)
		}
		return -1, err
	}

	return idx, nil
}
