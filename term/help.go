package term

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var CmdDesc = map[string][2]string{
	"tui":     {"", "open the interactive feed and composer"},
	"feed":    {"f", "list posts"},
	"post":    {"p", "take a photo and post it"},
	"rm":      {"", "delete posts by id, or pick from the feed"},
	"snap":    {"", "capture a single frame to a jpeg file"},
	"config":  {"", "show or update settings"},
	"version": {"", "print the version"},
}

func PrintCmds(prefix string, cmds ...string) {
	printCmds(os.Stderr, prefix, []color.Attribute{color.Bold, color.FgHiWhite, color.BgCyan}, cmds...)
}

func printCmds(w io.Writer, prefix string, colors []color.Attribute, cmds ...string) {
	for _, cmd := range cmds {
		config, ok := CmdDesc[cmd]
		if !ok {
			continue
		}

		alias := config[0]
		desc := config[1]
		if alias != "" {
			if strings.HasPrefix(cmd, alias) {
				cmd = strings.Replace(cmd, alias, fmt.Sprintf("(%s)", alias), 1)
			} else {
				cmd = fmt.Sprintf("%s (%s)", cmd, alias)
			}
		}
		styled := color.New(colors...).Sprintf(" instavibe %s ", cmd)

		fmt.Fprintf(w, "%s%s 👉 %s\n", prefix, styled, desc)
	}
}

// PrintCustomHelp replaces cobra's default usage output.
func PrintCustomHelp() {
	builder := &strings.Builder{}

	color.New(color.Bold, color.BgGreen).Fprintln(builder, " Usage ")
	color.New(color.Bold).Fprintln(builder, "  instavibe [command] [flags]")
	fmt.Fprintln(builder)

	color.New(color.Bold, color.BgGreen).Fprintln(builder, " Help ")
	color.New(color.Bold).Fprintln(builder, "  instavibe help")
	color.New(color.Bold).Fprintln(builder, "  instavibe [command] --help")
	fmt.Fprintln(builder)

	color.New(color.Bold, color.BgMagenta).Fprintln(builder, " Posts ")
	printCmds(builder, " ", []color.Attribute{color.Bold}, "tui", "feed", "post", "rm")
	fmt.Fprintln(builder)

	color.New(color.Bold, color.BgBlue).Fprintln(builder, " Camera ")
	printCmds(builder, " ", []color.Attribute{color.Bold}, "snap")
	fmt.Fprintln(builder)

	color.New(color.Bold, color.BgBlue).Fprintln(builder, " Settings ")
	printCmds(builder, " ", []color.Attribute{color.Bold}, "config", "version")
	fmt.Fprintln(builder)

	fmt.Print(builder.String())
}
