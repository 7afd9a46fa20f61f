package cmd

import (
	"instavibe/api"
	"instavibe/feed_tui"
	"instavibe/lib"
	"instavibe/term"

	"github.com/spf13/cobra"
)

var tuiDevice string
var tuiDevicePath string
var tuiQuality float64
var tuiTextOnly bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive feed and composer",
	Args:  cobra.NoArgs,
	Run:   runTui,
}

func init() {
	RootCmd.AddCommand(tuiCmd)

	for _, c := range []*cobra.Command{tuiCmd, RootCmd} {
		c.Flags().StringVar(&tuiDevice, "device", "", "Camera device: pattern, file, browser or browser-fake")
		c.Flags().StringVar(&tuiDevicePath, "device-path", "", "Image or directory of images for the file device")
		c.Flags().Float64Var(&tuiQuality, "quality", 0, "JPEG quality between 0 and 1 (default 0.8)")
		c.Flags().BoolVar(&tuiTextOnly, "text-only", false, "Post without a photo (legacy json upload)")
	}
}

func runTui(cmd *cobra.Command, args []string) {
	if !term.IsTerminal() {
		term.OutputErrorAndExit("The interactive feed needs a terminal. Try 'instavibe feed' instead.")
	}

	variant := lib.VariantPhoto
	if tuiTextOnly {
		variant = lib.VariantTextOnly
	}

	err := feedtui.StartFeedUI(cmd.Context(), feedtui.Options{
		Client:  api.Client,
		Device:  mustResolveDevice(tuiDevice, tuiDevicePath),
		Quality: resolveQuality(tuiQuality),
		Variant: variant,
		Aliases: aliases(),
	})
	if err != nil {
		term.OutputErrorAndExit("%v", err)
	}
}
