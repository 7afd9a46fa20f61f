package cmd

import (
	"fmt"
	"sort"

	"instavibe/config"
	"instavibe/fs"
	"instavibe/term"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	Run:   showConfig,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	Run:   showConfig,
}

var setApiCmd = &cobra.Command{
	Use:   "set-api <url>",
	Short: "Save the backend url to the config file",
	Args:  cobra.ExactArgs(1),
	Run:   setApi,
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(setApiCmd)
}

func showConfig(cmd *cobra.Command, args []string) {
	cfg := config.Current
	bold := color.New(color.Bold)

	fmt.Printf("%s %s %s\n", bold.Sprint("api:"), cfg.ApiUrl, color.New(color.FgHiBlack).Sprintf("(from %s)", cfg.ApiUrlSource))
	fmt.Printf("%s %s\n", bold.Sprint("config file:"), fs.ConfigPath)
	fmt.Printf("%s %s\n", bold.Sprint("log file:"), fs.LogPath)

	device := cfg.Device
	if device == "" {
		device = defaultDeviceKind + " (default)"
	}
	if cfg.DevicePath != "" {
		device += " " + cfg.DevicePath
	}
	fmt.Printf("%s %s\n", bold.Sprint("camera:"), device)
	fmt.Printf("%s %.2f\n", bold.Sprint("quality:"), resolveQuality(0))

	if len(cfg.Aliases) > 0 {
		fmt.Println(bold.Sprint("aliases:"))
		names := make([]string, 0, len(cfg.Aliases))
		for name := range cfg.Aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s → %s\n", name, cfg.Aliases[name])
		}
	}
}

func setApi(cmd *cobra.Command, args []string) {
	apiUrl, err := config.NormalizeApiUrl(args[0])
	if err != nil {
		term.OutputErrorAndExit("%v", err)
	}

	fileCfg, err := config.LoadFromFile(fs.ConfigPath)
	if err != nil {
		term.OutputErrorAndExit("%v", err)
	}
	fileCfg.ApiUrl = apiUrl

	if err := config.SaveToFile(fileCfg, fs.ConfigPath); err != nil {
		term.OutputErrorAndExit("%v", err)
	}

	fmt.Println("✅ Backend url set to " + apiUrl)
	if config.Current.ApiUrlSource == config.SourceEnv || config.Current.ApiUrlSource == config.SourceFlag {
		color.New(term.ColorHiYellow).Printf("Note: %s still takes precedence over the config file\n", config.Current.ApiUrlSource)
	}
}
