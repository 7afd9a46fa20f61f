package cmd

import (
	"os"

	"instavibe/api"
	"instavibe/config"
	"instavibe/fs"
	"instavibe/term"

	"github.com/spf13/cobra"
)

var apiFlag string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   `instavibe [command] [flags]`,
	Short: "instavibe: share photos from your terminal",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		mustResolveConfig()
	},
	Run: func(cmd *cobra.Command, args []string) {
		runTui(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.ExecuteContext(rootContext()); err != nil {
		term.OutputErrorAndExit("Error executing root command: %v", err)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "Backend base url (overrides config and INSTAVIBE_API_URL)")

	RootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != RootCmd {
			cmd.Println(cmd.UsageString())
			return
		}
		term.PrintCustomHelp()
	})
}

func mustResolveConfig() {
	cfg, err := config.Load(fs.ConfigPath, apiFlag)
	if err != nil {
		term.OutputErrorAndExit("Error loading config: %v", err)
	}
	config.Current = cfg
	api.Init(cfg.ApiUrl)
}

func isInteractive() bool {
	return term.IsTerminal() && os.Getenv("CI") == ""
}
