package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fixtest",
	Short: "Scripted editing and assertion harness for analyzer fixtures",
	Long: `fixtest loads an annotated multi-file fixture, replays a Lua edit
script against it, and checks the resulting analyzer diagnostics and
document state against the fixture's markers and ranges.`,
}

func init() {
	rootCmd.AddCommand(runCmd)

	rootCmd.PersistentFlags().String("config", "fixtest.toml", "path to the TOML options file")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colorized failure output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
