package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "headsup",
	Short: "HeadsUp - a UCI adapter switching between two engines",
	Long: `HeadsUp speaks UCI on standard input and output and forwards each search
to one of two backend engines, chosen from the move number and the material
left on the board.

Without a subcommand headsup runs as a UCI engine. Point your GUI at the
binary and keep headsup.yaml next to it, or pass --config.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAdapter,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "headsup.yaml", "config file path")
}
