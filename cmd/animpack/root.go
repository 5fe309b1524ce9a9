package main

import (
	"fmt"
	"os"

	"github.com/spaghettifunk/anima-skeletal/engine/core"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "animpack",
	Short: "Build and inspect animation resource packs",
	Long: `animpack validates animation clips and skeletons and stores them in a
resource pack. Clips listed with a skeleton are bound against it while the
pack is built, so a joint mismatch fails the build instead of the game.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			core.SetLogLevel(core.DebugLevel)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
