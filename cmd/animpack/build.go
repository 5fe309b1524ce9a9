package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildFlags struct {
	manifest string
	output   string
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a resource pack from a manifest",
	Long: `Build reads a YAML manifest of skeletons and clips, validates every file
and writes them to a resource pack.

Example manifest:

  skeletons:
    - name: skeletons/arm
      file: assets/skeletons/arm.skeleton
  clips:
    - name: animations/wave
      file: assets/animations/wave.animation
      skeleton: skeletons/arm
      tags: [idle]`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildFlags.manifest, "manifest", "m", "animpack.yml", "manifest file")
	buildCmd.Flags().StringVarP(&buildFlags.output, "output", "o", "assets.res", "pack to write")
}

func runBuild(cmd *cobra.Command, args []string) error {
	manifest, err := LoadManifest(buildFlags.manifest)
	if err != nil {
		return err
	}
	summary, err := BuildPack(manifest, buildFlags.output)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", buildFlags.output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d skeletons, %d clips, %d tags\n",
		buildFlags.output, summary.Skeletons, summary.Clips, summary.Tags)
	return nil
}
