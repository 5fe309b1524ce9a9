package main

import (
	"fmt"
	"io"

	"github.com/spaghettifunk/anima-skeletal/engine/assets/loaders"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <pack>",
	Short: "List the skeletons, clips and tags in a pack",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	pack, err := loaders.OpenPack(args[0])
	if err != nil {
		return err
	}
	defer pack.Close()
	return listPack(cmd.OutOrStdout(), pack)
}

func listPack(w io.Writer, pack *loaders.PackLoader) error {
	for _, bucket := range []string{loaders.PackBucketSkeletons, loaders.PackBucketAnimations} {
		names, err := pack.Names(bucket)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s (%d)\n", bucket, len(names))
		for _, name := range names {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}

	tags, err := pack.Names(loaders.PackBucketTags)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s (%d)\n", loaders.PackBucketTags, len(tags))
	for _, tag := range tags {
		clips, err := pack.Tagged(tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s: %v\n", tag, clips)
	}
	return nil
}
