package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/cropper"
)

// combineMetaCommand merges per-group metadata documents of one sample.
func combineMetaCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combinemeta <dir> <sample-stem>",
		Short: "Merge a sample's per-group metadata files into one document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, err := cropper.CombineMetadata(args[0], args[1], slog.Default())
			if err != nil {
				return err
			}
			slog.Info("metadata combined", "output", outputPath)
			return nil
		},
	}
	return cmd
}
