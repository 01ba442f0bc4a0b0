package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/coco"
	"github.com/biolsol/go-cropset/config"
)

// splitCommand splits a combined COCO corpus into one document per image.
func splitCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split <combined.json>",
		Short: "Split a combined COCO annotation file into per-image files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			splitter, err := coco.NewSplitter(coco.SplitterConfig{
				OutputDirectory:              settings.Output.Directory,
				IncludeOnlyUsedCategories:    settings.Split.IncludeOnlyUsedCategories,
				SkipImagesWithoutAnnotations: settings.Split.SkipImagesWithoutAnnotations,
			}, slog.Default())
			if err != nil {
				return errors.Wrap(err, "create splitter")
			}

			written := splitter.Split(args[0])
			slog.Info("split complete", "input", args[0], "files", len(written))
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Output.Directory, "output", viper.GetString("output.directory"), "directory for per-image files")
	cmd.Flags().BoolVar(&settings.Split.IncludeOnlyUsedCategories, "used-categories-only", viper.GetBool("split.includeonlyusedcategories"), "restrict each file's categories to those its annotations reference")
	cmd.Flags().BoolVar(&settings.Split.SkipImagesWithoutAnnotations, "skip-empty", viper.GetBool("split.skipimageswithoutannotations"), "skip images that have no annotations")
	bindFlags(cmd)

	return cmd
}
