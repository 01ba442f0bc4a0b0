package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/images"
)

// resizeCommand downscales every raster in a directory for sharing or upload.
func resizeCommand(settings *config.Settings) *cobra.Command {
	var target int

	cmd := &cobra.Command{
		Use:   "resize <image-dir>",
		Short: "Resize a directory of images to a maximum longest side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := images.ParseFormat(settings.Crop.Format)
			if err != nil {
				return err
			}
			processed, failed, err := images.ResizeDirectory(args[0], settings.Output.Directory,
				target, format, slog.Default())
			if err != nil {
				return err
			}
			slog.Info("resize complete", "processed", processed, "failed", failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Output.Directory, "output", viper.GetString("output.directory"), "directory for resized images")
	cmd.Flags().IntVar(&target, "target", 1280, "maximum pixels on the longer side")
	cmd.Flags().StringVar(&settings.Crop.Format, "format", viper.GetString("crop.format"), "output raster format (png or jpeg)")
	bindFlags(cmd)

	return cmd
}
