package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/cropper"
	"github.com/biolsol/go-cropset/images"
)

// cropCommand extracts per-annotation crops from per-image COCO files.
func cropCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crop <image.json>...",
		Short: "Extract padded object crops from per-image annotation files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := images.ParseFormat(settings.Crop.Format)
			if err != nil {
				return err
			}
			cfg := cropper.Config{
				OutputDirectory:  settings.Output.Directory,
				Padding:          settings.Crop.Padding,
				NormalizeCoords:  settings.Crop.Normalize,
				UseBBox:          settings.Crop.UseBBox,
				Format:           format,
				NoBackgroundPath: settings.Crop.NoBackgroundPath,
			}

			var processed, failed int
			for _, jsonPath := range args {
				c, err := cropper.NewAnnotationCropper(jsonPath, cfg, slog.Default())
				if err != nil {
					return errors.Wrapf(err, "open %s", jsonPath)
				}
				result := c.ProcessAll()
				processed += result.Processed
				failed += result.Failed
			}
			slog.Info("crop complete", "processed", processed, "failed", failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Output.Directory, "output", viper.GetString("output.directory"), "directory for crops and sidecars")
	cmd.Flags().IntVar(&settings.Crop.Padding, "padding", viper.GetInt("crop.padding"), "pixels of context added around each box, clamped per edge")
	cmd.Flags().BoolVar(&settings.Crop.Normalize, "normalize", viper.GetBool("crop.normalize"), "write sidecar coordinates as fractions of the full image")
	cmd.Flags().BoolVar(&settings.Crop.UseBBox, "use-bbox", viper.GetBool("crop.usebbox"), "prefer the annotation bbox over its segmentation polygon")
	cmd.Flags().StringVar(&settings.Crop.Format, "format", viper.GetString("crop.format"), "crop raster format (png or jpeg)")
	cmd.Flags().StringVar(&settings.Crop.NoBackgroundPath, "no-background", viper.GetString("crop.nobackgroundpath"), "optional co-registered background-removed raster to crop alongside")
	bindFlags(cmd)

	return cmd
}
