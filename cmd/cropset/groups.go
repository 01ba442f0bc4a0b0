package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/cropper"
	"github.com/biolsol/go-cropset/images"
)

// groupsCommand crops pixel groups of a segmented sample.
func groupsCommand(settings *config.Settings) *cobra.Command {
	var useNonWhiteCenter bool

	cmd := &cobra.Command{
		Use:   "groups <segmentation.csv> <raw-image> <no-background-image>",
		Short: "Crop each pixel group of a segmented sample with metadata",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pixels, err := cropper.LoadSegmentation(args[0])
			if err != nil {
				return err
			}
			format, err := images.ParseFormat(settings.Crop.Format)
			if err != nil {
				return err
			}

			sampleName := strings.TrimSuffix(images.Stem(args[1]), "_raw")

			g, err := cropper.NewGroupCropper(pixels, args[1], args[2], sampleName, cropper.GroupConfig{
				OutputDirectory:   settings.Output.Directory,
				Padding:           settings.Crop.Padding,
				Format:            format,
				UseNonWhiteCenter: useNonWhiteCenter,
			}, slog.Default())
			if err != nil {
				return err
			}

			result := g.ProcessAll()
			slog.Info("group crops complete", "processed", result.Processed, "failed", result.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Output.Directory, "output", viper.GetString("output.directory"), "directory for crops and metadata")
	cmd.Flags().IntVar(&settings.Crop.Padding, "padding", viper.GetInt("crop.padding"), "pixels of context added around each group box, clamped per edge")
	cmd.Flags().StringVar(&settings.Crop.Format, "format", viper.GetString("crop.format"), "crop raster format (png or jpeg)")
	cmd.Flags().BoolVar(&useNonWhiteCenter, "non-white-center", false, "move a white box center to the closest non-white group pixel")
	bindFlags(cmd)

	return cmd
}
