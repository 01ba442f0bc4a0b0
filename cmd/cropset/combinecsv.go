package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/tabular"
)

// combineCSVCommand concatenates matching CSV exports under a directory.
func combineCSVCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combinecsv <dir>",
		Short: "Combine same-schema CSV files from a directory into one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath := filepath.Join(args[0], settings.Combine.OutputName)
			rows, err := tabular.CombineDirectory(args[0], settings.Combine.MatchText, outputPath)
			if err != nil {
				return err
			}
			slog.Info("combine complete", "rows", rows, "output", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Combine.MatchText, "match", viper.GetString("combine.matchtext"), "substring file names must contain to be included")
	cmd.Flags().StringVar(&settings.Combine.OutputName, "output-name", viper.GetString("combine.outputname"), "name of the combined file, written into the directory")
	bindFlags(cmd)

	return cmd
}
