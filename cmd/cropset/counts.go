package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/tabular"
)

// countsCommand tallies the distinct values of one CSV column.
func countsCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counts <input.csv> <column>",
		Short: "Write a value-count summary for one column of a CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, err := tabular.CountColumnValues(args[0], settings.Output.Directory, args[1])
			if err != nil {
				return err
			}
			slog.Info("counts written", "output", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Output.Directory, "output", viper.GetString("output.directory"), "directory for the counts file")
	bindFlags(cmd)

	return cmd
}
