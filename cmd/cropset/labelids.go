package main

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/labels"
)

// labelIDsCommand resolves label names in a CSV to label tree ids.
func labelIDsCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "labelids <labeltree.json> <input.csv> <output.csv>",
		Short: "Replace label names with ids from a label tree export",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, err := labels.BuildMapping(args[0])
			if err != nil {
				return errors.Wrap(err, "build label mapping")
			}

			opts := labels.ConvertOptions{
				NameColumn:        settings.Labels.NameColumn,
				IDColumn:          settings.Labels.IDColumn,
				Strict:            settings.Labels.Strict,
				MissingReportPath: settings.Labels.MissingReport,
				Logger:            slog.Default(),
			}
			result, err := labels.Convert(args[1], args[2], mapping, opts)
			if err != nil {
				return err
			}
			slog.Info("label conversion complete",
				"input", args[1],
				"converted", result.Converted,
				"unresolved", len(result.Missing))
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Labels.NameColumn, "name-column", viper.GetString("labels.namecolumn"), "input column holding label names")
	cmd.Flags().StringVar(&settings.Labels.IDColumn, "id-column", viper.GetString("labels.idcolumn"), "output column name for resolved ids")
	cmd.Flags().BoolVar(&settings.Labels.Strict, "strict", viper.GetBool("labels.strict"), "fail instead of passing unresolved names through")
	cmd.Flags().StringVar(&settings.Labels.MissingReport, "missing-report", viper.GetString("labels.missingreport"), "optional CSV path listing unresolved names")
	bindFlags(cmd)

	return cmd
}
