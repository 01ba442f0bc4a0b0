package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/tabular"
)

// filterCommand keeps only the annotation rows referenced by a labels CSV.
func filterCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <annotations.csv> <labels.csv> <output.csv>",
		Short: "Filter an annotation CSV to rows referenced by a labels CSV",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := tabular.FilterOptions{
				AnnotationIDColumn: settings.Filter.AnnotationIDColumn,
				LabelIDColumn:      settings.Filter.LabelIDColumn,
			}
			kept, err := tabular.FilterByLabels(args[0], args[1], args[2], opts)
			if err != nil {
				return err
			}
			slog.Info("filter complete", "kept", kept, "output", args[2])
			return nil
		},
	}

	cmd.Flags().StringVar(&settings.Filter.AnnotationIDColumn, "annotation-id-column", viper.GetString("filter.annotationidcolumn"), "id column in the annotations CSV")
	cmd.Flags().StringVar(&settings.Filter.LabelIDColumn, "label-id-column", viper.GetString("filter.labelidcolumn"), "annotation reference column in the labels CSV")
	bindFlags(cmd)

	return cmd
}
