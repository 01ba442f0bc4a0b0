package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/reconcile"
)

// reconcileCommand merges two detectors' prediction CSVs.
func reconcileCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile <primary.csv> <secondary.csv> <output.csv>",
		Short: "Merge two prediction CSVs into a single reconciled table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := reconcile.Config{
				PrimaryThreshold:   settings.Reconcile.PrimaryThreshold,
				SecondaryThreshold: settings.Reconcile.SecondaryThreshold,
				SentinelLabelID:    settings.Reconcile.SentinelLabelID,
				SentinelUserID:     settings.Reconcile.SentinelUserID,
				SentinelConfidence: settings.Reconcile.SentinelConfidence,
			}

			stats, err := reconcile.Merge(args[0], args[1], args[2], cfg)
			if err != nil {
				return err
			}
			slog.Info("reconcile complete",
				"rows", stats.Processed,
				"replaced", stats.Replaced,
				"unclassified", stats.ForcedUnclassified)
			return nil
		},
	}

	cmd.Flags().Float64Var(&settings.Reconcile.PrimaryThreshold, "primary-threshold", viper.GetFloat64("reconcile.primarythreshold"), "confidence below which a primary prediction is weak")
	cmd.Flags().Float64Var(&settings.Reconcile.SecondaryThreshold, "secondary-threshold", viper.GetFloat64("reconcile.secondarythreshold"), "confidence a secondary prediction needs to replace a weak primary")
	cmd.Flags().StringVar(&settings.Reconcile.SentinelLabelID, "sentinel-label", viper.GetString("reconcile.sentinellabelid"), "label id written for unclassified rows")
	cmd.Flags().StringVar(&settings.Reconcile.SentinelUserID, "sentinel-user", viper.GetString("reconcile.sentineluserid"), "user id written for unclassified rows")
	cmd.Flags().StringVar(&settings.Reconcile.SentinelConfidence, "sentinel-confidence", viper.GetString("reconcile.sentinelconfidence"), "confidence written for unclassified rows")
	bindFlags(cmd)

	return cmd
}
