package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/coco"
	"github.com/biolsol/go-cropset/config"
)

// iouCommand matches the boxes of two annotation documents by overlap.
func iouCommand(settings *config.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iou <candidate.json> <reference.json> <output.csv>",
		Short: "Match two documents' boxes by IoU and write a pairing report",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := coco.MatchFiles(args[0], args[1], args[2],
				float32(settings.Match.IoUThreshold))
			if err != nil {
				return err
			}

			matched := 0
			for _, m := range matches {
				if m.ReferenceID != "" {
					matched++
				}
			}
			slog.Info("iou matching complete",
				"candidates", len(matches),
				"matched", matched,
				"unmatched", len(matches)-matched)
			return nil
		},
	}

	cmd.Flags().Float64Var(&settings.Match.IoUThreshold, "iou-threshold", viper.GetFloat64("match.iouthreshold"), "minimum IoU for two boxes to count as the same object")
	bindFlags(cmd)

	return cmd
}
