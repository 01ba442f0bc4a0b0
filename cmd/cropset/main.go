package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biolsol/go-cropset/config"
	"github.com/biolsol/go-cropset/logging"
)

func main() {
	// Settings must exist before the subcommands are built because their
	// flag defaults come from viper, so the config path is taken from the
	// raw arguments rather than a parsed flag.
	settings, err := config.Load(configPathFromArgs(os.Args[1:]))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cropset: %v\n", err)
		os.Exit(1)
	}

	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "cropset",
		Short: "Annotation reconciliation and crop extraction pipeline",
		Long: `cropset merges detector prediction tables, resolves label names to ids,
filters annotation exports, splits COCO corpora per image, and extracts
padded object crops with metadata sidecars.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logLevel, settings.Debug)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "path to YAML settings file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		splitCommand(settings),
		reconcileCommand(settings),
		labelIDsCommand(settings),
		filterCommand(settings),
		cropCommand(settings),
		groupsCommand(settings),
		combineCSVCommand(settings),
		countsCommand(settings),
		combineMetaCommand(settings),
		resizeCommand(settings),
		iouCommand(settings),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configPathFromArgs extracts the value of --config from raw arguments,
// accepting both the space and the equals form.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// bindFlags registers the command's flags with viper so file settings and
// flags resolve through the same keys.
func bindFlags(cmd *cobra.Command) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		fmt.Fprintf(os.Stderr, "cropset: bind flags: %v\n", err)
	}
}
