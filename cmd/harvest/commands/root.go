package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	configPath *string
	verbose    *bool
	dumpHttp   *string
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file, <name>.local.json5 overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug information.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every http message exchanged with BGA to this directory.")
}

var rootCmd = &cobra.Command{
	Use:   "harvest",
	Short: "harvest collects finished Gaia Project matches from Board Game Arena.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initSlog(*verbose)
	},
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
