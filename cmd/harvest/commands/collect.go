package commands

import (
	"log/slog"

	"gaiaharvest/internal/collector"
	"gaiaharvest/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var topCount *int

func init() {
	topCount = topCmd.Flags().IntP("count", "n", 10, "How many players of the ranking to collect.")
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(topCmd)
}

var playerCmd = &cobra.Command{
	Use:   "player <name | player id>",
	Short: "Collects the finished matches of one player.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a, err := openApp(ctx, true)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		target, err := a.resolvePlayer(ctx, args[0])
		if err != nil {
			serviceutil.Fatal("failed to find player", err)
		}
		c, err := a.newCollector()
		if err != nil {
			serviceutil.Fatal("failed to create collector", err)
		}

		outcome := c.CollectPlayer(ctx, target)
		renderOutcomes([]collector.Outcome{outcome})
	},
}

var topCmd = &cobra.Command{
	Use:   "top [--count <n>]",
	Short: "Collects the finished matches of the top players of the ELO ranking.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a, err := openApp(ctx, true)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		err = collectTop(cmd, a, *topCount)
		if err != nil {
			serviceutil.Fatal("failed to collect top players", err)
		}
	},
}

func collectTop(cmd *cobra.Command, a *app, count int) error {
	ctx := cmd.Context()
	targets, err := a.topPlayers(ctx, count)
	if err != nil {
		return err
	}
	c, err := a.newCollector()
	if err != nil {
		return err
	}

	outcomes, all := c.CollectPlayers(ctx, targets)
	renderOutcomes(outcomes)
	if !all {
		slog.Warn("stopped before every player was collected", "collected", len(outcomes), "players", len(targets))
	}
	return nil
}
