package commands

import (
	"log/slog"
	"time"

	"gaiaharvest/internal/components/chrono"
	"gaiaharvest/internal/components/telemetry"
	"gaiaharvest/pkg/serviceutil"

	"github.com/spf13/cobra"
)

var (
	daemonCron  *string
	daemonCount *int
)

func init() {
	daemonCron = daemonCmd.Flags().String("cron", "0 */6 * * *", "When to collect, as a cron expression.")
	daemonCount = daemonCmd.Flags().IntP("count", "n", 10, "How many players of the ranking to collect every time.")
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon [--cron <expr>] [--count <n>]",
	Short: "Collects the top players on a schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a, err := openApp(ctx, false)
		if err != nil {
			serviceutil.Fatal("failed to initialize", err)
		}
		defer a.Close()

		telemetry.InstrumentPerfStats(ctx, a.tel, time.Minute)

		cron := chrono.NewStandardCron(a.tel)
		err = cron.Cron(*daemonCron, func() {
			// sessions don't outlive a run, every run logs in again
			err := a.login(ctx)
			if err != nil {
				slog.Error("failed to login", "err", err)
				return
			}
			defer func() {
				a.client.Close()
				a.client = nil
			}()

			err = collectTop(cmd, a, *daemonCount)
			if err != nil {
				slog.Error("failed to collect top players", "err", err)
			}
		})
		if err != nil {
			serviceutil.Fatal("invalid cron expression", err)
		}
		slog.Info("waiting for the next run", "cron", *daemonCron)

		<-ctx.Done()
		slog.Info("stopping")
		cron.Stop()
	},
}
