package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

var perfMeter = otel.Meter("gaiaharvest/perf_stats")

// InstrumentPerfStats records process stats every `interval` until ctx is done.
// Long running commands (the daemon) call this, one-shot crawls don't bother.
func InstrumentPerfStats(ctx context.Context, tel API, interval time.Duration) {
	cpuGauge, _ := perfMeter.Float64Gauge("cpu_usage")
	memoryGauge, _ := perfMeter.Int64Gauge("allocated_mb")
	goroutineGauge, _ := perfMeter.Int64Gauge("goroutine_count")

	go func() {
		var memStats runtime.MemStats
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runtime.ReadMemStats(&memStats)

				usage, err := cpu.PercentWithContext(ctx, time.Second, false)
				if err == nil && len(usage) > 0 {
					cpuGauge.Record(ctx, usage[0])
				} else if err != nil {
					tel.ReportWarning("perf-stats.cpu", err)
				}

				allocatedMb := int64(memStats.Alloc / 1_000_000)
				memoryGauge.Record(ctx, allocatedMb)
				goroutineGauge.Record(ctx, int64(runtime.NumGoroutine()))
				tel.ReportCount("perf-stats.allocated-mb", allocatedMb)
			case <-ctx.Done():
				return
			}
		}
	}()
}
