package chrono

import (
	"fmt"
	"gaiaharvest/internal/components/telemetry"

	"github.com/robfig/cron/v3"
)

// CronAPI is what anything that runs on a schedule depends on.
type CronAPI interface {
	Cron(spec string, callback func()) error
	Stop()
}

// StandardCron implements CronAPI with `github.com/robfig/cron/v3`. Jobs never
// overlap, a run that is still going when the next tick fires skips that tick.
type StandardCron struct {
	cron *cron.Cron
}

func NewStandardCron(tel telemetry.API) StandardCron {
	logger := cronLogger{tel: tel}
	cronner := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	)
	cronner.Start()

	return StandardCron{cron: cronner}
}

func (s StandardCron) Cron(spec string, callback func()) error {
	_, err := s.cron.AddFunc(spec, callback)
	return err
}

// Stop stops the scheduler and waits for a running job to return.
func (s StandardCron) Stop() {
	<-s.cron.Stop().Done()
}

type cronLogger struct {
	tel telemetry.API
}

func (l cronLogger) formatParams(keysAndValues []any) []any {
	params := []any{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		params = append(params, fmt.Sprintf("%v: %v", keysAndValues[i], keysAndValues[i+1]))
	}
	return params
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.tel.ReportDebug(fmt.Sprintf("cron: %s", msg), l.formatParams(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.tel.ReportBroken(
		"cron",
		append([]any{fmt.Errorf("%s: %w", msg, err)}, l.formatParams(keysAndValues)...)...,
	)
}
