// Package collector walks players' match histories and stores every match that is
// not stored yet. Everything is sequential: the platform throttles on request
// cadence, so calls are paced and never issued concurrently.
package collector

import (
	"context"
	"errors"
	"fmt"

	"gaiaharvest/internal/components/assert"
	"gaiaharvest/internal/components/chrono"
	"gaiaharvest/internal/components/telemetry"
	"gaiaharvest/internal/gamelog"
	"gaiaharvest/internal/match"
	"gaiaharvest/internal/parser"
	"gaiaharvest/internal/scrapers/bga"
	"gaiaharvest/internal/vocab"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("collector")
var meter = otel.Meter("collector")

const (
	report_collector_page  = "collector.list-page"
	report_collector_match = "collector.collect-match"
	report_collector_stop  = "collector.stop"
)

const (
	DefaultMaxConsecutivePageFailures  = 3
	DefaultMaxConsecutiveMatchFailures = 5
)

// Platform is the part of bga.Client the collector uses.
type Platform interface {
	ListFinishedMatches(ctx context.Context, playerID, gameID int64, page int) ([]bga.MatchSummary, error)
	FetchMatchLog(ctx context.Context, tableID int64) (gamelog.Log, error)
	FetchMatchDetail(ctx context.Context, tableID int64) (bga.MatchDetail, error)
}

// Storage must persist a match and all of its players atomically.
type Storage interface {
	Exists(ctx context.Context, tableID int64) (bool, error)
	Store(ctx context.Context, parsed match.ParsedMatch) error
}

type PlayerTarget struct {
	ID   int64
	Name string
}

func (t PlayerTarget) String() string {
	if t.Name == "" {
		return fmt.Sprint(t.ID)
	}
	return fmt.Sprintf("%s (%d)", t.Name, t.ID)
}

type Options struct {
	// GameID defaults to vocab.GaiaProjectGameID.
	GameID int64
	// Pacer defaults to NewFixedDelay on Clock.
	Pacer Pacer
	// Clock defaults to the standard clock in UTC.
	Clock chrono.API
	// MaxPages caps the number of history pages per player, 0 means no cap.
	MaxPages int
	// MaxConsecutivePageFailures stops a player's run after that many listing
	// failures in a row. Values <= 0 mean DefaultMaxConsecutivePageFailures, the
	// cap cannot be turned off.
	MaxConsecutivePageFailures int
	// MaxConsecutiveMatchFailures stops a player's run after that many match
	// failures in a row, 0 turns the cap off.
	MaxConsecutiveMatchFailures int
	// Progress receives human readable progress lines, it may be nil.
	Progress func(msg string)
}

func DefaultOptions() Options {
	return Options{
		GameID:                      vocab.GaiaProjectGameID,
		MaxConsecutivePageFailures:  DefaultMaxConsecutivePageFailures,
		MaxConsecutiveMatchFailures: DefaultMaxConsecutiveMatchFailures,
	}
}

type Collector struct {
	platform Platform
	storage  Storage
	opts     Options
	tel      telemetry.API

	matchCounter metric.Int64Counter
}

func New(platform Platform, storage Storage, opts Options, tel telemetry.API) (*Collector, error) {
	assert.NotNil(platform)
	assert.NotNil(storage)
	assert.NotNil(tel)

	if opts.GameID == 0 {
		opts.GameID = vocab.GaiaProjectGameID
	}
	if opts.Clock == nil {
		opts.Clock = chrono.NewStandardImpl(nil)
	}
	if opts.Pacer == nil {
		opts.Pacer = NewFixedDelay(opts.Clock)
	}
	if opts.MaxConsecutivePageFailures <= 0 {
		opts.MaxConsecutivePageFailures = DefaultMaxConsecutivePageFailures
	}

	matchCounter, err := meter.Int64Counter(
		"harvest.matches",
		metric.WithDescription("Matches seen by the collector, by outcome."),
	)
	if err != nil {
		return nil, err
	}

	return &Collector{
		platform:     platform,
		storage:      storage,
		opts:         opts,
		tel:          telemetry.NewScopedAPI("collector", tel),
		matchCounter: matchCounter,
	}, nil
}

func (c *Collector) progress(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.tel.ReportDebug(msg)
	if c.opts.Progress != nil {
		c.opts.Progress(msg)
	}
}

func (c *Collector) count(ctx context.Context, outcome string) {
	c.matchCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// CollectPlayer walks the player's history from page 1 until a page shorter than
// bga.PageSize (or an empty one) is seen. The returned Outcome always carries the
// stats of the run, including when it stopped early.
func (c *Collector) CollectPlayer(ctx context.Context, target PlayerTarget) Outcome {
	ctx, span := tracer.Start(ctx, "collector:CollectPlayer", trace.WithAttributes(
		attribute.Int64("player_id", target.ID),
		attribute.String("player_name", target.Name),
	))
	defer span.End()

	stats := Stats{
		RunID:      uuid.New(),
		PlayerID:   target.ID,
		PlayerName: target.Name,
		StartedAt:  c.opts.Clock.Now(),
	}
	c.progress("collecting %s, run %s", target, stats.RunID)

	outcome := c.run(ctx, target, &stats)
	stats.FinishedAt = c.opts.Clock.Now()
	outcome.Stats = stats

	if outcome.Stopped {
		span.SetStatus(codes.Error, outcome.Reason.String())
		if outcome.Err != nil {
			span.RecordError(outcome.Err)
		}
		c.tel.ReportWarning(report_collector_stop, target.ID, outcome.Reason.String(), outcome.Err)
	}
	c.progress(
		"%s: %s, %d new, %d skipped, %d failed of %d",
		target, outcome.Reason, stats.NewGames, stats.SkippedGames, stats.FailedGames, stats.TotalGames,
	)
	return outcome
}

// CollectPlayers runs the players one after the other. It stops at the first run
// that was rate limited, cancelled or lost its session, the bool reports whether
// every target was attempted.
func (c *Collector) CollectPlayers(ctx context.Context, targets []PlayerTarget) ([]Outcome, bool) {
	outcomes := make([]Outcome, 0, len(targets))
	for i, target := range targets {
		outcome := c.CollectPlayer(ctx, target)
		outcomes = append(outcomes, outcome)
		if outcome.Stopped && outcome.Reason != TooManyFailures {
			return outcomes, i == len(targets)-1
		}
	}
	return outcomes, true
}

// classify returns the reason a platform error should stop the run for, if any.
func classify(ctx context.Context, err error) (StopReason, bool) {
	switch {
	case bga.IsRateLimited(err):
		return RateLimited, true
	case errors.Is(err, bga.ErrNotAuthenticated):
		return Unauthenticated, true
	case ctx.Err() != nil:
		return Cancelled, true
	}
	return Completed, false
}

func (c *Collector) run(ctx context.Context, target PlayerTarget, stats *Stats) Outcome {
	pageFailures := 0
	matchFailures := 0

	for page := 1; c.opts.MaxPages <= 0 || page <= c.opts.MaxPages; page++ {
		if err := ctx.Err(); err != nil {
			return stopped(Cancelled, err)
		}
		c.progress("%s: page %d", target, page)

		summaries, err := c.platform.ListFinishedMatches(ctx, target.ID, c.opts.GameID, page)
		if err != nil {
			stats.Errors = append(stats.Errors, MatchError{Page: page, Err: err})
			if reason, stop := classify(ctx, err); stop {
				stats.RateLimited = reason == RateLimited
				return stopped(reason, err)
			}
			c.tel.ReportBroken(report_collector_page, fmt.Errorf("list page: %w", err), target.ID, page)
			stats.FailedPages++
			pageFailures++
			if pageFailures >= c.opts.MaxConsecutivePageFailures {
				return stopped(TooManyFailures, err)
			}
			if err := c.opts.Pacer.AfterCall(ctx, AfterPage); err != nil {
				return stopped(Cancelled, err)
			}
			continue
		}
		pageFailures = 0
		stats.PagesFetched++
		if err := c.opts.Pacer.AfterCall(ctx, AfterPage); err != nil {
			return stopped(Cancelled, err)
		}

		if len(summaries) == 0 {
			return completed()
		}

		for _, summary := range summaries {
			stats.TotalGames++

			err := c.collectMatch(ctx, summary, stats)
			if err == nil {
				matchFailures = 0
				continue
			}
			stats.Errors = append(stats.Errors, MatchError{TableID: summary.TableID, Err: err})
			if reason, stop := classify(ctx, err); stop {
				stats.RateLimited = reason == RateLimited
				if stats.RateLimited {
					c.count(ctx, "rate_limited")
				}
				return stopped(reason, err)
			}

			c.tel.ReportBroken(report_collector_match, err, summary.TableID)
			c.count(ctx, "failed")
			stats.FailedGames++
			matchFailures++
			if c.opts.MaxConsecutiveMatchFailures > 0 && matchFailures >= c.opts.MaxConsecutiveMatchFailures {
				return stopped(TooManyFailures, err)
			}
		}

		if len(summaries) < bga.PageSize {
			return completed()
		}
	}
	stats.PageCapReached = true
	c.progress("%s: stopped at the cap of %d pages, older matches were not read", target, c.opts.MaxPages)
	return completed()
}

// collectMatch stores one match unless it is stored already. A nil error with
// nothing stored means the match was skipped.
func (c *Collector) collectMatch(ctx context.Context, summary bga.MatchSummary, stats *Stats) error {
	ctx, span := tracer.Start(ctx, "collector:collectMatch", trace.WithAttributes(
		attribute.Int64("table_id", summary.TableID),
	))
	defer span.End()

	exists, err := c.storage.Exists(ctx, summary.TableID)
	if err != nil {
		return fail(span, fmt.Errorf("check stored: %w", err))
	}
	if exists {
		stats.SkippedGames++
		c.count(ctx, "skipped")
		return nil
	}

	log, err := c.platform.FetchMatchLog(ctx, summary.TableID)
	if err != nil {
		return fail(span, c.afterFailedCall(ctx, fmt.Errorf("fetch log: %w", err)))
	}
	if err := c.opts.Pacer.AfterCall(ctx, WithinMatch); err != nil {
		return fail(span, err)
	}

	detail, err := c.platform.FetchMatchDetail(ctx, summary.TableID)
	if err != nil {
		return fail(span, c.afterFailedCall(ctx, fmt.Errorf("fetch detail: %w", err)))
	}
	if err := c.opts.Pacer.AfterCall(ctx, AfterMatch); err != nil {
		return fail(span, err)
	}

	parsed := parser.Parse(parser.Input{
		Summary: summary,
		Log:     log,
		Detail:  &detail,
	}, c.tel)

	err = c.storage.Store(ctx, parsed)
	if err != nil {
		return fail(span, fmt.Errorf("store: %w", err))
	}

	stats.NewGames++
	c.count(ctx, "new")
	return nil
}

// afterFailedCall paces after a failed platform call, unless the run is going to
// stop because of it anyway.
func (c *Collector) afterFailedCall(ctx context.Context, err error) error {
	if _, stop := classify(ctx, err); stop {
		return err
	}
	if paceErr := c.opts.Pacer.AfterCall(ctx, AfterMatch); paceErr != nil {
		return paceErr
	}
	return err
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
