package collector

import (
	"context"
	"time"

	"gaiaharvest/internal/components/chrono"
)

// CallKind tells a Pacer where in the collection sequence a platform call
// happened.
type CallKind int

const (
	// AfterPage follows a history page listing (successful or not).
	AfterPage CallKind = iota
	// WithinMatch follows a log fetch that is about to be followed by the detail
	// fetch of the same match.
	WithinMatch
	// AfterMatch follows the last platform call made for a match.
	AfterMatch
)

func (k CallKind) String() string {
	switch k {
	case AfterPage:
		return "after-page"
	case WithinMatch:
		return "within-match"
	case AfterMatch:
		return "after-match"
	}
	return "unknown"
}

// Pacer is called after every platform call, it decides how long to wait before
// the next one. It returns an error only if ctx ends while waiting.
type Pacer interface {
	AfterCall(ctx context.Context, kind CallKind) error
}

const (
	DefaultBetween   = 3 * time.Second
	DefaultSecondary = 500 * time.Millisecond
)

// FixedDelay waits Secondary between the two calls of one match and Between
// everywhere else. It never adapts to how the platform responds.
type FixedDelay struct {
	Clock     chrono.API
	Between   time.Duration
	Secondary time.Duration
}

func NewFixedDelay(clock chrono.API) FixedDelay {
	return FixedDelay{
		Clock:     clock,
		Between:   DefaultBetween,
		Secondary: DefaultSecondary,
	}
}

func (d FixedDelay) AfterCall(ctx context.Context, kind CallKind) error {
	if kind == WithinMatch {
		return d.Clock.Sleep(ctx, d.Secondary)
	}
	return d.Clock.Sleep(ctx, d.Between)
}

type NoDelay struct{}

func (NoDelay) AfterCall(ctx context.Context, _ CallKind) error {
	return ctx.Err()
}
