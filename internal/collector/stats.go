package collector

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MatchError is one failure of a run. Page is set (and TableID is 0) when the
// history listing itself failed.
type MatchError struct {
	TableID int64
	Page    int
	Err     error
}

func (e MatchError) Error() string {
	if e.TableID == 0 {
		return fmt.Sprintf("page %d: %s", e.Page, e.Err.Error())
	}
	return fmt.Sprintf("table %d: %s", e.TableID, e.Err.Error())
}

// Stats is the accounting of one player's run. It is returned whole, even when the
// run stopped early.
type Stats struct {
	RunID      uuid.UUID
	PlayerID   int64
	PlayerName string

	// TotalGames counts every match seen in the history, whatever happened to it.
	TotalGames   int
	NewGames     int
	SkippedGames int
	FailedGames  int
	PagesFetched int
	FailedPages  int
	RateLimited  bool

	// PageCapReached is set when MaxPages ended a run whose history went on.
	PageCapReached bool
	Errors         []MatchError

	StartedAt  time.Time
	FinishedAt time.Time
}

type StopReason int

const (
	Completed StopReason = iota
	RateLimited
	TooManyFailures
	Cancelled
	// Unauthenticated means the client lost (or never had) its session.
	Unauthenticated
)

func (r StopReason) String() string {
	switch r {
	case Completed:
		return "completed"
	case RateLimited:
		return "rate limited"
	case TooManyFailures:
		return "too many failures"
	case Cancelled:
		return "cancelled"
	case Unauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// Outcome is the result of one player's run. Stopped is set whenever the run ended
// before the history was exhausted, Stats then holds the partial accounting and Err
// what stopped it.
type Outcome struct {
	Stats   Stats
	Stopped bool
	Reason  StopReason
	Err     error
}

func completed() Outcome {
	return Outcome{Reason: Completed}
}

func stopped(reason StopReason, err error) Outcome {
	return Outcome{Stopped: true, Reason: reason, Err: err}
}
