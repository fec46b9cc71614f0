package chrono

import (
	"context"
	"sync"
	"time"
)

// API is how components read the time and wait, so tests never have to.
type API interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, in which case ctx.Err() is returned.
	Sleep(ctx context.Context, d time.Duration) error
}

type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl uses the given location for Now, nil means UTC.
func NewStandardImpl(location *time.Location) StandardImpl {
	if location == nil {
		location = time.UTC
	}
	return StandardImpl{location: location}
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fake is an API whose clock only moves when Sleep is called.
type Fake struct {
	mutex  sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

func (f *Fake) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.now
}

func (f *Fake) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.sleeps = append(f.sleeps, d)
	f.now = f.now.Add(d)
	return nil
}

// Sleeps returns every duration passed to Sleep, in order.
func (f *Fake) Sleeps() []time.Duration {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]time.Duration(nil), f.sleeps...)
}
