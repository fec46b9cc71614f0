package telemetry

import (
	"fmt"
)

// API is an abstraction over logging/metrics so that components can be tested for
// the reports they emit.
//
// note: fault injection point
type API interface {
	// ReportBroken reports a component that broke in a way that should be looked at.
	//
	// `id` identifies the **component** that broke, not the exact line. A failed HTTP
	// request inside the bga client's ListFinishedMatches should be reported as
	// `client.list-finished-matches`; put the finer detail in params or wrap the error.
	//
	// Formatting rules:
	// 1) all lowercase
	// 2) use underscores for large components
	// 3) use dashes for methods part of a larger component
	//
	// Scope an API with NewScopedAPI instead of spelling the package into every id.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something that is not necessarily broken but may be worth
	// investigating (ex. a log event referencing a player that never chose a race).
	ReportWarning(id string, params ...any)

	// ReportDebug reports debug information that is dropped in production.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current value of a counter, values are points over time
	// and should not be summed.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id/message with a namespace, like a sub-logger.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
