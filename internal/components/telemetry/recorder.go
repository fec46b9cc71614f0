package telemetry

import (
	"strings"
	"sync"
)

type Report struct {
	Level  string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory, tests use it to assert on
// what a component reported.
type Recorder struct {
	mutex   sync.Mutex
	reports []Report
}

func (r *Recorder) add(level, id string, params []any) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.reports = append(r.reports, Report{Level: level, ID: id, Params: params})
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add("broken", id, params)
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add("warning", id, params)
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add("debug", msg, params)
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add("count", id, []any{count})
}

// Reports returns the reports of a given level whose id contains `substr`.
func (r *Recorder) Reports(level, substr string) []Report {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var out []Report
	for _, report := range r.reports {
		if report.Level == level && strings.Contains(report.ID, substr) {
			out = append(out, report)
		}
	}
	return out
}
