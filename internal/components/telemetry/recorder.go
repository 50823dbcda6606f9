package telemetry

import (
	"strings"
	"sync"
)

// Report is a single call made against a Recorder.
type Report struct {
	Kind   string
	ID     string
	Params []any
}

// Recorder is an API that keeps every report in memory, it is meant for
// asserting on reports in tests.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
	counts  map[string]int64
}

func NewRecorder() *Recorder {
	return &Recorder{counts: map[string]int64{}}
}

func (r *Recorder) add(kind, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Kind: kind, ID: id, Params: params})
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
	r.mu.Lock()
	r.counts[id] = count
	r.mu.Unlock()
	r.add("count", id, []any{count})
}

// Broken returns the ids of every ReportBroken call that ends with `suffix`.
func (r *Recorder) Broken(suffix string) []string {
	return r.filter("broken", suffix)
}

// Warnings returns the ids of every ReportWarning call that ends with `suffix`.
func (r *Recorder) Warnings(suffix string) []string {
	return r.filter("warning", suffix)
}

// Count returns the last value reported for `id`.
func (r *Recorder) Count(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[id]
}

func (r *Recorder) filter(kind, suffix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []string
	for _, rep := range r.reports {
		if rep.Kind == kind && strings.HasSuffix(rep.ID, suffix) {
			ids = append(ids, rep.ID)
		}
	}
	return ids
}
