package diag

import (
	"sync"

	"github.com/rs/zerolog"
)

// FieldWarning records a single field-level fallback (empty string or
// U+FFFD substitution) on an entity, per spec.md §3's per-record diagnostic
// invariant.
type FieldWarning struct {
	Field string
	Kind  Kind
	Hint  string
}

// Report accumulates recoverable diagnostics for a single job (one
// EDB→entities pass, or one PST-build pass) and logs each one as a
// structured zerolog event as it is recorded, in addition to keeping
// job-end counts by kind.
type Report struct {
	log    zerolog.Logger
	mu     sync.Mutex
	counts map[Kind]int
	total  int
}

// NewReport returns a Report that streams structured events through log.
func NewReport(log zerolog.Logger) *Report {
	return &Report{log: log, counts: make(map[Kind]int)}
}

// Record logs err (any error, but context is richest for *Error) as a
// structured diagnostic and tallies it by kind for the job-end summary.
// Fatal kinds are still recorded here (for the summary) but the caller is
// responsible for aborting the job per spec.md §7's propagation policy.
func (r *Report) Record(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kind := KindIoError
	var event *zerolog.Event
	if de, ok := err.(*Error); ok {
		kind = de.Kind
		event = r.log.Warn().
			Str("kind", string(de.Kind)).
			Str("table", de.Table).
			Str("column", de.Column)
		if de.Row >= 0 {
			event = event.Int("row", de.Row)
		}
		if de.Hint != "" {
			event = event.Str("hint", de.Hint)
		}
	} else {
		event = r.log.Warn().Str("kind", string(kind))
	}
	r.counts[kind]++
	r.total++
	event.Msg(err.Error())
}

// CountsByKind returns a snapshot of the job-end summary spec.md §7
// requires ("Recoverable errors are summarized at job end with counts by
// kind").
func (r *Report) CountsByKind() map[Kind]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[Kind]int, len(r.counts))
	for k, v := range r.counts {
		out[k] = v
	}
	return out
}

// Total returns the number of diagnostics recorded so far.
func (r *Report) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}
