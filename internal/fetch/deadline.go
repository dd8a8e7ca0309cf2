package fetch

import "time"

// deadline is the per-call time budget. start is captured once and never
// mutated; every check compares against it.
type deadline struct {
	start  time.Time
	budget time.Duration
	now    func() time.Time
}

// newDeadline starts a budget of global minus guard. The guard band keeps a
// last attempt from being started when it could not finish in time.
func newDeadline(now func() time.Time, global, guard time.Duration) deadline {
	return deadline{
		start:  now(),
		budget: global - guard,
		now:    now,
	}
}

// Elapsed returns the time spent since the call started.
func (d deadline) Elapsed() time.Duration {
	return d.now().Sub(d.start)
}

// Expired reports whether no new attempt may be started.
func (d deadline) Expired() bool {
	return d.Elapsed() >= d.budget
}
