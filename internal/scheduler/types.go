// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Scheduler types: outcomes and cycle reports

package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/kareigu/sceawian/internal/jobs"
)

var (
	// ErrTimedOut is reported when a job exceeds its deadline
	ErrTimedOut = errors.New("job timed out")
	// ErrTaskPanicked is reported when a job panics
	ErrTaskPanicked = errors.New("job panicked")
)

// Status is the result of one job in one cycle
type Status string

const (
	StatusSynced   Status = "synced"
	StatusFailed   Status = "failed"
	StatusTimedOut Status = "timed_out"
	StatusSkipped  Status = "skipped"
)

// Syncer synchronizes a single job
type Syncer interface {
	Synchronize(ctx context.Context, job jobs.Definition) error
}

// DiscoverFunc returns the jobs for a cycle
type DiscoverFunc func(ctx context.Context) (*jobs.Result, error)

// Config holds the scheduling parameters
type Config struct {
	Interval   time.Duration
	JobTimeout time.Duration
	TaskCount  int
}

// Outcome is produced exactly once per discovered job per cycle
type Outcome struct {
	Name     string
	Status   Status
	Err      error
	Duration time.Duration
}

// Report summarizes one cycle
type Report struct {
	CycleID       string
	Started       time.Time
	SinceLastWake time.Duration // zero on the first wake
	Duration      time.Duration
	Outcomes      []Outcome
	Counts        map[Status]int
	DiscoveryErr  error
}

// Failed reports whether any job failed or timed out, or discovery failed
func (r *Report) Failed() bool {
	return r.DiscoveryErr != nil || r.Counts[StatusFailed] > 0 || r.Counts[StatusTimedOut] > 0
}

// Outcome returns the outcome for name
func (r *Report) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}
