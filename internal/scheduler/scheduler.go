// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Bounded scheduler: periodic discovery and a limited worker window

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kareigu/sceawian/internal/jobs"
	"github.com/kareigu/sceawian/internal/logging"
)

// Scheduler runs discovery and synchronization cycles. It owns the previous
// wake time and the set of jobs still running from any cycle.
type Scheduler struct {
	cfg      Config
	discover DiscoverFunc
	syncer   Syncer
	logger   *zap.Logger

	mu       sync.Mutex
	lastWake time.Time
	inFlight map[string]struct{}
	running  sync.WaitGroup // synchronizer goroutines, abandoned ones included
}

// New creates a scheduler. A zero JobTimeout means the interval.
func New(cfg Config, discover DiscoverFunc, syncer Syncer, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.TaskCount <= 0 {
		return nil, fmt.Errorf("task count must be positive, got %d", cfg.TaskCount)
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = cfg.Interval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cfg:      cfg,
		discover: discover,
		syncer:   syncer,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}, nil
}

// Run executes a cycle immediately and then once per interval until ctx is
// cancelled. Cycles never overlap; a tick that lands on a running cycle is
// skipped. Run returns once the running cycle and every job goroutine,
// including abandoned ones, have finished.
func (s *Scheduler) Run(ctx context.Context) error {
	cronLogger := logging.CronLogger(s.logger)

	cycle := cron.NewChain(cron.SkipIfStillRunning(cronLogger)).Then(cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		s.RunCycle(ctx)
	}))

	c := cron.New(cron.WithLogger(cronLogger))
	c.Schedule(cron.Every(s.cfg.Interval), cycle)

	s.logger.Info("scheduler started",
		zap.Duration("interval", s.cfg.Interval),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
		zap.Int("task_count", s.cfg.TaskCount),
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cycle.Run()
	}()
	c.Start()

	<-ctx.Done()
	s.logger.Info("scheduler stopping")

	<-c.Stop().Done()
	wg.Wait()

	if n := s.inFlightCount(); n > 0 {
		s.logger.Info("waiting for abandoned jobs", zap.Int("count", n))
	}
	s.running.Wait()

	s.logger.Info("scheduler stopped")
	return nil
}

// RunCycle performs one wake: discover, admit, wait for every outcome.
func (s *Scheduler) RunCycle(ctx context.Context) *Report {
	now := time.Now()
	report := &Report{
		CycleID: uuid.NewString(),
		Started: now,
		Counts:  make(map[Status]int),
	}
	logger := s.logger.With(zap.String("cycle", report.CycleID))

	s.mu.Lock()
	prev := s.lastWake
	s.lastWake = now
	s.mu.Unlock()

	if prev.IsZero() {
		logger.Info("cycle started")
	} else {
		report.SinceLastWake = now.Sub(prev)
		logger.Info("cycle started", zap.Duration("since_last_wake", report.SinceLastWake))
	}

	result, err := s.discover(ctx)
	if err != nil {
		report.DiscoveryErr = err
		report.Duration = time.Since(now)
		logger.Error("job discovery failed, skipping cycle", zap.Error(err))
		return report
	}

	report.Outcomes = make([]Outcome, len(result.Definitions))

	var g errgroup.Group
	g.SetLimit(s.cfg.TaskCount)

	for i, def := range result.Definitions {
		if !s.acquire(def.Name) {
			report.Outcomes[i] = Outcome{Name: def.Name, Status: StatusSkipped}
			logOutcome(logger, report.Outcomes[i])
			continue
		}

		// Blocks while TaskCount jobs are undecided
		g.Go(func() error {
			report.Outcomes[i] = s.runJob(ctx, def, logger)
			logOutcome(logger, report.Outcomes[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range report.Outcomes {
		report.Counts[o.Status]++
	}
	report.Duration = time.Since(now)

	logger.Info("cycle complete",
		zap.Int("jobs", len(report.Outcomes)),
		zap.Int("synced", report.Counts[StatusSynced]),
		zap.Int("failed", report.Counts[StatusFailed]),
		zap.Int("timed_out", report.Counts[StatusTimedOut]),
		zap.Int("skipped", report.Counts[StatusSkipped]),
		zap.Int("invalid", len(result.Skipped)),
		zap.Duration("duration", report.Duration),
	)
	return report
}

// runJob synchronizes def under the job deadline. On timeout the job is
// abandoned: its outcome is decided and its slot freed, but its name stays
// in flight until the synchronizer actually returns.
func (s *Scheduler) runJob(ctx context.Context, def jobs.Definition, logger *zap.Logger) Outcome {
	start := time.Now()
	outcome := Outcome{Name: def.Name}

	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	// The name is released before the result is delivered, so a decided
	// outcome never leaves it in flight.
	done := make(chan error, 1)
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
			}
			s.release(def.Name)
			done <- err
		}()
		err = s.syncer.Synchronize(jobCtx, def)
	}()

	var err error
	select {
	case err = <-done:
	case <-jobCtx.Done():
		select {
		case err = <-done:
		default:
			err = jobCtx.Err()
			s.running.Add(1)
			go func() {
				defer s.running.Done()
				late := <-done
				logger.Warn("abandoned job returned", zap.String("job", def.Name), zap.Error(late))
			}()
		}
	}

	outcome.Duration = time.Since(start)
	switch {
	case err == nil:
		outcome.Status = StatusSynced
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		outcome.Status = StatusTimedOut
		outcome.Err = fmt.Errorf("%w after %v: %w", ErrTimedOut, s.cfg.JobTimeout, err)
	default:
		outcome.Status = StatusFailed
		outcome.Err = err
	}
	return outcome
}

// acquire marks name in flight; false if it already is
func (s *Scheduler) acquire(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[name]; busy {
		return false
	}
	s.inFlight[name] = struct{}{}
	return true
}

func (s *Scheduler) release(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, name)
}

// InFlight reports whether name is still running from some cycle
func (s *Scheduler) InFlight(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.inFlight[name]
	return busy
}

func (s *Scheduler) inFlightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

func logOutcome(logger *zap.Logger, o Outcome) {
	fields := []zap.Field{
		zap.String("job", o.Name),
		zap.String("status", string(o.Status)),
		zap.Duration("duration", o.Duration),
	}
	if o.Err != nil {
		fields = append(fields, zap.Error(o.Err))
	}

	switch o.Status {
	case StatusSynced:
		logger.Info("job synced", fields...)
	case StatusSkipped:
		logger.Warn("job skipped, previous run still in flight", fields...)
	case StatusTimedOut:
		logger.Error("job timed out", fields...)
	default:
		logger.Error("job failed", fields...)
	}
}
