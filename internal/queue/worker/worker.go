// Package worker polls the jobs table and delivers share notifications. Jobs
// are claimed with SKIP LOCKED so several workers can run side by side.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/healthvault/internal/domain/job"
	"github.com/geocoder89/healthvault/internal/jobs"
	"github.com/geocoder89/healthvault/internal/notifications"
	"github.com/geocoder89/healthvault/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}

	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}

	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		log:      log,
		sem:      make(chan struct{}, cfg.Concurrency),
	}
}

// WithProm enables job metrics.
func (w *Worker) WithProm(p *observability.Prom) *Worker {
	w.prom = p
	return w
}

// Run polls until ctx is cancelled, then waits up to ShutdownGrace for
// in-flight jobs to finish.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setReady(false)
			w.log.Info("worker shutting down", "worker_id", w.cfg.WorkerID)
			return w.drain()

		case <-ticker.C:
			w.pump(ctx)
		}
	}
}

// pump dispatches one claim attempt per free slot. Each goroutine claims at
// most one job, so the semaphore bounds concurrent work.
func (w *Worker) pump(ctx context.Context) {
	for i := 0; i < w.cfg.Concurrency; i++ {
		select {
		case w.sem <- struct{}{}:
		default:
			return
		}

		w.wg.Add(1)

		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()

			if _, err := w.ProcessOne(ctx); err != nil {
				w.log.Error("job processing error", "err", err)
			}
		}()
	}
}

// ProcessOne claims and runs a single job. The bool reports whether a job was
// claimed at all.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	start := time.Now()

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	err = w.execute(ctx, j)

	if err != nil {
		w.handleFailure(ctx, j, err, start)
		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	w.observeResult(j.Type, "done", start)
	w.log.Info("job done", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts)

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	t := jobs.JobType(j.Type)

	payload, err := jobs.DecodePayload(t, j.Payload)

	if err != nil {
		return err
	}

	if err := jobs.ValidatePayload(t, payload); err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.ShareNotificationPayload:
		return w.notifier.SendShareNotification(ctx, notifications.SendShareNotificationInput{
			Email:       p.ViewerEmail,
			OwnerName:   p.OwnerName,
			ReportID:    p.ReportID,
			ReportTitle: p.ReportTitle,
			GrantID:     p.GrantID,
		})
	default:
		return jobs.ErrInvalidJobType
	}
}

// handleFailure decides retry vs permanent failure. Malformed payloads never
// retry; everything else backs off until max_attempts is spent.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, jobErr error, start time.Time) {
	permanent := errors.Is(jobErr, jobs.ErrInvalidJobType) ||
		errors.Is(jobErr, jobs.ErrInvalidJobPayload) ||
		errors.Is(jobErr, jobs.ErrPayloadTypeMismatch)

	// this run already consumed an attempt
	exhausted := j.Attempts+1 >= j.MaxAttempts

	if permanent || exhausted {
		if err := w.repo.MarkFailed(ctx, j.ID, jobErr.Error()); err != nil {
			w.log.Error("mark failed error", "job_id", j.ID, "err", err)
		}

		w.observeResult(j.Type, "failed", start)
		w.log.Error("job failed", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "err", jobErr)
		return
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, jobErr.Error()); err != nil {
		w.log.Error("reschedule error", "job_id", j.ID, "err", err)
		return
	}

	w.observeResult(j.Type, "retry", start)
	w.log.Warn("job retry scheduled", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts+1, "run_at", runAt, "err", jobErr)
}

func (w *Worker) observeResult(jobType, result string, start time.Time) {
	if w.prom == nil {
		return
	}

	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(time.Since(start).Seconds())
}

func (w *Worker) drain() error {
	done := make(chan struct{})

	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(w.cfg.ShutdownGrace):
		return errors.New("shutdown grace period elapsed with jobs in flight")
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
