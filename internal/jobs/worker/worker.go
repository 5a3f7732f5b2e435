package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	jobrepo "github.com/yungbote/learnhub-backend/internal/data/repos/jobs"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/observability"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/platform/envutil"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/redisx"
)

type Config struct {
	Concurrency  int
	PollInterval time.Duration
	// StaleAfter is how long a claim may be held before the job is returned to the queue.
	StaleAfter    time.Duration
	SweepInterval time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Concurrency:   envutil.Int("WORKER_CONCURRENCY", 1),
		PollInterval:  envutil.Duration("WORKER_POLL_INTERVAL", 500*time.Millisecond),
		StaleAfter:    envutil.Duration("WORKER_STALE_AFTER", 30*time.Minute),
		SweepInterval: envutil.Duration("WORKER_SWEEP_INTERVAL", time.Minute),
	}
}

type Worker struct {
	db        *gorm.DB
	log       *logger.Logger
	jobs      jobrepo.GenerationJobRepo
	artifacts artifactrepo.DerivedArtifactRepo
	registry  *runtime.Registry
	notify    redisx.Notifier
	cfg       Config
}

// NewWorker builds the claim/dispatch loop. notify may be nil; loops then only poll.
func NewWorker(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobs jobrepo.GenerationJobRepo,
	artifacts artifactrepo.DerivedArtifactRepo,
	registry *runtime.Registry,
	notify redisx.Notifier,
	cfg Config,
) *Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Worker{
		db:        db,
		log:       baseLog.With("component", "JobWorker"),
		jobs:      jobs,
		artifacts: artifacts,
		registry:  registry,
		notify:    notify,
		cfg:       cfg,
	}
}

// Start runs the pool in the background until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Error("Job worker stopped", "error", err)
		}
	}()
}

// Run blocks until ctx is cancelled, running Concurrency claim loops plus the
// stale-claim sweeper.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting job worker pool",
		"concurrency", w.cfg.Concurrency,
		"poll_interval", w.cfg.PollInterval,
		"job_types", w.registry.Types(),
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Concurrency; i++ {
		workerID := i + 1
		g.Go(func() error {
			w.runLoop(gctx, workerID)
			return gctx.Err()
		})
	}
	g.Go(func() error {
		w.sweepLoop(gctx)
		return gctx.Err()
	})
	return g.Wait()
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	var wake <-chan struct{}
	if w.notify != nil {
		wake = w.notify.Wake()
	}
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-wake:
		case <-timer.C:
		}

		// Keep claiming until the queue is empty, then wait for a wake-up or the next poll.
		for ctx.Err() == nil {
			processed, err := w.RunOnce(ctx)
			if err != nil {
				w.log.Warn("Claim failed", "worker_id", workerID, "error", err)
				break
			}
			if !processed {
				break
			}
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.cfg.PollInterval)
	}
}

func (w *Worker) sweepLoop(ctx context.Context) {
	if w.cfg.StaleAfter <= 0 {
		return
	}
	ticker := time.NewTicker(w.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.jobs.RequeueStale(dbctx.Context{Ctx: ctx}, w.cfg.StaleAfter); err != nil {
				w.log.Warn("RequeueStale failed", "error", err)
			}
		}
	}
}

// RunOnce claims and processes at most one job. It reports whether a job was claimed;
// handler failures are recorded on the job and are not returned.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.jobs.Claim(dbctx.Context{Ctx: ctx})
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	w.process(ctx, job)
	return true, nil
}

// Drain processes queued jobs, including ones chained while draining, until the queue
// is empty or max jobs ran (max <= 0 means no limit). It returns the number processed.
func (w *Worker) Drain(ctx context.Context, max int) (int, error) {
	n := 0
	for max <= 0 || n < max {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		processed, err := w.RunOnce(ctx)
		if err != nil {
			return n, err
		}
		if !processed {
			break
		}
		n++
	}
	return n, nil
}

func (w *Worker) process(ctx context.Context, job *types.GenerationJob) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "job."+job.JobType,
		attribute.String("job.id", job.ID.String()),
		attribute.String("job.type", job.JobType),
		attribute.String("artifact.cache_key", job.TargetCacheKey),
		attribute.Int("job.attempts", job.Attempts),
	)
	jc := runtime.NewContext(ctx, w.db, job, w.log)

	var runErr error
	h, ok := w.registry.Get(job.JobType)
	if !ok {
		jc.Log.Warn("No handler registered for job_type")
		runErr = &missingHandlerError{JobType: job.JobType}
	} else {
		runErr = w.dispatch(jc, h)
	}
	observability.EndSpan(span, runErr)

	dbc := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	status := string(types.JobSucceeded)
	if runErr != nil {
		status = string(types.JobFailed)
		if err := w.jobs.MarkFailed(dbc, job.ID, runErr.Error()); err != nil {
			jc.Log.Error("Failed to mark job failed", "error", err)
		}
		jc.Log.Warn("Job failed", "error", runErr, "duration", time.Since(start))
	} else {
		if err := w.jobs.MarkSucceeded(dbc, job.ID); err != nil {
			jc.Log.Error("Failed to mark job succeeded", "error", err)
		}
		jc.Log.Info("Job succeeded", "duration", time.Since(start))
	}
	observability.Current().ObserveJob(job.JobType, status, time.Since(start))
}

// dispatch runs the handler, turning a panic into a failure of both the job and its
// target artifact.
func (w *Worker) dispatch(jc *runtime.Context, h runtime.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			jc.Log.Error("Job handler panic", "panic", r)
			err = errFromRecover(r)
			w.failArtifact(jc, err)
		}
	}()
	return h.Run(jc)
}

func (w *Worker) failArtifact(jc *runtime.Context, cause error) {
	dbc := dbctx.Context{Ctx: context.WithoutCancel(jc.Ctx)}
	a, err := w.artifacts.GetByCacheKey(dbc, jc.Job.TargetCacheKey)
	if err != nil || a == nil || a.IsReady() {
		return
	}
	payload := runtime.NewArtifactError(jc.Job.JobType, a.Kind, cause)
	if err := w.artifacts.MarkFailed(dbc, a.ID, payload.JSON()); err != nil {
		jc.Log.Error("Failed to mark artifact failed after panic", "artifact_id", a.ID.String(), "error", err)
	}
}

type missingHandlerError struct{ JobType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for job_type=" + e.JobType
}

func errFromRecover(v any) error { return &panicError{Val: v} }

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
