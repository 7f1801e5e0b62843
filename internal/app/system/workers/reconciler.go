// internal/app/system/workers/reconciler.go
package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/robfig/cron"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrStopped is returned by RunOnce after Stop has been called.
var ErrStopped = errors.New("delete reconciler stopped")

// Reconciler is the part of hierarchy.Service the worker drives.
type Reconciler interface {
	Reconcile(ctx context.Context, workspaceID *primitive.ObjectID) (hierarchy.ReconcileReport, error)
}

// DeleteReconciler is a background worker that finishes interrupted
// cascade deletes on a cron schedule.
type DeleteReconciler struct {
	svc      Reconciler
	log      *zap.Logger
	spec     string
	schedule cron.Schedule
	timeout  time.Duration

	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup

	// mu orders wg.Add in RunOnce against wg.Wait in Stop.
	mu      sync.Mutex
	stopped bool
}

// ValidateSchedule reports whether spec is a schedule the worker accepts.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("reconcile schedule %q: %w", spec, err)
	}
	return nil
}

// NewDeleteReconciler parses spec (standard 5-field cron or a descriptor
// such as "@every 10m") and returns a stopped worker. timeout bounds one
// pass over all workspaces.
func NewDeleteReconciler(svc Reconciler, logger *zap.Logger, spec string, timeout time.Duration) (*DeleteReconciler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("reconcile schedule %q: %w", spec, err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &DeleteReconciler{
		svc:      svc,
		log:      logger,
		spec:     spec,
		schedule: schedule,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Start begins running on the schedule.
func (w *DeleteReconciler) Start() {
	w.cron = cron.New()
	w.cron.Schedule(w.schedule, cron.FuncJob(w.tick))
	w.cron.Start()
	w.log.Info("delete reconciler started", zap.String("schedule", w.spec))
}

// Stop halts the schedule, cancels a pass in progress and waits for it.
func (w *DeleteReconciler) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	if w.cron != nil {
		w.cron.Stop()
	}
	w.cancel()
	w.wg.Wait()
	w.log.Info("delete reconciler stopped")
}

func (w *DeleteReconciler) tick() {
	if w.ctx.Err() != nil {
		return
	}
	if _, err := w.RunOnce(w.ctx); err != nil && !errors.Is(err, ErrStopped) && w.ctx.Err() == nil {
		w.log.Error("reconcile pass failed", zap.Error(err))
	}
}

// RunOnce runs a single pass now. A pass already in progress makes it
// return immediately with an empty report; after Stop it returns
// ErrStopped. Stop also cancels a pass started here.
func (w *DeleteReconciler) RunOnce(ctx context.Context) (hierarchy.ReconcileReport, error) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return hierarchy.ReconcileReport{}, ErrStopped
	}
	if !w.running.CompareAndSwap(false, true) {
		w.mu.Unlock()
		w.log.Debug("reconcile pass skipped; previous pass still running")
		return hierarchy.ReconcileReport{}, nil
	}
	w.wg.Add(1)
	w.mu.Unlock()
	defer func() {
		w.running.Store(false)
		w.wg.Done()
	}()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	stopCancel := context.AfterFunc(w.ctx, cancel)
	defer stopCancel()

	start := time.Now()
	report, err := w.svc.Reconcile(ctx, nil)
	if err != nil {
		return report, err
	}
	w.log.Debug("reconcile pass finished",
		zap.Int("workspaces", report.Workspaces),
		zap.Int("orphans", report.Orphans),
		zap.Int("deleted", report.Deleted),
		zap.Duration("took", time.Since(start)))
	return report, nil
}
