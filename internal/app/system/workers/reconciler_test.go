package workers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/app/system/workers"
	"github.com/dalemusser/docuhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type countingReconciler struct {
	calls atomic.Int32
	block chan struct{}
}

func (c *countingReconciler) Reconcile(ctx context.Context, _ *primitive.ObjectID) (hierarchy.ReconcileReport, error) {
	c.calls.Add(1)
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return hierarchy.ReconcileReport{}, ctx.Err()
		}
	}
	return hierarchy.ReconcileReport{Workspaces: 1}, nil
}

func TestNewDeleteReconciler_BadSchedule(t *testing.T) {
	_, err := workers.NewDeleteReconciler(&countingReconciler{}, zap.NewNop(), "every tuesday", time.Minute)
	assert.Error(t, err)
}

func TestDeleteReconciler_RunOnceFinishesCascade(t *testing.T) {
	f := testutil.NewFixtures()
	svc := hierarchy.New(f.Store, testutil.NewMemFavorites())
	ctx := context.Background()
	a, a1, _, _ := f.Scenario()
	a1x := f.Doc("A1x", &a1, 0)

	f.Store.OnSoftDelete = func(id primitive.ObjectID) error {
		if id == a1x.ID {
			return errors.New("interrupted")
		}
		return nil
	}
	_, err := svc.Delete(ctx, a.ID, f.AuthorID)
	require.ErrorIs(t, err, hierarchy.ErrPartialCascade)
	f.Store.OnSoftDelete = nil

	w, err := workers.NewDeleteReconciler(svc, zap.NewNop(), "@every 1h", time.Minute)
	require.NoError(t, err)

	report, err := w.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deleted)

	_, err = f.Store.Get(ctx, a1x.ID)
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
}

func TestDeleteReconciler_SkipsOverlappingPass(t *testing.T) {
	rec := &countingReconciler{block: make(chan struct{})}
	w, err := workers.NewDeleteReconciler(rec, zap.NewNop(), "@every 1h", time.Minute)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.RunOnce(context.Background())
	}()
	require.Eventually(t, func() bool { return rec.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	report, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Workspaces)
	assert.Equal(t, int32(1), rec.calls.Load())

	close(rec.block)
	<-done
}

func TestDeleteReconciler_StartStop(t *testing.T) {
	rec := &countingReconciler{}
	w, err := workers.NewDeleteReconciler(rec, zap.NewNop(), "@every 1s", time.Minute)
	require.NoError(t, err)

	w.Start()
	require.Eventually(t, func() bool { return rec.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	w.Stop()

	n := rec.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, n, rec.calls.Load(), "no passes after Stop")
}

func TestDeleteReconciler_StopWaitsForExternalPass(t *testing.T) {
	rec := &countingReconciler{block: make(chan struct{})}
	w, err := workers.NewDeleteReconciler(rec, zap.NewNop(), "@every 1h", time.Minute)
	require.NoError(t, err)

	passErr := make(chan error, 1)
	go func() {
		_, err := w.RunOnce(context.Background())
		passErr <- err
	}()
	require.Eventually(t, func() bool { return rec.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case err := <-passErr:
		assert.ErrorIs(t, err, context.Canceled, "Stop cancels a pass started outside the schedule")
	case <-time.After(2 * time.Second):
		t.Fatal("pass was not cancelled by Stop")
	}
	<-stopped

	_, err = w.RunOnce(context.Background())
	assert.ErrorIs(t, err, workers.ErrStopped)
	assert.Equal(t, int32(1), rec.calls.Load())
}

func TestDeleteReconciler_RunOnceRacingStop(t *testing.T) {
	for i := 0; i < 50; i++ {
		w, err := workers.NewDeleteReconciler(&countingReconciler{}, zap.NewNop(), "@every 1h", time.Minute)
		require.NoError(t, err)

		start := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			<-start
			_, err := w.RunOnce(context.Background())
			if err != nil {
				assert.ErrorIs(t, err, workers.ErrStopped)
			}
		}()
		close(start)
		w.Stop()
		<-done
	}
}
