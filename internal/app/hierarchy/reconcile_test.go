package hierarchy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/dalemusser/docuhub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestReconcile_FinishesInterruptedCascade(t *testing.T) {
	f := testutil.NewFixtures()
	svc, _ := newService(f)
	ctx := context.Background()
	a, a1, _, _ := f.Scenario()
	a1x := f.Doc("A1x", &a1, 0)
	a1y := f.Doc("A1y", &a1x, 0)

	f.Store.OnSoftDelete = func(id primitive.ObjectID) error {
		if id == a1x.ID {
			return errors.New("interrupted")
		}
		return nil
	}
	res, err := svc.Delete(ctx, a.ID, f.AuthorID)
	require.ErrorIs(t, err, hierarchy.ErrPartialCascade)
	f.Store.OnSoftDelete = nil

	report, err := svc.Reconcile(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Workspaces)
	assert.Equal(t, 1, report.Orphans)
	assert.Equal(t, 2, report.Deleted)
	assert.Zero(t, report.Failures)

	for _, id := range []primitive.ObjectID{a1x.ID, a1y.ID} {
		d, err := f.Store.Lookup(ctx, id)
		require.NoError(t, err)
		assert.True(t, d.IsDeleted)
		assert.Equal(t, res.Batch, d.DeleteBatch, "reconciled records join the original batch")
		require.NotNil(t, d.DeletedBy)
		assert.Equal(t, f.AuthorID, *d.DeletedBy)
	}

	again, err := svc.Reconcile(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, again.Orphans)
}

func TestReconcile_LeavesMissingParentOrphans(t *testing.T) {
	f := testutil.NewFixtures()
	svc, _ := newService(f)
	ctx := context.Background()

	missing := models.Document{ID: primitive.NewObjectID()}
	lost := f.Doc("lost", &missing, 0)

	report, err := svc.Reconcile(ctx, &f.WorkspaceID)
	require.NoError(t, err)
	assert.Zero(t, report.Orphans)

	_, err = f.Store.Get(ctx, lost.ID)
	assert.NoError(t, err)
}

func TestReconcile_CountsFailures(t *testing.T) {
	f := testutil.NewFixtures()
	svc, _ := newService(f)
	ctx := context.Background()

	dead := f.Doc("dead", nil, 0)
	child := f.Doc("child", &dead, 0)
	_, err := f.Store.SoftDelete(ctx, dead.ID, "b1", primitive.NilObjectID)
	require.NoError(t, err)

	f.Store.OnSoftDelete = func(id primitive.ObjectID) error {
		if id == child.ID {
			return errors.New("still down")
		}
		return nil
	}

	report, err := svc.Reconcile(ctx, &f.WorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Orphans)
	assert.Equal(t, 1, report.Failures)
	assert.Zero(t, report.Deleted)
}

func TestReconcile_CanceledContext(t *testing.T) {
	f := testutil.NewFixtures()
	svc, _ := newService(f)
	f.Scenario()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Reconcile(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
