// internal/app/hierarchy/reconcile.go
package hierarchy

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Workspaces int `json:"workspaces" yaml:"workspaces"`
	Orphans    int `json:"orphans" yaml:"orphans"`
	Deleted    int `json:"deleted" yaml:"deleted"`
	Failures   int `json:"failures" yaml:"failures"`
}

// Reconcile finishes cascade deletes that were interrupted part way: every
// live document whose parent is soft-deleted is deleted together with its
// subtree, under the parent's delete batch. With a nil workspaceID every
// workspace holding live documents is scanned.
//
// Documents whose parent does not exist at all are left alone; the tree
// view already shows them as orphans.
func (s *Service) Reconcile(ctx context.Context, workspaceID *primitive.ObjectID) (ReconcileReport, error) {
	var report ReconcileReport

	var workspaces []primitive.ObjectID
	if workspaceID != nil {
		workspaces = []primitive.ObjectID{*workspaceID}
	} else {
		ids, err := s.store.WorkspaceIDs(ctx)
		if err != nil {
			return report, err
		}
		workspaces = ids
	}

	for _, ws := range workspaces {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Workspaces++

		docs, err := s.store.ListByWorkspace(ctx, ws)
		if err != nil {
			return report, err
		}
		index := indexByID(docs)

		touched := false
		for _, d := range docs {
			if d.ParentID == nil {
				continue
			}
			if _, live := index[*d.ParentID]; live {
				continue
			}
			parent, err := s.store.Lookup(ctx, *d.ParentID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return report, err
			}
			if !parent.IsDeleted {
				continue
			}

			report.Orphans++
			touched = true
			batch := parent.DeleteBatch
			if batch == "" {
				batch = s.newBatch()
			}
			actor := primitive.NilObjectID
			if parent.DeletedBy != nil {
				actor = *parent.DeletedBy
			}

			res, err := s.cascade(ctx, d, batch, actor)
			report.Deleted += len(res.Deleted)
			if err != nil {
				report.Failures++
				s.log.Warn("reconcile cascade failed",
					zap.String("document_id", d.ID.Hex()),
					zap.String("workspace_id", ws.Hex()),
					zap.Error(err))
			}
		}
		if touched {
			s.invalidate(ctx, ws)
		}
	}

	if report.Orphans > 0 {
		s.log.Info("reconciled interrupted deletes",
			zap.Int("workspaces", report.Workspaces),
			zap.Int("orphans", report.Orphans),
			zap.Int("deleted", report.Deleted),
			zap.Int("failures", report.Failures))
	}
	return report, nil
}
