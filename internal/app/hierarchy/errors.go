// internal/app/hierarchy/errors.go
package hierarchy

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrInvalidParent      = errors.New("invalid parent document")
	ErrCycleDetected      = errors.New("document hierarchy cycle detected")
	ErrSiblingSetMismatch = errors.New("ordered ids do not match the current siblings")
	ErrConflict           = errors.New("document was modified concurrently")
	ErrPartialCascade     = errors.New("cascade delete did not complete")
)

// SiblingSetMismatchError describes how a reorder payload differs from the
// live sibling group. It matches ErrSiblingSetMismatch with errors.Is.
type SiblingSetMismatchError struct {
	Missing    []primitive.ObjectID // live siblings absent from the payload
	Unexpected []primitive.ObjectID // payload ids that are not live siblings
	Duplicates []primitive.ObjectID // payload ids listed more than once
}

func (e *SiblingSetMismatchError) Error() string {
	var parts []string
	if n := len(e.Missing); n > 0 {
		parts = append(parts, fmt.Sprintf("%d missing", n))
	}
	if n := len(e.Unexpected); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unexpected", n))
	}
	if n := len(e.Duplicates); n > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicated", n))
	}
	return ErrSiblingSetMismatch.Error() + " (" + strings.Join(parts, ", ") + ")"
}

func (e *SiblingSetMismatchError) Is(target error) bool {
	return target == ErrSiblingSetMismatch
}

// PartialCascadeError reports a cascade delete interrupted by a store
// failure. Deleted lists the ids soft-deleted before the failure; calling
// Delete again (or the reconciler) finishes the job.
type PartialCascadeError struct {
	RootID  primitive.ObjectID
	Deleted []primitive.ObjectID
	Err     error
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("%s: %s (%d deleted): %v", ErrPartialCascade, e.RootID.Hex(), len(e.Deleted), e.Err)
}

func (e *PartialCascadeError) Is(target error) bool {
	return target == ErrPartialCascade
}

func (e *PartialCascadeError) Unwrap() error {
	return e.Err
}
