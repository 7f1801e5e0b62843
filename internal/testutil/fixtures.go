package testutil

import (
	"github.com/dalemusser/docuhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixtures seeds documents into a MemStore for one workspace.
type Fixtures struct {
	Store       *MemStore
	WorkspaceID primitive.ObjectID
	AuthorID    primitive.ObjectID
}

// NewFixtures returns fixtures over a fresh MemStore and workspace.
func NewFixtures() *Fixtures {
	return &Fixtures{
		Store:       NewMemStore(),
		WorkspaceID: primitive.NewObjectID(),
		AuthorID:    primitive.NewObjectID(),
	}
}

// Doc stores a live document with the given parent (nil = top level) and
// position.
func (f *Fixtures) Doc(title string, parent *models.Document, position int) models.Document {
	doc := models.Document{
		WorkspaceID:  f.WorkspaceID,
		Position:     position,
		Title:        title,
		AuthorID:     f.AuthorID,
		LastEditedBy: f.AuthorID,
		Metadata:     models.DocumentMetadata{Tags: []string{}},
	}
	if parent != nil {
		pid := parent.ID
		doc.ParentID = &pid
	}
	return f.Store.Put(doc)
}

// Scenario builds the workspace
//
//	A (0)
//	  A1 (0)
//	B (1)
//	C (2)
//
// and returns A, A1, B, C.
func (f *Fixtures) Scenario() (a, a1, b, c models.Document) {
	a = f.Doc("A", nil, 0)
	a1 = f.Doc("A1", &a, 0)
	b = f.Doc("B", nil, 1)
	c = f.Doc("C", nil, 2)
	return a, a1, b, c
}
