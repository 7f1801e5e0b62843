package testutil

import (
	"context"
	"sync"
	"time"

	membershipstore "github.com/dalemusser/docuhub/internal/app/store/memberships"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemMembers is an in-memory membership lookup for authorization tests.
type MemMembers struct {
	mu      sync.Mutex
	members map[[2]primitive.ObjectID]models.WorkspaceMember
	err     error
}

func NewMemMembers() *MemMembers {
	return &MemMembers{members: map[[2]primitive.ObjectID]models.WorkspaceMember{}}
}

// Put grants userID the role in workspaceID.
func (m *MemMembers) Put(workspaceID, userID primitive.ObjectID, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[[2]primitive.ObjectID{workspaceID, userID}] = models.WorkspaceMember{
		ID:          primitive.NewObjectID(),
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		CreatedAt:   time.Now().UTC(),
	}
}

// FailWith makes every Get return err.
func (m *MemMembers) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemMembers) Get(_ context.Context, workspaceID, userID primitive.ObjectID) (models.WorkspaceMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return models.WorkspaceMember{}, m.err
	}
	wm, ok := m.members[[2]primitive.ObjectID{workspaceID, userID}]
	if !ok {
		return models.WorkspaceMember{}, membershipstore.ErrNotFound
	}
	return wm, nil
}
