package hierarchy_test

import (
	"testing"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func doc(title string, parent *models.Document, pos int) models.Document {
	d := models.Document{ID: primitive.NewObjectID(), Title: title, Position: pos}
	if parent != nil {
		pid := parent.ID
		d.ParentID = &pid
	}
	return d
}

func titles(ns []*hierarchy.TreeNode) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Title)
	}
	return out
}

func TestBuildTree_OrdersByPosition(t *testing.T) {
	a := doc("A", nil, 0)
	b := doc("B", nil, 1)
	c := doc("C", nil, 2)
	a2 := doc("A2", &a, 1)
	a1 := doc("A1", &a, 0)

	roots := hierarchy.BuildTree([]models.Document{c, a2, b, a1, a})

	require.Equal(t, []string{"A", "B", "C"}, titles(roots))
	assert.Equal(t, []string{"A1", "A2"}, titles(roots[0].Children))
	assert.Empty(t, roots[1].Children)
	assert.False(t, roots[0].Orphan)
}

func TestBuildTree_RoundTrip(t *testing.T) {
	a := doc("A", nil, 0)
	a1 := doc("A1", &a, 0)
	a1x := doc("A1x", &a1, 0)
	b := doc("B", nil, 1)
	in := []models.Document{a, a1, a1x, b}

	flat := hierarchy.Flatten(hierarchy.BuildTree(in))

	require.Len(t, flat, len(in))
	seen := map[primitive.ObjectID]models.Document{}
	for _, d := range flat {
		seen[d.ID] = d
	}
	for _, d := range in {
		got, ok := seen[d.ID]
		require.True(t, ok, "missing %s", d.Title)
		assert.Equal(t, d.ParentID, got.ParentID)
		assert.Equal(t, d.Position, got.Position)
	}
	// pre-order: parents first
	assert.Equal(t, []string{"A", "A1", "A1x", "B"}, []string{flat[0].Title, flat[1].Title, flat[2].Title, flat[3].Title})
}

func TestBuildTree_TiesBrokenByID(t *testing.T) {
	x := doc("X", nil, 0)
	y := doc("Y", nil, 0) // created after x, larger id
	roots := hierarchy.BuildTree([]models.Document{y, x})
	assert.Equal(t, []string{"X", "Y"}, titles(roots))
}

func TestBuildTree_OrphansBecomeRoots(t *testing.T) {
	gone := doc("gone", nil, 0)
	a := doc("A", nil, 0)
	orphan := doc("orphan", &gone, 1)

	roots := hierarchy.BuildTree([]models.Document{a, orphan})

	require.Equal(t, []string{"A", "orphan"}, titles(roots))
	assert.True(t, roots[1].Orphan)
	assert.False(t, roots[0].Orphan)
}

func TestBuildTree_SelfParent(t *testing.T) {
	s := doc("self", nil, 0)
	s.ParentID = &s.ID

	roots := hierarchy.BuildTree([]models.Document{s})
	require.Len(t, roots, 1)
	assert.True(t, roots[0].Orphan)
	assert.Empty(t, roots[0].Children)
}

func TestBuildTree_BreaksCycles(t *testing.T) {
	a := doc("A", nil, 0)
	b := doc("B", &a, 0)
	a.ParentID = &b.ID // A <-> B
	r := doc("R", nil, 0)

	roots := hierarchy.BuildTree([]models.Document{a, b, r})

	assert.Len(t, hierarchy.Flatten(roots), 3, "every document must appear exactly once")
	var promoted *hierarchy.TreeNode
	for _, n := range roots {
		if n.Orphan {
			promoted = n
		}
	}
	require.NotNil(t, promoted)
	require.Len(t, promoted.Children, 1)
	assert.Empty(t, promoted.Children[0].Children)
}

func TestBuildTree_DoesNotModifyInput(t *testing.T) {
	b := doc("B", nil, 1)
	a := doc("A", nil, 0)
	in := []models.Document{b, a}

	hierarchy.BuildTree(in)
	assert.Equal(t, "B", in[0].Title)
}

func TestBuildTree_Empty(t *testing.T) {
	assert.Empty(t, hierarchy.BuildTree(nil))
}

func TestFind(t *testing.T) {
	a := doc("A", nil, 0)
	a1 := doc("A1", &a, 0)
	roots := hierarchy.BuildTree([]models.Document{a, a1})

	n := hierarchy.Find(roots, a1.ID)
	require.NotNil(t, n)
	assert.Equal(t, "A1", n.Title)
	assert.Nil(t, hierarchy.Find(roots, primitive.NewObjectID()))
}
