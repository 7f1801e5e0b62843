// internal/app/hierarchy/tree.go
package hierarchy

import (
	"bytes"
	"sort"

	"github.com/dalemusser/docuhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TreeNode is a document with its children attached.
type TreeNode struct {
	models.Document
	Children []*TreeNode `json:"children"`

	// Orphan marks a node promoted to the top level because its parent was
	// not part of the input.
	Orphan bool `json:"orphan,omitempty"`
}

// BuildTree turns a flat list of documents into a forest.
//
// Children (and the returned roots) are ordered by position, ties broken by
// id. A document whose parent is not in docs becomes an orphan root, and a
// parent cycle is broken at its first document in that order, so one bad
// record never hides the rest of the tree. BuildTree does not modify docs.
func BuildTree(docs []models.Document) []*TreeNode {
	ordered := make([]models.Document, len(docs))
	copy(ordered, docs)
	sortDocuments(ordered)

	nodes := make(map[primitive.ObjectID]*TreeNode, len(ordered))
	for _, d := range ordered {
		if _, dup := nodes[d.ID]; dup {
			continue
		}
		nodes[d.ID] = &TreeNode{Document: d, Children: []*TreeNode{}}
	}

	var roots []*TreeNode
	placed := make(map[primitive.ObjectID]bool, len(nodes))
	for _, d := range ordered {
		n := nodes[d.ID]
		if placed[d.ID] {
			continue
		}
		placed[d.ID] = true
		if d.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[*d.ParentID]
		if !ok || parent == n {
			n.Orphan = true
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	// Anything not reachable from a root sits on a parent cycle.
	reached := make(map[primitive.ObjectID]bool, len(nodes))
	for _, r := range roots {
		markReached(r, reached)
	}
	for _, d := range ordered {
		if reached[d.ID] {
			continue
		}
		n := nodes[d.ID]
		if p, ok := nodes[*n.ParentID]; ok {
			p.Children = removeChild(p.Children, n)
		}
		n.Orphan = true
		roots = append(roots, n)
		markReached(n, reached)
	}

	sortNodes(roots)
	return roots
}

// Flatten lists every node of the forest depth-first, parents before
// children.
func Flatten(roots []*TreeNode) []models.Document {
	var out []models.Document
	var walk func(ns []*TreeNode)
	walk = func(ns []*TreeNode) {
		for _, n := range ns {
			out = append(out, n.Document)
			walk(n.Children)
		}
	}
	walk(roots)
	return out
}

// Find returns the node with the given id, or nil.
func Find(roots []*TreeNode, id primitive.ObjectID) *TreeNode {
	for _, n := range roots {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

func markReached(n *TreeNode, reached map[primitive.ObjectID]bool) {
	if reached[n.ID] {
		return
	}
	reached[n.ID] = true
	for _, c := range n.Children {
		markReached(c, reached)
	}
}

func removeChild(children []*TreeNode, target *TreeNode) []*TreeNode {
	out := children[:0]
	for _, c := range children {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

func sortNodes(ns []*TreeNode) {
	sort.SliceStable(ns, func(i, j int) bool {
		return lessDocument(ns[i].Document, ns[j].Document)
	})
	for _, n := range ns {
		sortNodes(n.Children)
	}
}

func sortDocuments(docs []models.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return lessDocument(docs[i], docs[j])
	})
}

func lessDocument(a, b models.Document) bool {
	if a.Position != b.Position {
		return a.Position < b.Position
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}
