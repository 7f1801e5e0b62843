// internal/app/hierarchy/path.go
package hierarchy

import (
	"github.com/dalemusser/docuhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Crumb is one breadcrumb entry.
type Crumb struct {
	ID    primitive.ObjectID `json:"id"`
	Title string             `json:"title"`
	Emoji string             `json:"emoji,omitempty"`
}

// ResolvePath walks parent pointers from id up to the top level and returns
// the chain root-first, ending with the document itself.
//
// The walk stops at the first missing ancestor, so an orphan is reported as
// top level. More than len(index)+1 steps means the pointers loop and
// ErrCycleDetected is returned.
func ResolvePath(index map[primitive.ObjectID]models.Document, id primitive.ObjectID) ([]Crumb, error) {
	doc, ok := index[id]
	if !ok {
		return nil, ErrNotFound
	}

	limit := len(index) + 1
	var chain []Crumb
	for steps := 0; ; steps++ {
		if steps > limit {
			return nil, ErrCycleDetected
		}
		chain = append(chain, Crumb{ID: doc.ID, Title: doc.Title, Emoji: doc.Emoji})
		if doc.ParentID == nil {
			break
		}
		parent, ok := index[*doc.ParentID]
		if !ok {
			break
		}
		doc = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// indexByID maps documents by id.
func indexByID(docs []models.Document) map[primitive.ObjectID]models.Document {
	idx := make(map[primitive.ObjectID]models.Document, len(docs))
	for _, d := range docs {
		idx[d.ID] = d
	}
	return idx
}

// isAncestorOrSelf reports whether candidate is start or one of its
// ancestors. The walk is bounded like ResolvePath.
func isAncestorOrSelf(index map[primitive.ObjectID]models.Document, start, candidate primitive.ObjectID) (bool, error) {
	limit := len(index) + 1
	cur := start
	for steps := 0; ; steps++ {
		if steps > limit {
			return false, ErrCycleDetected
		}
		if cur == candidate {
			return true, nil
		}
		doc, ok := index[cur]
		if !ok || doc.ParentID == nil {
			return false, nil
		}
		cur = *doc.ParentID
	}
}
