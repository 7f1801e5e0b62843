// internal/app/hierarchy/service.go
package hierarchy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/docuhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultTitle is used when a document is created or renamed without one.
const DefaultTitle = "Untitled"

// AppendPosition places a document after its last sibling.
const AppendPosition = -1

// Service maintains the document forest of every workspace on top of a flat
// Store. Each method is one logical operation; callers are expected to
// have authorized the user for the workspace already.
type Service struct {
	store     Store
	favorites FavoritesIndex
	cache     TreeCache
	log       *zap.Logger
	newBatch  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTreeCache enables caching of built trees.
func WithTreeCache(c TreeCache) Option {
	return func(s *Service) { s.cache = c }
}

// New creates a Service.
func New(store Store, favorites FavoritesIndex, opts ...Option) *Service {
	s := &Service{
		store:     store,
		favorites: favorites,
		log:       zap.NewNop(),
		newBatch:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

/*─────────────────────────────────────────────────────────────────────────────*
| Reads                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// Get returns a live document.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	return s.store.Get(ctx, id)
}

// Lookup returns a document whether or not it has been deleted.
func (s *Service) Lookup(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	return s.store.Lookup(ctx, id)
}

// Open returns a live document and counts the view.
func (s *Service) Open(ctx context.Context, id primitive.ObjectID) (models.Document, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return models.Document{}, err
	}
	if err := s.store.RecordView(ctx, id); err != nil {
		s.log.Warn("record document view failed",
			zap.String("document_id", id.Hex()),
			zap.Error(err))
	}
	return doc, nil
}

// List returns the workspace's live documents as a flat list.
func (s *Service) List(ctx context.Context, workspaceID primitive.ObjectID) ([]models.Document, error) {
	return s.store.ListByWorkspace(ctx, workspaceID)
}

// Tree returns the workspace's documents as a forest without content.
//
// Documents left under a soft-deleted ancestor by an interrupted cascade
// are hidden until the reconciler finishes deleting them; documents whose
// parent is missing altogether are shown as top-level orphans.
func (s *Service) Tree(ctx context.Context, workspaceID primitive.ObjectID) ([]*TreeNode, error) {
	// The generation is read before the store so a write that lands while
	// the tree is being built retires the entry this call is about to set.
	var (
		gen    int64
		cached bool
	)
	if s.cache != nil {
		gen, cached = s.cache.Generation(ctx, workspaceID)
	}
	if cached {
		if tree, ok := s.cache.Get(ctx, workspaceID, gen); ok {
			return tree, nil
		}
	}

	docs, err := s.store.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Content = nil
	}

	roots := BuildTree(docs)
	kept := make([]*TreeNode, 0, len(roots))
	for _, r := range roots {
		if r.Orphan && r.ParentID != nil {
			parent, err := s.store.Lookup(ctx, *r.ParentID)
			switch {
			case err == nil && parent.IsDeleted:
				continue
			case err != nil && !errors.Is(err, ErrNotFound):
				return nil, err
			}
		}
		kept = append(kept, r)
	}

	if cached {
		s.cache.Set(ctx, workspaceID, gen, kept)
	}
	return kept, nil
}

// ResolvePath returns the breadcrumb chain of a live document.
func (s *Service) ResolvePath(ctx context.Context, id primitive.ObjectID) ([]Crumb, error) {
	doc, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.ListByWorkspace(ctx, doc.WorkspaceID)
	if err != nil {
		return nil, err
	}
	index := indexByID(docs)
	index[doc.ID] = doc

	path, err := ResolvePath(index, id)
	if errors.Is(err, ErrCycleDetected) {
		s.log.Error("parent cycle found while resolving path",
			zap.String("document_id", id.Hex()),
			zap.String("workspace_id", doc.WorkspaceID.Hex()))
	}
	return path, err
}

// Search finds live documents by folded title substring and/or tag.
func (s *Service) Search(ctx context.Context, workspaceID primitive.ObjectID, query, tag string, limit int) ([]models.Document, error) {
	return s.store.Search(ctx, workspaceID, strings.TrimSpace(query), strings.TrimSpace(tag), limit)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Create / update                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// CreateInput describes a new document.
type CreateInput struct {
	WorkspaceID primitive.ObjectID
	ParentID    *primitive.ObjectID
	Title       string
	Emoji       string
	Content     json.RawMessage
	Tags        []string
	Position    *int // nil appends
	Actor       primitive.ObjectID
}

// Create adds a document to a sibling group. Without a position it is
// appended; with one it is inserted there and later siblings shift down.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Document, error) {
	if in.ParentID != nil {
		if _, err := s.liveParent(ctx, in.WorkspaceID, *in.ParentID); err != nil {
			return models.Document{}, err
		}
	}

	siblings, err := s.store.ListByParent(ctx, in.WorkspaceID, in.ParentID)
	if err != nil {
		return models.Document{}, err
	}
	sortDocuments(siblings)

	pos := len(siblings)
	if in.Position != nil && *in.Position >= 0 && *in.Position < pos {
		pos = *in.Position
	}

	title := normalizeTitle(in.Title)
	doc := models.Document{
		WorkspaceID:  in.WorkspaceID,
		ParentID:     in.ParentID,
		Position:     pos,
		Title:        title,
		Slug:         slug.Make(title),
		Emoji:        htmlsanitize.PlainText(in.Emoji),
		Content:      in.Content,
		Metadata:     models.DocumentMetadata{Tags: normalizeTags(in.Tags)},
		AuthorID:     in.Actor,
		LastEditedBy: in.Actor,
	}

	// Renumber the group around the insertion point.
	var plan []placement
	for i, sib := range siblings {
		want := i
		if i >= pos {
			want = i + 1
		}
		if sib.Position != want {
			plan = append(plan, placement{doc: sib, position: want})
		}
	}

	var created models.Document
	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.apply(ctx, plan, in.Actor); err != nil {
			return err
		}
		var err error
		created, err = s.store.Insert(ctx, doc)
		if err != nil {
			s.rollback(ctx, plan, in.Actor)
		}
		return err
	})
	if err != nil {
		return models.Document{}, err
	}
	if s.settle(ctx, in.WorkspaceID, in.ParentID, in.Actor) {
		if fresh, err := s.store.Get(ctx, created.ID); err == nil {
			created = fresh
		}
	}

	s.invalidate(ctx, in.WorkspaceID)
	s.log.Info("document created",
		zap.String("document_id", created.ID.Hex()),
		zap.String("workspace_id", created.WorkspaceID.Hex()),
		zap.Int("position", created.Position),
		zap.Int("shifted", len(plan)))
	return created, nil
}

// UpdateInput is a presentational patch. Parent and position change only
// through Move and Reorder.
type UpdateInput struct {
	DocumentID      primitive.ObjectID
	ExpectedVersion int64 // AnyVersion skips the check
	Title           *string
	Emoji           *string
	Content         json.RawMessage
	Tags            []string
	Actor           primitive.ObjectID
}

// Update applies a patch to a live document.
func (s *Service) Update(ctx context.Context, in UpdateInput) (models.Document, error) {
	patch := Patch{
		Content:  in.Content,
		EditedBy: in.Actor,
	}
	if in.Title != nil {
		title := normalizeTitle(*in.Title)
		sl := slug.Make(title)
		patch.Title = &title
		patch.Slug = &sl
	}
	if in.Emoji != nil {
		emoji := htmlsanitize.PlainText(*in.Emoji)
		patch.Emoji = &emoji
	}
	if in.Tags != nil {
		patch.Tags = normalizeTags(in.Tags)
	}

	doc, err := s.store.Update(ctx, in.DocumentID, in.ExpectedVersion, patch)
	if err != nil {
		return models.Document{}, err
	}
	s.invalidate(ctx, doc.WorkspaceID)
	return doc, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Move / reorder                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// MoveInput re-homes a document. NewPosition < 0 (or past the end) appends.
type MoveInput struct {
	DocumentID  primitive.ObjectID
	NewParentID *primitive.ObjectID
	NewPosition int
	Actor       primitive.ObjectID
}

// Move re-homes a document inside its workspace. The old sibling group is
// renumbered to close the gap and the new one to open a slot; both groups
// change together or not at all.
func (s *Service) Move(ctx context.Context, in MoveInput) (models.Document, error) {
	current, err := s.store.Get(ctx, in.DocumentID)
	if err != nil {
		return models.Document{}, err
	}
	docs, err := s.store.ListByWorkspace(ctx, current.WorkspaceID)
	if err != nil {
		return models.Document{}, err
	}
	index := indexByID(docs)
	doc, ok := index[current.ID]
	if !ok {
		doc = current
	}

	if in.NewParentID != nil {
		parentID := *in.NewParentID
		if parentID == doc.ID {
			return models.Document{}, fmt.Errorf("%w: document cannot be its own parent", ErrCycleDetected)
		}
		if _, ok := index[parentID]; !ok {
			return models.Document{}, fmt.Errorf("%w: %s is not a live document in this workspace", ErrInvalidParent, parentID.Hex())
		}
		inside, err := isAncestorOrSelf(index, parentID, doc.ID)
		if err != nil {
			return models.Document{}, err
		}
		if inside {
			return models.Document{}, fmt.Errorf("%w: %s is a descendant of %s", ErrCycleDetected, parentID.Hex(), doc.ID.Hex())
		}
	}

	sameGroup := doc.SameParent(in.NewParentID)
	oldGroup := siblingsOf(docs, doc.ParentID, doc.ID)
	newGroup := oldGroup
	if !sameGroup {
		newGroup = siblingsOf(docs, in.NewParentID, doc.ID)
	}

	pos := in.NewPosition
	if pos < 0 || pos > len(newGroup) {
		pos = len(newGroup)
	}

	var plan []placement
	ordered := make([]models.Document, 0, len(newGroup)+1)
	ordered = append(ordered, newGroup[:pos]...)
	ordered = append(ordered, doc)
	ordered = append(ordered, newGroup[pos:]...)
	for i, d := range ordered {
		if d.ID == doc.ID {
			if !sameGroup || d.Position != i {
				plan = append(plan, placement{doc: d, position: i, setParent: !sameGroup, parentID: in.NewParentID})
			}
			continue
		}
		if d.Position != i {
			plan = append(plan, placement{doc: d, position: i})
		}
	}
	if !sameGroup {
		for i, d := range oldGroup {
			if d.Position != i {
				plan = append(plan, placement{doc: d, position: i})
			}
		}
	}

	if len(plan) == 0 {
		return doc, nil
	}

	if err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		return s.apply(ctx, plan, in.Actor)
	}); err != nil {
		return models.Document{}, err
	}
	s.settle(ctx, doc.WorkspaceID, in.NewParentID, in.Actor)
	if !sameGroup {
		s.settle(ctx, doc.WorkspaceID, doc.ParentID, in.Actor)
	}

	moved, err := s.store.Get(ctx, doc.ID)
	if err != nil {
		return models.Document{}, err
	}
	s.invalidate(ctx, doc.WorkspaceID)
	s.log.Info("document moved",
		zap.String("document_id", doc.ID.Hex()),
		zap.String("workspace_id", doc.WorkspaceID.Hex()),
		zap.Stringp("from_parent", hexp(doc.ParentID)),
		zap.Stringp("to_parent", hexp(in.NewParentID)),
		zap.Int("position", moved.Position),
		zap.Int("writes", len(plan)))
	return moved, nil
}

// ReorderInput is a complete ordering of one sibling group.
type ReorderInput struct {
	WorkspaceID primitive.ObjectID
	ParentID    *primitive.ObjectID
	OrderedIDs  []primitive.ObjectID
	Actor       primitive.ObjectID
}

// Reorder assigns position = index to every id in OrderedIDs. The ids must
// be exactly the live siblings; a stale client view gets a
// *SiblingSetMismatchError instead of silently losing a document.
func (s *Service) Reorder(ctx context.Context, in ReorderInput) error {
	if in.ParentID != nil {
		if _, err := s.liveParent(ctx, in.WorkspaceID, *in.ParentID); err != nil {
			return err
		}
	}

	siblings, err := s.store.ListByParent(ctx, in.WorkspaceID, in.ParentID)
	if err != nil {
		return err
	}
	if mismatch := compareSiblingSet(siblings, in.OrderedIDs); mismatch != nil {
		return mismatch
	}

	byID := indexByID(siblings)
	var plan []placement
	for i, id := range in.OrderedIDs {
		if d := byID[id]; d.Position != i {
			plan = append(plan, placement{doc: d, position: i})
		}
	}
	if len(plan) == 0 {
		return nil
	}

	if err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		return s.apply(ctx, plan, in.Actor)
	}); err != nil {
		return err
	}

	s.invalidate(ctx, in.WorkspaceID)
	s.log.Info("siblings reordered",
		zap.String("workspace_id", in.WorkspaceID.Hex()),
		zap.Stringp("parent_id", hexp(in.ParentID)),
		zap.Int("count", len(in.OrderedIDs)),
		zap.Int("writes", len(plan)))
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Delete / favorites                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// DeleteResult reports what a cascade delete changed.
type DeleteResult struct {
	Batch            string
	Deleted          []primitive.ObjectID // soft-deleted by this call
	FavoritesRemoved int64
}

// Delete soft-deletes a document and all of its descendants, then drops
// their favorites. Deleting an already-deleted document is not an error: it
// finishes any descendants a previous, interrupted call left behind.
func (s *Service) Delete(ctx context.Context, id, actor primitive.ObjectID) (DeleteResult, error) {
	root, err := s.store.Lookup(ctx, id)
	if err != nil {
		return DeleteResult{}, err
	}
	batch := root.DeleteBatch
	if batch == "" {
		batch = s.newBatch()
	}

	res, err := s.cascade(ctx, root, batch, actor)
	s.invalidate(ctx, root.WorkspaceID)
	if err != nil {
		s.log.Error("cascade delete interrupted",
			zap.String("document_id", id.Hex()),
			zap.String("batch", batch),
			zap.Int("deleted", len(res.Deleted)),
			zap.Error(err))
		return res, err
	}

	s.log.Info("document deleted",
		zap.String("document_id", id.Hex()),
		zap.String("workspace_id", root.WorkspaceID.Hex()),
		zap.String("batch", batch),
		zap.Int("deleted", len(res.Deleted)),
		zap.Int64("favorites_removed", res.FavoritesRemoved))
	return res, nil
}

// cascade walks the subtree breadth-first, soft-deleting each document
// before listing its children. Children already deleted under the same
// batch are walked again so a retry picks up where a failure stopped.
func (s *Service) cascade(ctx context.Context, root models.Document, batch string, actor primitive.ObjectID) (DeleteResult, error) {
	res := DeleteResult{Batch: batch}
	partial := func(err error) error {
		return &PartialCascadeError{RootID: root.ID, Deleted: res.Deleted, Err: err}
	}

	queue := []primitive.ObjectID{root.ID}
	seen := map[primitive.ObjectID]bool{root.ID: true}
	var subtree []primitive.ObjectID
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		subtree = append(subtree, cur)

		changed, err := s.store.SoftDelete(ctx, cur, batch, actor)
		if err != nil {
			return res, partial(err)
		}
		if changed {
			res.Deleted = append(res.Deleted, cur)
		}

		children, err := s.store.ListChildren(ctx, root.WorkspaceID, cur, batch)
		if err != nil {
			return res, partial(err)
		}
		for _, c := range children {
			if !seen[c.ID] {
				seen[c.ID] = true
				queue = append(queue, c.ID)
			}
		}
	}

	removed, err := s.favorites.RemoveDocuments(ctx, subtree)
	if err != nil {
		return res, partial(fmt.Errorf("remove favorites: %w", err))
	}
	res.FavoritesRemoved = removed
	return res, nil
}

// ToggleFavorite flips the user's favorite flag on a live document and
// returns the new state.
func (s *Service) ToggleFavorite(ctx context.Context, userID, documentID primitive.ObjectID) (bool, error) {
	doc, err := s.store.Get(ctx, documentID)
	if err != nil {
		return false, err
	}
	fav, err := s.favorites.IsFavorite(ctx, userID, documentID)
	if err != nil {
		return false, err
	}
	if fav {
		if err := s.favorites.Remove(ctx, userID, documentID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.favorites.Add(ctx, userID, doc.WorkspaceID, documentID); err != nil {
		return false, err
	}
	return true, nil
}

// IsFavorite reports whether a live document is one of the user's favorites.
func (s *Service) IsFavorite(ctx context.Context, userID, documentID primitive.ObjectID) (bool, error) {
	if _, err := s.store.Get(ctx, documentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return s.favorites.IsFavorite(ctx, userID, documentID)
}

// ListFavorites returns the user's live favorites in one workspace, in the
// order they were added.
func (s *Service) ListFavorites(ctx context.Context, userID, workspaceID primitive.ObjectID) ([]models.Document, error) {
	ids, err := s.favorites.ListDocumentIDs(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Document{}, nil
	}
	docs, err := s.store.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	index := indexByID(docs)

	out := make([]models.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := index[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// placement is one position (and optionally parent) write. doc holds the
// state read before the operation and is used for the version check and
// for compensation.
type placement struct {
	doc       models.Document
	position  int
	setParent bool
	parentID  *primitive.ObjectID
}

// apply writes the plan in order. On failure the writes already made are
// reverted so that a backend without transactions is left as it was.
func (s *Service) apply(ctx context.Context, plan []placement, actor primitive.ObjectID) error {
	for i, p := range plan {
		pos := p.position
		patch := Patch{Position: &pos, EditedBy: actor}
		if p.setParent {
			patch.SetParent = true
			patch.ParentID = p.parentID
		}
		if _, err := s.store.Update(ctx, p.doc.ID, p.doc.Version, patch); err != nil {
			s.rollback(ctx, plan[:i], actor)
			return err
		}
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, applied []placement, actor primitive.ObjectID) {
	for i := len(applied) - 1; i >= 0; i-- {
		p := applied[i]
		pos := p.doc.Position
		patch := Patch{Position: &pos, EditedBy: actor}
		if p.setParent {
			patch.SetParent = true
			patch.ParentID = p.doc.ParentID
		}
		if _, err := s.store.Update(ctx, p.doc.ID, AnyVersion, patch); err != nil {
			s.log.Warn("revert placement failed",
				zap.String("document_id", p.doc.ID.Hex()),
				zap.Error(err))
		}
	}
}

// settle renumbers a sibling group to 0..n-1 in (position, id) order and
// reports whether anything was rewritten. Appends compute their slot from
// a sibling count read outside any lock, so two concurrent appends (or an
// append racing a move into the group) can share a position; whichever
// writer settles last sees both records and separates them. The target
// order is a pure function of the stored state, so concurrent settles
// agree and version checks are skipped.
func (s *Service) settle(ctx context.Context, workspaceID primitive.ObjectID, parentID *primitive.ObjectID, actor primitive.ObjectID) bool {
	siblings, err := s.store.ListByParent(ctx, workspaceID, parentID)
	if err != nil {
		s.log.Warn("settle sibling positions: list failed",
			zap.String("workspace_id", workspaceID.Hex()),
			zap.Stringp("parent_id", hexp(parentID)),
			zap.Error(err))
		return false
	}
	sortDocuments(siblings)

	fixed := 0
	for i, d := range siblings {
		if d.Position == i {
			continue
		}
		pos := i
		if _, err := s.store.Update(ctx, d.ID, AnyVersion, Patch{Position: &pos, EditedBy: actor}); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			s.log.Warn("settle sibling positions: update failed",
				zap.String("document_id", d.ID.Hex()),
				zap.Error(err))
			break
		}
		fixed++
	}
	if fixed > 0 {
		s.log.Info("sibling positions settled",
			zap.String("workspace_id", workspaceID.Hex()),
			zap.Stringp("parent_id", hexp(parentID)),
			zap.Int("writes", fixed))
	}
	return fixed > 0
}

func (s *Service) liveParent(ctx context.Context, workspaceID, parentID primitive.ObjectID) (models.Document, error) {
	parent, err := s.store.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Document{}, fmt.Errorf("%w: %s does not exist or was deleted", ErrInvalidParent, parentID.Hex())
		}
		return models.Document{}, err
	}
	if parent.WorkspaceID != workspaceID {
		return models.Document{}, fmt.Errorf("%w: %s belongs to another workspace", ErrInvalidParent, parentID.Hex())
	}
	return parent, nil
}

func (s *Service) invalidate(ctx context.Context, workspaceID primitive.ObjectID) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, workspaceID)
	}
}

// siblingsOf returns the live documents under parentID except skip, in
// sibling order.
func siblingsOf(docs []models.Document, parentID *primitive.ObjectID, skip primitive.ObjectID) []models.Document {
	var out []models.Document
	for _, d := range docs {
		if d.ID != skip && d.SameParent(parentID) {
			out = append(out, d)
		}
	}
	sortDocuments(out)
	return out
}

func compareSiblingSet(siblings []models.Document, ordered []primitive.ObjectID) *SiblingSetMismatchError {
	live := make(map[primitive.ObjectID]bool, len(siblings))
	for _, d := range siblings {
		live[d.ID] = true
	}

	var m SiblingSetMismatchError
	given := make(map[primitive.ObjectID]bool, len(ordered))
	for _, id := range ordered {
		if given[id] {
			m.Duplicates = append(m.Duplicates, id)
			continue
		}
		given[id] = true
		if !live[id] {
			m.Unexpected = append(m.Unexpected, id)
		}
	}
	for _, d := range siblings {
		if !given[d.ID] {
			m.Missing = append(m.Missing, d.ID)
		}
	}

	if len(m.Missing) == 0 && len(m.Unexpected) == 0 && len(m.Duplicates) == 0 {
		return nil
	}
	return &m
}

func normalizeTitle(title string) string {
	title = htmlsanitize.PlainText(title)
	if title == "" {
		return DefaultTitle
	}
	return title
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(htmlsanitize.PlainText(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func hexp(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	h := id.Hex()
	return &h
}
