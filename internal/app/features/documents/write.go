// internal/app/features/documents/write.go
package documents

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/app/system/jsonresp"
	"github.com/dalemusser/docuhub/internal/app/system/limits"
	"github.com/dalemusser/docuhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type createRequest struct {
	Title       string          `json:"title"`
	WorkspaceID string          `json:"workspaceId"`
	ParentID    *string         `json:"parentId"`
	Position    *int            `json:"position"`
	Emoji       string          `json:"emoji"`
	Content     json.RawMessage `json:"content"`
	Tags        []string        `json:"tags"`
}

type updateRequest struct {
	Title   *string         `json:"title"`
	Emoji   *string         `json:"emoji"`
	Content json.RawMessage `json:"content"`
	Tags    []string        `json:"tags"`
	Version *int64          `json:"version"`
}

type moveRequest struct {
	NewParentID *string `json:"newParentId"`
	NewPosition *int    `json:"newPosition"`
}

type reorderRequest struct {
	ParentID    *string  `json:"parentId"`
	DocumentIDs []string `json:"documentIds"`
}

type deleteResponse struct {
	Deleted          []string `json:"deleted"`
	FavoritesRemoved int64    `json:"favoritesRemoved"`
}

type favoriteResponse struct {
	IsFavorite bool `json:"isFavorite"`
}

// HandleCreate handles POST /documents.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := decodeBody(w, r, limits.MaxDocumentBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	wsID, err := parseID(req.WorkspaceID, "workspaceId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	parentID, err := parseOptionalID(req.ParentID, "parentId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "documents.create")
	defer cancel()

	if err := h.Authz.CanWrite(ctx, uid, wsID); err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.Svc.Create(ctx, hierarchy.CreateInput{
		WorkspaceID: wsID,
		ParentID:    parentID,
		Title:       req.Title,
		Emoji:       req.Emoji,
		Content:     req.Content,
		Tags:        req.Tags,
		Position:    req.Position,
		Actor:       uid,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/documents/"+doc.ID.Hex())
	jsonresp.Write(w, http.StatusCreated, doc)
}

// HandleUpdate handles PUT /documents/{id}. The expected version comes from
// the body's "version" or, failing that, If-Match; without either the
// write is unconditional.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateRequest
	if err := decodeBody(w, r, limits.MaxDocumentBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	version, err := ifMatchVersion(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Version != nil {
		if *req.Version < 0 {
			h.writeError(w, r, badRequest("invalid version"))
			return
		}
		version = *req.Version
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "documents.update")
	defer cancel()

	if _, err := h.documentFor(ctx, uid, id, true); err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.Svc.Update(ctx, hierarchy.UpdateInput{
		DocumentID:      id,
		ExpectedVersion: version,
		Title:           req.Title,
		Emoji:           req.Emoji,
		Content:         req.Content,
		Tags:            req.Tags,
		Actor:           uid,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(doc.Version, 10)))
	jsonresp.Write(w, http.StatusOK, doc)
}

// HandleMove handles PUT /documents/{id}/move. A missing or null
// newParentId moves to the top level; a missing newPosition appends.
func (h *Handler) HandleMove(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req moveRequest
	if err := decodeBody(w, r, limits.MaxCommandBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	parentID, err := parseOptionalID(req.NewParentID, "newParentId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	pos := hierarchy.AppendPosition
	if req.NewPosition != nil {
		pos = *req.NewPosition
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "documents.move")
	defer cancel()

	if _, err := h.documentFor(ctx, uid, id, true); err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.Svc.Move(ctx, hierarchy.MoveInput{
		DocumentID:  id,
		NewParentID: parentID,
		NewPosition: pos,
		Actor:       uid,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonresp.Write(w, http.StatusOK, doc)
}

// HandleReorder handles PUT /documents/workspace/{workspaceID}/reorder.
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	wsID, err := urlID(r, "workspaceID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req reorderRequest
	if err := decodeBody(w, r, limits.MaxCommandBody, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	parentID, err := parseOptionalID(req.ParentID, "parentId")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ordered := make([]primitive.ObjectID, 0, len(req.DocumentIDs))
	for _, raw := range req.DocumentIDs {
		oid, err := parseID(raw, "documentIds")
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		ordered = append(ordered, oid)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "documents.reorder")
	defer cancel()

	if err := h.Authz.CanWrite(ctx, uid, wsID); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Svc.Reorder(ctx, hierarchy.ReorderInput{
		WorkspaceID: wsID,
		ParentID:    parentID,
		OrderedIDs:  ordered,
		Actor:       uid,
	}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete handles DELETE /documents/{id}. Deleting an already-deleted
// document succeeds and finishes any descendants left by an earlier
// interrupted delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "documents.delete")
	defer cancel()

	doc, err := h.Svc.Lookup(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Authz.CanWrite(ctx, uid, doc.WorkspaceID); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.Svc.Delete(ctx, id, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.Log.Debug("delete request served",
		zap.String("document_id", id.Hex()),
		zap.String("user_id", uid.Hex()),
		zap.Int("deleted", len(res.Deleted)))
	jsonresp.Write(w, http.StatusOK, deleteResponse{
		Deleted:          hexes(res.Deleted),
		FavoritesRemoved: res.FavoritesRemoved,
	})
}

// HandleToggleFavorite handles POST /documents/{id}/favorite.
// Favorites are personal, so readers may keep them too.
func (h *Handler) HandleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "documents.favorite")
	defer cancel()

	if _, err := h.documentFor(ctx, uid, id, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	fav, err := h.Svc.ToggleFavorite(ctx, uid, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonresp.Write(w, http.StatusOK, favoriteResponse{IsFavorite: fav})
}
