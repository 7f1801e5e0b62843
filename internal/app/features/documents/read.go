// internal/app/features/documents/read.go
package documents

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/app/system/jsonresp"
	"github.com/dalemusser/docuhub/internal/app/system/paging"
	"github.com/dalemusser/docuhub/internal/app/system/timeouts"
	"github.com/dalemusser/docuhub/internal/domain/models"
)

type listResponse struct {
	Documents []models.Document `json:"documents"`
}

type treeResponse struct {
	Tree []*hierarchy.TreeNode `json:"tree"`
}

type documentResponse struct {
	models.Document
	IsFavorite bool `json:"isFavorite"`
}

type pathResponse struct {
	Path []hierarchy.Crumb `json:"path"`
}

// ServeList handles GET /documents/workspace/{workspaceID}.
// With ?tree=true the documents come back nested, without content.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	wsID, err := urlID(r, "workspaceID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "documents.list")
	defer cancel()

	if err := h.Authz.CanRead(ctx, uid, wsID); err != nil {
		h.writeError(w, r, err)
		return
	}

	if asTree, _ := strconv.ParseBool(r.URL.Query().Get("tree")); asTree {
		tree, err := h.Svc.Tree(ctx, wsID)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if tree == nil {
			tree = []*hierarchy.TreeNode{}
		}
		jsonresp.Write(w, http.StatusOK, treeResponse{Tree: tree})
		return
	}

	docs, err := h.Svc.List(ctx, wsID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	jsonresp.Write(w, http.StatusOK, listResponse{Documents: docs})
}

// ServeFavorites handles GET /documents/workspace/{workspaceID}/favorites.
func (h *Handler) ServeFavorites(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	wsID, err := urlID(r, "workspaceID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "documents.favorites")
	defer cancel()

	if err := h.Authz.CanRead(ctx, uid, wsID); err != nil {
		h.writeError(w, r, err)
		return
	}
	docs, err := h.Svc.ListFavorites(ctx, uid, wsID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonresp.Write(w, http.StatusOK, listResponse{Documents: docs})
}

// ServeSearch handles GET /documents/workspace/{workspaceID}/search?q=&tag=&limit=.
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	wsID, err := urlID(r, "workspaceID")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	limit, err := paging.ParseLimit(r)
	if err != nil {
		h.writeError(w, r, badRequest("%v", err))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "documents.search")
	defer cancel()

	if err := h.Authz.CanRead(ctx, uid, wsID); err != nil {
		h.writeError(w, r, err)
		return
	}
	docs, err := h.Svc.Search(ctx, wsID, q.Get("q"), q.Get("tag"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	jsonresp.Write(w, http.StatusOK, listResponse{Documents: docs})
}

// ServeDocument handles GET /documents/{id}. Each call counts as a view.
func (h *Handler) ServeDocument(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "documents.get")
	defer cancel()

	if _, err := h.documentFor(ctx, uid, id, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.Svc.Open(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	fav, err := h.Svc.IsFavorite(ctx, uid, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(doc.Version, 10)))
	jsonresp.Write(w, http.StatusOK, documentResponse{Document: doc, IsFavorite: fav})
}

// ServePath handles GET /documents/{id}/path.
func (h *Handler) ServePath(w http.ResponseWriter, r *http.Request) {
	uid, ok := caller(w, r)
	if !ok {
		return
	}
	id, err := urlID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "documents.path")
	defer cancel()

	if _, err := h.documentFor(ctx, uid, id, false); err != nil {
		h.writeError(w, r, err)
		return
	}
	path, err := h.Svc.ResolvePath(ctx, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	jsonresp.Write(w, http.StatusOK, pathResponse{Path: path})
}
