// internal/app/features/documents/handler.go
package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/docuhub/internal/app/hierarchy"
	"github.com/dalemusser/docuhub/internal/app/system/auth"
	"github.com/dalemusser/docuhub/internal/app/system/authz"
	"github.com/dalemusser/docuhub/internal/app/system/jsonresp"
	"github.com/dalemusser/docuhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the document hierarchy JSON API.
type Handler struct {
	Svc   *hierarchy.Service
	Authz *authz.Authorizer
	Log   *zap.Logger
}

// NewHandler constructs a documents Handler.
func NewHandler(svc *hierarchy.Service, az *authz.Authorizer, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:   svc,
		Authz: az,
		Log:   logger,
	}
}

// errBadRequest marks client input errors; the message is shown as is.
type errBadRequest struct{ msg string }

func (e errBadRequest) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return errBadRequest{msg: fmt.Sprintf(format, args...)}
}

// caller returns the authenticated user id or writes a 401.
func caller(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	uid, ok := auth.UserID(r)
	if !ok {
		jsonresp.Error(w, http.StatusUnauthorized, "unauthorized", "sign in required", nil)
		return primitive.NilObjectID, false
	}
	return uid, true
}

func urlID(r *http.Request, name string) (primitive.ObjectID, error) {
	return parseID(chi.URLParam(r, name), name)
}

func parseID(raw, field string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, badRequest("invalid %s", field)
	}
	return oid, nil
}

// parseOptionalID maps nil and "" to the top level.
func parseOptionalID(raw *string, field string) (*primitive.ObjectID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	oid, err := parseID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &oid, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is required")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

// ifMatchVersion reads an optimistic-lock version from If-Match, accepting
// `3`, `"3"` and `W/"3"`.
func ifMatchVersion(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get("If-Match"))
	if raw == "" || raw == "*" {
		return hierarchy.AnyVersion, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, badRequest("invalid If-Match version")
	}
	return v, nil
}

// documentFor loads a live document and checks the caller may act on its
// workspace.
func (h *Handler) documentFor(ctx context.Context, uid, id primitive.ObjectID, write bool) (models.Document, error) {
	doc, err := h.Svc.Get(ctx, id)
	if err != nil {
		return models.Document{}, err
	}
	if err := h.authorize(ctx, uid, doc.WorkspaceID, write); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

func (h *Handler) authorize(ctx context.Context, uid, workspaceID primitive.ObjectID, write bool) error {
	if write {
		return h.Authz.CanWrite(ctx, uid, workspaceID)
	}
	return h.Authz.CanRead(ctx, uid, workspaceID)
}

func hexes(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}

// writeError maps service and authorization errors to JSON responses.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bad      errBadRequest
		mismatch *hierarchy.SiblingSetMismatchError
		partial  *hierarchy.PartialCascadeError
	)
	switch {
	case errors.As(err, &bad):
		jsonresp.Error(w, http.StatusBadRequest, "bad_request", bad.msg, nil)
	case errors.Is(err, authz.ErrForbidden):
		jsonresp.Error(w, http.StatusForbidden, "forbidden", "you do not have access to this workspace", nil)
	case errors.As(err, &partial):
		h.Log.Error("document delete incomplete",
			zap.String("document_id", partial.RootID.Hex()),
			zap.Int("deleted", len(partial.Deleted)),
			zap.Error(partial.Err))
		jsonresp.Error(w, http.StatusInternalServerError, "partial_cascade",
			"delete did not complete; retry to finish it",
			map[string]any{"deleted": hexes(partial.Deleted)})
	case errors.As(err, &mismatch):
		jsonresp.Error(w, http.StatusConflict, "sibling_set_mismatch", mismatch.Error(), map[string]any{
			"missing":    hexes(mismatch.Missing),
			"unexpected": hexes(mismatch.Unexpected),
			"duplicates": hexes(mismatch.Duplicates),
		})
	case errors.Is(err, hierarchy.ErrNotFound):
		jsonresp.Error(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, hierarchy.ErrInvalidParent):
		jsonresp.Error(w, http.StatusUnprocessableEntity, "invalid_parent", err.Error(), nil)
	case errors.Is(err, hierarchy.ErrCycleDetected):
		jsonresp.Error(w, http.StatusConflict, "cycle_detected", err.Error(), nil)
	case errors.Is(err, hierarchy.ErrConflict):
		jsonresp.Error(w, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		h.Log.Warn("document request timed out",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		jsonresp.Error(w, http.StatusGatewayTimeout, "timeout", "the operation timed out", nil)
	default:
		h.Log.Error("document request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		jsonresp.Error(w, http.StatusInternalServerError, "internal", "internal server error", nil)
	}
}
