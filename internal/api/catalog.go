package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/disenocorptpc-dot/wonderwoods/internal/model"
	"github.com/disenocorptpc-dot/wonderwoods/internal/store"
)

// CatalogHandler exposes the aggregate document and the image blobs.
type CatalogHandler struct {
	DB *sql.DB
}

// MaxImagePayload bounds a single encoded image, generously above the
// size a 1024px JPEG-70 payload can reach.
const MaxImagePayload = 4 << 20

// Get handles GET /api/catalog. The document revision travels as an
// ETag so clients can do conditional replaces.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	catalog, revision, err := store.GetCatalog(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to read catalog")
		return
	}
	if catalog == nil {
		jsonError(w, http.StatusNotFound, "catalog not initialized")
		return
	}

	w.Header().Set("ETag", etag(revision))
	jsonResponse(w, http.StatusOK, catalog)
}

// Ensure handles POST /api/catalog: create-if-absent of the aggregate.
func (h *CatalogHandler) Ensure(w http.ResponseWriter, r *http.Request) {
	created, err := store.EnsureCatalog(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create catalog")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	jsonResponse(w, status, map[string]bool{"created": created})
}

// AppendItem handles POST /api/catalog/items with union semantics.
func (h *CatalogHandler) AppendItem(w http.ResponseWriter, r *http.Request) {
	var item model.Item
	if err := decodeJSON(r, &item); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item body")
		return
	}
	if item.ID == "" {
		jsonError(w, http.StatusBadRequest, "item id required")
		return
	}

	if err := store.AppendCatalogItem(r.Context(), h.DB, item); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, http.StatusNotFound, "catalog not initialized")
			return
		}
		jsonError(w, http.StatusInternalServerError, "failed to append item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item appended"})
}

type replaceItemsRequest struct {
	Items []model.Item `json:"items"`
}

// ReplaceItems handles PUT /api/catalog/items. With an If-Match header
// the replace is conditional on the document revision (412 when
// stale); without one it is the blind overwrite legacy clients expect.
func (h *CatalogHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	var req replaceItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var expected int64
	if match := r.Header.Get("If-Match"); match != "" {
		rev, err := parseETag(match)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid If-Match header")
			return
		}
		expected = rev
	}

	newRev, err := store.ReplaceCatalogItems(r.Context(), h.DB, req.Items, expected)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrRevisionMismatch):
			jsonError(w, http.StatusPreconditionFailed, "catalog changed since last read")
		case errors.Is(err, store.ErrNotFound):
			jsonError(w, http.StatusNotFound, "catalog not initialized")
		default:
			jsonError(w, http.StatusInternalServerError, "failed to replace items")
		}
		return
	}

	w.Header().Set("ETag", etag(newRev))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "items replaced"})
}

type saveImageRequest struct {
	Content string `json:"content"`
}

// SaveImage handles PUT /api/catalog/images/{id}: blob upsert.
func (h *CatalogHandler) SaveImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		jsonError(w, http.StatusBadRequest, "image id required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImagePayload)
	var req saveImageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid or oversized image body")
		return
	}
	if req.Content == "" {
		jsonError(w, http.StatusBadRequest, "image content required")
		return
	}

	if err := store.SaveImage(r.Context(), h.DB, id, req.Content); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "image saved"})
}

// GetImage handles GET /api/catalog/images/{id}.
func (h *CatalogHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	blob, err := store.GetImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if blob == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	jsonResponse(w, http.StatusOK, blob)
}

func etag(revision int64) string {
	return fmt.Sprintf("%q", strconv.FormatInt(revision, 10))
}

func parseETag(value string) (int64, error) {
	return strconv.ParseInt(strings.Trim(value, `"`), 10, 64)
}
