package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/teacellar/apiserver/internal/storage"
)

const (
	maxImageBytes      = 10 << 20
	imageFormFieldName = "image"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageHandler relays item image uploads into object storage.
type ImageHandler struct {
	images storage.ImageStore
}

// NewImageHandler constructs an ImageHandler over the given store.
func NewImageHandler(images storage.ImageStore) *ImageHandler {
	return &ImageHandler{images: images}
}

// ImageRouter registers the image upload route. Authenticated; the store
// may be nil, in which case uploads report the feature as disabled.
func ImageRouter(r chi.Router, images storage.ImageStore, authMiddleware func(http.Handler) http.Handler) {
	handler := NewImageHandler(images)

	r.With(authMiddleware).Post("/", handler.Upload)
}

// Upload stores one image and returns the object key to reference from an
// item's image_key field.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if h.images == nil {
		writeError(w, http.StatusServiceUnavailable, "image uploads are not configured")
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(imageFormFieldName)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "image too large")
		return
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		ext = strings.ToLower(path.Ext(header.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" && ext != ".gif" {
			writeError(w, http.StatusBadRequest, "unsupported image type")
			return
		}
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("items/%d/%s%s", identity.AccountID, newImageID(), ext)
	if err := h.images.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusCreated, ImageUploadResponse{Key: key})
}

// ImageUploadResponse carries the stored object key.
type ImageUploadResponse struct {
	Key string `json:"key"`
}

func newImageID() string {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "image"
	}
	return hex.EncodeToString(buf[:])
}
