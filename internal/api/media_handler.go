package api

import (
	"errors"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"time"

	"evermart/media-service/internal/domain"
	"evermart/media-service/internal/service"

	"github.com/gin-gonic/gin"
)

// Browsers may cache served binaries for a year; slot contents change
// only by overwrite, which changes what a listing points at, not the
// semantics of a previously served name.
const fileCacheControl = "public, max-age=31536000"

// MediaHandler holds the media service dependency.
type MediaHandler struct {
	mediaService service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// --- DTOs for API (Data Transfer Objects) ---

// AssetResponse is the DTO returned for a created asset descriptor.
type AssetResponse struct {
	ID           string    `json:"id"`
	EntityID     string    `json:"entityId"`
	EntityType   string    `json:"entityType"`
	CompanyID    string    `json:"companyId"`
	StoredName   string    `json:"storedName"`
	OriginalName string    `json:"originalName"`
	MimeType     string    `json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	Position     int       `json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

// EntityAssetResponse is the listing DTO, carrying the derived URL.
type EntityAssetResponse struct {
	ID           string `json:"id"`
	StoredName   string `json:"storedName"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType"`
	URL          string `json:"url"`
	Position     int    `json:"position"`
}

// MapAssetToResponse converts a domain.Asset to AssetResponse DTO.
func MapAssetToResponse(a *domain.Asset) AssetResponse {
	if a == nil {
		return AssetResponse{}
	}
	return AssetResponse{
		ID:           a.ID,
		EntityID:     a.EntityID,
		EntityType:   a.EntityType,
		CompanyID:    a.CompanyID,
		StoredName:   a.StoredName,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		SizeBytes:    a.SizeBytes,
		Position:     a.Position,
		CreatedAt:    a.CreatedAt,
	}
}

// MapAssetsToResponse converts a slice of domain.Asset to AssetResponse DTOs.
func MapAssetsToResponse(assets []domain.Asset) []AssetResponse {
	responses := make([]AssetResponse, len(assets))
	for i, a := range assets {
		responses[i] = MapAssetToResponse(&a)
	}
	return responses
}

// --- Handler Methods ---

// Upload handles POST /media/upload. Multipart form with one or more
// binary parts plus entityId, entityType and companyId fields.
func (h *MediaHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	entityID := c.PostForm("entityId")
	entityType := c.PostForm("entityType")
	companyID := c.PostForm("companyId")
	if entityID == "" || entityType == "" || companyID == "" {
		abortWithError(c, http.StatusBadRequest, "entityId, entityType and companyId are required")
		return
	}

	headers := collectFileHeaders(form)
	if len(headers) == 0 {
		abortWithError(c, http.StatusBadRequest, "No files provided")
		return
	}

	files := make([]service.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Unable to read uploaded file: "+err.Error())
			return
		}
		defer f.Close()
		files = append(files, service.UploadFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Body:     f,
		})
	}

	created, err := h.mediaService.Upload(c.Request.Context(), entityID, entityType, companyID, files)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrNoFiles),
			errors.Is(err, service.ErrUnsupportedMediaType),
			errors.Is(err, service.ErrFileTooLarge):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to store uploaded files.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapAssetsToResponse(created))
}

// ListByEntity handles GET /media/entity/:entityId. Always an array,
// empty when the entity has no aggregate document.
func (h *MediaHandler) ListByEntity(c *gin.Context) {
	entityID := c.Param("entityId")

	assets, err := h.mediaService.ListByEntity(c.Request.Context(), entityID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve entity media.")
		return
	}

	responses := make([]EntityAssetResponse, len(assets))
	for i, a := range assets {
		responses[i] = EntityAssetResponse{
			ID:           a.ID,
			StoredName:   a.StoredName,
			OriginalName: a.OriginalName,
			MimeType:     a.MimeType,
			URL:          h.mediaService.FileURL(a.StoredName),
			Position:     a.Position,
		}
	}
	c.JSON(http.StatusOK, responses)
}

// GetFile handles GET /media/file/:storedName, streaming the binary.
func (h *MediaHandler) GetFile(c *gin.Context) {
	storedName := c.Param("storedName")

	rc, info, err := h.mediaService.FetchFile(c.Request.Context(), storedName)
	if err != nil {
		if errors.Is(err, service.ErrAssetNotFound) {
			abortWithError(c, http.StatusNotFound, "File not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch file.")
		}
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", fileCacheControl)
	c.DataFromReader(http.StatusOK, info.Size, contentType, rc, nil)
}

// Delete handles DELETE /media/:entityId/:position?companyId=...
func (h *MediaHandler) Delete(c *gin.Context) {
	entityID := c.Param("entityId")
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil || position < 0 {
		abortWithError(c, http.StatusBadRequest, "Invalid position")
		return
	}
	companyID := c.Query("companyId")
	if companyID == "" {
		abortWithError(c, http.StatusBadRequest, "companyId query parameter is required")
		return
	}

	err = h.mediaService.Delete(c.Request.Context(), entityID, position, companyID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOwnershipMismatch):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrMissingFields):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to delete media.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// collectFileHeaders flattens the form's file parts. The "files" field
// is the documented one; for callers posting under other field names
// the remaining fields are taken in name order so positions stay
// deterministic.
func collectFileHeaders(form *multipart.Form) []*multipart.FileHeader {
	if headers := form.File["files"]; len(headers) > 0 {
		return headers
	}

	names := make([]string, 0, len(form.File))
	for name := range form.File {
		names = append(names, name)
	}
	sort.Strings(names)

	var headers []*multipart.FileHeader
	for _, name := range names {
		headers = append(headers, form.File[name]...)
	}
	return headers
}
