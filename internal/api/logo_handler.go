package api

import (
	"errors"
	"net/http"

	"evermart/media-service/internal/service"

	"github.com/gin-gonic/gin"
)

// LogoHandler holds the logo service dependency.
type LogoHandler struct {
	logoService service.LogoService
}

// NewLogoHandler creates a new LogoHandler.
func NewLogoHandler(logoService service.LogoService) *LogoHandler {
	return &LogoHandler{logoService: logoService}
}

// LogoMetadataResponse is the descriptor DTO plus the derived file URL.
type LogoMetadataResponse struct {
	AssetResponse
	URL string `json:"url"`
}

// Upload handles POST /media/company-logo. Multipart form with a
// single "file" part plus the companyId field. Replaces whatever
// previously occupied the company's logo slot.
func (h *LogoHandler) Upload(c *gin.Context) {
	companyID := c.PostForm("companyId")
	if companyID == "" {
		abortWithError(c, http.StatusBadRequest, "companyId is required")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A single 'file' part is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Unable to read uploaded file: "+err.Error())
		return
	}
	defer f.Close()

	asset, err := h.logoService.Replace(c.Request.Context(), companyID, service.UploadFile{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields),
			errors.Is(err, service.ErrNoFiles),
			errors.Is(err, service.ErrUnsupportedMediaType),
			errors.Is(err, service.ErrFileTooLarge):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to replace company logo.")
		}
		return
	}

	c.JSON(http.StatusCreated, MapAssetToResponse(asset))
}

// Get handles GET /media/company-logo/:companyId. With ?metadata=true
// it returns the descriptor and derived URL instead of the raw bytes.
func (h *LogoHandler) Get(c *gin.Context) {
	companyID := c.Param("companyId")

	if c.Query("metadata") == "true" {
		asset, err := h.logoService.Metadata(c.Request.Context(), companyID)
		if err != nil {
			if errors.Is(err, service.ErrLogoNotFound) {
				abortWithError(c, http.StatusNotFound, "Company logo not found")
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to fetch logo metadata.")
			}
			return
		}
		c.JSON(http.StatusOK, LogoMetadataResponse{
			AssetResponse: MapAssetToResponse(asset),
			URL:           h.logoService.FileURL(companyID),
		})
		return
	}

	h.streamLogo(c, companyID)
}

// GetFile handles GET /media/company-logo/file/:companyId, the
// unauthenticated variant.
func (h *LogoHandler) GetFile(c *gin.Context) {
	h.streamLogo(c, c.Param("companyId"))
}

func (h *LogoHandler) streamLogo(c *gin.Context, companyID string) {
	rc, info, err := h.logoService.Fetch(c.Request.Context(), companyID)
	if err != nil {
		if errors.Is(err, service.ErrLogoNotFound) {
			abortWithError(c, http.StatusNotFound, "Company logo not found")
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to fetch company logo.")
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
