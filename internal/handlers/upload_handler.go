package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sluggram/backend/internal/media"
)

// UploadHandler handles media upload and retrieval.
type UploadHandler struct {
	store *media.Store
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store *media.Store) *UploadHandler {
	return &UploadHandler{store: store}
}

// RegisterUploadRoutes registers upload routes. Retrieval is public.
func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/upload/image", h.UploadImage, requireAuth)
	g.POST("/upload/video", h.UploadVideo, requireAuth)
	g.GET("/upload/files/:kind/:filename", h.GetFile)
}

// UploadImage stores an uploaded image and returns its retrieval path.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	return h.upload(c, media.KindImage)
}

// UploadVideo stores an uploaded video and returns its retrieval path.
func (h *UploadHandler) UploadVideo(c echo.Context) error {
	return h.upload(c, media.KindVideo)
}

func (h *UploadHandler) upload(c echo.Context, kind media.Kind) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, filename, err := h.store.Save(kind, contentType, fileHeader.Filename, fileHeader.Size, src)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url":      url,
		"filename": filename,
	})
}

// GetFile serves a stored blob.
func (h *UploadHandler) GetFile(c echo.Context) error {
	kind, err := media.ParseKind(c.Param("kind"))
	if err != nil {
		return toHTTPError(err)
	}

	path, err := h.store.Path(kind, c.Param("filename"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.File(path)
}
