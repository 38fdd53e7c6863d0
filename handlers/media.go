package handlers

import (
	"net/http"
	"strings"

	"github.com/prog-Noon/rakaizfoundation/logging"
	"github.com/prog-Noon/rakaizfoundation/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UploadMediaHandler stores an image for a catalog entry; the response key goes into the entry's image field
func UploadMediaHandler(c echo.Context) error {
	kind := c.FormValue("kind")
	if !services.IsValidMediaKind(kind) {
		return badRequest("Unknown media kind")
	}
	if services.Storage == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Storage is not configured")
	}

	file, err := c.FormFile("file")
	if err != nil {
		verr := services.NewValidationError()
		verr.Add("file", "No file was submitted.")
		return serviceError(verr, "")
	}

	result, err := services.StoreMedia(c.Request().Context(), services.Storage, kind, file)
	if err != nil {
		return serviceError(err, "Failed to store file")
	}
	return c.JSON(http.StatusCreated, result)
}

// ServeMediaHandler streams a stored image when the provider has no public URL
func ServeMediaHandler(c echo.Context) error {
	key := strings.TrimPrefix(c.Param("*"), "/")
	if key == "" || services.Storage == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), key)
	if err != nil {
		logging.Log.Debug("Media lookup failed", zap.String("key", key), zap.Error(err))
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	defer reader.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, reader)
}
