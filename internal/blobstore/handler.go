package blobstore

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pmarinho/classxp/internal/models"
)

// Handler serves the blob endpoint for self-hosted persistence. GET returns
// the stored blob, writing and returning an empty record document the first
// time; POST overwrites it wholesale. A missing server credential is a
// configuration error: every request fails with 500 until it is set.
type Handler struct {
	backend    Backend
	credential string
}

func NewHandler(backend Backend, credential string) *Handler {
	return &Handler{backend: backend, credential: credential}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/blob/:key", h.get)
	e.POST("/blob/:key", h.put)
}

func (h *Handler) checkCredential(c echo.Context) (bool, error) {
	if h.credential == "" {
		return false, c.JSON(http.StatusInternalServerError, map[string]any{
			"message": "storage credential is not configured",
			"error":   "missing credential",
		})
	}
	auth := c.Request().Header.Get("Authorization")
	if strings.TrimPrefix(auth, "Bearer ") != h.credential {
		return false, c.JSON(http.StatusInternalServerError, map[string]any{
			"message": "storage credential mismatch",
			"error":   "bad credential",
		})
	}
	return true, nil
}

func (h *Handler) get(c echo.Context) error {
	if ok, err := h.checkCredential(c); !ok {
		return err
	}
	key := c.Param("key")
	data, ok, err := h.backend.GetBlob(key)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"message": "storage read failed",
			"error":   err.Error(),
		})
	}
	if !ok {
		// first contact: initialize with an empty record document
		b, err := json.Marshal(models.EmptyDocument())
		if err != nil {
			return err
		}
		if err := h.backend.PutBlob(key, b); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{
				"message": "storage write failed",
				"error":   err.Error(),
			})
		}
		data = b
	}
	return c.Blob(http.StatusOK, "application/json", data)
}

func (h *Handler) put(c echo.Context) error {
	if ok, err := h.checkCredential(c); !ok {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"message": "storage write failed",
			"error":   err.Error(),
		})
	}
	if err := h.backend.PutBlob(c.Param("key"), body); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"message": "storage write failed",
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
