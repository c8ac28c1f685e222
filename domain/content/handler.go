package content

import (
	"errors"
	"net/http"

	"github.com/Chasekung/Finance-Club/pkg/apperrors"
	"github.com/Chasekung/Finance-Club/pkg/logger"
	"github.com/labstack/echo/v4"
)

// Handler exposes one vertical's content service over HTTP.
type Handler struct {
	svc *Service
	log logger.Logger
}

func NewHandler(svc *Service) *Handler {
	return &Handler{
		svc: svc,
		log: logger.Get().WithComponent("content-api").WithFields(logger.Vertical(svc.Vertical().Name)),
	}
}

func (h *Handler) respondError(c echo.Context, err error) error {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return apperrors.RespondWithError(c, apperrors.NewBadRequest(
			apperrors.ErrCodeValidationFailed, ve.Message))
	case errors.Is(err, ErrNotFound):
		return apperrors.RespondWithError(c, apperrors.NewNotFound(
			apperrors.ErrCodeContentNotFound, "Content not found"))
	case errors.Is(err, ErrPageWrite):
		return apperrors.RespondWithError(c, apperrors.NewInternal(
			apperrors.ErrCodePageWriteFailed, "Failed to generate page", err))
	default:
		return apperrors.RespondWithError(c, apperrors.NewInternal(
			apperrors.ErrCodeDatabaseError, "Internal server error.", err))
	}
}

// ListHandler returns all content grouped by section.
func (h *Handler) ListHandler(c echo.Context) error {
	listing, err := h.svc.List(c.Request().Context())
	if err != nil {
		h.log.Error("Failed to list content", err)
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, listing)
}

// GetHandler returns one item with its teams and leaderboard blobs parsed
// into native arrays.
func (h *Handler) GetHandler(c echo.Context) error {
	item, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.log.Error("Failed to fetch content", err, logger.ContentID(c.Param("id")))
		}
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, item.Parsed())
}

// CreateHandler creates a new content item.
func (h *Handler) CreateHandler(c echo.Context) error {
	req := new(CreateContentRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.RespondWithError(c, apperrors.NewBadRequest(
			apperrors.ErrCodeInvalidInput, "Invalid request payload."))
	}

	item, err := h.svc.Create(c.Request().Context(), *req)
	if err != nil {
		var ve *ValidationError
		if !errors.As(err, &ve) {
			h.log.Error("Failed to create content", err, logger.Section(req.Section))
		}
		return h.respondError(c, err)
	}

	return c.JSON(http.StatusCreated, CreateContentResponse{
		Message: "Content created successfully",
		Content: item,
	})
}

// UpdateHandler merge-patches an existing item.
func (h *Handler) UpdateHandler(c echo.Context) error {
	req := new(UpdateContentRequest)
	if err := c.Bind(req); err != nil {
		return apperrors.RespondWithError(c, apperrors.NewBadRequest(
			apperrors.ErrCodeInvalidInput, "Invalid request payload."))
	}

	item, err := h.svc.Update(c.Request().Context(), c.Param("id"), *req)
	if err != nil {
		var ve *ValidationError
		if !errors.Is(err, ErrNotFound) && !errors.As(err, &ve) {
			h.log.Error("Failed to update content", err, logger.ContentID(c.Param("id")))
		}
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

// DeleteHandler removes an item and its generated page.
func (h *Handler) DeleteHandler(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.log.Error("Failed to delete content", err, logger.ContentID(c.Param("id")))
		}
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Content deleted successfully"})
}

// UpdateTemplatesHandler rebuilds every internal item's page artifact.
func (h *Handler) UpdateTemplatesHandler(c echo.Context) error {
	count, err := h.svc.RegenerateAll(c.Request().Context())
	if err != nil {
		h.log.Error("Failed to regenerate pages", err)
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "All internal pages updated successfully",
		"count":   count,
	})
}

// RenderPageHandler serves a generated page. The stored document is pure
// data; the template escapes it on the way out.
func (h *Handler) RenderPageHandler(c echo.Context) error {
	doc, err := h.svc.LoadPage(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperrors.RespondWithError(c, apperrors.NewNotFound(
				apperrors.ErrCodePageNotFound, "Page not found"))
		}
		h.log.Error("Failed to load page document", err, logger.String("slug", c.Param("slug")))
		return h.respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return pageTemplate.Execute(c.Response(), doc)
}
