package image

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jm8gw/ai-photo-editor/internal/models"
	"github.com/jm8gw/ai-photo-editor/internal/services"
	"github.com/jm8gw/ai-photo-editor/internal/utils"
)

type Handler struct {
	images          *services.ImageService
	transformations *services.TransformationService
}

func NewHandler(images *services.ImageService, transformations *services.TransformationService) *Handler {
	return &Handler{images: images, transformations: transformations}
}

func currentUser(c *gin.Context) (models.User, bool) {
	raw, exists := c.Get("user")
	if !exists {
		return models.User{}, false
	}
	user, ok := raw.(models.User)
	return user, ok
}

// Apply runs a transformation and saves the result as a new image.
func (h *Handler) Apply(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	var req ApplyImageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	h.apply(c, user, 0, req)
}

// Reapply re-runs a transformation over an existing record. This charges
// again, same as the original application.
func (h *Handler) Reapply(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "invalid image id"))
		return
	}

	var req ApplyImageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	h.apply(c, user, uint(id), req)
}

func (h *Handler) apply(c *gin.Context, user models.User, imageID uint, req ApplyImageRequest) {
	image, updated, err := h.transformations.Apply(c.Request.Context(), services.ApplyRequest{
		ClerkID:     user.ClerkID,
		ImageID:     imageID,
		Type:        models.TransformationType(req.TransformationType),
		Title:       req.Title,
		PublicID:    req.PublicID,
		SecureURL:   req.SecureURL,
		Width:       req.Width,
		Height:      req.Height,
		AspectRatio: req.AspectRatio,
		Prompt:      req.Prompt,
		Color:       req.Color,
		From:        req.From,
		Replacement: req.Replacement,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientCredits):
			c.JSON(http.StatusPaymentRequired, utils.NewErrorResponse(http.StatusPaymentRequired, "insufficient credits"))
		case errors.Is(err, services.ErrImageNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "image not found"))
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "not the image author"))
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "user not found"))
		default:
			c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", ApplyImageResponse{
		Image:         image,
		CreditBalance: updated.CreditBalance,
	}))
}

// Patch edits title/visibility; no transformation, no charge.
func (h *Handler) Patch(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "invalid image id"))
		return
	}

	var req PatchImageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	image, err := h.images.Update(uint(id), user.ID, services.ImageUpdate{
		Title:     req.Title,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImageNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "image not found"))
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "not the image author"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", image))
}

// Delete removes an owned image.
func (h *Handler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "invalid image id"))
		return
	}

	if err := h.images.Delete(uint(id), user.ID); err != nil {
		switch {
		case errors.Is(err, services.ErrImageNotFound):
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "image not found"))
		case errors.Is(err, services.ErrNotAuthorized):
			c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, "not the image author"))
		default:
			c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("deleted", nil))
}

// Get fetches one image with its author subset.
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "invalid image id"))
		return
	}

	image, err := h.images.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, services.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "image not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", image))
}

// List returns one page of the community gallery, optionally narrowed by
// a search query run through the media API.
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "9"))
	query := c.Query("query")

	result, err := h.images.Find(c.Request.Context(), page, limit, query)
	if err != nil {
		c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", result))
}

// ListMine returns one page of the calling user's own images.
func (h *Handler) ListMine(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "9"))

	result, err := h.images.FindByAuthor(user.ID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", result))
}
