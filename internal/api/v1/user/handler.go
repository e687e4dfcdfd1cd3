package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jm8gw/ai-photo-editor/internal/models"
	"github.com/jm8gw/ai-photo-editor/internal/services"
	"github.com/jm8gw/ai-photo-editor/internal/utils"
)

type Handler struct {
	users *services.UserService
}

func NewHandler(users *services.UserService) *Handler {
	return &Handler{users: users}
}

// Me returns the caller's profile. The record is re-read past the cache so
// the balance reflects debits made since the session's middleware lookup.
func (h *Handler) Me(c *gin.Context) {
	raw, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	u, ok := raw.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	if latest, err := h.users.FindByClerkID(u.ClerkID); err == nil {
		u = latest
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", ProfileResponse{
		ID:            u.ID,
		ClerkID:       u.ClerkID,
		Email:         u.Email,
		Username:      u.Username,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Photo:         u.Photo,
		PlanID:        u.PlanID,
		CreditBalance: u.CreditBalance,
	}))
}
