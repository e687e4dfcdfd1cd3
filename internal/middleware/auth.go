package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jm8gw/ai-photo-editor/internal/services"
	"github.com/jm8gw/ai-photo-editor/internal/utils"
)

// AuthMiddleware validates the identity provider's session token and loads
// the local user record for the identity in the subject claim.
func AuthMiddleware(users *services.UserService, sessionSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := utils.ExtractToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, err.Error()))
			c.Abort()
			return
		}

		claims, err := utils.ValidateSessionToken(tokenString, sessionSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid or expired token"))
			c.Abort()
			return
		}

		clerkID, ok := claims["sub"].(string)
		if !ok || clerkID == "" {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Invalid subject in token"))
			c.Abort()
			return
		}

		user, err := users.FindByClerkID(clerkID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "User not found"))
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
