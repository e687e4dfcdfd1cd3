package image

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the gallery reads and the owner-only mutations.
// The list/detail reads stay inside the authorized group: the gallery is
// community-visible but not anonymous.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	images := r.Group("/images")
	{
		images.GET("", h.List)
		images.GET("/mine", h.ListMine)
		images.GET("/:id", h.Get)
		images.POST("", h.Apply)
		images.PUT("/:id", h.Reapply)
		images.PATCH("/:id", h.Patch)
		images.DELETE("/:id", h.Delete)
	}
}
