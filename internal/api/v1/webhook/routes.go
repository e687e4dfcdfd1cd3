package webhook

import "github.com/gin-gonic/gin"

// Both endpoints are public; authenticity comes from signature
// verification, not sessions.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/webhooks/identity", h.IdentityWebhook)
	r.POST("/webhooks/payment", h.PaymentWebhook)
}
