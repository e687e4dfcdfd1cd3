package payment

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	payment := r.Group("/payment")
	{
		payment.GET("/plans", h.Plans)
		payment.POST("/checkout", h.Checkout)
		payment.GET("/transactions", h.Transactions)
	}
}
