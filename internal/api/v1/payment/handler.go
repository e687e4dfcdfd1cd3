package payment

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
	checkout     *services.CheckoutService
	transactions *services.TransactionService
}

func NewHandler(checkout *services.CheckoutService, transactions *services.TransactionService) *Handler {
	return &Handler{checkout: checkout, transactions: transactions}
}

// Plans returns the purchasable credit packages.
func (h *Handler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", models.Plans))
}

// Checkout creates a provider-hosted payment session for a plan.
func (h *Handler) Checkout(c *gin.Context) {
	raw, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	user, ok := raw.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	var req CheckoutRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	session, err := h.checkout.CheckoutCredits(c.Request.Context(), req.PlanID, user.ClerkID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownPlan):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "unknown plan"))
		case errors.Is(err, services.ErrPlanNotPurchasable):
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "plan is not purchasable"))
		default:
			c.JSON(http.StatusBadGateway, utils.NewErrorResponse(http.StatusBadGateway, err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", CheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	}))
}

// Transactions lists the caller's settled purchases.
func (h *Handler) Transactions(c *gin.Context) {
	raw, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}
	user, ok := raw.(models.User)
	if !ok {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	transactions, total, err := h.transactions.FindByBuyer(user.ClerkID, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("success", gin.H{
		"transactions": transactions,
		"total":        total,
	}))
}
