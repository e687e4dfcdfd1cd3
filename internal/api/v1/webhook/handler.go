package webhook

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jm8gw/ai-photo-editor/internal/database"
	"github.com/jm8gw/ai-photo-editor/internal/identity"
	"github.com/jm8gw/ai-photo-editor/internal/models"
	"github.com/jm8gw/ai-photo-editor/internal/payment"
	"github.com/jm8gw/ai-photo-editor/internal/payment/stripe"
	"github.com/jm8gw/ai-photo-editor/internal/services"
	"github.com/jm8gw/ai-photo-editor/internal/utils"
)

// Handler reconciles the two inbound webhook channels. They are fully
// independent: identity events mutate the user store, payment events the
// transaction log and ledger, and no ordering holds between them. Both
// channels fail closed with 400 on verification failure so the sender's
// redelivery guarantee engages.
type Handler struct {
	verifier       *identity.WebhookVerifier
	identityClient *identity.Client
	users          *services.UserService
	paymentDriver  payment.Driver
	transactions   *services.TransactionService
}

func NewHandler(
	verifier *identity.WebhookVerifier,
	identityClient *identity.Client,
	users *services.UserService,
	paymentDriver payment.Driver,
	transactions *services.TransactionService,
) *Handler {
	return &Handler{
		verifier:       verifier,
		identityClient: identityClient,
		users:          users,
		paymentDriver:  paymentDriver,
		transactions:   transactions,
	}
}

// IdentityWebhook handles user.created / user.updated / user.deleted
// deliveries from the identity provider.
func (h *Handler) IdentityWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "unreadable body"))
		return
	}

	err = h.verifier.Verify(
		c.GetHeader("svix-id"),
		c.GetHeader("svix-timestamp"),
		c.GetHeader("svix-signature"),
		body,
	)
	if err != nil {
		zap.L().Warn("identity webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	evt, err := identity.ParseEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "malformed event"))
		return
	}

	switch evt.Type {
	case identity.EventUserCreated:
		h.userCreated(c, evt.Data)
	case identity.EventUserUpdated:
		h.userUpdated(c, evt.Data)
	case identity.EventUserDeleted:
		h.userDeleted(c, evt.Data)
	default:
		// Unknown kinds are acknowledged so the sender does not retry
		zap.L().Info("unhandled identity event", zap.String("type", evt.Type))
		c.Status(http.StatusOK)
	}
}

func (h *Handler) userCreated(c *gin.Context, data identity.EventUser) {
	user := models.User{
		ClerkID:   data.ID,
		Email:     data.PrimaryEmail(),
		Username:  data.Username,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Photo:     data.ImageURL,
	}

	if err := h.users.Create(&user); err != nil {
		zap.L().Error("failed to sync created user", zap.String("clerk_id", data.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "failed to create user"))
		return
	}

	// Write the local record id back into the provider's metadata so the
	// frontend SDK can hand it to pages. Failure here is logged, not
	// fatal: the user row already exists.
	if h.identityClient != nil {
		if err := h.identityClient.SetUserMetadata(database.Ctx, data.ID, user.ID); err != nil {
			zap.L().Warn("metadata write-back failed", zap.String("clerk_id", data.ID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "user": user})
}

func (h *Handler) userUpdated(c *gin.Context, data identity.EventUser) {
	user, err := h.users.Update(data.ID, services.UserUpdate{
		Username:  data.Username,
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Photo:     data.ImageURL,
	})
	if err == services.ErrUserNotFound {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "user not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "failed to update user"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "user": user})
}

func (h *Handler) userDeleted(c *gin.Context, data identity.EventUser) {
	user, err := h.users.Delete(data.ID)
	if err == services.ErrUserNotFound {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, "user not found"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "failed to delete user"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OK", "user": user})
}

// PaymentWebhook handles checkout completion deliveries from the payment
// provider.
func (h *Handler) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "unreadable body"))
		return
	}

	evt, err := h.paymentDriver.VerifyNotify(c.GetHeader("Stripe-Signature"), body)
	if err != nil {
		zap.L().Warn("payment webhook rejected", zap.Error(err))
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
		return
	}

	if evt.Type != stripe.EventCheckoutCompleted {
		c.Status(http.StatusOK)
		return
	}

	credits, _ := strconv.ParseInt(evt.Metadata.Credits, 10, 64)

	txn, applied, err := h.transactions.RecordCheckout(services.CheckoutCompleted{
		StripeID:    evt.ChargeID,
		AmountMinor: evt.AmountTotal,
		Plan:        evt.Metadata.Plan,
		Credits:     credits,
		BuyerID:     evt.Metadata.BuyerID,
	})
	if err != nil {
		zap.L().Error("failed to record checkout", zap.String("charge_id", evt.ChargeID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, "failed to record transaction"))
		return
	}

	message := "OK"
	if !applied {
		message = "already processed"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "transaction": txn})
}
