package webhook

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jm8gw/ai-photo-editor/internal/identity"
	"github.com/jm8gw/ai-photo-editor/internal/models"
	stripeDriver "github.com/jm8gw/ai-photo-editor/internal/payment/stripe"
	"github.com/jm8gw/ai-photo-editor/internal/services"
)

const (
	identitySecret = "whsec_dGVzdC1zaWduaW5nLWtleS0xMjM0NTY3OA=="
	paymentSecret  = "whsec_stripe_test_secret"
)

func setupWebhookTest(t *testing.T) (*gin.Engine, *gorm.DB, *services.UserService) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Migrator().DropTable(&models.User{}, &models.Image{}, &models.Transaction{})
	if err := db.AutoMigrate(&models.User{}, &models.Image{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	verifier, err := identity.NewWebhookVerifier(identitySecret)
	if err != nil {
		t.Fatalf("failed to build verifier: %v", err)
	}

	users := services.NewUserService(db, nil)
	transactions := services.NewTransactionService(db, users)
	driver := stripeDriver.NewStripeDriver("sk_test", paymentSecret, "https://api.stripe.com")

	router := gin.New()
	v1 := router.Group("/api/v1")
	RegisterRoutes(v1, NewHandler(verifier, nil, users, driver, transactions))

	return router, db, users
}

func postIdentity(router *gin.Engine, body []byte, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/identity", bytes.NewReader(body))
	if sign {
		msgID := "msg_test"
		ts := strconv.FormatInt(time.Now().Unix(), 10)

		raw, _ := base64.StdEncoding.DecodeString(identitySecret[len("whsec_"):])
		h := hmac.New(sha256.New, raw)
		fmt.Fprintf(h, "%s.%s.%s", msgID, ts, body)

		req.Header.Set("svix-id", msgID)
		req.Header.Set("svix-timestamp", ts)
		req.Header.Set("svix-signature", "v1,"+base64.StdEncoding.EncodeToString(h.Sum(nil)))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postPayment(router *gin.Engine, body []byte, sign bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(body))
	if sign {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		mac := hmac.New(sha256.New, []byte(paymentSecret))
		fmt.Fprintf(mac, "%s.%s", ts, body)
		req.Header.Set("Stripe-Signature", "t="+ts+",v1="+hex.EncodeToString(mac.Sum(nil)))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdentityWebhookUserCreated(t *testing.T) {
	router, _, users := setupWebhookTest(t)

	body := []byte(`{
		"type": "user.created",
		"data": {
			"id": "user_new",
			"username": "newbie",
			"first_name": "New",
			"last_name": "User",
			"image_url": "https://img.example.com/new.png",
			"email_addresses": [{"email_address": "new@example.com"}]
		}
	}`)

	w := postIdentity(router, body, true)
	assert.Equal(t, http.StatusOK, w.Code)

	user, err := users.FindByClerkID("user_new")
	assert.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "newbie", user.Username)
	// New accounts start with the documented grant
	assert.Equal(t, int64(10), user.CreditBalance)
}

func TestIdentityWebhookUserUpdated(t *testing.T) {
	router, db, users := setupWebhookTest(t)

	db.Create(&models.User{ClerkID: "user_upd", Email: "u@example.com", Username: "before"})

	body := []byte(`{
		"type": "user.updated",
		"data": {"id": "user_upd", "username": "after", "first_name": "A", "last_name": "B", "image_url": "https://img.example.com/b.png"}
	}`)

	w := postIdentity(router, body, true)
	assert.Equal(t, http.StatusOK, w.Code)

	user, err := users.FindByClerkID("user_upd")
	assert.NoError(t, err)
	assert.Equal(t, "after", user.Username)

	// An update for an unknown identity is a 404
	body = []byte(`{"type": "user.updated", "data": {"id": "user_nobody"}}`)
	w = postIdentity(router, body, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIdentityWebhookUserDeleted(t *testing.T) {
	router, db, users := setupWebhookTest(t)

	db.Create(&models.User{ClerkID: "user_del", Email: "d@example.com", Username: "doomed"})

	body := []byte(`{"type": "user.deleted", "data": {"id": "user_del"}}`)
	w := postIdentity(router, body, true)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := users.FindByClerkID("user_del")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestIdentityWebhookRejectsUnsigned(t *testing.T) {
	router, _, users := setupWebhookTest(t)

	body := []byte(`{"type": "user.created", "data": {"id": "user_forged"}}`)

	w := postIdentity(router, body, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Fail closed: nothing was written
	_, err := users.FindByClerkID("user_forged")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestIdentityWebhookAcksUnknownEvent(t *testing.T) {
	router, _, _ := setupWebhookTest(t)

	body := []byte(`{"type": "session.created", "data": {"id": "sess_1"}}`)
	w := postIdentity(router, body, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPaymentWebhookCreditsBuyerOnce(t *testing.T) {
	router, db, users := setupWebhookTest(t)

	db.Create(&models.User{ClerkID: "user_buyer", Email: "b@example.com", Username: "buyer", CreditBalance: 10})

	body := []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_live_once",
			"amount_total": 1000,
			"metadata": {"plan": "Pro Package", "credits": "150", "buyerId": "user_buyer"}
		}}
	}`)

	w := postPayment(router, body, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"OK"`)

	// Redelivery settles nothing further
	w = postPayment(router, body, true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "already processed")

	user, err := users.FindByClerkID("user_buyer")
	assert.NoError(t, err)
	assert.Equal(t, int64(160), user.CreditBalance)

	var count int64
	db.Model(&models.Transaction{}).Where("stripe_id = ?", "cs_live_once").Count(&count)
	assert.Equal(t, int64(1), count)

	var txn models.Transaction
	db.Where("stripe_id = ?", "cs_live_once").First(&txn)
	assert.Equal(t, 10.00, txn.Amount)
}

func TestPaymentWebhookRejectsUnsigned(t *testing.T) {
	router, db, _ := setupWebhookTest(t)

	body := []byte(`{
		"id": "evt_2",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_forged", "amount_total": 1000, "metadata": {"credits": "150", "buyerId": "user_x"}}}
	}`)

	w := postPayment(router, body, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestPaymentWebhookIgnoresOtherEvents(t *testing.T) {
	router, db, _ := setupWebhookTest(t)

	body := []byte(`{"id": "evt_3", "type": "invoice.paid", "data": {"object": {"id": "in_1"}}}`)
	w := postPayment(router, body, true)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
