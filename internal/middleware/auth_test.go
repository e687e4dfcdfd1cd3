package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jm8gw/ai-photo-editor/internal/models"
	"github.com/jm8gw/ai-photo-editor/internal/services"
)

const testSessionSecret = "session-test-secret"

func setupAuthTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	db.Migrator().DropTable(&models.User{}, &models.Image{}, &models.Transaction{})
	if err := db.AutoMigrate(&models.User{}, &models.Image{}, &models.Transaction{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	users := services.NewUserService(db, nil)

	router := gin.New()
	router.GET("/whoami", AuthMiddleware(users, testSessionSecret), func(c *gin.Context) {
		user := c.MustGet("user").(models.User)
		c.JSON(http.StatusOK, gin.H{"clerk_id": user.ClerkID})
	})

	return router, db
}

func mintToken(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(expiresIn).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware(t *testing.T) {
	router, db := setupAuthTest(t)

	db.Create(&models.User{ClerkID: "user_session", Email: "s@example.com", Username: "sess"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSessionSecret, "user_session", time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user_session")
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router, _ := setupAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBadSignature(t *testing.T) {
	router, db := setupAuthTest(t)

	db.Create(&models.User{ClerkID: "user_session", Email: "s@example.com", Username: "sess"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "wrong-secret", "user_session", time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	router, db := setupAuthTest(t)

	db.Create(&models.User{ClerkID: "user_session", Email: "s@example.com", Username: "sess"})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSessionSecret, "user_session", -time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareUnknownUser(t *testing.T) {
	router, _ := setupAuthTest(t)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, testSessionSecret, "user_ghost", time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
