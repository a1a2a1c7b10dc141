package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/auth"
	"bill-delivery-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestRouter(t *testing.T, roles ...string) (*gin.Engine, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager, err := auth.NewJWTManager(config.JWTConfig{Secret: "test-secret", Expiration: "1h"})
	require.NoError(t, err)

	router := gin.New()
	group := router.Group("/")
	group.Use(Authenticate(jwtManager))
	if len(roles) > 0 {
		group.Use(Authorize(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID": c.GetString(ContextUserID),
			"role":   c.GetString(ContextRole),
		})
	})

	return router, jwtManager
}

func tokenFor(t *testing.T, m *auth.JWTManager, role string) string {
	t.Helper()
	token, err := m.GenerateToken(&models.User{
		ID:    primitive.NewObjectID(),
		Email: "user@example.com",
		Role:  role,
	})
	require.NoError(t, err)
	return token
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_NotBearer(t *testing.T) {
	router, jwtManager := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", tokenFor(t, jwtManager, models.RoleStaff))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_TamperedToken(t *testing.T) {
	router, jwtManager := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtManager, models.RoleStaff)+"x")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	router, jwtManager := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtManager, models.RoleStaff))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.RoleStaff)
}

func TestAuthorize_AllowedRole(t *testing.T) {
	router, jwtManager := newTestRouter(t, models.RoleAdmin, models.RoleCommissioner)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtManager, models.RoleCommissioner))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorize_ForbiddenRole(t *testing.T) {
	router, jwtManager := newTestRouter(t, models.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, jwtManager, models.RoleStaff))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
