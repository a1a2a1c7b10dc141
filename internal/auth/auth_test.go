package auth

import (
	"testing"
	"time"

	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestHashPassword(t *testing.T) {
	password := "password123"
	hashedPassword, err := HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "password123"
	hashedPassword, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hashedPassword))
	assert.False(t, CheckPasswordHash(password+"x", hashedPassword))
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("password123", "invalidhash"))
}

func newTestManager(t *testing.T, expiration string) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(config.JWTConfig{Secret: "test-secret", Expiration: expiration})
	assert.NoError(t, err)
	return m
}

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Email: "staff@example.com",
		Role:  models.RoleStaff,
	}
}

func TestJWTManager_GenerateAndParse(t *testing.T) {
	m := newTestManager(t, "1h")
	user := testUser()

	tokenString, err := m.GenerateToken(user)
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	claims, err := m.ParseToken(tokenString)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.RoleStaff, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTManager_ParseToken_Garbage(t *testing.T) {
	m := newTestManager(t, "1h")

	_, err := m.ParseToken("invalid.token.string")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestJWTManager_ParseToken_Expired(t *testing.T) {
	m := newTestManager(t, "-1h")

	tokenString, err := m.GenerateToken(testUser())
	assert.NoError(t, err)

	_, err = m.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestJWTManager_ParseToken_WrongSecret(t *testing.T) {
	m1 := newTestManager(t, "1h")
	m2, err := NewJWTManager(config.JWTConfig{Secret: "another-secret", Expiration: "1h"})
	assert.NoError(t, err)

	tokenString, _ := m1.GenerateToken(testUser())

	_, err = m2.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestJWTManager_ParseToken_WrongSigningMethod(t *testing.T) {
	m := newTestManager(t, "1h")

	// An unsigned token must never verify, whatever its claims say.
	claims := &JWTClaims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = m.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestNewJWTManager_MissingSecret(t *testing.T) {
	_, err := NewJWTManager(config.JWTConfig{Secret: "", Expiration: "1h"})
	assert.Error(t, err)
}

func TestNewJWTManager_BadExpiration(t *testing.T) {
	_, err := NewJWTManager(config.JWTConfig{Secret: "s", Expiration: "soon"})
	assert.Error(t, err)
}
