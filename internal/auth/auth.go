// server/internal/auth/auth.go
package auth

import (
	"errors"
	"time"

	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Errors surfaced by the auth layer. Handlers map these onto the HTTP
// status taxonomy (401 for credential failures, 409 for duplicates).
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrRoleMismatch       = errors.New("role does not match this account")
	ErrUserExists         = errors.New("a user with this email already exists")
	ErrUnauthenticated    = errors.New("invalid or expired token")
)

// Hashing
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// JWTClaims defines the payload for the JWT.
type JWTClaims struct {
	UserID string `json:"userID"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies tokens with the configured secret.
type JWTManager struct {
	secret     []byte
	expiration time.Duration
}

func NewJWTManager(cfg config.JWTConfig) (*JWTManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret is not configured")
	}
	expiration, err := time.ParseDuration(cfg.Expiration)
	if err != nil {
		return nil, err
	}
	return &JWTManager{secret: []byte(cfg.Secret), expiration: expiration}, nil
}

// GenerateToken issues a signed, time-bound token for the user.
func (m *JWTManager) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken verifies the signature and expiry and returns the claims.
// Every failure collapses into ErrUnauthenticated: callers do not get to
// distinguish a tampered token from an expired one.
func (m *JWTManager) ParseToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrUnauthenticated
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
