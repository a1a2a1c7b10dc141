package auth

import (
	"context"
	"testing"

	"bill-delivery-api-server/config"
	"bill-delivery-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryUserStore keeps users in a map so the service can be tested
// without MongoDB.
type memoryUserStore struct {
	users map[string]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*models.User)}
}

func (s *memoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *memoryUserStore) Insert(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	user.ID = id
	s.users[user.Email] = user
	return id, nil
}

func newTestService(t *testing.T) (*Service, *memoryUserStore) {
	t.Helper()
	jwtManager, err := NewJWTManager(config.JWTConfig{Secret: "test-secret", Expiration: "1h"})
	require.NoError(t, err)
	store := newMemoryUserStore()
	return &Service{Users: store, JWT: jwtManager}, store
}

func seedUser(t *testing.T, store *memoryUserStore, email, password, role string, active bool) {
	t.Helper()
	hashed, err := HashPassword(password)
	require.NoError(t, err)
	store.users[email] = &models.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: hashed,
		FullName: "Test User",
		Role:     role,
		Active:   active,
	}
}

func TestService_Login(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "staff@example.com", "secret123", models.RoleStaff, true)

	token, user, err := svc.Login(context.Background(), "staff@example.com", "secret123", models.RoleStaff)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "staff@example.com", user.Email)
	assert.Equal(t, models.RoleStaff, user.Role)
	assert.True(t, user.Active)

	claims, err := svc.JWT.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, models.RoleStaff, claims.Role)
}

func TestService_Login_UnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Login(context.Background(), "nobody@example.com", "secret123", models.RoleStaff)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_WrongPassword(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "staff@example.com", "secret123", models.RoleStaff, true)

	_, _, err := svc.Login(context.Background(), "staff@example.com", "wrong", models.RoleStaff)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_RoleMismatch(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "staff@example.com", "secret123", models.RoleStaff, true)

	// Correct credentials, wrong login tab.
	_, _, err := svc.Login(context.Background(), "staff@example.com", "secret123", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestService_Login_DeactivatedAccount(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "staff@example.com", "secret123", models.RoleStaff, false)

	_, _, err := svc.Login(context.Background(), "staff@example.com", "secret123", models.RoleStaff)
	assert.ErrorIs(t, err, ErrAccountDeactivated)
}

func TestService_Register(t *testing.T) {
	svc, store := newTestService(t)

	token, user, err := svc.Register(context.Background(), "new@example.com", "secret123", "New Staff", "ST-42", models.RoleStaff)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "ST-42", user.StaffID)
	assert.True(t, user.Active)

	// The stored password is a hash, never the plaintext.
	stored := store.users["new@example.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, CheckPasswordHash("secret123", stored.Password))
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "taken@example.com", "secret123", models.RoleStaff, true)

	_, _, err := svc.Register(context.Background(), "taken@example.com", "other456", "Other", "", models.RoleStaff)
	assert.ErrorIs(t, err, ErrUserExists)
	assert.Len(t, store.users, 1)
}

func TestPublicUser_NeverExposesPassword(t *testing.T) {
	hashed, err := HashPassword("secret123")
	require.NoError(t, err)

	user := models.User{
		ID:       primitive.NewObjectID(),
		Email:    "staff@example.com",
		Password: hashed,
		FullName: "Test User",
		Role:     models.RoleStaff,
		Active:   true,
	}

	view := user.Public()
	assert.Equal(t, user.Email, view.Email)
	assert.Equal(t, user.FullName, view.FullName)
	// PublicUser has no password field at all; this guards the mapping.
	assert.NotContains(t, []string{view.ID, view.Email, view.FullName, view.StaffID, view.Role}, hashed)
}
