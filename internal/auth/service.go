// server/internal/auth/service.go
package auth

import (
	"context"
	"time"

	"bill-delivery-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is the persistence the auth service needs. FindByEmail
// returns (nil, nil) when no user exists with that email.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error)
}

// Service implements login and registration over a user store.
type Service struct {
	Users UserStore
	JWT   *JWTManager
}

// Login validates credentials and issues a token. The role argument is
// the role the client logged in as; it must match the stored role.
// A wrong password and an unknown email both return ErrInvalidCredentials
// so the response does not leak which emails exist.
func (s *Service) Login(ctx context.Context, email, password, role string) (string, models.PublicUser, error) {
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	if user == nil {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}
	if !user.Active {
		return "", models.PublicUser{}, ErrAccountDeactivated
	}
	if !CheckPasswordHash(password, user.Password) {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}
	if role != "" && user.Role != role {
		return "", models.PublicUser{}, ErrRoleMismatch
	}

	token, err := s.JWT.GenerateToken(user)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	return token, user.Public(), nil
}

// Register creates a new active user with the password hashed before it
// ever reaches the store.
func (s *Service) Register(ctx context.Context, email, password, fullName, staffID, role string) (string, models.PublicUser, error) {
	existing, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	if existing != nil {
		return "", models.PublicUser{}, ErrUserExists
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return "", models.PublicUser{}, err
	}

	now := time.Now()
	user := &models.User{
		Email:     email,
		Password:  hashed,
		FullName:  fullName,
		StaffID:   staffID,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.Users.Insert(ctx, user)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	user.ID = id

	token, err := s.JWT.GenerateToken(user)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	return token, user.Public(), nil
}
