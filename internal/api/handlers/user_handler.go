// server/internal/api/handlers/user_handler.go
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"bill-delivery-api-server/internal/api/middleware"
	"bill-delivery-api-server/internal/auth"
	"bill-delivery-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserHandler struct {
	Auth *auth.Service
	DB   *mongo.Database
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	StaffID  string `json:"staffID"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	FullName *string   `json:"fullName"`
	StaffID  *string   `json:"staffID"`
	Role     *string   `json:"role"`
	Active   *bool     `json:"active"`
	WardIDs  *[]string `json:"wardIDs"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// authErrorStatus maps auth layer errors onto the HTTP taxonomy.
func authErrorStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAccountDeactivated),
		errors.Is(err, auth.ErrRoleMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Login authenticates a dashboard user. The role in the request is the
// tab the user logged in from; it must match the stored role.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	token, user, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		status := authErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("Login failed for %s: %v", req.Email, err)
			c.JSON(status, gin.H{"message": "Failed to log in"})
			return
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Register creates a new account and logs it in.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown role: " + req.Role})
		return
	}

	token, user, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName, req.StaffID, req.Role)
	if err != nil {
		status := authErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("Register failed for %s: %v", req.Email, err)
			c.JSON(status, gin.H{"message": "Failed to register user"})
			return
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Me returns the current user from the token.
func (h *UserHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		return
	}

	var user models.User
	err = h.DB.Collection("users").FindOne(context.Background(), bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve user"})
		}
		return
	}

	c.JSON(http.StatusOK, user.Public())
}

// CreateUser lets an admin create an account without logging into it.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if !models.ValidRole(req.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown role: " + req.Role})
		return
	}

	_, user, err := h.Auth.Register(c.Request.Context(), req.Email, req.Password, req.FullName, req.StaffID, req.Role)
	if err != nil {
		status := authErrorStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("CreateUser failed for %s: %v", req.Email, err)
			c.JSON(status, gin.H{"message": "Failed to create user"})
			return
		}
		c.JSON(status, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// GetAllUsers lists accounts, optionally filtered by role.
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	filter := bson.M{}
	if role := c.Query("role"); role != "" {
		filter["role"] = role
	}

	cursor, err := h.DB.Collection("users").Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to query users"})
		return
	}
	defer cursor.Close(context.Background())

	var users []models.User
	if err = cursor.All(context.Background(), &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decode users"})
		return
	}

	views := []models.PublicUser{}
	for i := range users {
		views = append(views, users[i].Public())
	}

	c.JSON(http.StatusOK, views)
}

// UpdateUser mutates name, staffID, role, active flag or ward
// assignments of an account. Only fields present in the payload change.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.FullName != nil {
		set["fullName"] = *req.FullName
	}
	if req.StaffID != nil {
		set["staffID"] = *req.StaffID
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Unknown role: " + *req.Role})
			return
		}
		set["role"] = *req.Role
	}
	if req.Active != nil {
		set["active"] = *req.Active
	}
	if req.WardIDs != nil {
		set["wardIDs"] = *req.WardIDs
	}

	result, err := h.DB.Collection("users").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// ResetPassword sets a new password for an account. This is the only
// admin path that touches the hash.
func (h *UserHandler) ResetPassword(c *gin.Context) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to hash password"})
		return
	}

	result, err := h.DB.Collection("users").UpdateOne(context.Background(), bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"password":  hashed,
		"updatedAt": time.Now(),
	}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to reset password"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
