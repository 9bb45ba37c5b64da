package controllers

import (
	"net/http"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/metrics"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/gin-gonic/gin"
)

// LoginRequest represents the request body for signing in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned on a successful sign-in
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// ChangePasswordRequest represents the request body for changing one's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// Login handles POST /api/v1/user/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := services.NewUserService(config.GetDB()).Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		result := "error"
		if se, ok := services.AsServiceError(err); ok {
			switch se.Kind {
			case services.KindUnauthorized:
				result = "invalid"
			case services.KindForbidden:
				result = "suspended"
			}
		}
		metrics.Get().LoginAttempts.WithLabelValues(result).Inc()
		respondServiceError(c, err)
		return
	}

	token, expiresAt, err := services.NewTokenService(config.GetConfig()).Issue(user)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	metrics.Get().LoginAttempts.WithLabelValues("success").Inc()
	respondOK(c, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt, User: user})
}

// CreateUser handles POST /api/v1/user/new
func CreateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := services.NewUserService(config.GetDB()).Create(c.Request.Context(), actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, user)
}

// ListUsers handles GET /api/v1/user/all
func ListUsers(c *gin.Context) {
	var filter services.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondValidationError(c, err)
		return
	}

	users, err := services.NewUserService(config.GetDB()).List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, users)
}

// GetMyProfile handles GET /api/v1/user/me
func GetMyProfile(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := services.NewUserService(config.GetDB()).Get(c.Request.Context(), me.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}

// UpdateUser handles PUT /api/v1/user/:id
func UpdateUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := services.NewUserService(config.GetDB()).Update(c.Request.Context(), actor, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}

// ChangePassword handles PUT /api/v1/user/password
func ChangePassword(c *gin.Context) {
	me, ok := currentUser(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	err := services.NewUserService(config.GetDB()).ChangePassword(c.Request.Context(), me.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "Password updated"})
}

// ToggleUserStatus handles PUT /api/v1/user/:id/status
func ToggleUserStatus(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := services.NewUserService(config.GetDB()).ToggleStatus(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/user/:id
func DeleteUser(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := services.NewUserService(config.GetDB()).Delete(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
