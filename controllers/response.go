package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/middleware"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/Mghendi-Pato/pointofsale-sub000/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondServiceError maps a service failure onto the error envelope. Anything
// that is not a ServiceError is logged and reported as a 500 carrying the raw
// message.
func respondServiceError(c *gin.Context, err error) {
	if se, ok := services.AsServiceError(err); ok {
		respondError(c, statusForKind(se.Kind), se.Code, se.Message)
		return
	}

	var paramErr *utils.ParamError
	if errors.As(err, &paramErr) {
		respondError(c, http.StatusBadRequest, paramErr.Code, paramErr.Message)
		return
	}

	slog.Error("Request failed",
		"request_id", middleware.GetRequestID(c),
		"path", c.FullPath(),
		"error", err,
	)
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// currentUser loads the signed-in user. It writes the error response and
// returns false when the request must stop.
func currentUser(c *gin.Context) (*models.User, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	var user models.User
	if err := config.GetDB().WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return nil, false
		}
		respondServiceError(c, err)
		return nil, false
	}

	if !user.IsActive() {
		respondError(c, http.StatusForbidden, "ACCOUNT_SUSPENDED", "This account has been suspended")
		return nil, false
	}

	return &user, true
}

// pathID parses the :id path parameter, writing a 400 when it is invalid
func pathID(c *gin.Context) (uint, bool) {
	id, err := utils.ParseID("id", c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return 0, false
	}
	return id, true
}
