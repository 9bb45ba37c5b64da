package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LocationRequest represents the request body for creating or renaming a region
type LocationRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
}

// CreateLocation handles POST /api/v1/location/new
func CreateLocation(c *gin.Context) {
	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	location := models.Location{
		Name:     strings.TrimSpace(req.Name),
		Location: strings.TrimSpace(req.Location),
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&location).Error; err != nil {
		if services.IsDuplicateKey(err) {
			respondError(c, http.StatusConflict, "LOCATION_EXISTS", "A location with this name already exists")
			return
		}
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, location)
}

// ListLocations handles GET /api/v1/location/all
func ListLocations(c *gin.Context) {
	var locations []models.Location
	if err := config.GetDB().WithContext(c.Request.Context()).Order("location ASC").Find(&locations).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, locations)
}

// UpdateLocation handles PUT /api/v1/location/:id
func UpdateLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var location models.Location
	if err := db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "LOCATION_NOT_FOUND", "Location not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	err := db.Model(&location).Updates(map[string]interface{}{
		"name":     strings.TrimSpace(req.Name),
		"location": strings.TrimSpace(req.Location),
	}).Error
	if err != nil {
		if services.IsDuplicateKey(err) {
			respondError(c, http.StatusConflict, "LOCATION_EXISTS", "A location with this name already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	if err := db.First(&location, id).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, location)
}

// DeleteLocation handles DELETE /api/v1/location/:id
func DeleteLocation(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result := config.GetDB().WithContext(c.Request.Context()).Delete(&models.Location{}, id)
	if result.Error != nil {
		respondServiceError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "LOCATION_NOT_FOUND", "Location not found")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
