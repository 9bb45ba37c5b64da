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

// SupplierRequest represents the request body for creating or editing a supplier
type SupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// CreateSupplier handles POST /api/v1/supplier/new
func CreateSupplier(c *gin.Context) {
	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	supplier := models.Supplier{
		Name:  strings.TrimSpace(req.Name),
		Phone: strings.TrimSpace(req.Phone),
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&supplier).Error; err != nil {
		if services.IsDuplicateKey(err) {
			respondError(c, http.StatusConflict, "SUPPLIER_EXISTS", "A supplier with this phone number already exists")
			return
		}
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, supplier)
}

// ListSuppliers handles GET /api/v1/supplier/all
func ListSuppliers(c *gin.Context) {
	var suppliers []models.Supplier
	if err := config.GetDB().WithContext(c.Request.Context()).Order("name ASC").Find(&suppliers).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, suppliers)
}

// UpdateSupplier handles PUT /api/v1/supplier/:id
func UpdateSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	db := config.GetDB().WithContext(c.Request.Context())
	var supplier models.Supplier
	if err := db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	err := db.Model(&supplier).Updates(map[string]interface{}{
		"name":  strings.TrimSpace(req.Name),
		"phone": strings.TrimSpace(req.Phone),
	}).Error
	if err != nil {
		if services.IsDuplicateKey(err) {
			respondError(c, http.StatusConflict, "SUPPLIER_EXISTS", "A supplier with this phone number already exists")
			return
		}
		respondServiceError(c, err)
		return
	}
	if err := db.First(&supplier, id).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, supplier)
}

// DeleteSupplier handles DELETE /api/v1/supplier/:id
func DeleteSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result := config.GetDB().WithContext(c.Request.Context()).Delete(&models.Supplier{}, id)
	if result.Error != nil {
		respondServiceError(c, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "SUPPLIER_NOT_FOUND", "Supplier not found")
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
