package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/metrics"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ModelRequest represents the request body for registering a phone model
type ModelRequest struct {
	Make        string                 `json:"make" binding:"required"`
	Model       string                 `json:"model" binding:"required"`
	Commissions models.CommissionTable `json:"commissions"`
}

// CreateModel handles POST /api/v1/model/new
func CreateModel(c *gin.Context) {
	var req ModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	commissions := req.Commissions
	if commissions == nil {
		commissions = models.CommissionTable{}
	}
	for _, entry := range commissions {
		if entry.Amount.IsNegative() {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Commission amounts cannot be negative")
			return
		}
	}

	model := models.PhoneModel{
		Make:        strings.TrimSpace(req.Make),
		Model:       strings.TrimSpace(req.Model),
		Commissions: commissions,
	}
	if err := config.GetDB().WithContext(c.Request.Context()).Create(&model).Error; err != nil {
		if services.IsDuplicateKey(err) {
			respondError(c, http.StatusConflict, "MODEL_EXISTS", "This phone model already exists")
			return
		}
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, model)
}

// ListModels handles GET /api/v1/model/
func ListModels(c *gin.Context) {
	var phoneModels []models.PhoneModel
	if err := config.GetDB().WithContext(c.Request.Context()).Order("make ASC, model ASC").Find(&phoneModels).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, phoneModels)
}

// UpdateCommissions handles PUT /api/v1/model/ with a batch of
// {model, regionId, amount} entries
func UpdateCommissions(c *gin.Context) {
	var req []services.CommissionUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	changed, err := services.NewCommissionService(config.GetDB()).ApplyBatch(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	metrics.Get().CommissionUpdates.Add(float64(len(req)))
	respondOK(c, http.StatusOK, changed)
}

// DeleteModel handles DELETE /api/v1/model/:id
func DeleteModel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	err := config.GetDB().WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var model models.PhoneModel
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}

		var phones int64
		if err := tx.Model(&models.Phone{}).Where("model_id = ?", id).Count(&phones).Error; err != nil {
			return err
		}
		if phones > 0 {
			return errModelInUse
		}
		return tx.Delete(&model).Error
	})
	switch {
	case err == nil:
		respondOK(c, http.StatusOK, gin.H{"id": id})
	case errors.Is(err, gorm.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "MODEL_NOT_FOUND", "Phone model not found")
	case errors.Is(err, errModelInUse):
		respondError(c, http.StatusConflict, "MODEL_IN_USE", "Phones still reference this model")
	default:
		respondServiceError(c, err)
	}
}

var errModelInUse = errors.New("model in use")
