package controllers

import (
	"context"
	"net/http"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/metrics"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/gin-gonic/gin"
)

// CreatePhone handles POST /api/v1/phone/new
func CreatePhone(c *gin.Context) {
	var req services.PhoneInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	phone, err := services.NewPhoneService(config.GetDB()).Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, phone)
}

// UpdatePhone handles PUT /api/v1/phone/:id
func UpdatePhone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.PhoneUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	phone, err := services.NewPhoneService(config.GetDB()).Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, phone)
}

// DeletePhone handles DELETE /api/v1/phone/:id
func DeletePhone(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := services.NewPhoneService(config.GetDB()).Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}

// TogglePhoneLost handles PUT /api/v1/phone/:id/lost
func TogglePhoneLost(c *gin.Context) {
	phoneTransition(c, (*services.PhoneService).ToggleLost)
}

// ReconcilePhone handles PUT /api/v1/phone/:id/reconcile
func ReconcilePhone(c *gin.Context) {
	phoneTransition(c, (*services.PhoneService).Reconcile)
}

// RevertPhone handles PUT /api/v1/phone/:id/revert
func RevertPhone(c *gin.Context) {
	phoneTransition(c, (*services.PhoneService).Revert)
}

func phoneTransition(c *gin.Context, apply func(*services.PhoneService, context.Context, uint) (*models.Phone, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	phone, err := apply(services.NewPhoneService(config.GetDB()), c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, phone)
}

// ListPhones handles GET /api/v1/phone/all
func ListPhones(c *gin.Context) {
	viewer, ok := currentUser(c)
	if !ok {
		return
	}

	var filter services.PhoneFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondValidationError(c, err)
		return
	}

	phones, err := services.NewPhoneService(config.GetDB()).List(c.Request.Context(), viewer, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, phones)
}

// SellPhone handles POST /api/v1/phone/sell
func SellPhone(c *gin.Context) {
	seller, ok := currentUser(c)
	if !ok {
		return
	}

	var req services.SaleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	phone, err := services.NewPhoneService(config.GetDB()).Sell(c.Request.Context(), seller, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if phone.Company != nil {
		metrics.Get().PhonesSold.WithLabelValues(*phone.Company).Inc()
	}
	respondOK(c, http.StatusOK, phone)
}
