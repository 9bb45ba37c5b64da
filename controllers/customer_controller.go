package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ListCustomers handles GET /api/v1/customer/all
func ListCustomers(c *gin.Context) {
	var customers []models.Customer
	if err := config.GetDB().WithContext(c.Request.Context()).Order("first_name ASC, last_name ASC").Find(&customers).Error; err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, customers)
}

// GetCustomerByIDNumber handles GET /api/v1/customer/:idNumber so the sale
// form can prefill a returning buyer
func GetCustomerByIDNumber(c *gin.Context) {
	idNumber := strings.TrimSpace(c.Param("idNumber"))

	var customer models.Customer
	err := config.GetDB().WithContext(c.Request.Context()).Where("id_number = ?", idNumber).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, customer)
}
