package controllers

import (
	"net/http"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/gin-gonic/gin"
)

// GetDashboardSummary handles GET /api/v1/dashboard/summary
func GetDashboardSummary(c *gin.Context) {
	viewer, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := services.NewDashboardService(config.GetDB()).Summary(c.Request.Context(), viewer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, summary)
}
