package controllers

import (
	"net/http"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/metrics"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreatePoolRequest represents the request body for creating a pool
type CreatePoolRequest struct {
	Name           string          `json:"name" binding:"required"`
	SuperManager   uint            `json:"superManager" binding:"required"`
	PoolManagers   []uint          `json:"poolManagers"`
	PoolCommission decimal.Decimal `json:"poolCommission"`
}

// UpdatePoolRequest represents the request body for editing a pool. Omitted
// fields are left unchanged.
type UpdatePoolRequest struct {
	Name           *string          `json:"name"`
	SuperManager   *uint            `json:"superManager"`
	PoolManagers   []uint           `json:"poolManagers"`
	PoolCommission *decimal.Decimal `json:"poolCommission"`
}

// CreatePool handles POST /api/v1/pool/new
func CreatePool(c *gin.Context) {
	var req CreatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	pool, err := services.NewPoolService(config.GetDB()).Create(c.Request.Context(), services.PoolInput{
		Name:           req.Name,
		SuperManagerID: req.SuperManager,
		MemberIDs:      req.PoolManagers,
		PoolCommission: req.PoolCommission,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	metrics.Get().PoolChanges.WithLabelValues("create").Inc()
	respondOK(c, http.StatusCreated, pool)
}

// ListPools handles GET /api/v1/pool/all
func ListPools(c *gin.Context) {
	pools, err := services.NewPoolService(config.GetDB()).List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, pools)
}

// UpdatePool handles PUT /api/v1/pool/:id
func UpdatePool(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdatePoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	pool, err := services.NewPoolService(config.GetDB()).Update(c.Request.Context(), id, services.PoolUpdate{
		Name:           req.Name,
		SuperManagerID: req.SuperManager,
		MemberIDs:      req.PoolManagers,
		PoolCommission: req.PoolCommission,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	metrics.Get().PoolChanges.WithLabelValues("update").Inc()
	respondOK(c, http.StatusOK, pool)
}

// DeletePool handles DELETE /api/v1/pool/:id
func DeletePool(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	removed, err := services.NewPoolService(config.GetDB()).Delete(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	metrics.Get().PoolChanges.WithLabelValues("delete").Inc()
	respondOK(c, http.StatusOK, gin.H{"id": id, "removedMembers": removed})
}
