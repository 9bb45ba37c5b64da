package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Mghendi-Pato/pointofsale-sub000/config"
	"github.com/Mghendi-Pato/pointofsale-sub000/metrics"
	"github.com/Mghendi-Pato/pointofsale-sub000/services"
	"github.com/gin-gonic/gin"
)

// ReportRange selects the days covered by a sales report (both inclusive)
type ReportRange struct {
	From time.Time `form:"from" binding:"required" time_format:"2006-01-02"`
	To   time.Time `form:"to" binding:"required" time_format:"2006-01-02"`
}

// ExportSales handles GET /api/v1/phone/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func ExportSales(c *gin.Context) {
	var req ReportRange
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	start := time.Now()
	buffer, err := services.NewReportService(config.GetDB(), nil).Build(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	metrics.Get().ReportGeneration.WithLabelValues("download").Observe(time.Since(start).Seconds())

	filename := fmt.Sprintf("sales_%s_%s.xlsx", req.From.Format("20060102"), req.To.Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, services.XLSXContentType, buffer.Bytes())
}

// ArchiveSales handles POST /api/v1/phone/export/archive?from=...&to=...: the
// report is stored in S3 and a time-limited download link returned
func ArchiveSales(c *gin.Context) {
	var req ReportRange
	if err := c.ShouldBindQuery(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	start := time.Now()
	key, url, err := services.NewReportService(config.GetDB(), services.GetS3Service()).Archive(c.Request.Context(), req.From, req.To)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	metrics.Get().ReportGeneration.WithLabelValues("archive").Observe(time.Since(start).Seconds())

	respondOK(c, http.StatusCreated, gin.H{"key": key, "url": url})
}
