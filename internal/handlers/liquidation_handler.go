package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tresdv/nomina-api/internal/services"
)

type LiquidationHandler struct {
	liquidationService *services.LiquidationService
	reportService      *services.ReportService
	exportService      *services.ExportService
}

func NewLiquidationHandler(liquidationService *services.LiquidationService, reportService *services.ReportService, exportService *services.ExportService) *LiquidationHandler {
	return &LiquidationHandler{
		liquidationService: liquidationService,
		reportService:      reportService,
		exportService:      exportService,
	}
}

// reportOptions reads the report query parameters shared by the JSON and
// PDF variants.
func reportOptions(c *gin.Context) (services.ReportOptions, bool) {
	opts := services.ReportOptions{Currency: c.DefaultQuery("currency", "VES")}

	if raw := c.Query("override_rate"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil || !rate.IsPositive() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "override_rate debe ser un número positivo"})
			return opts, false
		}
		opts.OverrideRate = &rate
	}

	overrideDate, err := parseDateQuery(c, "override_date")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return opts, false
	}
	opts.OverrideDate = overrideDate

	return opts, true
}

// @Summary Liquidation Report
// @Description Build the liquidation report for a computed liquidation payslip
// @Tags Liquidation
// @Produce json
// @Param payslip_id path int true "Payslip ID"
// @Param currency query string false "Display currency" default(VES)
// @Param override_rate query number false "Manual exchange rate"
// @Param override_date query string false "Rate lookup date (YYYY-MM-DD)"
// @Success 200 {object} services.LiquidationReport
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payslips/{payslip_id}/liquidation [get]
func (h *LiquidationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payslip_id"), 10, 32)
	opts, ok := reportOptions(c)
	if !ok {
		return
	}

	report, err := h.liquidationService.BuildReport(c.Request.Context(), uint(id), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

// @Summary Liquidation Report PDF
// @Description Download the liquidation report as PDF
// @Tags Liquidation
// @Produce application/pdf
// @Param payslip_id path int true "Payslip ID"
// @Param currency query string false "Display currency" default(VES)
// @Param override_rate query number false "Manual exchange rate"
// @Param override_date query string false "Rate lookup date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /payslips/{payslip_id}/liquidation_pdf [get]
func (h *LiquidationHandler) PDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payslip_id"), 10, 32)
	opts, ok := reportOptions(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportService.GenerateLiquidationPDF(c.Request.Context(), uint(id), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// @Summary Liquidation Report XLSX
// @Description Download the liquidation report with its interest annex as a workbook
// @Tags Liquidation
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param payslip_id path int true "Payslip ID"
// @Param currency query string false "Display currency" default(VES)
// @Param override_rate query number false "Manual exchange rate"
// @Param override_date query string false "Rate lookup date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /payslips/{payslip_id}/liquidation_xlsx [get]
func (h *LiquidationHandler) XLSX(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("payslip_id"), 10, 32)
	opts, ok := reportOptions(c)
	if !ok {
		return
	}

	report, err := h.liquidationService.BuildReport(c.Request.Context(), uint(id), opts)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	data, filename, err := h.exportService.ExportLiquidationXLSX(report)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
