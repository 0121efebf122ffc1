package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tresdv/nomina-api/internal/middleware"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/internal/services"
)

type BatchHandler struct {
	batchService  *services.BatchService
	exportService *services.ExportService
}

func NewBatchHandler(batchService *services.BatchService, exportService *services.ExportService) *BatchHandler {
	return &BatchHandler{batchService: batchService, exportService: exportService}
}

// @Summary List Batches
// @Description Get a paginated list of payroll batches
// @Tags Batches
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /batches [get]
func (h *BatchHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	if status := c.Query("status"); status != "" {
		query.Filters["status"] = status
	}

	batches, total, err := h.batchService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, batch := range batches {
		responses = append(responses, batch.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"batches": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Create Batch
// @Description Create a payroll batch with one draft payslip per open contract
// @Tags Batches
// @Accept json
// @Produce json
// @Param request body services.CreateBatchInput true "Batch Data"
// @Success 201 {object} models.BatchResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	var input services.CreateBatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"batch": batch.ToResponse()})
}

// @Summary Get Batch
// @Description Get a batch with its payslips
// @Tags Batches
// @Produce json
// @Param batch_id path int true "Batch ID"
// @Success 200 {object} models.BatchResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /batches/{batch_id} [get]
func (h *BatchHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("batch_id"), 10, 32)
	batch, err := h.batchService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lote no encontrado"})
		return
	}

	var payslips []interface{}
	for _, payslip := range batch.Payslips {
		payslips = append(payslips, payslip.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":    batch.ToResponse(),
		"payslips": payslips,
	})
}

// @Summary Compute Batch
// @Description Compute every draft payslip in the batch
// @Tags Batches
// @Produce json
// @Param batch_id path int true "Batch ID"
// @Success 200 {object} models.BatchResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /batches/{batch_id}/compute_all [post]
func (h *BatchHandler) ComputeAll(c *gin.Context) {
	h.transition(c, h.batchService.ComputeAll)
}

// @Summary Close Batch
// @Description Close the batch, confirming its computed payslips
// @Tags Batches
// @Produce json
// @Param batch_id path int true "Batch ID"
// @Success 200 {object} models.BatchResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /batches/{batch_id}/close [post]
func (h *BatchHandler) Close(c *gin.Context) {
	h.transition(c, h.batchService.Close)
}

// @Summary Cancel Batch
// @Description Cancel the batch
// @Tags Batches
// @Produce json
// @Param batch_id path int true "Batch ID"
// @Success 200 {object} models.BatchResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /batches/{batch_id}/cancel [post]
func (h *BatchHandler) Cancel(c *gin.Context) {
	h.transition(c, h.batchService.Cancel)
}

// @Summary Reopen Batch
// @Description Reopen a closed batch
// @Tags Batches
// @Produce json
// @Param batch_id path int true "Batch ID"
// @Success 200 {object} models.BatchResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /batches/{batch_id}/reopen [post]
func (h *BatchHandler) Reopen(c *gin.Context) {
	h.transition(c, h.batchService.Reopen)
}

// @Summary Export Batch CSV
// @Description Download the batch summary as CSV
// @Tags Batches
// @Produce text/csv
// @Param batch_id path int true "Batch ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /batches/{batch_id}/export_csv [get]
func (h *BatchHandler) ExportCSV(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("batch_id"), 10, 32)
	data, filename, err := h.exportService.ExportBatchCSV(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// @Summary Export Batch XLSX
// @Description Download the batch summary and detail as an Excel workbook
// @Tags Batches
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param batch_id path int true "Batch ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /batches/{batch_id}/export_xlsx [get]
func (h *BatchHandler) ExportXLSX(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("batch_id"), 10, 32)
	data, filename, err := h.exportService.ExportBatchXLSX(c.Request.Context(), uint(id))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *BatchHandler) transition(c *gin.Context, fn func(ctx context.Context, id uint, userID uint) (*models.PayslipBatch, error)) {
	id, _ := strconv.ParseUint(c.Param("batch_id"), 10, 32)
	batch, err := fn(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batch": batch.ToResponse()})
}
