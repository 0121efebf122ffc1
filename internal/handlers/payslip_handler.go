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

type PayslipHandler struct {
	payslipService *services.PayslipService
	reportService  *services.ReportService
}

func NewPayslipHandler(payslipService *services.PayslipService, reportService *services.ReportService) *PayslipHandler {
	return &PayslipHandler{payslipService: payslipService, reportService: reportService}
}

// @Summary List Payslips
// @Description Get a paginated list of payslips. Employee accounts only see their own.
// @Tags Payslips
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param employee_id query int false "Filter by employee"
// @Param batch_id query int false "Filter by batch"
// @Param status query string false "Filter by status"
// @Param structure query string false "Filter by salary structure"
// @Param date_from query string false "Period start (YYYY-MM-DD)"
// @Param date_to query string false "Period end (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /payslips [get]
func (h *PayslipHandler) Index(c *gin.Context) {
	query := &repository.PayslipQuery{ListQuery: repository.NewListQuery()}
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Status = c.Query("status")
	query.Structure = c.Query("structure")

	if employeeID, err := strconv.ParseUint(c.Query("employee_id"), 10, 32); err == nil {
		query.EmployeeID = uint(employeeID)
	}
	if batchID, err := strconv.ParseUint(c.Query("batch_id"), 10, 32); err == nil {
		query.BatchID = uint(batchID)
	}
	var err error
	if query.From, err = parseDateQuery(c, "date_from"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if query.To, err = parseDateQuery(c, "date_to"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Empleado accounts are pinned to their own payslips regardless of filters
	if middleware.GetUserRole(c) == models.RoleEmpleado {
		query.EmployeeID = middleware.GetEmployeeID(c)
	}

	payslips, total, err := h.payslipService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, payslip := range payslips {
		responses = append(responses, payslip.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"payslips": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Create Payslip
// @Description Register a draft payslip over the contract covering the period
// @Tags Payslips
// @Accept json
// @Produce json
// @Param request body services.CreatePayslipInput true "Payslip Data"
// @Success 201 {object} models.PayslipResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payslips [post]
func (h *PayslipHandler) Create(c *gin.Context) {
	var input services.CreatePayslipInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payslip, err := h.payslipService.Create(c.Request.Context(), &input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payslip": payslip.ToResponse()})
}

// @Summary Get Payslip
// @Description Get a payslip with its lines
// @Tags Payslips
// @Produce json
// @Param payslip_id path int true "Payslip ID"
// @Success 200 {object} models.PayslipResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /payslips/{payslip_id} [get]
func (h *PayslipHandler) Show(c *gin.Context) {
	payslip, ok := h.ownPayslip(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"payslip": payslip.ToResponse()})
}

// @Summary Compute Payslip
// @Description Run the salary rules and store the resulting lines
// @Tags Payslips
// @Produce json
// @Param payslip_id path int true "Payslip ID"
// @Success 200 {object} models.PayslipResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payslips/{payslip_id}/compute [post]
func (h *PayslipHandler) Compute(c *gin.Context) {
	h.transition(c, h.payslipService.Compute)
}

// @Summary Confirm Payslip
// @Description Confirm a computed payslip
// @Tags Payslips
// @Produce json
// @Param payslip_id path int true "Payslip ID"
// @Success 200 {object} models.PayslipResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payslips/{payslip_id}/confirm [post]
func (h *PayslipHandler) Confirm(c *gin.Context) {
	h.transition(c, h.payslipService.Confirm)
}

// @Summary Reset Payslip to Draft
// @Description Return a payslip to draft, clearing computation timestamps
// @Tags Payslips
// @Produce json
// @Param payslip_id path int true "Payslip ID"
// @Success 200 {object} models.PayslipResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payslips/{payslip_id}/set_to_draft [post]
func (h *PayslipHandler) SetToDraft(c *gin.Context) {
	h.transition(c, h.payslipService.SetToDraft)
}

// @Summary Cancel Payslip
// @Description Cancel a payslip
// @Tags Payslips
// @Produce json
// @Param payslip_id path int true "Payslip ID"
// @Success 200 {object} models.PayslipResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /payslips/{payslip_id}/cancel [post]
func (h *PayslipHandler) Cancel(c *gin.Context) {
	h.transition(c, h.payslipService.Cancel)
}

// @Summary Download Payslip Receipt
// @Description Download the payslip receipt as PDF
// @Tags Payslips
// @Produce application/pdf
// @Param payslip_id path int true "Payslip ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /payslips/{payslip_id}/receipt_pdf [get]
func (h *PayslipHandler) ReceiptPDF(c *gin.Context) {
	payslip, ok := h.ownPayslip(c)
	if !ok {
		return
	}

	buf, filename, err := h.reportService.GeneratePayslipReceiptPDF(c.Request.Context(), payslip.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// transition runs one lifecycle operation and renders the updated payslip.
func (h *PayslipHandler) transition(c *gin.Context, fn func(ctx context.Context, id uint, userID uint) (*models.Payslip, error)) {
	id, _ := strconv.ParseUint(c.Param("payslip_id"), 10, 32)
	payslip, err := fn(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payslip": payslip.ToResponse()})
}

// ownPayslip loads the payslip and enforces that empleado accounts only
// reach their own records.
func (h *PayslipHandler) ownPayslip(c *gin.Context) (*models.Payslip, bool) {
	id, _ := strconv.ParseUint(c.Param("payslip_id"), 10, 32)
	payslip, err := h.payslipService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Recibo no encontrado"})
		return nil, false
	}
	if middleware.GetUserRole(c) == models.RoleEmpleado && payslip.EmployeeID != middleware.GetEmployeeID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tienes acceso a esta información"})
		return nil, false
	}
	return payslip, true
}
