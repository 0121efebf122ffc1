package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tresdv/nomina-api/internal/middleware"
	"github.com/tresdv/nomina-api/internal/models"
	"github.com/tresdv/nomina-api/internal/repository"
	"github.com/tresdv/nomina-api/internal/services"
)

type EmployeeHandler struct {
	employeeService *services.EmployeeService
	contractService *services.ContractService
}

func NewEmployeeHandler(employeeService *services.EmployeeService, contractService *services.ContractService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService, contractService: contractService}
}

// @Summary List Employees
// @Description Get a paginated list of employees
// @Tags Employees
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name or cédula"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /employees [get]
func (h *EmployeeHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	if status := c.Query("status"); status != "" {
		query.Filters["status"] = status
	}

	employees, total, err := h.employeeService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, employee := range employees {
		responses = append(responses, employee.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"employees": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Create Employee
// @Description Register a new employee
// @Tags Employees
// @Accept json
// @Produce json
// @Param request body services.CreateEmployeeInput true "Employee Data"
// @Success 201 {object} models.EmployeeResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /employees [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	var input services.CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.employeeService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"employee": employee.ToResponse()})
}

// @Summary Get Employee
// @Description Get an employee with their contracts
// @Tags Employees
// @Produce json
// @Param employee_id path int true "Employee ID"
// @Success 200 {object} models.EmployeeResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /employees/{employee_id} [get]
func (h *EmployeeHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("employee_id"), 10, 32)
	employee, err := h.employeeService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Empleado no encontrado"})
		return
	}

	var contracts []interface{}
	for _, contract := range employee.Contracts {
		contracts = append(contracts, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"employee":  employee.ToResponse(),
		"contracts": contracts,
	})
}

// @Summary Update Employee
// @Description Update an employee's personal data
// @Tags Employees
// @Accept json
// @Produce json
// @Param employee_id path int true "Employee ID"
// @Param request body services.CreateEmployeeInput true "Employee Data"
// @Success 200 {object} models.EmployeeResponse
// @Security BearerAuth
// @Router /employees/{employee_id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("employee_id"), 10, 32)

	var input services.CreateEmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee, err := h.employeeService.Update(c.Request.Context(), uint(id), &input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"employee": employee.ToResponse()})
}

// @Summary List Employee Contracts
// @Description Get the contract history of an employee
// @Tags Employees
// @Produce json
// @Param employee_id path int true "Employee ID"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /employees/{employee_id}/contracts [get]
func (h *EmployeeHandler) Contracts(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("employee_id"), 10, 32)
	contracts, err := h.contractService.FindByEmployee(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, contract := range contracts {
		responses = append(responses, contract.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"contracts": responses})
}

type TerminateRequest struct {
	TerminationDate string `json:"termination_date" binding:"required"`
	Structure       string `json:"structure"`
}

// @Summary Terminate Employee
// @Description Closes the active contract and creates a draft liquidation payslip
// @Tags Employees
// @Accept json
// @Produce json
// @Param employee_id path int true "Employee ID"
// @Param request body TerminateRequest true "Termination Data"
// @Success 201 {object} models.PayslipResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /employees/{employee_id}/terminate [post]
func (h *EmployeeHandler) Terminate(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("employee_id"), 10, 32)

	var req TerminateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha de egreso es requerida"})
		return
	}
	terminationDate, err := time.Parse("2006-01-02", req.TerminationDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha de egreso debe tener formato YYYY-MM-DD"})
		return
	}
	structure := req.Structure
	if structure == "" {
		structure = models.StructureLiquidationV2
	}

	payslip, err := h.employeeService.Terminate(c.Request.Context(), uint(id), terminationDate, structure, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payslip": payslip.ToResponse()})
}
