package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tresdv/nomina-api/internal/middleware"
	"github.com/tresdv/nomina-api/internal/services"
)

type ContractHandler struct {
	contractService *services.ContractService
}

func NewContractHandler(contractService *services.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

// @Summary Create Contract
// @Description Register a draft contract for an employee
// @Tags Contracts
// @Accept json
// @Produce json
// @Param request body services.CreateContractInput true "Contract Data"
// @Success 201 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	var input services.CreateContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contract": contract.ToResponse()})
}

// @Summary Get Contract
// @Description Get a contract by ID
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contrato no encontrado"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

// @Summary Open Contract
// @Description Activate a draft contract
// @Tags Contracts
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Success 200 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/open [post]
func (h *ContractHandler) Open(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)
	contract, err := h.contractService.Open(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}

type CloseContractRequest struct {
	EndDate string `json:"end_date" binding:"required"`
}

// @Summary Close Contract
// @Description Close an open contract as of the given end date
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract_id path int true "Contract ID"
// @Param request body CloseContractRequest true "End Date"
// @Success 200 {object} models.ContractResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /contracts/{contract_id}/close [post]
func (h *ContractHandler) Close(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("contract_id"), 10, 32)

	var req CloseContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha de cierre es requerida"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha de cierre debe tener formato YYYY-MM-DD"})
		return
	}

	contract, err := h.contractService.Close(c.Request.Context(), uint(id), endDate, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contract": contract.ToResponse()})
}
