package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tresdv/nomina-api/internal/middleware"
	"github.com/tresdv/nomina-api/internal/services"
)

type RateHandler struct {
	rateService   *services.RateService
	exportService *services.ExportService
}

func NewRateHandler(rateService *services.RateService, exportService *services.ExportService) *RateHandler {
	return &RateHandler{rateService: rateService, exportService: exportService}
}

// @Summary List Exchange Rates
// @Description Get the exchange-rate history for a currency, normalized to foreign-per-USD
// @Tags Rates
// @Produce json
// @Param currency query string false "Currency code" default(VES)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /rates [get]
func (h *RateHandler) Index(c *gin.Context) {
	currency := c.DefaultQuery("currency", "VES")
	from, err := parseDateQuery(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := parseDateQuery(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rates, err := h.rateService.List(c.Request.Context(), currency, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, rate := range rates {
		responses = append(responses, rate.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"rates": responses})
}

// @Summary Create Exchange Rate
// @Description Register one exchange-rate observation
// @Tags Rates
// @Accept json
// @Produce json
// @Param request body services.CreateRateInput true "Rate Data"
// @Success 201 {object} models.CurrencyRateResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /rates [post]
func (h *RateHandler) Create(c *gin.Context) {
	var input services.CreateRateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rate, err := h.rateService.Create(c.Request.Context(), &input, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"rate": rate.ToResponse()})
}

// @Summary Export Rates CSV
// @Description Download the normalized exchange-rate history as CSV
// @Tags Rates
// @Produce text/csv
// @Param currency query string false "Currency code" default(VES)
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /rates/export_csv [get]
func (h *RateHandler) ExportCSV(c *gin.Context) {
	currency := c.DefaultQuery("currency", "VES")
	data, filename, err := h.exportService.ExportRatesCSV(c.Request.Context(), currency)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}
