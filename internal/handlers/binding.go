package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tresdv/nomina-api/internal/services"
)

// parseDateQuery reads a YYYY-MM-DD query parameter. Returns nil when the
// parameter is absent, an error when present but malformed.
func parseDateQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, errors.New("el parámetro " + name + " debe tener formato YYYY-MM-DD")
	}
	return &parsed, nil
}

// respondServiceError maps the service sentinel errors onto HTTP statuses.
// Unknown errors surface as 500 with the original message.
func respondServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrInvalidContractState),
		errors.Is(err, services.ErrBatchStateViolation),
		errors.Is(err, services.ErrPayslipRecomputeForbidden),
		errors.Is(err, services.ErrRateUnavailable):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidPassword):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
