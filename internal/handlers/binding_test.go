package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/services"
)

func TestParseDateQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		query       string
		expected    *time.Time
		expectError bool
	}{
		{
			name:     "Absent parameter returns nil",
			query:    "",
			expected: nil,
		},
		{
			name:  "Valid date",
			query: "date_from=2025-08-31",
			expected: func() *time.Time {
				d := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
				return &d
			}(),
		},
		{
			name:        "Wrong format",
			query:       "date_from=31/08/2025",
			expectError: true,
		},
		{
			name:        "Not a date",
			query:       "date_from=pronto",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/payslips?"+tt.query, nil)

			got, err := parseDateQuery(c, "date_from")
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.expected == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.True(t, got.Equal(*tt.expected))
			}
		})
	}
}

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err      error
		expected int
	}{
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrUnauthorized, http.StatusForbidden},
		{services.ErrDuplicate, http.StatusConflict},
		{services.ErrInvalidState, http.StatusUnprocessableEntity},
		{services.ErrInvalidContractState, http.StatusUnprocessableEntity},
		{services.ErrBatchStateViolation, http.StatusUnprocessableEntity},
		{services.ErrPayslipRecomputeForbidden, http.StatusUnprocessableEntity},
		{services.ErrRateUnavailable, http.StatusUnprocessableEntity},
		{services.ErrInvalidPassword, http.StatusUnauthorized},
		{fmt.Errorf("recibo %d: %w", 11, services.ErrPayslipRecomputeForbidden), http.StatusUnprocessableEntity},
		{fmt.Errorf("algo falló"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/", nil)

			respondServiceError(c, tt.err)

			assert.Equal(t, tt.expected, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}
