package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/config"
	"github.com/tresdv/nomina-api/internal/models"
)

func TestEmailServiceSkipsWhenNotConfigured(t *testing.T) {
	// Without RESEND_API_KEY sends are logged and skipped, never an error
	cfg := &config.Config{ResendAPIKey: "", AppURL: "https://nomina.example.com"}
	svc := NewEmailService(cfg)

	user := &models.User{ID: 1, Email: "mgonzalez@example.com", FullName: "María González"}
	payslip := liquidationPayslip(models.StructureLiquidationV1)
	payslip.Lines = []models.PayslipLine{
		{Code: models.RuleCodeLiquidNet, Category: models.LineCategoryNet, Amount: decimal.RequireFromString("882.3")},
	}

	assert.NoError(t, svc.SendPayslipConfirmed(context.Background(), user, payslip))
	assert.NoError(t, svc.SendAccountCreated(context.Background(), user, "temporal123"))
}

func TestEmailServiceRendersTemplates(t *testing.T) {
	cfg := &config.Config{AppURL: "https://nomina.example.com"}
	svc := NewEmailService(cfg)

	body, err := svc.renderTemplate("liquidation_ready.html", struct {
		Name     string
		Employee string
		Net      string
		AppURL   string
	}{
		Name:     "María González",
		Employee: "María González",
		Net:      FormatMoney(decimal.RequireFromString("882.3")),
		AppURL:   cfg.AppURL,
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(body, "María González"))
	assert.True(t, strings.Contains(body, "882,30"))
}
