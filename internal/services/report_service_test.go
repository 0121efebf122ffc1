package services

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/models"
)

func TestGeneratePayslipReceiptPDF(t *testing.T) {
	payslip := liquidationPayslip(models.StructureLiquidationV1)
	payslip.Status = models.PayslipStatusDone
	contract := liquidationContract()
	contract.Currency = models.CurrencyUSD
	payslip.Contract = contract
	payslip.Lines = []models.PayslipLine{
		{Code: models.RuleCodeAntiguedad, Name: "Prestaciones Sociales", Sequence: 10,
			Category: models.LineCategoryAllowance, Amount: decimal.NewFromInt(600)},
		{Code: models.RuleCodeSSODeduction, Name: "Seguro Social Obligatorio", Sequence: 80,
			Category: models.LineCategoryDeduction, Amount: decimal.RequireFromString("-13.5")},
	}

	email := "mgonzalez@example.com"
	employeeRepo := &mockEmployeeRepository{employee: &models.Employee{
		ID:        3,
		FirstName: "María",
		LastName:  "González",
		Identity:  "V-18.456.789",
		Email:     &email,
		HireDate:  date(2024, 9, 1),
		Active:    true,
	}}
	payslipRepo := &mockPayslipRepository{payslip: payslip}
	svc := NewReportService(nil, payslipRepo, employeeRepo, nil)

	buf, filename, err := svc.GeneratePayslipReceiptPDF(context.Background(), 11)
	require.NoError(t, err)

	assert.Equal(t, "recibo_NOM-2025-000011.pdf", filename)
	require.NotNil(t, buf)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF"))
}
