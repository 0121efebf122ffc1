package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresdv/nomina-api/internal/models"
)

func (m *mockContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	contract.ID = uint(len(m.contracts) + 50)
	m.contracts = append(m.contracts, *contract)
	return nil
}

func newTestContractService(contractRepo *mockContractRepository) *ContractService {
	employeeRepo := &mockEmployeeRepository{employee: &models.Employee{
		ID:        3,
		FirstName: "María",
		LastName:  "González",
		Identity:  "V-18.456.789",
		HireDate:  date(2024, 9, 1),
		Active:    true,
	}}
	return NewContractService(contractRepo, employeeRepo, nil)
}

func TestContractCreateDefaultsUtilidadesFactor(t *testing.T) {
	svc := newTestContractService(&mockContractRepository{})

	contract, err := svc.Create(context.Background(), &CreateContractInput{
		EmployeeID:  3,
		StartDate:   date(2024, 9, 1),
		MonthlyWage: decimal.NewFromInt(300),
	}, 1)
	require.NoError(t, err)

	// Single statutory share when nothing was loaded
	assert.True(t, contract.UtilidadesFactor.Equal(decimal.NewFromInt(1)),
		"factor %s", contract.UtilidadesFactor)
	// 70% of the wage when no explicit base is given
	assert.True(t, contract.DeductionBase.Equal(decimal.NewFromInt(210)))
}

func TestContractCreateKeepsExplicitUtilidadesFactor(t *testing.T) {
	svc := newTestContractService(&mockContractRepository{})

	contract, err := svc.Create(context.Background(), &CreateContractInput{
		EmployeeID:       3,
		StartDate:        date(2024, 9, 1),
		MonthlyWage:      decimal.NewFromInt(300),
		UtilidadesFactor: decimal.RequireFromString("2.5"),
	}, 1)
	require.NoError(t, err)

	assert.True(t, contract.UtilidadesFactor.Equal(decimal.RequireFromString("2.5")))
}

func TestContractCreateRejectsOverlap(t *testing.T) {
	contractRepo := &mockContractRepository{contracts: []models.Contract{liquidationContract()}}
	svc := newTestContractService(contractRepo)

	_, err := svc.Create(context.Background(), &CreateContractInput{
		EmployeeID:  3,
		StartDate:   date(2025, 1, 1),
		MonthlyWage: decimal.NewFromInt(400),
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidContractState)
}
