package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/tresdv/nomina-api/internal/models"
)

func TestAmountToWords(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		expected string
	}{
		{"0", models.CurrencyVES, "CERO BOLÍVARES CON 00/100"},
		{"0.05", models.CurrencyVES, "CERO BOLÍVARES CON 05/100"},
		{"21", models.CurrencyVES, "VEINTIUNO BOLÍVARES CON 00/100"},
		{"45.10", models.CurrencyVES, "CUARENTA Y CINCO BOLÍVARES CON 10/100"},
		{"100", models.CurrencyVES, "CIEN BOLÍVARES CON 00/100"},
		{"101", models.CurrencyVES, "CIENTO UNO BOLÍVARES CON 00/100"},
		{"236.46", models.CurrencyUSD, "DOSCIENTOS TREINTA Y SEIS DÓLARES CON 46/100"},
		{"1500.50", models.CurrencyVES, "MIL QUINIENTOS BOLÍVARES CON 50/100"},
		{"208628.75", models.CurrencyVES, "DOSCIENTOS OCHO MIL SEISCIENTOS VEINTIOCHO BOLÍVARES CON 75/100"},
		{"1000000", models.CurrencyVES, "UN MILLÓN BOLÍVARES CON 00/100"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := AmountToWords(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestAmountToWordsUnknownCurrencyKeepsCode(t *testing.T) {
	got := AmountToWords(decimal.NewFromInt(10), "EUR")
	assert.Equal(t, "DIEZ EUR CON 00/100", got)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{"0", "0,00"},
		{"0.5", "0,50"},
		{"300.62", "300,62"},
		{"1272.01", "1.272,01"},
		{"300621.18", "300.621,18"},
		{"1000000", "1.000.000,00"},
		{"-4185.34", "-4.185,34"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(decimal.RequireFromString(tt.amount)))
		})
	}
}
